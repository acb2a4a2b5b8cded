package infobox

import (
	"sort"
	"strings"

	"github.com/comicdex/catalog-migrator/internal/comic"
)

// FillStoryGaps turns the sparse position-indexed story set collected
// during the line pass into a dense ordered list numbered 1..N. Positions
// missing between the lowest and highest observed index get an empty
// placeholder story. The final pass re-deduplicates each story's
// appearances by case-insensitive (name, category).
func FillStoryGaps(byPos map[int]*comic.StoryDraft) []*comic.StoryDraft {
	if len(byPos) == 0 {
		return nil
	}

	positions := make([]int, 0, len(byPos))
	for pos := range byPos {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	lo, hi := positions[0], positions[len(positions)-1]
	stories := make([]*comic.StoryDraft, 0, hi-lo+1)
	for pos := lo; pos <= hi; pos++ {
		story, ok := byPos[pos]
		if !ok {
			story = &comic.StoryDraft{}
		}
		story.Number = len(stories) + 1
		stories = append(stories, story)
	}

	for _, story := range stories {
		story.Appearances = dedupeAppearances(story.Appearances)
	}
	return stories
}

func dedupeAppearances(apps []comic.AppearanceRef) []comic.AppearanceRef {
	if len(apps) < 2 {
		return apps
	}
	seen := make(map[string]struct{}, len(apps))
	out := apps[:0]
	for _, a := range apps {
		key := strings.ToLower(a.Name) + "|" + string(a.Category)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
