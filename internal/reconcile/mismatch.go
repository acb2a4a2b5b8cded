package reconcile

import (
	"fmt"
	"strings"
)

// StoryDiff is one line of a mismatch diff: a story title annotated with
// its reprint count.
type StoryDiff struct {
	Title    string
	Reprints int
}

// MismatchError reports a story-count divergence between a freshly crawled
// original issue and its already-migrated catalog record. It aborts the
// referencing issue's migration before any catalog write.
type MismatchError struct {
	SeriesTitle string
	Volume      int
	Number      string
	Crawled     []StoryDiff
	Legacy      []StoryDiff
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("story count mismatch for %s Vol %d #%s: crawled %d, catalog %d",
		e.SeriesTitle, e.Volume, e.Number, len(e.Crawled), len(e.Legacy))
}

// Diff renders the two story lists side by side, padded to equal length,
// for the migration log.
func (e *MismatchError) Diff() string {
	width := 0
	for _, d := range e.Crawled {
		if n := len(diffLine(d)); n > width {
			width = n
		}
	}

	rows := len(e.Crawled)
	if len(e.Legacy) > rows {
		rows = len(e.Legacy)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s | %s\n", width, "crawled", "catalog")
	for i := 0; i < rows; i++ {
		left, right := "-", "-"
		if i < len(e.Crawled) {
			left = diffLine(e.Crawled[i])
		}
		if i < len(e.Legacy) {
			right = diffLine(e.Legacy[i])
		}
		fmt.Fprintf(&b, "%-*s | %s\n", width, left, right)
	}
	return b.String()
}

func diffLine(d StoryDiff) string {
	title := d.Title
	if title == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("%q (reprints: %d)", title, d.Reprints)
}
