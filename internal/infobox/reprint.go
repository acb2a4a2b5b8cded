package infobox

import (
	"strconv"
	"strings"

	"github.com/comicdex/catalog-migrator/internal/comic"
)

// parseReprintSource extracts the original issue's series title, volume,
// and number from free text like "Amazing Fantasy Vol 1 #15". Three
// positional grammars apply, selected by the presence of "Vol" and "#":
//
//	"Title #15"        -> title before '#', volume 1, number after last '#'
//	"Title Vol 2 #15"  -> title before "Vol", volume between "Vol" and the
//	                      next space, number after last '#'
//	"Title Vol 2 15"   -> as above, number after the last space
//
// Text matching none of them yields the whole string as the title.
func parseReprintSource(text string) *comic.ReprintRef {
	if targets := linkTargets(text); len(targets) > 0 {
		text = targets[0]
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	ref := &comic.ReprintRef{Volume: 1}
	volIdx := strings.Index(text, "Vol")
	hashIdx := strings.Index(text, "#")

	switch {
	case volIdx < 0 && hashIdx >= 0:
		ref.SeriesTitle = strings.TrimSpace(text[:hashIdx])
		ref.Number = strings.TrimSpace(text[strings.LastIndex(text, "#")+1:])
	case volIdx >= 0 && hashIdx >= 0:
		ref.SeriesTitle = strings.TrimSpace(text[:volIdx])
		ref.Volume = parseVolume(text[volIdx:])
		ref.Number = strings.TrimSpace(text[strings.LastIndex(text, "#")+1:])
	case volIdx >= 0:
		ref.SeriesTitle = strings.TrimSpace(text[:volIdx])
		ref.Volume = parseVolume(text[volIdx:])
		if space := strings.LastIndex(text, " "); space >= 0 {
			ref.Number = strings.TrimSpace(text[space+1:])
		}
	default:
		ref.SeriesTitle = text
	}
	return ref
}

// parseVolume reads the token between "Vol" and the following space.
// Malformed volumes fall back to 1, matching how the source corpus is
// actually authored.
func parseVolume(s string) int {
	s = strings.TrimPrefix(s, "Vol")
	s = strings.TrimLeft(s, ". ")
	if space := strings.IndexAny(s, " #"); space >= 0 {
		s = s[:space]
	}
	vol, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || vol <= 0 {
		return 1
	}
	return vol
}
