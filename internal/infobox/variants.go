package infobox

import (
	"strings"

	"github.com/comicdex/catalog-migrator/internal/comic"
)

// AssembleVariants compacts the sparse cover slots collected during the
// line pass into a primary cover plus uniquely labeled variants. Slot 0
// becomes number 0; the rest keep their relative order and are renumbered
// 1..N. Unlabeled variants get a positional letter label; any label shared
// by two variants is suffixed on every occurrence, the first included.
func AssembleVariants(slots []*comic.VariantDraft) []*comic.VariantDraft {
	var covers []*comic.VariantDraft
	for _, slot := range slots {
		if slot == nil || (slot.ImageURL == "" && len(slot.Artists) == 0) {
			continue
		}
		covers = append(covers, slot)
	}
	if len(covers) == 0 {
		return nil
	}

	for i, cover := range covers {
		cover.Number = i
		if i > 0 && cover.Label == "" {
			cover.Label = positionLabel(i - 1)
		}
	}

	disambiguateLabels(covers)
	return covers
}

// positionLabel yields A..Z for the first 26 positions, then doubles up
// (AA, BB, ...) past the end of the alphabet.
func positionLabel(pos int) string {
	letter := string(rune('A' + pos%26))
	return strings.Repeat(letter, pos/26+1)
}

// disambiguateLabels appends an alphabetic suffix to every member of a
// label collision group, including the first occurrence.
func disambiguateLabels(covers []*comic.VariantDraft) {
	counts := make(map[string]int)
	for _, c := range covers {
		if c.Number == 0 {
			continue
		}
		counts[c.Label]++
	}

	seen := make(map[string]int)
	for _, c := range covers {
		if c.Number == 0 {
			continue
		}
		if counts[c.Label] < 2 {
			continue
		}
		suffix := positionLabel(seen[c.Label])
		seen[c.Label]++
		c.Label = strings.TrimSpace(c.Label + " " + suffix)
	}
}
