package infobox

import (
	"strings"

	"github.com/comicdex/catalog-migrator/internal/comic"
)

// Classification is the canonical {category, role} pair for an appearance
// heading. Role is only set for CHARACTER categories.
type Classification struct {
	Category comic.Category
	Role     comic.AppearanceRole
}

// The lookup tables below are matched as substrings of the lowercased
// heading, in declaration order. Order matters: the category lexicon
// overlaps ("supporting villain" must classify as antagonist before the
// supporting probe sees it), and the misspellings are the ones actually
// observed in the source corpus, not guesses.
var (
	featuredLabels = []string{
		"featured",
		"feature",
		"wedding guest",
		"vision",
	}

	antagonistLabels = []string{
		"antagonist",
		"antagonis",
		"antagoist",
		"antaginist",
		"antagnist",
		"anatagonist",
		"antoganist",
		"antagonits",
		"atagonist",
		"antagonust",
		"antagoni",
		"villain",
		"villian",
		"villan",
		"vilain",
		"villlain",
		"main character",
	}

	supportingLabels = []string{
		"supporting",
		"suporting",
		"supportin",
		"suppoting",
		"supprting",
	}

	groupLabels = []string{
		"group",
		"team",
	}

	vehicleLabels = []string{
		"vehicle",
		"vehicl",
		"vehical",
		"vechile",
		"vehicule",
	}

	locationLabels = []string{
		"location",
		"location/place",
		"place",
	}
)

// ClassifyAppearance maps a free-text category heading to its canonical
// category and, for characters, role. Headings that match nothing
// (flashback markers included) fall through to OTHER characters; discarding
// blank names is the caller's job.
func ClassifyAppearance(heading string) Classification {
	h := strings.ToLower(strings.TrimSpace(heading))

	switch {
	case matchesAny(h, featuredLabels):
		return Classification{Category: comic.CategoryCharacter, Role: comic.AppearanceFeatured}
	case matchesAny(h, antagonistLabels):
		return Classification{Category: comic.CategoryCharacter, Role: comic.AppearanceAntagonist}
	case matchesAny(h, supportingLabels):
		return Classification{Category: comic.CategoryCharacter, Role: comic.AppearanceSupporting}
	case matchesAny(h, groupLabels):
		return Classification{Category: comic.CategoryGroup}
	case matchesAny(h, vehicleLabels):
		return Classification{Category: comic.CategoryVehicle}
	case strings.Contains(h, "race"):
		return Classification{Category: comic.CategoryRace}
	case matchesAny(h, locationLabels):
		return Classification{Category: comic.CategoryLocation}
	case strings.Contains(h, "animal"):
		return Classification{Category: comic.CategoryAnimal}
	case strings.Contains(h, "ite"):
		return Classification{Category: comic.CategoryItem}
	default:
		return Classification{Category: comic.CategoryCharacter, Role: comic.AppearanceOther}
	}
}

func matchesAny(heading string, labels []string) bool {
	for _, label := range labels {
		if strings.Contains(heading, label) {
			return true
		}
	}
	return false
}
