// Package comic defines the core types shared across subsystems: the
// issue draft produced by extraction and the references it is built from.
package comic

import "strings"

// Role tags a contribution an individual made to a story, cover, or issue.
type Role string

// Contribution roles attached to individuals.
const (
	RoleWriter    Role = "WRITER"
	RolePenciler  Role = "PENCILER"
	RoleInker     Role = "INKER"
	RoleLetterer  Role = "LETTERER"
	RoleColourist Role = "COLOURIST"
	RoleEditor    Role = "EDITOR"
	RoleArtist    Role = "ARTIST"
	RoleOriginal  Role = "ORIGINAL"
)

// Category is the canonical classification of an appearance.
type Category string

// Appearance categories.
const (
	CategoryCharacter Category = "CHARACTER"
	CategoryGroup     Category = "GROUP"
	CategoryVehicle   Category = "VEHICLE"
	CategoryRace      Category = "RACE"
	CategoryLocation  Category = "LOCATION"
	CategoryAnimal    Category = "ANIMAL"
	CategoryItem      Category = "ITEM"
)

// AppearanceRole refines a CHARACTER appearance.
type AppearanceRole string

// Character appearance roles.
const (
	AppearanceFeatured   AppearanceRole = "FEATURED"
	AppearanceAntagonist AppearanceRole = "ANTAGONIST"
	AppearanceSupporting AppearanceRole = "SUPPORTING"
	AppearanceOther      AppearanceRole = "OTHER"
)

// ArcType distinguishes the three narrative grouping kinds.
type ArcType string

// Arc types.
const (
	ArcEvent     ArcType = "EVENT"
	ArcStoryArc  ArcType = "STORYARC"
	ArcStoryLine ArcType = "STORYLINE"
)

// PublisherRef identifies a publisher for catalog lookup. Original marks
// the domestic first publisher as opposed to a foreign reprint publisher;
// a same-named publisher may exist once per flag value.
type PublisherRef struct {
	Name     string
	Original bool
}

// SeriesRef identifies a series for catalog lookup.
type SeriesRef struct {
	Title     string
	Volume    int
	Publisher PublisherRef
}

// IssueShell carries the minimal series/number context an extraction run
// starts from.
type IssueShell struct {
	Series SeriesRef
	Number string
}

// IndividualRef names a contributor together with their role set. A name
// may carry multiple roles; role addition is idempotent.
type IndividualRef struct {
	Name  string
	Roles []Role
}

// HasRole reports whether the individual already carries the role.
func (i *IndividualRef) HasRole(r Role) bool {
	for _, have := range i.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// AddRole attaches a role, keeping the role list a set.
func (i *IndividualRef) AddRole(r Role) {
	if !i.HasRole(r) {
		i.Roles = append(i.Roles, r)
	}
}

// AppearanceRef records one character/location/item appearance within a
// story. Role is only meaningful when Category is CHARACTER.
type AppearanceRef struct {
	Name     string
	Category Category
	Role     AppearanceRole
	First    bool
}

// ArcRef names a cross-issue narrative grouping.
type ArcRef struct {
	Title string
	Type  ArcType
}

// ReprintRef points at the issue a story originally appeared in, either by
// series coordinates or, when the source named a story instead, by title.
type ReprintRef struct {
	SeriesTitle string
	Volume      int
	Number      string
	StoryTitle  string
}

// ReleaseDate groups the month/year release fields mutated in place during
// extraction. Zero values mean the infobox did not carry the field.
type ReleaseDate struct {
	Month int
	Year  int
}

// StoryDraft is one story of an issue draft. Number is 1-based and
// contiguous after gap filling. A story with a ReprintRef never receives
// title or individual data from the local infobox; that data is inherited
// from the resolved original.
type StoryDraft struct {
	Number          int
	Title           string
	Individuals     []*IndividualRef
	Appearances     []AppearanceRef
	Reprint         *ReprintRef
	Original        *IssueDraft
	OriginalStoryID int64
}

// IsReprint reports whether the story reproduces content from another issue.
func (s *StoryDraft) IsReprint() bool {
	return s.Reprint != nil
}

// Individual returns the story's contributor entry for name, creating it on
// first use so repeated role lines accumulate on one entry.
func (s *StoryDraft) Individual(name string) *IndividualRef {
	for _, ind := range s.Individuals {
		if ind.Name == name {
			return ind
		}
	}
	ind := &IndividualRef{Name: name}
	s.Individuals = append(s.Individuals, ind)
	return ind
}

// AddRole attaches role to the named contributor, creating the entry if
// needed. Blank names are dropped.
func (s *StoryDraft) AddRole(name string, role Role) {
	if name == "" {
		return
	}
	s.Individual(name).AddRole(role)
}

// AddAppearance appends an appearance unless one with the same name and
// category (case-insensitive) is already present.
func (s *StoryDraft) AddAppearance(a AppearanceRef) {
	if a.Name == "" {
		return
	}
	for _, have := range s.Appearances {
		if equalFold(have.Name, a.Name) && have.Category == a.Category {
			return
		}
	}
	s.Appearances = append(s.Appearances, a)
}

// VariantDraft is one cover edition of an issue. Number 0 is the primary
// cover; 1..N are variants in discovery order.
type VariantDraft struct {
	Number   int
	Label    string
	ImageURL string
	Artists  []*IndividualRef
}

// AddArtist attaches a cover contributor with the given role.
func (v *VariantDraft) AddArtist(name string, role Role) {
	if name == "" {
		return
	}
	for _, ind := range v.Artists {
		if ind.Name == name {
			ind.AddRole(role)
			return
		}
	}
	ind := &IndividualRef{Name: name}
	ind.AddRole(role)
	v.Artists = append(v.Artists, ind)
}

// IssueDraft is the transient normalized record produced per crawl,
// consumed by reconciliation and then discarded or persisted.
type IssueDraft struct {
	Number   string
	Format   string
	Variant  string
	Released ReleaseDate
	Price    float64
	Currency string
	Series   SeriesRef
	Stories  []*StoryDraft
	Covers   []*VariantDraft
	Arcs     []ArcRef
	Editors  []*IndividualRef
	Edited   bool
}

// AddArc inserts a deduplicated arc reference; blank titles are discarded.
// Deduplication is case-insensitive on (title, type).
func (d *IssueDraft) AddArc(a ArcRef) {
	if a.Title == "" {
		return
	}
	for _, have := range d.Arcs {
		if equalFold(have.Title, a.Title) && have.Type == a.Type {
			return
		}
	}
	d.Arcs = append(d.Arcs, a)
}

// AddEditor attaches an issue-level editor.
func (d *IssueDraft) AddEditor(name string) {
	if name == "" {
		return
	}
	for _, ind := range d.Editors {
		if ind.Name == name {
			ind.AddRole(RoleEditor)
			return
		}
	}
	ind := &IndividualRef{Name: name}
	ind.AddRole(RoleEditor)
	d.Editors = append(d.Editors, ind)
}

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
