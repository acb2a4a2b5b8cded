package comic

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndividualRoleSet(t *testing.T) {
	t.Parallel()

	ind := &IndividualRef{Name: "Steve Ditko"}
	ind.AddRole(RolePenciler)
	ind.AddRole(RoleInker)
	ind.AddRole(RolePenciler)

	require.Equal(t, []Role{RolePenciler, RoleInker}, ind.Roles)
	require.True(t, ind.HasRole(RoleInker))
	require.False(t, ind.HasRole(RoleWriter))
}

func TestStoryIndividualFindOrCreate(t *testing.T) {
	t.Parallel()

	story := &StoryDraft{}
	story.AddRole("Stan Lee", RoleWriter)
	story.AddRole("Stan Lee", RoleEditor)
	story.AddRole("", RoleWriter)

	require.Len(t, story.Individuals, 1)
	require.True(t, story.Individuals[0].HasRole(RoleWriter))
	require.True(t, story.Individuals[0].HasRole(RoleEditor))
}

func TestStoryAddAppearanceDedupes(t *testing.T) {
	t.Parallel()

	story := &StoryDraft{}
	story.AddAppearance(AppearanceRef{Name: "Spider-Man", Category: CategoryCharacter, First: true})
	story.AddAppearance(AppearanceRef{Name: "SPIDER-MAN", Category: CategoryCharacter})
	story.AddAppearance(AppearanceRef{Name: "Spider-Man", Category: CategoryItem})
	story.AddAppearance(AppearanceRef{Name: "", Category: CategoryCharacter})

	require.Len(t, story.Appearances, 2)
	require.True(t, story.Appearances[0].First)
}

func TestIssueAddArcDedupes(t *testing.T) {
	t.Parallel()

	draft := &IssueDraft{}
	draft.AddArc(ArcRef{Title: "Clone Saga", Type: ArcStoryArc})
	draft.AddArc(ArcRef{Title: "clone saga", Type: ArcStoryArc})
	draft.AddArc(ArcRef{Title: "Clone Saga", Type: ArcEvent})
	draft.AddArc(ArcRef{Title: "", Type: ArcEvent})

	require.Len(t, draft.Arcs, 2)
}

func TestIssueAddEditor(t *testing.T) {
	t.Parallel()

	draft := &IssueDraft{}
	draft.AddEditor("Stan Lee")
	draft.AddEditor("Stan Lee")
	draft.AddEditor("")

	require.Len(t, draft.Editors, 1)
	require.Equal(t, []Role{RoleEditor}, draft.Editors[0].Roles)
}

func TestVariantAddArtist(t *testing.T) {
	t.Parallel()

	v := &VariantDraft{}
	v.AddArtist("Jack Kirby", RoleArtist)
	v.AddArtist("Jack Kirby", RoleInker)
	v.AddArtist("", RoleArtist)

	require.Len(t, v.Artists, 1)
	require.True(t, v.Artists[0].HasRole(RoleArtist))
	require.True(t, v.Artists[0].HasRole(RoleInker))
}

func TestIsReprint(t *testing.T) {
	t.Parallel()

	require.False(t, (&StoryDraft{}).IsReprint())
	require.True(t, (&StoryDraft{Reprint: &ReprintRef{SeriesTitle: "X"}}).IsReprint())
}
