package infobox

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comicdex/catalog-migrator/internal/comic"
)

func TestAssembleVariantsSingleCover(t *testing.T) {
	t.Parallel()

	covers := AssembleVariants([]*comic.VariantDraft{{ImageURL: "cover.jpg"}})
	require.Len(t, covers, 1)
	require.Equal(t, 0, covers[0].Number)
	require.Empty(t, covers[0].Label)
}

func TestAssembleVariantsCompactsSparseSlots(t *testing.T) {
	t.Parallel()

	slots := []*comic.VariantDraft{
		{ImageURL: "primary.jpg"},
		nil,
		{}, // empty slot, dropped
		{ImageURL: "variant.jpg", Label: "Second Printing"},
	}
	covers := AssembleVariants(slots)
	require.Len(t, covers, 2)
	require.Equal(t, 0, covers[0].Number)
	require.Equal(t, 1, covers[1].Number)
	require.Equal(t, "Second Printing", covers[1].Label)
}

func TestAssembleVariantsPositionalLabels(t *testing.T) {
	t.Parallel()

	slots := []*comic.VariantDraft{
		{ImageURL: "0.jpg"},
		{ImageURL: "1.jpg"},
		{ImageURL: "2.jpg"},
		{ImageURL: "3.jpg"},
	}
	covers := AssembleVariants(slots)
	require.Len(t, covers, 4)
	require.Empty(t, covers[0].Label)
	require.Equal(t, "A", covers[1].Label)
	require.Equal(t, "B", covers[2].Label)
	require.Equal(t, "C", covers[3].Label)
}

func TestPositionLabelWrapsPastAlphabet(t *testing.T) {
	t.Parallel()

	require.Equal(t, "A", positionLabel(0))
	require.Equal(t, "Z", positionLabel(25))
	require.Equal(t, "AA", positionLabel(26))
	require.Equal(t, "BB", positionLabel(27))
}

func TestAssembleVariantsLabelCollisions(t *testing.T) {
	t.Parallel()

	slots := []*comic.VariantDraft{
		{ImageURL: "0.jpg"},
		{ImageURL: "1.jpg", Label: "Direct Edition"},
		{ImageURL: "2.jpg", Label: "Newsstand"},
		{ImageURL: "3.jpg", Label: "Direct Edition"},
	}
	covers := AssembleVariants(slots)
	require.Len(t, covers, 4)

	// Every member of a collision group is suffixed, first occurrence
	// included; unique labels stay untouched.
	require.Equal(t, "Direct Edition A", covers[1].Label)
	require.Equal(t, "Newsstand", covers[2].Label)
	require.Equal(t, "Direct Edition B", covers[3].Label)
}

func TestAssembleVariantsArtistOnlySlotKept(t *testing.T) {
	t.Parallel()

	slot := &comic.VariantDraft{}
	slot.AddArtist("Jack Kirby", comic.RoleArtist)
	covers := AssembleVariants([]*comic.VariantDraft{slot})
	require.Len(t, covers, 1)
	require.Equal(t, "Jack Kirby", covers[0].Artists[0].Name)
}

func TestAssembleVariantsEmpty(t *testing.T) {
	t.Parallel()

	require.Nil(t, AssembleVariants(nil))
	require.Nil(t, AssembleVariants([]*comic.VariantDraft{nil, {}}))
}
