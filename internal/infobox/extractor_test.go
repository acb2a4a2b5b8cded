package infobox

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comicdex/catalog-migrator/internal/comic"
)

func testShell() comic.IssueShell {
	return comic.IssueShell{
		Series: comic.SeriesRef{
			Title:     "Amazing Fantasy",
			Volume:    1,
			Publisher: comic.PublisherRef{Name: "Marvel", Original: true},
		},
		Number: "15",
	}
}

func TestExtractFullPage(t *testing.T) {
	t.Parallel()

	lines := []string{
		"{{Comic Template",
		"| Image1       = Amazing_Fantasy_Vol_1_15.jpg",
		"| Image2       = AF15_second_print.jpg",
		"| Image2Text   = Second Printing Variant",
		"| Month        = August",
		"| Year         = 1962",
		"| Editor       = [[Stan Lee]]",
		"| CoverArtist1 = [[Jack Kirby]]",
		"| CoverArtist2 = [[Steve Ditko]]",
		"| StoryTitle1  = \"Spider-Man!\"",
		"| Writer1_1    = [[Stan Lee]]",
		"| Penciler1_1  = [[Steve Ditko]]",
		"| Inker1_1     = [[Steve Ditko]]",
		"| Appearing1   = ",
		"'''Featured Characters:'''",
		"* [[Peter Parker (Earth-616)|Spider-Man]] (1st appearance)",
		"'''Antagonists:'''",
		"* [[Burglar (Earth-616)|The Burglar]]",
		"'''Items:'''",
		"* [[Web-Shooters]]",
		"| StoryTitle3  = \"The Bell-Ringer\"",
		"| Writer3_1    = [[Stan Lee]]",
		"| OriginalPrice = $0.12",
		"| Event        = [[Origin of Spider-Man]]",
		"}}",
	}

	draft, err := NewExtractor(nil).Extract(testShell(), lines)
	require.NoError(t, err)

	require.Equal(t, "15", draft.Number)
	require.Equal(t, "Amazing Fantasy", draft.Series.Title)
	require.Equal(t, 8, draft.Released.Month)
	require.Equal(t, 1962, draft.Released.Year)
	require.Equal(t, "$", draft.Currency)
	require.InDelta(t, 0.12, draft.Price, 1e-9)
	require.True(t, draft.Edited)

	// Editor key without a position index is issue-level attribution.
	require.Len(t, draft.Editors, 1)
	require.Equal(t, "Stan Lee", draft.Editors[0].Name)
	require.Equal(t, []comic.Role{comic.RoleEditor}, draft.Editors[0].Roles)

	// Positions 1 and 3 were seen; 2 is a gap-filled placeholder.
	require.Len(t, draft.Stories, 3)
	require.Equal(t, "Spider-Man!", draft.Stories[0].Title)
	require.Empty(t, draft.Stories[1].Title)
	require.Equal(t, "The Bell-Ringer", draft.Stories[2].Title)
	require.Equal(t, []int{1, 2, 3}, []int{
		draft.Stories[0].Number, draft.Stories[1].Number, draft.Stories[2].Number,
	})

	// Ditko pencils and inks on one contributor entry.
	lead := draft.Stories[0]
	require.Len(t, lead.Individuals, 2)
	ditko := lead.Individual("Steve Ditko")
	require.True(t, ditko.HasRole(comic.RolePenciler))
	require.True(t, ditko.HasRole(comic.RoleInker))

	require.Len(t, lead.Appearances, 3)
	require.Equal(t, comic.AppearanceRef{
		Name: "Peter Parker", Category: comic.CategoryCharacter,
		Role: comic.AppearanceFeatured, First: true,
	}, lead.Appearances[0])
	require.Equal(t, comic.AppearanceAntagonist, lead.Appearances[1].Role)
	require.Equal(t, comic.CategoryItem, lead.Appearances[2].Category)
	require.Equal(t, "Web-Shooters", lead.Appearances[2].Name)

	require.Len(t, draft.Covers, 2)
	require.Equal(t, 0, draft.Covers[0].Number)
	require.Equal(t, "Amazing_Fantasy_Vol_1_15.jpg", draft.Covers[0].ImageURL)
	require.Len(t, draft.Covers[0].Artists, 2)
	require.Equal(t, 1, draft.Covers[1].Number)
	require.Equal(t, "Second Printing", draft.Covers[1].Label)

	require.Equal(t, []comic.ArcRef{
		{Title: "Origin of Spider-Man", Type: comic.ArcEvent},
	}, draft.Arcs)
}

func TestExtractNoInfobox(t *testing.T) {
	t.Parallel()

	_, err := NewExtractor(nil).Extract(testShell(), []string{
		"This page is just prose.",
		"== A heading ==",
	})
	require.ErrorIs(t, err, ErrNoInfobox)
}

func TestExtractUnknownKeysStillCountAsInfobox(t *testing.T) {
	t.Parallel()

	draft, err := NewExtractor(nil).Extract(testShell(), []string{
		"| SomeUnknownKey = whatever",
	})
	require.NoError(t, err)
	require.Empty(t, draft.Stories)
}

func TestExtractPositionalEditor(t *testing.T) {
	t.Parallel()

	draft, err := NewExtractor(nil).Extract(testShell(), []string{
		"| StoryTitle1 = \"Lead\"",
		"| Editor1_1   = [[Stan Lee]]",
	})
	require.NoError(t, err)
	require.Empty(t, draft.Editors)
	require.Len(t, draft.Stories, 1)
	require.True(t, draft.Stories[0].Individual("Stan Lee").HasRole(comic.RoleEditor))
}

func TestExtractReprintStorySkipsLocalCredits(t *testing.T) {
	t.Parallel()

	draft, err := NewExtractor(nil).Extract(testShell(), []string{
		"| ReprintOf1       = Tales of Suspense Vol 1 #39",
		"| ReprintOf1_Story = \"[[Iron Man is Born!]]\"",
		"| StoryTitle1      = \"Local retitle\"",
		"| Writer1_1        = [[Somebody Wrong]]",
		"| Editor1_1        = [[Somebody Wrong]]",
		"| Penciler1_1      = [[Don Heck]]",
	})
	require.NoError(t, err)
	require.Len(t, draft.Stories, 1)

	story := draft.Stories[0]
	require.True(t, story.IsReprint())
	require.Equal(t, "Tales of Suspense", story.Reprint.SeriesTitle)
	require.Equal(t, 1, story.Reprint.Volume)
	require.Equal(t, "39", story.Reprint.Number)
	require.Equal(t, "Iron Man is Born!", story.Reprint.StoryTitle)

	// Title, writer, and editor stay with the original; art restoration
	// credits on the reprint itself are kept.
	require.Empty(t, story.Title)
	require.Len(t, story.Individuals, 1)
	require.Equal(t, "Don Heck", story.Individuals[0].Name)
	require.True(t, story.Individuals[0].HasRole(comic.RolePenciler))
}

func TestExtractReprintStoryTitleBeforeSource(t *testing.T) {
	t.Parallel()

	draft, err := NewExtractor(nil).Extract(testShell(), []string{
		"| ReprintOf1_Story = \"Iron Man is Born!\"",
		"| ReprintOf1       = Tales of Suspense Vol 1 #39",
	})
	require.NoError(t, err)
	story := draft.Stories[0]
	require.Equal(t, "Iron Man is Born!", story.Reprint.StoryTitle)
	require.Equal(t, "Tales of Suspense", story.Reprint.SeriesTitle)
}

func TestExtractAppearingSkippedForReprints(t *testing.T) {
	t.Parallel()

	draft, err := NewExtractor(nil).Extract(testShell(), []string{
		"| ReprintOf1 = Tales of Suspense Vol 1 #39",
		"| Appearing1 = ",
		"'''Featured Characters:'''",
		"* [[Iron Man]]",
	})
	require.NoError(t, err)
	require.Empty(t, draft.Stories[0].Appearances)
}

func TestExtractAppearingBulletWithoutLink(t *testing.T) {
	t.Parallel()

	draft, err := NewExtractor(nil).Extract(testShell(), []string{
		"| StoryTitle1 = \"Lead\"",
		"| Appearing1  = ",
		"'''Supporting Characters:'''",
		"* Aunt May",
	})
	require.NoError(t, err)
	apps := draft.Stories[0].Appearances
	require.Len(t, apps, 1)
	require.Equal(t, "Aunt May", apps[0].Name)
	require.Equal(t, comic.AppearanceSupporting, apps[0].Role)
}

func TestExtractAppearingDedupesWithinStory(t *testing.T) {
	t.Parallel()

	draft, err := NewExtractor(nil).Extract(testShell(), []string{
		"| StoryTitle1 = \"Lead\"",
		"| Appearing1  = ",
		"'''Featured Characters:'''",
		"* [[Peter Parker (Earth-616)|Spider-Man]]",
		"* [[Peter Parker (Earth-616)|Petey]]",
	})
	require.NoError(t, err)
	require.Len(t, draft.Stories[0].Appearances, 1)
}

func TestParseMonth(t *testing.T) {
	t.Parallel()

	require.Equal(t, 8, parseMonth("August"))
	require.Equal(t, 8, parseMonth("Aug"))
	require.Equal(t, 3, parseMonth("3"))
	require.Equal(t, 0, parseMonth("13"))
	require.Equal(t, 0, parseMonth("Smarch"))
	require.Equal(t, 0, parseMonth(""))
}

func TestParsePrice(t *testing.T) {
	t.Parallel()

	currency, price := parsePrice("$0.12")
	require.Equal(t, "$", currency)
	require.InDelta(t, 0.12, price, 1e-9)

	currency, price = parsePrice("£1.95 UK")
	require.Equal(t, "£", currency)
	require.InDelta(t, 1.95, price, 1e-9)

	currency, price = parsePrice("Free")
	require.Equal(t, "Free", currency)
	require.Zero(t, price)
}
