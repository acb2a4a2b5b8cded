package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/comicdex/catalog-migrator/internal/catalog"
	"github.com/comicdex/catalog-migrator/internal/comic"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	store, err := NewStoreWithPool(mock, nil)
	require.NoError(t, err)
	return store, mock
}

func testKey() catalog.IssueKey {
	return catalog.IssueKey{
		SeriesTitle:       "Amazing Fantasy",
		SeriesVolume:      1,
		PublisherName:     "Marvel",
		PublisherOriginal: true,
		Number:            "15",
		Format:            "Comic",
		Variant:           "",
	}
}

func TestFindIssue(t *testing.T) {
	store, mock := newMockStore(t)
	key := testKey()

	mock.ExpectQuery("SELECT i.id").
		WithArgs(key.SeriesTitle, key.SeriesVolume, key.PublisherName,
			key.PublisherOriginal, key.Number, key.Format, key.Variant).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectQuery("SELECT st.id, st.title").
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "reprints"}).
			AddRow(int64(100), "Spider-Man!", 3).
			AddRow(int64(101), "The Bell-Ringer", 0))

	rec, err := store.FindIssue(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, int64(42), rec.ID)
	require.Equal(t, key, rec.Key)
	require.Equal(t, []catalog.StoryRecord{
		{ID: 100, Title: "Spider-Man!", Reprints: 3},
		{ID: 101, Title: "The Bell-Ringer", Reprints: 0},
	}, rec.Stories)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindIssueNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT i.id").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, err := store.FindIssue(context.Background(), testKey())
	require.ErrorIs(t, err, catalog.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOriginal(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT i.id").
		WithArgs("Tales of Suspense", 1, "39").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectQuery("SELECT st.id, st.title").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "reprints"}).
			AddRow(int64(70), "Iron Man is Born!", 1))

	rec, err := store.FindOriginal(context.Background(), "Tales of Suspense", 1, "39")
	require.NoError(t, err)
	require.Equal(t, int64(7), rec.ID)
	require.Equal(t, "Tales of Suspense", rec.Key.SeriesTitle)
	require.Len(t, rec.Stories, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOriginalNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT i.id").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, err := store.FindOriginal(context.Background(), "Nope", 1, "1")
	require.ErrorIs(t, err, catalog.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertIssueWritesWholeSubtree(t *testing.T) {
	store, mock := newMockStore(t)

	writer := &comic.IndividualRef{Name: "Stan Lee", Roles: []comic.Role{comic.RoleWriter}}
	editor := &comic.IndividualRef{Name: "Stan Lee", Roles: []comic.Role{comic.RoleEditor}}
	artist := &comic.IndividualRef{Name: "Jack Kirby", Roles: []comic.Role{comic.RoleArtist}}

	draft := &comic.IssueDraft{
		Number:   "15",
		Format:   "Comic",
		Released: comic.ReleaseDate{Month: 8, Year: 1962},
		Price:    0.12,
		Currency: "$",
		Edited:   true,
		Series: comic.SeriesRef{
			Title: "Amazing Fantasy", Volume: 1,
			Publisher: comic.PublisherRef{Name: "Marvel", Original: true},
		},
		Editors: []*comic.IndividualRef{editor},
		Stories: []*comic.StoryDraft{{
			Number:      1,
			Title:       "Spider-Man!",
			Individuals: []*comic.IndividualRef{writer},
			Appearances: []comic.AppearanceRef{{
				Name: "Peter Parker", Category: comic.CategoryCharacter,
				Role: comic.AppearanceFeatured, First: true,
			}},
			OriginalStoryID: 900,
		}},
		Arcs: []comic.ArcRef{{Title: "Origin of Spider-Man", Type: comic.ArcEvent}},
		Covers: []*comic.VariantDraft{{
			Number: 0, ImageURL: "af15.jpg",
			Artists: []*comic.IndividualRef{artist},
		}},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO publishers").
		WithArgs("Marvel", true).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery("INSERT INTO series").
		WithArgs("Amazing Fantasy", 1, int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectQuery("INSERT INTO issues").
		WithArgs(int64(2), "15", "Comic", "", 8, 1962, 0.12, "$", true).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))

	// Issue-level editor.
	mock.ExpectQuery("INSERT INTO individuals").
		WithArgs("Stan Lee").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(10)))
	mock.ExpectExec("INSERT INTO issue_individuals").
		WithArgs(int64(3), int64(10), "EDITOR").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	// Story, its credits, its appearances.
	mock.ExpectQuery("INSERT INTO stories").
		WithArgs(int64(3), 1, "Spider-Man!", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(20)))
	mock.ExpectQuery("INSERT INTO individuals").
		WithArgs("Stan Lee").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(10)))
	mock.ExpectExec("INSERT INTO story_individuals").
		WithArgs(int64(20), int64(10), "WRITER").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO appearances").
		WithArgs(int64(20), "Peter Parker", "CHARACTER", "FEATURED", true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	// Arc and its link.
	mock.ExpectQuery("INSERT INTO arcs").
		WithArgs("Origin of Spider-Man", "EVENT").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(30)))
	mock.ExpectExec("INSERT INTO issue_arcs").
		WithArgs(int64(3), int64(30)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	// Cover and its artist.
	mock.ExpectQuery("INSERT INTO covers").
		WithArgs(int64(3), 0, "", "af15.jpg").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(40)))
	mock.ExpectQuery("INSERT INTO individuals").
		WithArgs("Jack Kirby").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectExec("INSERT INTO cover_individuals").
		WithArgs(int64(40), int64(11), "ARTIST").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	mock.ExpectCommit()

	tx, err := store.Begin(context.Background())
	require.NoError(t, err)
	issueID, err := tx.UpsertIssue(context.Background(), draft)
	require.NoError(t, err)
	require.Equal(t, int64(3), issueID)
	require.NoError(t, tx.Commit(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertIssueRollsBackOnFailure(t *testing.T) {
	store, mock := newMockStore(t)

	draft := &comic.IssueDraft{
		Number: "1",
		Series: comic.SeriesRef{Title: "X", Volume: 1, Publisher: comic.PublisherRef{Name: "Marvel"}},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO publishers").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrTxClosed)
	mock.ExpectRollback()

	tx, err := store.Begin(context.Background())
	require.NoError(t, err)
	_, err = tx.UpsertIssue(context.Background(), draft)
	require.Error(t, err)
	require.NoError(t, tx.Rollback(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewStoreRequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), Config{}, nil)
	require.Error(t, err)
}
