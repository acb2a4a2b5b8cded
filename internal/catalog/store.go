// Package catalog defines the persistence contract for the comic catalog.
// Implementations are transactional and keyed by the natural issue key.
package catalog

import (
	"context"
	"errors"

	"github.com/comicdex/catalog-migrator/internal/comic"
)

// ErrNotFound reports that no catalog row matches the given key.
var ErrNotFound = errors.New("catalog: not found")

// IssueKey is the natural key an issue is looked up by.
type IssueKey struct {
	SeriesTitle       string
	SeriesVolume      int
	PublisherName     string
	PublisherOriginal bool
	Number            string
	Format            string
	Variant           string
}

// KeyFor derives the lookup key for a draft.
func KeyFor(draft *comic.IssueDraft) IssueKey {
	return IssueKey{
		SeriesTitle:       draft.Series.Title,
		SeriesVolume:      draft.Series.Volume,
		PublisherName:     draft.Series.Publisher.Name,
		PublisherOriginal: draft.Series.Publisher.Original,
		Number:            draft.Number,
		Format:            draft.Format,
		Variant:           draft.Variant,
	}
}

// StoryRecord summarizes one persisted story for reconciliation: its row
// id, title, and how many stories in the catalog reprint it.
type StoryRecord struct {
	ID       int64
	Title    string
	Reprints int
}

// IssueRecord is the persisted canonical issue, reduced to what
// reconciliation needs.
type IssueRecord struct {
	ID      int64
	Key     IssueKey
	Stories []StoryRecord
}

// Store is the catalog persistence contract. One transaction is scoped to
// exactly one issue; it is never shared or interleaved.
type Store interface {
	// FindIssue looks an issue up by its natural key. Absent rows yield
	// ErrNotFound.
	FindIssue(ctx context.Context, key IssueKey) (*IssueRecord, error)

	// FindOriginal looks an issue up by series coordinates alone, the form
	// reprint references carry.
	FindOriginal(ctx context.Context, seriesTitle string, volume int, number string) (*IssueRecord, error)

	// Begin opens the per-issue transaction.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is the per-issue transaction: upsert the whole issue subtree, then
// commit or roll back.
type Tx interface {
	// UpsertIssue persists the draft: publisher and series by name-based
	// upsert, then the issue, stories, individuals, appearances, arcs, and
	// covers. Returns the issue row id.
	UpsertIssue(ctx context.Context, draft *comic.IssueDraft) (int64, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
