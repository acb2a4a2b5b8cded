// Package reconcile matches freshly extracted issue drafts against the
// existing catalog and merges them transactionally, one issue at a time.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/comicdex/catalog-migrator/internal/catalog"
	"github.com/comicdex/catalog-migrator/internal/comic"
	"github.com/comicdex/catalog-migrator/internal/fetcher"
	"github.com/comicdex/catalog-migrator/internal/infobox"
)

// State names the reconciliation outcome for one issue.
type State string

// Reconciliation states.
const (
	StateLookup          State = "LOOKUP"
	StateResolveStories  State = "RESOLVE_STORIES"
	StateInsert          State = "INSERT"
	StateCommitted       State = "COMMITTED"
	StateMismatchAborted State = "MISMATCH_ABORTED"
	StateRolledBack      State = "ROLLED_BACK"
)

// ErrReprintCycle reports a cyclic reprint chain. The source data should
// never contain one, but an author mistake must not hang the batch.
var ErrReprintCycle = errors.New("reconcile: cyclic reprint chain")

// Engine reconciles one issue draft at a time against the catalog.
type Engine struct {
	store     catalog.Store
	client    fetcher.Client
	extractor *infobox.Extractor
	baseURL   string
	log       *zap.Logger
}

// NewEngine constructs an Engine.
func NewEngine(store catalog.Store, client fetcher.Client, extractor *infobox.Extractor, baseURL string, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:     store,
		client:    client,
		extractor: extractor,
		baseURL:   baseURL,
		log:       log,
	}
}

// CrawlIssue fetches and extracts the page for one issue shell. A missing
// page or a page without an infobox both surface as fetcher.ErrNotFound.
func (e *Engine) CrawlIssue(ctx context.Context, shell comic.IssueShell) (*comic.IssueDraft, error) {
	url := fetcher.PageURL(e.baseURL, shell)
	result, err := e.client.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	draft, err := e.extractor.ExtractPage(shell, result.Body)
	if errors.Is(err, infobox.ErrNoInfobox) {
		return nil, fmt.Errorf("%s: %w", url, fetcher.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// Reconcile runs the per-issue state machine: lookup, story resolution,
// transactional insert. The returned state is terminal; on MismatchAborted
// and RolledBack no catalog write survives.
func (e *Engine) Reconcile(ctx context.Context, draft *comic.IssueDraft) (State, error) {
	return e.reconcile(ctx, draft, make(map[string]bool))
}

func (e *Engine) reconcile(ctx context.Context, draft *comic.IssueDraft, resolving map[string]bool) (State, error) {
	key := catalog.KeyFor(draft)

	if _, err := e.store.FindIssue(ctx, key); err == nil {
		e.log.Debug("issue already migrated",
			zap.String("series", key.SeriesTitle),
			zap.String("number", key.Number))
		return StateCommitted, nil
	} else if !errors.Is(err, catalog.ErrNotFound) {
		return StateRolledBack, err
	}

	if err := e.resolveStories(ctx, draft, resolving); err != nil {
		var mismatch *MismatchError
		if errors.As(err, &mismatch) {
			return StateMismatchAborted, err
		}
		return StateRolledBack, err
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return StateRolledBack, err
	}
	issueID, err := tx.UpsertIssue(ctx, draft)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			e.log.Warn("rollback failed", zap.Error(rbErr))
		}
		return StateRolledBack, err
	}
	if err := tx.Commit(ctx); err != nil {
		return StateRolledBack, err
	}

	e.log.Info("issue committed",
		zap.Int64("issue_id", issueID),
		zap.String("series", key.SeriesTitle),
		zap.String("number", key.Number))
	return StateCommitted, nil
}

// resolveStories wires every reprint story to its already-migrated
// original, crawling and migrating the original first when the catalog
// does not have it yet. Stories without a reprint reference have nothing
// to reconcile and stay blank placeholders.
func (e *Engine) resolveStories(ctx context.Context, draft *comic.IssueDraft, resolving map[string]bool) error {
	for _, story := range draft.Stories {
		ref := story.Reprint
		if ref == nil || ref.SeriesTitle == "" {
			continue
		}

		original, err := e.CrawlIssue(ctx, comic.IssueShell{
			Series: comic.SeriesRef{
				Title:     ref.SeriesTitle,
				Volume:    ref.Volume,
				Publisher: draft.Series.Publisher,
			},
			Number: ref.Number,
		})
		if err != nil {
			return fmt.Errorf("resolve reprint source %s Vol %d #%s: %w",
				ref.SeriesTitle, ref.Volume, ref.Number, err)
		}
		story.Original = original

		legacy, err := e.store.FindOriginal(ctx, ref.SeriesTitle, ref.Volume, ref.Number)
		if errors.Is(err, catalog.ErrNotFound) {
			chain := chainKey(ref)
			if resolving[chain] {
				return fmt.Errorf("%w via %s Vol %d #%s",
					ErrReprintCycle, ref.SeriesTitle, ref.Volume, ref.Number)
			}
			resolving[chain] = true

			if _, err := e.reconcile(ctx, original, resolving); err != nil {
				return fmt.Errorf("migrate reprint source: %w", err)
			}
			legacy, err = e.store.FindOriginal(ctx, ref.SeriesTitle, ref.Volume, ref.Number)
			if err != nil {
				return fmt.Errorf("reprint source missing after migration: %w", err)
			}
		} else if err != nil {
			return err
		}

		if len(original.Stories) != len(legacy.Stories) {
			return newMismatch(ref, original, legacy)
		}
		story.OriginalStoryID = matchLegacyStory(legacy, ref)
	}
	return nil
}

func chainKey(ref *comic.ReprintRef) string {
	return strings.ToLower(fmt.Sprintf("%s|%d|%s", ref.SeriesTitle, ref.Volume, ref.Number))
}

// matchLegacyStory picks the original's story the local one reproduces: by
// title when the reference named one, otherwise the original's first story.
func matchLegacyStory(legacy *catalog.IssueRecord, ref *comic.ReprintRef) int64 {
	if ref.StoryTitle != "" {
		for _, st := range legacy.Stories {
			if strings.EqualFold(st.Title, ref.StoryTitle) {
				return st.ID
			}
		}
	}
	if len(legacy.Stories) > 0 {
		return legacy.Stories[0].ID
	}
	return 0
}

func newMismatch(ref *comic.ReprintRef, original *comic.IssueDraft, legacy *catalog.IssueRecord) *MismatchError {
	err := &MismatchError{
		SeriesTitle: ref.SeriesTitle,
		Volume:      ref.Volume,
		Number:      ref.Number,
	}
	for _, st := range original.Stories {
		reprints := 0
		if st.IsReprint() {
			reprints = 1
		}
		err.Crawled = append(err.Crawled, StoryDiff{Title: st.Title, Reprints: reprints})
	}
	for _, st := range legacy.Stories {
		err.Legacy = append(err.Legacy, StoryDiff{Title: st.Title, Reprints: st.Reprints})
	}
	return err
}
