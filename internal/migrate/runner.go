// Package migrate implements the sequential batch runner: one issue is
// fully committed or rolled back before the next begins, so catalog writes
// stay deterministic and independently auditable.
package migrate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/comicdex/catalog-migrator/internal/comic"
	"github.com/comicdex/catalog-migrator/internal/fetcher"
	"github.com/comicdex/catalog-migrator/internal/logging"
	"github.com/comicdex/catalog-migrator/internal/metrics"
	"github.com/comicdex/catalog-migrator/internal/progress"
	"github.com/comicdex/catalog-migrator/internal/reconcile"
)

// Engine is the per-issue crawl/reconcile pipeline the runner drives.
type Engine interface {
	CrawlIssue(ctx context.Context, shell comic.IssueShell) (*comic.IssueDraft, error)
	Reconcile(ctx context.Context, draft *comic.IssueDraft) (reconcile.State, error)
}

// Summary is the batch outcome tally. NotFound pages are the durable
// triage counter; nothing in a batch is retried automatically.
type Summary struct {
	Total      int
	Committed  int
	Mismatched int
	NotFound   int
	Failed     int
}

// Runner executes migration batches strictly sequentially.
type Runner struct {
	engine    Engine
	logs      *logging.Categories
	publisher comic.PublisherRef
	format    string
}

// NewRunner constructs a Runner. The publisher and format defaults are
// applied to every extracted draft before reconciliation.
func NewRunner(engine Engine, logs *logging.Categories, publisher comic.PublisherRef, format string) *Runner {
	return &Runner{
		engine:    engine,
		logs:      logs,
		publisher: publisher,
		format:    format,
	}
}

// Shells expands a series plus issue numbers into issue shells.
func Shells(series comic.SeriesRef, numbers []string) []comic.IssueShell {
	shells := make([]comic.IssueShell, 0, len(numbers))
	for _, n := range numbers {
		shells = append(shells, comic.IssueShell{Series: series, Number: n})
	}
	return shells
}

// Run processes every shell in order. A single issue's failure rolls that
// issue back and the loop advances; only context cancellation stops the
// batch early.
func (r *Runner) Run(ctx context.Context, shells []comic.IssueShell, reporter *progress.Reporter) Summary {
	summary := Summary{Total: len(shells)}
	reporter.Start()
	defer reporter.Finish()

	for _, shell := range shells {
		if ctx.Err() != nil {
			r.logs.Other.Warn("batch canceled", zap.Error(ctx.Err()))
			break
		}
		r.processIssue(ctx, shell, reporter, &summary)
	}
	return summary
}

func (r *Runner) processIssue(ctx context.Context, shell comic.IssueShell, reporter *progress.Reporter, summary *Summary) {
	name := issueName(shell)

	draft, err := r.engine.CrawlIssue(ctx, shell)
	if err != nil {
		r.recordCrawlFailure(name, err, reporter, summary)
		return
	}

	r.applyDefaults(draft)

	state, err := r.engine.Reconcile(ctx, draft)
	switch state {
	case reconcile.StateCommitted:
		summary.Committed++
		metrics.IncIssueCommitted()
		r.logs.Migration.Info("issue committed", zap.String("issue", name))
		reporter.IssueDone(name)

	case reconcile.StateMismatchAborted:
		summary.Mismatched++
		metrics.IncMismatch()
		var mismatch *reconcile.MismatchError
		if errors.As(err, &mismatch) {
			r.logs.Migration.Warn("story count mismatch, issue skipped",
				zap.String("issue", name),
				zap.String("diff", "\n"+mismatch.Diff()))
		}
		reporter.IssueError(name, "story count mismatch")

	default:
		summary.Failed++
		metrics.IncIssueRolledBack()
		var netErr *fetcher.NetworkError
		if errors.As(err, &netErr) {
			r.logs.Crawler.Error("issue rolled back on network failure",
				zap.String("issue", name), zap.Error(err))
		} else {
			r.logs.Other.Error("issue rolled back",
				zap.String("issue", name), zap.Error(err))
		}
		reporter.IssueError(name, "rolled back")
	}
}

func (r *Runner) recordCrawlFailure(name string, err error, reporter *progress.Reporter, summary *Summary) {
	switch {
	case errors.Is(err, fetcher.ErrNotFound):
		summary.NotFound++
		metrics.IncPageNotFound()
		r.logs.Crawler.Warn("page or infobox not found", zap.String("issue", name))
		reporter.IssueError(name, "not found")
	default:
		summary.Failed++
		var netErr *fetcher.NetworkError
		if errors.As(err, &netErr) {
			r.logs.Crawler.Error("fetch failed",
				zap.String("issue", name), zap.Error(err))
		} else {
			r.logs.Other.Error("extraction failed",
				zap.String("issue", name), zap.Error(err))
		}
		reporter.IssueError(name, err.Error())
	}
}

// applyDefaults fills catalog context extraction cannot know: the
// publisher behind the source site and the batch's issue format.
func (r *Runner) applyDefaults(draft *comic.IssueDraft) {
	if draft.Series.Publisher.Name == "" {
		draft.Series.Publisher = r.publisher
	}
	if draft.Format == "" {
		draft.Format = r.format
	}
	for _, story := range draft.Stories {
		if story.Original != nil && story.Original.Series.Publisher.Name == "" {
			story.Original.Series.Publisher = r.publisher
		}
	}
}

func issueName(shell comic.IssueShell) string {
	return fmt.Sprintf("%s Vol %d #%s", shell.Series.Title, shell.Series.Volume, shell.Number)
}
