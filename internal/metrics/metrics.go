// Package metrics exposes Prometheus collectors for the migration service.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesFetchedTotal     prometheus.Counter
	pagesCachedTotal      prometheus.Counter
	pagesNotFoundTotal    prometheus.Counter
	issuesCommittedTotal  prometheus.Counter
	issuesRolledBackTotal prometheus.Counter
	mismatchesTotal       prometheus.Counter
	fetchDurationSeconds  prometheus.Histogram

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call repeatedly.
func Init() {
	once.Do(func() {
		pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "migrator_pages_fetched_total",
			Help: "Total number of wiki pages fetched from the source site.",
		})
		pagesCachedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "migrator_pages_cached_total",
			Help: "Total number of page requests served from the in-process cache.",
		})
		pagesNotFoundTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "migrator_pages_not_found_total",
			Help: "Total number of pages or infoboxes that did not exist.",
		})
		issuesCommittedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "migrator_issues_committed_total",
			Help: "Total number of issues committed to the catalog.",
		})
		issuesRolledBackTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "migrator_issues_rolled_back_total",
			Help: "Total number of issues rolled back after an error.",
		})
		mismatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "migrator_story_mismatches_total",
			Help: "Total number of issues aborted on story-count mismatch.",
		})
		fetchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "migrator_fetch_duration_seconds",
			Help:    "Latency of source site fetches.",
			Buckets: prometheus.DefBuckets,
		})
	})
}

// IncPageFetched counts one source site fetch.
func IncPageFetched() {
	if pagesFetchedTotal != nil {
		pagesFetchedTotal.Inc()
	}
}

// IncPageCached counts one cache-served page request.
func IncPageCached() {
	if pagesCachedTotal != nil {
		pagesCachedTotal.Inc()
	}
}

// IncPageNotFound counts one missing page or infobox.
func IncPageNotFound() {
	if pagesNotFoundTotal != nil {
		pagesNotFoundTotal.Inc()
	}
}

// IncIssueCommitted counts one committed issue.
func IncIssueCommitted() {
	if issuesCommittedTotal != nil {
		issuesCommittedTotal.Inc()
	}
}

// IncIssueRolledBack counts one rolled-back issue.
func IncIssueRolledBack() {
	if issuesRolledBackTotal != nil {
		issuesRolledBackTotal.Inc()
	}
}

// IncMismatch counts one mismatch abort.
func IncMismatch() {
	if mismatchesTotal != nil {
		mismatchesTotal.Inc()
	}
}

// ObserveFetchDuration records one fetch latency.
func ObserveFetchDuration(d time.Duration) {
	if fetchDurationSeconds != nil {
		fetchDurationSeconds.Observe(d.Seconds())
	}
}
