// Package fetcher defines the page-fetching contract the extractor and
// reconciliation layers depend on. Implementations own caching and
// request pacing.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/comicdex/catalog-migrator/internal/comic"
)

// ErrNotFound reports that the requested page does not exist.
var ErrNotFound = errors.New("fetcher: page not found")

// NetworkError wraps a transport-level failure. It triggers a per-issue
// rollback upstream; the batch continues.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a single page fetch. FromCache lets the
// reconciliation layer short-circuit issues already processed this run.
type Result struct {
	StatusCode int
	Redirected bool
	FinalURL   string
	Body       []byte
	FromCache  bool
}

// Client retrieves page content for a canonical URL.
type Client interface {
	Fetch(ctx context.Context, url string) (Result, error)
}

// PageTitle builds the canonical wiki page title for an issue:
// "<series title>_Vol_<volume>_<number>", URL-escaped.
func PageTitle(series comic.SeriesRef, number string) string {
	title := strings.ReplaceAll(series.Title, " ", "_")
	return url.PathEscape(fmt.Sprintf("%s_Vol_%d_%s", title, series.Volume, number))
}

// PageURL joins the configured base URL with the issue's page title,
// requesting the raw wikitext form.
func PageURL(base string, shell comic.IssueShell) string {
	return strings.TrimRight(base, "/") + "/" + PageTitle(shell.Series, shell.Number) + "?action=raw"
}
