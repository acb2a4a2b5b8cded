// Package collyfetcher implements fetcher.Client using gocolly, with an
// in-memory page cache and batch-then-cooldown request pacing.
package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/comicdex/catalog-migrator/internal/clock"
	"github.com/comicdex/catalog-migrator/internal/clock/system"
	"github.com/comicdex/catalog-migrator/internal/fetcher"
	"github.com/comicdex/catalog-migrator/internal/metrics"
)

// Config controls collector and pacing behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration

	// BatchSize requests are issued back to back, then the fetcher sleeps
	// for Cooldown before resuming. RPS additionally spaces individual
	// requests. All three have conservative defaults.
	BatchSize int
	Cooldown  time.Duration
	RPS       float64
}

const (
	defaultBatchSize = 25
	defaultCooldown  = 30 * time.Second
	defaultRPS       = 2.0
	defaultTimeout   = 15 * time.Second
)

// Fetcher fetches wiki pages through a Colly collector. All access is
// strictly sequential per the migration scheduling model, so the cache and
// pacing counters are plain fields with no locking.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
	limiter       *rate.Limiter
	clock         clock.Clock
	log           *zap.Logger

	cache         map[string]cached
	sinceCooldown int
	lastFetch     time.Time
}

type cached struct {
	result fetcher.Result
	err    error
}

// New builds a Fetcher.
func New(cfg Config, log *zap.Logger) *Fetcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = defaultCooldown
	}
	if cfg.RPS <= 0 {
		cfg.RPS = defaultRPS
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := colly.NewCollector(colly.Async(false))
	c.WithTransport(newHTTPTransport())

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
		limiter:       rate.NewLimiter(rate.Limit(cfg.RPS), 1),
		clock:         system.New(),
		log:           log,
		cache:         make(map[string]cached),
	}
}

// LastFetch reports when the most recent non-cached request completed.
func (f *Fetcher) LastFetch() time.Time {
	return f.lastFetch
}

// WithClock swaps the pacing clock, primarily for tests.
func (f *Fetcher) WithClock(c clock.Clock) *Fetcher {
	if c != nil {
		f.clock = c
	}
	return f
}

// Fetch executes a single HTTP GET, serving repeats from cache. Missing
// pages return fetcher.ErrNotFound; transport failures return a
// *fetcher.NetworkError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (fetcher.Result, error) {
	if entry, ok := f.cache[url]; ok {
		metrics.IncPageCached()
		result := entry.result
		result.FromCache = true
		return result, entry.err
	}

	if err := f.pace(ctx); err != nil {
		return fetcher.Result{}, err
	}

	start := time.Now()
	result, err := f.fetchOnce(ctx, url)
	metrics.IncPageFetched()
	metrics.ObserveFetchDuration(time.Since(start))
	f.sinceCooldown++
	f.lastFetch = f.clock.Now()

	// NotFound is cached alongside successes: a page that 404ed this run
	// will 404 again, and repeat lookups should not burn request budget.
	if err == nil || errors.Is(err, fetcher.ErrNotFound) {
		f.cache[url] = cached{result: result, err: err}
	}
	return result, err
}

// pace waits for the per-request spacing token and, after every full batch
// of requests, for the configured cooldown.
func (f *Fetcher) pace(ctx context.Context) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if f.sinceCooldown < f.cfg.BatchSize {
		return nil
	}
	f.log.Debug("request batch exhausted, cooling down",
		zap.Int("batch_size", f.cfg.BatchSize),
		zap.Duration("cooldown", f.cfg.Cooldown))

	timer := time.NewTimer(f.cfg.Cooldown)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("cooldown canceled: %w", ctx.Err())
	case <-timer.C:
	}
	f.sinceCooldown = 0
	return nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (fetcher.Result, error) {
	var (
		result    fetcher.Result
		statusErr int
		fetchErr  error
	)

	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(f.cfg.Timeout)

	collector.OnResponse(func(r *colly.Response) {
		final := r.Request.URL.String()
		result = fetcher.Result{
			StatusCode: r.StatusCode,
			Redirected: final != url,
			FinalURL:   final,
			Body:       append([]byte(nil), r.Body...),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			statusErr = r.StatusCode
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fetcher.Result{}, &fetcher.NetworkError{URL: url, Err: ctx.Err()}
	case visitErr := <-done:
		if statusErr == http.StatusNotFound {
			return fetcher.Result{StatusCode: statusErr, FinalURL: url}, fetcher.ErrNotFound
		}
		if fetchErr != nil {
			return fetcher.Result{}, &fetcher.NetworkError{URL: url, Err: fetchErr}
		}
		if visitErr != nil {
			return fetcher.Result{}, &fetcher.NetworkError{URL: url, Err: visitErr}
		}
		return result, nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
