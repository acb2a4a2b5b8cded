package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/comicdex/catalog-migrator/internal/api"
	catalogpg "github.com/comicdex/catalog-migrator/internal/catalog/postgres"
	"github.com/comicdex/catalog-migrator/internal/comic"
	"github.com/comicdex/catalog-migrator/internal/config"
	collyfetcher "github.com/comicdex/catalog-migrator/internal/fetcher/colly"
	"github.com/comicdex/catalog-migrator/internal/infobox"
	"github.com/comicdex/catalog-migrator/internal/logging"
	"github.com/comicdex/catalog-migrator/internal/metrics"
	"github.com/comicdex/catalog-migrator/internal/migrate"
	"github.com/comicdex/catalog-migrator/internal/progress"
	"github.com/comicdex/catalog-migrator/internal/reconcile"
)

// newMigrateCmd creates the 'migrate' subcommand, which runs one batch of
// issues through the crawl/extract/reconcile pipeline.
func newMigrateCmd() *cobra.Command {
	var (
		seriesTitle string
		volume      int
		numbersSpec string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Runs a migration batch for one series",
		Long: `Crawls the given issues of a series from the source wiki and merges
them into the catalog. Issues are processed strictly sequentially; a
single issue's failure is rolled back and logged, and the batch continues.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context(), seriesTitle, volume, numbersSpec)
		},
	}

	cmd.Flags().StringVar(&seriesTitle, "series", "", "series title (required)")
	cmd.Flags().IntVar(&volume, "volume", 1, "series volume")
	cmd.Flags().StringVar(&numbersSpec, "numbers", "", "issue numbers, e.g. \"1-5,7,12.AU\" (required)")
	_ = cmd.MarkFlagRequired("series")
	_ = cmd.MarkFlagRequired("numbers")
	return cmd
}

func runMigrate(parent context.Context, seriesTitle string, volume int, numbersSpec string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	logs, err := logging.NewCategories(cfg.Logging.Dir, cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init category logs: %w", err)
	}
	defer logs.Sync()

	metrics.Init()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := catalogpg.NewStore(ctx, catalogpg.Config{
		DSN:             cfg.DB.DSN,
		MaxConns:        cfg.DB.MaxConns,
		MinConns:        cfg.DB.MinConns,
		MaxConnLifetime: cfg.ConnLifetime(),
	}, logger)
	if err != nil {
		return fmt.Errorf("init catalog store: %w", err)
	}
	defer store.Close()

	fetch := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Source.UserAgent,
		Timeout:   cfg.Timeout(),
		BatchSize: cfg.Source.BatchSize,
		Cooldown:  cfg.Cooldown(),
		RPS:       cfg.Source.RPS,
	}, logs.Crawler)

	extractor := infobox.NewExtractor(logs.Crawler)
	engine := reconcile.NewEngine(store, fetch, extractor, cfg.Source.BaseURL, logs.Migration)

	publisher := comic.PublisherRef{
		Name:     cfg.Migration.PublisherName,
		Original: cfg.Migration.PublisherOriginal,
	}
	series := comic.SeriesRef{Title: seriesTitle, Volume: volume, Publisher: publisher}
	shells := migrate.Shells(series, parseNumbers(numbersSpec))
	if len(shells) == 0 {
		return fmt.Errorf("no issue numbers given")
	}

	reporter := progress.NewReporter(len(shells), progress.NewLogSink(logger, os.Stderr))

	server := api.NewServer(reporter.Snapshot, logger)
	go func() {
		if err := server.Start(cfg.Server.Port); err != nil {
			logger.Warn("ops server stopped", zap.Error(err))
		}
	}()

	runner := migrate.NewRunner(engine, logs, publisher, cfg.Migration.DefaultFormat)
	summary := runner.Run(ctx, shells, reporter)

	logger.Info("batch summary",
		zap.Int("total", summary.Total),
		zap.Int("committed", summary.Committed),
		zap.Int("mismatched", summary.Mismatched),
		zap.Int("not_found", summary.NotFound),
		zap.Int("failed", summary.Failed))
	return nil
}

// parseNumbers expands a spec like "1-5,7,12.AU" into issue numbers.
// Tokens that are not purely numeric ranges pass through verbatim, since
// the catalog carries numbers like "1.AU".
func parseNumbers(spec string) []string {
	var numbers []string
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if lo, hi, ok := parseRange(token); ok {
			for n := lo; n <= hi; n++ {
				numbers = append(numbers, strconv.Itoa(n))
			}
			continue
		}
		numbers = append(numbers, token)
	}
	return numbers
}

func parseRange(token string) (lo, hi int, ok bool) {
	dash := strings.Index(token, "-")
	if dash <= 0 {
		return 0, 0, false
	}
	lo, err1 := strconv.Atoi(strings.TrimSpace(token[:dash]))
	hi, err2 := strconv.Atoi(strings.TrimSpace(token[dash+1:]))
	if err1 != nil || err2 != nil || hi < lo {
		return 0, 0, false
	}
	return lo, hi, true
}
