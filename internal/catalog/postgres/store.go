// Package postgres provides the pgx-backed catalog store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/comicdex/catalog-migrator/internal/catalog"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// pgxPool is the pool subset the store uses, satisfied by *pgxpool.Pool
// and by pgxmock in tests.
type pgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Store implements catalog.Store on Postgres.
type Store struct {
	pool pgxPool
	log  *zap.Logger
}

// NewStore connects a pool using the provided config.
func NewStore(ctx context.Context, cfg Config, log *zap.Logger) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewStoreWithPool(pool, log)
}

// NewStoreWithPool constructs a store from an existing pool (primarily for
// testing).
func NewStoreWithPool(pool pgxPool, log *zap.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{pool: pool, log: log}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

const findIssueSQL = `
SELECT i.id
FROM issues i
JOIN series s ON s.id = i.series_id
JOIN publishers p ON p.id = s.publisher_id
WHERE s.title = $1 AND s.volume = $2
  AND p.name = $3 AND p.original = $4
  AND i.number = $5 AND i.format = $6 AND i.variant = $7`

// FindIssue looks an issue up by its full natural key.
func (s *Store) FindIssue(ctx context.Context, key catalog.IssueKey) (*catalog.IssueRecord, error) {
	var id int64
	err := s.pool.QueryRow(ctx, findIssueSQL,
		key.SeriesTitle, key.SeriesVolume,
		key.PublisherName, key.PublisherOriginal,
		key.Number, key.Format, key.Variant,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find issue: %w", err)
	}
	return s.loadRecord(ctx, id, key)
}

const findOriginalSQL = `
SELECT i.id
FROM issues i
JOIN series s ON s.id = i.series_id
WHERE s.title = $1 AND s.volume = $2 AND i.number = $3
ORDER BY i.id
LIMIT 1`

// FindOriginal looks an issue up by the series coordinates a reprint
// reference carries.
func (s *Store) FindOriginal(ctx context.Context, seriesTitle string, volume int, number string) (*catalog.IssueRecord, error) {
	var id int64
	err := s.pool.QueryRow(ctx, findOriginalSQL, seriesTitle, volume, number).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find original issue: %w", err)
	}
	key := catalog.IssueKey{SeriesTitle: seriesTitle, SeriesVolume: volume, Number: number}
	return s.loadRecord(ctx, id, key)
}

const loadStoriesSQL = `
SELECT st.id, st.title,
       (SELECT COUNT(*) FROM stories r WHERE r.original_id = st.id) AS reprints
FROM stories st
WHERE st.issue_id = $1
ORDER BY st.number`

func (s *Store) loadRecord(ctx context.Context, id int64, key catalog.IssueKey) (*catalog.IssueRecord, error) {
	rows, err := s.pool.Query(ctx, loadStoriesSQL, id)
	if err != nil {
		return nil, fmt.Errorf("load stories: %w", err)
	}
	defer rows.Close()

	record := &catalog.IssueRecord{ID: id, Key: key}
	for rows.Next() {
		var story catalog.StoryRecord
		if err := rows.Scan(&story.ID, &story.Title, &story.Reprints); err != nil {
			return nil, fmt.Errorf("scan story: %w", err)
		}
		record.Stories = append(record.Stories, story)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stories: %w", err)
	}
	return record, nil
}

// Begin opens the per-issue transaction.
func (s *Store) Begin(ctx context.Context) (catalog.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &storeTx{tx: tx}, nil
}
