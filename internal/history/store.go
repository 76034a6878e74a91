// Package history persists pipeline runs in PostgreSQL.
//
// History is optional. When DATABASE_URL is unset the CLI and server run
// without a recorder and the history command reports that it is disabled.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/langtool/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS publish_runs (
	id          UUID PRIMARY KEY,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	success     BOOLEAN NOT NULL,
	locales     TEXT[] NOT NULL DEFAULT '{}',
	urls        JSONB NOT NULL DEFAULT '{}',
	error       TEXT
);
CREATE INDEX IF NOT EXISTS publish_runs_started_at_idx ON publish_runs (started_at DESC);
`

// DefaultLimit is used by ListRuns when limit is not positive.
const DefaultLimit = 20

const maxLimit = 500

// Store records runs. It implements core.RunRecorder.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to databaseURL and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = 4
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return New(pool), nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the runs table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create history schema: %w", err)
	}
	return nil
}

// RecordRun inserts rec. Recording the same run twice keeps the latest state.
func (s *Store) RecordRun(ctx context.Context, rec core.RunRecord) error {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", rec.ID, err)
	}

	urls, err := encodeURLs(rec.URLs)
	if err != nil {
		return err
	}
	locales := rec.Locales
	if locales == nil {
		locales = []string{}
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO publish_runs (id, started_at, finished_at, success, locales, urls, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			finished_at = EXCLUDED.finished_at,
			success     = EXCLUDED.success,
			locales     = EXCLUDED.locales,
			urls        = EXCLUDED.urls,
			error       = EXCLUDED.error`,
		pgtype.UUID{Bytes: id, Valid: true},
		rec.StartedAt,
		rec.FinishedAt,
		rec.Success,
		locales,
		urls,
		pgtype.Text{String: rec.Error, Valid: rec.Error != ""},
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", rec.ID, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]core.RunRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, started_at, finished_at, success, locales, urls, error
		FROM publish_runs
		ORDER BY started_at DESC
		LIMIT $1`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	records, err := pgx.CollectRows(rows, scanRun)
	if err != nil {
		return nil, fmt.Errorf("scan runs: %w", err)
	}
	return records, nil
}

func scanRun(row pgx.CollectableRow) (core.RunRecord, error) {
	var (
		rec     core.RunRecord
		urls    []byte
		errText pgtype.Text
	)
	if err := row.Scan(&rec.ID, &rec.StartedAt, &rec.FinishedAt, &rec.Success, &rec.Locales, &urls, &errText); err != nil {
		return core.RunRecord{}, err
	}
	if err := json.Unmarshal(urls, &rec.URLs); err != nil {
		return core.RunRecord{}, fmt.Errorf("decode urls of run %s: %w", rec.ID, err)
	}
	rec.Error = errText.String
	return rec, nil
}

func encodeURLs(urls map[string]string) ([]byte, error) {
	if urls == nil {
		urls = map[string]string{}
	}
	data, err := json.Marshal(urls)
	if err != nil {
		return nil, fmt.Errorf("encode urls: %w", err)
	}
	return data, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > maxLimit:
		return maxLimit
	}
	return limit
}
