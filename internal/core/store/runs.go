package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/querylens/querylens/internal/core"
	"github.com/querylens/querylens/internal/core/aggregate"
)

// ErrRunNotFound is returned when a run id has no stored history.
var ErrRunNotFound = errors.New("run not found")

// SaveRun persists a completed run and its rows in one transaction.
func (s *Store) SaveRun(ctx context.Context, result *core.RunResult) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not open")
	}
	if result == nil || result.RunID == "" {
		return errors.New("run result with an id is required")
	}

	seeds, err := json.Marshal(result.Seeds)
	if err != nil {
		return fmt.Errorf("marshal seeds: %w", err)
	}
	options, err := json.Marshal(result.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, completed_at, seed_count, query_count, row_count, seeds, options, rate_limit_remaining)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID,
		result.StartedAt.UTC().Format(time.RFC3339Nano),
		result.CompletedAt.UTC().Format(time.RFC3339Nano),
		len(result.Seeds),
		result.QueryCount,
		len(result.Rows),
		string(seeds),
		string(options),
		result.RateLimitRemaining,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_rows (run_id, ordinal, seed, query_sent, position, suggestion, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare row insert: %w", err)
	}
	defer stmt.Close() // nolint:errcheck // statement closed with the transaction

	for i, row := range result.Rows {
		if _, err := stmt.ExecContext(ctx, result.RunID, i, row.Seed, row.Query, row.Position, row.Suggestion, row.Error); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]core.RunMeta, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not open")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, created_at, seed_count, query_count, row_count
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close() // nolint:errcheck // read-only cursor

	metas := make([]core.RunMeta, 0, limit)
	for rows.Next() {
		var (
			meta      core.RunMeta
			createdAt string
		)
		if err := rows.Scan(&meta.RunID, &createdAt, &meta.SeedCount, &meta.QueryCount, &meta.RowCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if meta.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse run timestamp: %w", err)
		}
		metas = append(metas, meta)
	}

	return metas, rows.Err()
}

// GetRun loads one run with its full row table. The summary is recomputed
// from the stored rows.
func (s *Store) GetRun(ctx context.Context, runID string) (*core.RunResult, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not open")
	}

	var (
		result     core.RunResult
		createdAt  string
		completed  string
		seedsJSON  string
		optionsRaw string
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, created_at, completed_at, query_count, seeds, options, rate_limit_remaining
		 FROM runs WHERE id = ?`, runID).
		Scan(&result.RunID, &createdAt, &completed, &result.QueryCount, &seedsJSON, &optionsRaw, &result.RateLimitRemaining)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}

	if result.StartedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse run timestamp: %w", err)
	}
	if result.CompletedAt, err = time.Parse(time.RFC3339Nano, completed); err != nil {
		return nil, fmt.Errorf("parse run timestamp: %w", err)
	}
	if err := json.Unmarshal([]byte(seedsJSON), &result.Seeds); err != nil {
		return nil, fmt.Errorf("unmarshal seeds: %w", err)
	}
	if err := json.Unmarshal([]byte(optionsRaw), &result.Options); err != nil {
		return nil, fmt.Errorf("unmarshal options: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT seed, query_sent, position, suggestion, error
		 FROM run_rows WHERE run_id = ? ORDER BY ordinal`, runID)
	if err != nil {
		return nil, fmt.Errorf("load run rows: %w", err)
	}
	defer rows.Close() // nolint:errcheck // read-only cursor

	for rows.Next() {
		var row core.Row
		if err := rows.Scan(&row.Seed, &row.Query, &row.Position, &row.Suggestion, &row.Error); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result.Summary = aggregate.Summarize(result.Rows)
	return &result, nil
}
