// Package runlog records ingestion run history in PostgreSQL. The log is an
// audit trail only: dedup decisions always come from the vector index, never
// from here, so a lost or disabled run log cannot corrupt ingestion.
package runlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/retailops/asset-helpdesk/pkg/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS ingest_runs (
	id              BIGSERIAL PRIMARY KEY,
	started_at      TIMESTAMPTZ NOT NULL,
	duration_ms     BIGINT NOT NULL,
	files_processed INT NOT NULL,
	chunks_ingested INT NOT NULL,
	new_files       JSONB NOT NULL DEFAULT '[]',
	skipped_files   JSONB NOT NULL DEFAULT '[]'
)`

// Run is one recorded ingestion run.
type Run struct {
	ID             int64     `json:"id"`
	StartedAt      time.Time `json:"started_at"`
	DurationMs     int64     `json:"duration_ms"`
	FilesProcessed int       `json:"files_processed"`
	ChunksIngested int       `json:"chunks_ingested"`
	NewFiles       []string  `json:"new_files"`
	SkippedFiles   []string  `json:"skipped_files"`
}

// Store persists ingestion runs.
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewStore creates the store and its table if missing.
func NewStore(ctx context.Context, db *postgres.Client) (*Store, error) {
	if _, err := db.DB.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("creating ingest_runs table: %w", err)
	}
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "runlog"),
	}, nil
}

// Record inserts one run.
func (s *Store) Record(ctx context.Context, run Run) error {
	newFiles, err := json.Marshal(run.NewFiles)
	if err != nil {
		return fmt.Errorf("marshaling new files: %w", err)
	}
	skippedFiles, err := json.Marshal(run.SkippedFiles)
	if err != nil {
		return fmt.Errorf("marshaling skipped files: %w", err)
	}
	_, err = s.db.DB.ExecContext(ctx,
		`INSERT INTO ingest_runs (started_at, duration_ms, files_processed, chunks_ingested, new_files, skipped_files)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		run.StartedAt, run.DurationMs, run.FilesProcessed, run.ChunksIngested, newFiles, skippedFiles,
	)
	if err != nil {
		return fmt.Errorf("inserting ingest run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT id, started_at, duration_ms, files_processed, chunks_ingested, new_files, skipped_files
		 FROM ingest_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying ingest runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var newFiles, skippedFiles []byte
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.DurationMs,
			&run.FilesProcessed, &run.ChunksIngested, &newFiles, &skippedFiles); err != nil {
			return nil, fmt.Errorf("scanning ingest run: %w", err)
		}
		if err := json.Unmarshal(newFiles, &run.NewFiles); err != nil {
			s.logger.Warn("bad new_files payload", "run_id", run.ID, "error", err)
		}
		if err := json.Unmarshal(skippedFiles, &run.SkippedFiles); err != nil {
			s.logger.Warn("bad skipped_files payload", "run_id", run.ID, "error", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
