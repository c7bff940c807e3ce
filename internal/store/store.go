// Package store keeps a history of extraction jobs in PostgreSQL.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/forPelevin/subextract/internal/types"
)

// Store records finished jobs and their entries.
type Store struct {
	mu   sync.Mutex
	conn *pgx.Conn
}

// JobRow is one line of job history.
type JobRow struct {
	ID              string
	Video           string
	Status          types.Status
	FramesProcessed int
	TotalFrames     int
	EntryCount      int
	Model           string
	Error           string
	StartedAt       time.Time
	FinishedAt      time.Time
}

// New connects and creates the schema when missing.
func New(ctx context.Context, connString string) (*Store, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE TABLE IF NOT EXISTS subextract_jobs (
			id TEXT PRIMARY KEY,
			video TEXT NOT NULL,
			status TEXT NOT NULL,
			frames_processed INT NOT NULL,
			total_frames INT NOT NULL,
			entry_count INT NOT NULL,
			sample_interval_ms INT NOT NULL,
			min_duration_ms INT NOT NULL,
			model TEXT NOT NULL DEFAULT '',
			endpoint TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			output_paths TEXT[] NOT NULL DEFAULT '{}',
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS subextract_entries (
			job_id TEXT NOT NULL REFERENCES subextract_jobs(id) ON DELETE CASCADE,
			seq INT NOT NULL,
			start_ms BIGINT NOT NULL,
			end_ms BIGINT NOT NULL,
			text TEXT NOT NULL,
			PRIMARY KEY (job_id, seq)
		);
		CREATE INDEX IF NOT EXISTS subextract_jobs_started_at_idx ON subextract_jobs (started_at DESC);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

func (s *Store) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.Close(ctx)
}

// RecordJob stores the report and its entries. Recording the same job twice
// replaces the earlier rows.
func (s *Store) RecordJob(ctx context.Context, r types.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var errText string
	if r.Err != nil {
		errText = r.Err.Error()
	}
	outputs := r.OutputPaths
	if outputs == nil {
		outputs = []string{}
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO subextract_jobs (
			id, video, status, frames_processed, total_frames, entry_count,
			sample_interval_ms, min_duration_ms, model, endpoint, error,
			output_paths, started_at, finished_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			frames_processed = EXCLUDED.frames_processed,
			total_frames = EXCLUDED.total_frames,
			entry_count = EXCLUDED.entry_count,
			error = EXCLUDED.error,
			output_paths = EXCLUDED.output_paths,
			finished_at = EXCLUDED.finished_at`,
		r.JobID, r.Video, string(r.Status), r.FramesProcessed, r.TotalFrames, len(r.Entries),
		r.SampleIntervalMs, r.MinDurationMs, r.Model, r.Endpoint, errText,
		outputs, r.StartedAt, r.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM subextract_entries WHERE job_id = $1", r.JobID); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	if len(r.Entries) > 0 {
		rows := make([][]any, len(r.Entries))
		for i, e := range r.Entries {
			rows[i] = []any{r.JobID, i + 1, e.StartMs, e.EndMs, e.Text}
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"subextract_entries"},
			[]string{"job_id", "seq", "start_ms", "end_ms", "text"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("copy entries: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// ListJobs returns the most recent jobs first.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]JobRow, error) {
	if limit <= 0 {
		limit = 20
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.conn.Query(ctx, `
		SELECT id, video, status, frames_processed, total_frames, entry_count,
			model, error, started_at, finished_at
		FROM subextract_jobs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []JobRow
	for rows.Next() {
		var j JobRow
		var status string
		if err := rows.Scan(&j.ID, &j.Video, &status, &j.FramesProcessed, &j.TotalFrames,
			&j.EntryCount, &j.Model, &j.Error, &j.StartedAt, &j.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		j.Status = types.Status(status)
		out = append(out, j)
	}
	return out, rows.Err()
}

// Entries returns the stored entries of a job in order.
func (s *Store) Entries(ctx context.Context, jobID string) ([]types.SubtitleEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.conn.Query(ctx,
		"SELECT start_ms, end_ms, text FROM subextract_entries WHERE job_id = $1 ORDER BY seq", jobID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var out []types.SubtitleEntry
	for rows.Next() {
		var e types.SubtitleEntry
		if err := rows.Scan(&e.StartMs, &e.EndMs, &e.Text); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
