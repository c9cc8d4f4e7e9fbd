package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRecord is one finished bridge run.
type SessionRecord struct {
	RunID          string
	Direction      string
	SampleRate     int
	Outcome        string
	EndReason      string
	FramesIn       int
	FramesOut      int
	BytesIn        int64
	BytesOut       int64
	DecodeFailures int
	PaddedFrames   int
	ArchiveKey     string
	StartedAt      time.Time
	EndedAt        time.Time
}

type SessionPersister interface {
	Save(ctx context.Context, record SessionRecord) error
}

type PostgresSessionRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSessionRepository(db *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func SessionToRowParams(record SessionRecord) []any {
	return []any{
		record.RunID,
		record.Direction,
		record.SampleRate,
		record.Outcome,
		record.EndReason,
		record.FramesIn,
		record.FramesOut,
		record.BytesIn,
		record.BytesOut,
		record.DecodeFailures,
		record.PaddedFrames,
		record.ArchiveKey,
		record.StartedAt,
		record.EndedAt,
	}
}

func (r *PostgresSessionRepository) Save(ctx context.Context, record SessionRecord) error {
	const sessionQuery = `
	INSERT INTO bridge_session (
		run_id, direction, sample_rate, outcome, end_reason,
		frames_in, frames_out, bytes_in, bytes_out,
		decode_failures, padded_frames, archive_key, started_at, ended_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (run_id) DO UPDATE SET
		outcome = EXCLUDED.outcome,
		end_reason = EXCLUDED.end_reason,
		frames_in = EXCLUDED.frames_in,
		frames_out = EXCLUDED.frames_out,
		bytes_in = EXCLUDED.bytes_in,
		bytes_out = EXCLUDED.bytes_out,
		decode_failures = EXCLUDED.decode_failures,
		padded_frames = EXCLUDED.padded_frames,
		archive_key = EXCLUDED.archive_key,
		ended_at = EXCLUDED.ended_at
	`

	if _, err := r.db.Exec(ctx, sessionQuery, SessionToRowParams(record)...); err != nil {
		return fmt.Errorf("failed to execute session query: %w", err)
	}
	return nil
}

// Get loads the record for runID.
func (r *PostgresSessionRepository) Get(ctx context.Context, runID string) (SessionRecord, error) {
	const query = `
	SELECT run_id, direction, sample_rate, outcome, end_reason,
		frames_in, frames_out, bytes_in, bytes_out,
		decode_failures, padded_frames, archive_key, started_at, ended_at
	FROM bridge_session
	WHERE run_id = $1
	`

	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("failed to query session: %w", err)
	}
	record, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[SessionRecord])
	if err != nil {
		return SessionRecord{}, fmt.Errorf("failed to scan session %s: %w", runID, err)
	}
	return record, nil
}

var _ SessionPersister = (*PostgresSessionRepository)(nil)
