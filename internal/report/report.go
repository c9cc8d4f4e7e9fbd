// Package report publishes a summary of every finished bridge run.
package report

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/glizzus/opus-bridge/internal/pipeline"
	"github.com/glizzus/opus-bridge/internal/repository"
)

// Run outcomes.
const (
	OutcomeCompleted    = "completed"
	OutcomeConsumerGone = "consumer_gone"
	OutcomeFailed       = "failed"
)

// Session describes one finished run.
type Session struct {
	RunID      string
	SampleRate int
	Outcome    string
	ArchiveKey string
	StartedAt  time.Time
	EndedAt    time.Time
	Stats      pipeline.Stats
}

// Record converts the session to its database row.
func (s Session) Record() repository.SessionRecord {
	return repository.SessionRecord{
		RunID:          s.RunID,
		Direction:      string(s.Stats.Direction),
		SampleRate:     s.SampleRate,
		Outcome:        s.Outcome,
		EndReason:      s.Stats.End.String(),
		FramesIn:       s.Stats.FramesIn,
		FramesOut:      s.Stats.FramesOut,
		BytesIn:        s.Stats.BytesIn,
		BytesOut:       s.Stats.BytesOut,
		DecodeFailures: s.Stats.DecodeFailures,
		PaddedFrames:   s.Stats.PaddedFrames,
		ArchiveKey:     s.ArchiveKey,
		StartedAt:      s.StartedAt,
		EndedAt:        s.EndedAt,
	}
}

type Reporter interface {
	Report(ctx context.Context, session Session) error
}

// LogReporter writes the session summary to the default logger. A run whose
// consumer hung up is logged at debug level only, so that case stays silent
// at the default level.
type LogReporter struct{}

func (LogReporter) Report(ctx context.Context, session Session) error {
	attrs := append([]any{
		slog.String("runID", session.RunID),
		slog.String("outcome", session.Outcome),
		slog.Int("sampleRate", session.SampleRate),
		slog.Duration("elapsed", session.EndedAt.Sub(session.StartedAt)),
	}, session.Stats.LogAttrs()...)
	if session.ArchiveKey != "" {
		attrs = append(attrs, slog.String("archiveKey", session.ArchiveKey))
	}
	level := slog.LevelInfo
	if session.Outcome == OutcomeConsumerGone {
		level = slog.LevelDebug
	}
	slog.Log(ctx, level, "bridge run finished", attrs...)
	return nil
}

// PostgresReporter stores the session as a row.
type PostgresReporter struct {
	repo repository.SessionPersister
}

func NewPostgresReporter(repo repository.SessionPersister) *PostgresReporter {
	return &PostgresReporter{repo: repo}
}

func (r *PostgresReporter) Report(ctx context.Context, session Session) error {
	return r.repo.Save(ctx, session.Record())
}

// Fanout reports to every reporter and joins their errors.
type Fanout []Reporter

func (f Fanout) Report(ctx context.Context, session Session) error {
	var errs []error
	for _, r := range f {
		if err := r.Report(ctx, session); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ Reporter = LogReporter{}
	_ Reporter = (*PostgresReporter)(nil)
	_ Reporter = Fanout(nil)
)
