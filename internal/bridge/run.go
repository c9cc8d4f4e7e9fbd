package bridge

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/glizzus/opus-bridge/internal/archive"
	"github.com/glizzus/opus-bridge/internal/generator"
	"github.com/glizzus/opus-bridge/internal/opus"
	"github.com/glizzus/opus-bridge/internal/pcm"
	"github.com/glizzus/opus-bridge/internal/pipeline"
	"github.com/glizzus/opus-bridge/internal/report"
)

// finishTimeout bounds archive upload and reporting after the stream ends.
const finishTimeout = 10 * time.Second

// Runner executes one pipeline run per call.
type Runner struct {
	// Sinks may be nil, in which case runs are only logged.
	Sinks *Sinks
	// RunIDs defaults to a RunIDGenerator for the run's direction.
	RunIDs generator.Generator[string]
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// RunUplink decodes src into dst. It returns nil when the stream ends or the
// consumer hangs up, and the fault otherwise.
func (r *Runner) RunUplink(ctx context.Context, format pcm.Format, dec pipeline.PacketDecoder, src opus.FrameSource, dst io.Writer) error {
	p := pipeline.NewUplink(format, dec)
	return r.run(ctx, pipeline.Uplink, format, func(tap func([]byte)) (pipeline.Stats, error) {
		if tap != nil {
			p.WithTap(tap)
		}
		return p.Run(src, opus.NewFrameWriter(dst))
	})
}

// RunDownlink encodes src into dst. It returns nil when the stream ends or
// the consumer hangs up, and the fault otherwise.
func (r *Runner) RunDownlink(ctx context.Context, format pcm.Format, enc pipeline.BlockEncoder, chunkSize int, src io.Reader, dst io.Writer) error {
	p := pipeline.NewDownlink(format, enc).WithChunkSize(chunkSize)
	return r.run(ctx, pipeline.Downlink, format, func(tap func([]byte)) (pipeline.Stats, error) {
		if tap != nil {
			p.WithTap(tap)
		}
		return p.Run(src, opus.NewFrameWriter(dst))
	})
}

func (r *Runner) run(ctx context.Context, direction pipeline.Direction, format pcm.Format, execute func(tap func([]byte)) (pipeline.Stats, error)) error {
	runID, err := r.nextRunID(direction)
	if err != nil {
		return err
	}

	var recorder *archive.Recorder
	var tap func([]byte)
	if r.Sinks != nil && r.Sinks.Archive != nil {
		recorder = archive.NewRecorder(r.Sinks.ArchiveMaxBytes)
		tap = recorder.Record
	}

	slog.Debug(
		"bridge run starting",
		slog.String("runID", runID),
		slog.String("direction", string(direction)),
		slog.String("format", format.String()),
		slog.Int("blockBytes", format.BlockBytes()),
	)

	session := report.Session{
		RunID:      runID,
		SampleRate: format.SampleRate,
		StartedAt:  r.now(),
	}
	stats, runErr := execute(tap)
	session.EndedAt = r.now()
	session.Stats = stats
	session.Stats.Direction = direction

	switch {
	case runErr == nil:
		session.Outcome = report.OutcomeCompleted
	case pipeline.IsConsumerGone(runErr):
		session.Outcome = report.OutcomeConsumerGone
		runErr = nil
	default:
		session.Outcome = report.OutcomeFailed
	}

	r.finish(ctx, &session, recorder)
	return runErr
}

// finish archives and reports the run. Failures here are logged only.
func (r *Runner) finish(ctx context.Context, session *report.Session, recorder *archive.Recorder) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()

	if recorder != nil {
		key := archive.Key(string(session.Stats.Direction), session.RunID)
		uploaded, err := recorder.Upload(ctx, r.Sinks.Archive, key)
		if err != nil {
			slog.Warn("failed to archive run", slog.String("runID", session.RunID), slog.Any("error", err))
		} else if uploaded {
			session.ArchiveKey = key
		}
	}

	var reporter report.Reporter = report.LogReporter{}
	if r.Sinks != nil && r.Sinks.Reporter != nil {
		reporter = r.Sinks.Reporter
	}
	if err := reporter.Report(ctx, *session); err != nil {
		slog.Warn("failed to report run", slog.String("runID", session.RunID), slog.Any("error", err))
	}
}

func (r *Runner) nextRunID(direction pipeline.Direction) (string, error) {
	if r.RunIDs != nil {
		return r.RunIDs.Next()
	}
	return generator.RunIDGenerator{Direction: string(direction)}.Next()
}

func (r *Runner) now() time.Time {
	if r.Clock != nil {
		return r.Clock()
	}
	return time.Now()
}
