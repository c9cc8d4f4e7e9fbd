package report

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisReporter appends every session to a redis stream so other services can
// follow bridge activity.
type RedisReporter struct {
	client *redis.Client
	stream string
}

func NewRedisReporter(client *redis.Client, stream string) *RedisReporter {
	return &RedisReporter{client: client, stream: stream}
}

func (r *RedisReporter) Report(ctx context.Context, session Session) error {
	err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]any{
			"runID":          session.RunID,
			"direction":      string(session.Stats.Direction),
			"sampleRate":     session.SampleRate,
			"outcome":        session.Outcome,
			"endReason":      session.Stats.End.String(),
			"framesIn":       session.Stats.FramesIn,
			"framesOut":      session.Stats.FramesOut,
			"decodeFailures": session.Stats.DecodeFailures,
			"paddedFrames":   session.Stats.PaddedFrames,
			"archiveKey":     session.ArchiveKey,
			"startedAt":      session.StartedAt.Format(time.RFC3339Nano),
			"endedAt":        session.EndedAt.Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish session %s to %s: %w", session.RunID, r.stream, err)
	}
	return nil
}

var _ Reporter = (*RedisReporter)(nil)
