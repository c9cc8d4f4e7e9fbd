package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/glizzus/opus-bridge/internal/config"
	"github.com/glizzus/opus-bridge/internal/datalayer"
	"github.com/glizzus/opus-bridge/internal/report"
	"github.com/glizzus/opus-bridge/internal/repository"
)

// Sinks are the optional destinations a finished run is sent to.
type Sinks struct {
	Archive         datalayer.BlobStorage
	ArchiveMaxBytes int
	Reporter        report.Reporter

	closers []func()
}

// Close releases every connection opened by SinksFromEnv.
func (s *Sinks) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// SinksFromEnv wires every sink whose configuration is present. A sink that
// is configured but unreachable is logged and left out; the audio path never
// depends on it. Connecting to each sink is bounded by
// BRIDGE_SINK_SETUP_TIMEOUT.
func SinksFromEnv(ctx context.Context) (*Sinks, error) {
	setupCfg, err := config.NewSinksConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load sinks config: %w", err)
	}
	connect := func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(ctx, setupCfg.SetupTimeout)
	}

	sinks := &Sinks{}
	reporters := report.Fanout{report.LogReporter{}}

	minioCfg, err := config.NewMinioConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load minio config: %w", err)
	}
	if minioCfg.Enabled() {
		connectCtx, cancel := connect()
		storage, err := openArchive(connectCtx, minioCfg)
		cancel()
		if err != nil {
			slog.Warn("archive disabled", slog.String("endpoint", minioCfg.Endpoint), slog.Any("error", err))
		} else {
			sinks.Archive = storage
			sinks.ArchiveMaxBytes = minioCfg.MaxBytes
		}
	}

	pgCfg, err := config.NewPostgresConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load postgres config: %w", err)
	}
	if pgCfg.Enabled() {
		connectCtx, cancel := connect()
		pool, err := datalayer.NewPostgresPool(connectCtx, pgCfg)
		cancel()
		if err == nil {
			err = datalayer.MigratePostgres(pool)
			if err != nil {
				pool.Close()
			}
		}
		if err != nil {
			slog.Warn("session records disabled", slog.String("host", pgCfg.Host), slog.Any("error", err))
		} else {
			sinks.closers = append(sinks.closers, pool.Close)
			reporters = append(reporters, report.NewPostgresReporter(repository.NewPostgresSessionRepository(pool)))
		}
	}

	redisCfg, err := config.NewRedisConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load redis config: %w", err)
	}
	if redisCfg.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
		})
		connectCtx, cancel := connect()
		err := rdb.Ping(connectCtx).Err()
		cancel()
		if err != nil {
			slog.Warn("session events disabled", slog.String("addr", redisCfg.Addr), slog.Any("error", err))
			_ = rdb.Close()
		} else {
			sinks.closers = append(sinks.closers, func() { _ = rdb.Close() })
			reporters = append(reporters, report.NewRedisReporter(rdb, redisCfg.Stream))
		}
	}

	sinks.Reporter = reporters
	return sinks, nil
}

func openArchive(ctx context.Context, cfg *config.MinioConfig) (*datalayer.MinioStorage, error) {
	storage, err := datalayer.NewMinioStorage(cfg)
	if err != nil {
		return nil, err
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return storage, nil
}
