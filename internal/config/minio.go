package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// MinioConfig configures the stream archive. Archiving is off unless an
// endpoint is set.
type MinioConfig struct {
	Endpoint string `env:"MINIO_ENDPOINT"`
	Username string `env:"MINIO_USERNAME"`
	Password string `env:"MINIO_PASSWORD"`
	Bucket   string `env:"MINIO_BUCKET, default=opus-bridge"`
	Secure   bool   `env:"MINIO_SECURE, default=false"`
	// MaxBytes caps one archived run. Frames past the cap are dropped.
	MaxBytes int    `env:"MINIO_ARCHIVE_MAX_BYTES, default=8388608"`
}

func NewMinioConfigFromEnv() (*MinioConfig, error) {
	return NewMinioConfig(context.Background(), envconfig.OsLookuper())
}

func NewMinioConfig(ctx context.Context, lookuper envconfig.Lookuper) (*MinioConfig, error) {
	cfg, err := process[MinioConfig](ctx, lookuper)
	if err != nil {
		return nil, err
	}
	if cfg.Enabled() && cfg.MaxBytes <= 0 {
		return nil, fmt.Errorf("MINIO_ARCHIVE_MAX_BYTES must be positive, got %d", cfg.MaxBytes)
	}
	return cfg, nil
}

func (c *MinioConfig) Enabled() bool {
	return c.Endpoint != ""
}
