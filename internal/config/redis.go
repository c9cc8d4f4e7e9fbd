package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// RedisConfig configures session events. Publishing is off unless an address
// is set.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	Stream   string `env:"REDIS_STREAM, default=bridge_sessions"`
}

func NewRedisConfigFromEnv() (*RedisConfig, error) {
	return NewRedisConfig(context.Background(), envconfig.OsLookuper())
}

func NewRedisConfig(ctx context.Context, lookuper envconfig.Lookuper) (*RedisConfig, error) {
	return process[RedisConfig](ctx, lookuper)
}

func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}
