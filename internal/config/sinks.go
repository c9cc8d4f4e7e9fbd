package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// SinksConfig bounds how long the optional sinks may take to connect before
// a run starts.
type SinksConfig struct {
	SetupTimeout time.Duration `env:"BRIDGE_SINK_SETUP_TIMEOUT, default=5s"`
}

func NewSinksConfigFromEnv() (*SinksConfig, error) {
	return NewSinksConfig(context.Background(), envconfig.OsLookuper())
}

func NewSinksConfig(ctx context.Context, lookuper envconfig.Lookuper) (*SinksConfig, error) {
	cfg, err := process[SinksConfig](ctx, lookuper)
	if err != nil {
		return nil, err
	}
	if cfg.SetupTimeout <= 0 {
		return nil, fmt.Errorf("BRIDGE_SINK_SETUP_TIMEOUT must be positive, got %s", cfg.SetupTimeout)
	}
	return cfg, nil
}
