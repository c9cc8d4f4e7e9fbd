package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sethvargo/go-envconfig"

	"github.com/glizzus/opus-bridge/internal/pcm"
)

// Uplink input formats.
const (
	InputFramed = "framed"
	InputOgg    = "ogg"
)

type BridgeConfig struct {
	UplinkSampleRate int    `env:"BRIDGE_UPLINK_SAMPLE_RATE, default=16000"`
	UplinkInput      string `env:"BRIDGE_UPLINK_INPUT, default=framed"`
	DownlinkChunk    int    `env:"BRIDGE_DOWNLINK_CHUNK_BYTES, default=4096"`
	LogLevel         string `env:"BRIDGE_LOG_LEVEL, default=info"`
}

func NewBridgeConfigFromEnv() (*BridgeConfig, error) {
	return NewBridgeConfig(context.Background(), envconfig.OsLookuper())
}

// NewBridgeConfig resolves the bridge configuration from lookuper.
func NewBridgeConfig(ctx context.Context, lookuper envconfig.Lookuper) (*BridgeConfig, error) {
	cfg, err := process[BridgeConfig](ctx, lookuper)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *BridgeConfig) Validate() error {
	if !pcm.IsSupportedRate(c.UplinkSampleRate) {
		return fmt.Errorf("BRIDGE_UPLINK_SAMPLE_RATE %d is not an opus sample rate", c.UplinkSampleRate)
	}
	switch c.UplinkInput {
	case InputFramed, InputOgg:
	default:
		return fmt.Errorf("BRIDGE_UPLINK_INPUT must be %q or %q, got %q", InputFramed, InputOgg, c.UplinkInput)
	}
	if c.DownlinkChunk <= 0 {
		return fmt.Errorf("BRIDGE_DOWNLINK_CHUNK_BYTES must be positive, got %d", c.DownlinkChunk)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// UplinkFormat is the fixed block format of the uplink.
func (c *BridgeConfig) UplinkFormat() (pcm.Format, error) {
	return pcm.NewFormat(c.UplinkSampleRate)
}

// DownlinkFormat is the fixed block format of the downlink. Its sample rate is
// not configurable.
func (c *BridgeConfig) DownlinkFormat() (pcm.Format, error) {
	return pcm.NewFormat(pcm.DownlinkSampleRate)
}

// ParseLogLevel maps a level name to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", level)
}
