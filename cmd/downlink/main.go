package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/glizzus/opus-bridge/internal/bridge"
	"github.com/glizzus/opus-bridge/internal/codec"
	"github.com/glizzus/opus-bridge/internal/config"
)

var noSinks = flag.Bool("no-sinks", false, "Do not archive or report the run, even if configured")

func runDownlink(ctx context.Context) error {
	if err := config.LoadEnv(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg, err := config.NewBridgeConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load bridge config: %w", err)
	}
	if err := bridge.SetupLogger(os.Stderr, cfg.LogLevel); err != nil {
		return err
	}

	format, err := cfg.DownlinkFormat()
	if err != nil {
		return err
	}
	encoder, err := codec.NewEncoder(format)
	if err != nil {
		return err
	}

	runner := &bridge.Runner{}
	if !*noSinks {
		sinks, err := bridge.SinksFromEnv(ctx)
		if err != nil {
			return err
		}
		defer sinks.Close()
		runner.Sinks = sinks
	}

	bridge.CatchSIGPIPE()
	return runner.RunDownlink(ctx, format, encoder, cfg.DownlinkChunk, os.Stdin, os.Stdout)
}

func main() {
	flag.Parse()

	if err := runDownlink(context.Background()); err != nil {
		slog.Error("downlink failed", slog.Any("error", err))
		os.Exit(1)
	}
}
