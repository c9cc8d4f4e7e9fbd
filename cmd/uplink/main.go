package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/glizzus/opus-bridge/internal/bridge"
	"github.com/glizzus/opus-bridge/internal/codec"
	"github.com/glizzus/opus-bridge/internal/config"
	"github.com/glizzus/opus-bridge/internal/opus"
)

var noSinks = flag.Bool("no-sinks", false, "Do not archive or report the run, even if configured")

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [sample-rate]\n\n", os.Args[0])
	fmt.Fprintln(flag.CommandLine.Output(), "Decodes length-prefixed Opus frames on stdin to length-prefixed PCM on stdout.")
	flag.PrintDefaults()
}

func runUplink(ctx context.Context) error {
	if err := config.LoadEnv(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg, err := config.NewBridgeConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load bridge config: %w", err)
	}
	if flag.NArg() > 0 {
		rate, err := strconv.Atoi(flag.Arg(0))
		if err != nil {
			return fmt.Errorf("invalid sample rate %q: %w", flag.Arg(0), err)
		}
		cfg.UplinkSampleRate = rate
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if err := bridge.SetupLogger(os.Stderr, cfg.LogLevel); err != nil {
		return err
	}

	format, err := cfg.UplinkFormat()
	if err != nil {
		return err
	}
	decoder, err := codec.NewDecoder(format)
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

	var src opus.FrameSource = opus.NewFrameReader(os.Stdin)
	if cfg.UplinkInput == config.InputOgg {
		src = opus.NewOggReader(os.Stdin)
	}

	bridge.CatchSIGPIPE()
	return runner.RunUplink(ctx, format, decoder, src, os.Stdout)
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if err := runUplink(context.Background()); err != nil {
		slog.Error("uplink failed", slog.Any("error", err))
		os.Exit(1)
	}
}
