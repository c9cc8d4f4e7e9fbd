package bridge

import (
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/glizzus/opus-bridge/internal/config"
)

// SetupLogger installs a text logger on w as the default logger. Diagnostics
// never share a stream with frame data.
func SetupLogger(w io.Writer, level string) error {
	lvl, err := config.ParseLogLevel(level)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// CatchSIGPIPE makes writes to a closed stdout fail with EPIPE instead of
// killing the process, so a departing consumer can be handled as a normal end.
func CatchSIGPIPE() {
	signal.Notify(make(chan os.Signal, 1), syscall.SIGPIPE)
}
