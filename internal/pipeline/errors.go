package pipeline

import (
	"errors"
	"io"
	"syscall"
)

// IsConsumerGone reports whether err means the reader on the other end of the
// output hung up. That is an expected way for a live consumer to leave, so
// callers should exit quietly.
func IsConsumerGone(err error) bool {
	return errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrClosedPipe)
}
