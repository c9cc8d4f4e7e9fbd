package opus

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxPayload is the largest payload a uint16 length header can describe.
const MaxPayload = 0xFFFF

const headerLen = 2

// ErrEndOfStream matches every *EndOfStream returned by a FrameSource.
var ErrEndOfStream = errors.New("opus: end of stream")

// EndReason tells how a stream ended. Callers treat every reason the same;
// the distinction is kept for logging.
type EndReason int

const (
	// EndClean means the source was exhausted on a frame boundary.
	EndClean EndReason = iota
	// EndSentinel means a zero-length frame was received.
	EndSentinel
	// EndTruncated means the source ran out in the middle of a frame.
	EndTruncated
)

func (r EndReason) String() string {
	switch r {
	case EndClean:
		return "clean"
	case EndSentinel:
		return "sentinel"
	case EndTruncated:
		return "truncated"
	default:
		return fmt.Sprintf("EndReason(%d)", int(r))
	}
}

// EndOfStream is returned by ReadFrame when no more frames will follow.
type EndOfStream struct {
	Reason EndReason
}

func (e *EndOfStream) Error() string {
	return "opus: end of stream (" + e.Reason.String() + ")"
}

func (e *EndOfStream) Is(target error) bool {
	return target == ErrEndOfStream
}

var _ error = (*EndOfStream)(nil)

// EndReasonOf extracts the reason from an end-of-stream error. ok is false if
// err is not an end of stream.
func EndReasonOf(err error) (reason EndReason, ok bool) {
	var eos *EndOfStream
	if errors.As(err, &eos) {
		return eos.Reason, true
	}
	return 0, false
}

// FrameSource yields compressed packets one at a time.
type FrameSource interface {
	// ReadFrame returns the next non-empty payload, or an error matching
	// ErrEndOfStream once the stream is over.
	ReadFrame() ([]byte, error)
}

// FrameReader reads length-prefixed frames from an io.Reader.
type FrameReader struct {
	r *bufio.Reader
}

// NewFrameReader returns a new FrameReader that reads from r.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: bufio.NewReader(r)}
}

// ReadFrame reads and returns the next frame's payload.
// Short reads and the zero-length sentinel end the stream; any other read
// failure is returned as is.
func (f *FrameReader) ReadFrame() ([]byte, error) {
	var header [headerLen]byte
	if _, err := io.ReadFull(f.r, header[:]); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			return nil, &EndOfStream{Reason: EndClean}
		case errors.Is(err, io.ErrUnexpectedEOF):
			return nil, &EndOfStream{Reason: EndTruncated}
		}
		return nil, fmt.Errorf("failed to read frame header: %w", err)
	}

	size := binary.LittleEndian.Uint16(header[:])
	if size == 0 {
		return nil, &EndOfStream{Reason: EndSentinel}
	}

	frame := make([]byte, size)
	if _, err := io.ReadFull(f.r, frame); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &EndOfStream{Reason: EndTruncated}
		}
		return nil, fmt.Errorf("failed to read frame payload: %w", err)
	}
	return frame, nil
}

var _ FrameSource = (*FrameReader)(nil)

// FrameWriter writes length-prefixed frames to an io.Writer. Every frame is
// flushed to the underlying writer before WriteFrame returns.
type FrameWriter struct {
	w *bufio.Writer
}

// NewFrameWriter returns a new FrameWriter that writes to w.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: bufio.NewWriter(w)}
}

// WriteFrame writes payload as one frame. Payloads longer than MaxPayload are
// truncated to their first MaxPayload bytes. It returns the number of payload
// bytes written.
func (f *FrameWriter) WriteFrame(payload []byte) (int, error) {
	if len(payload) > MaxPayload {
		payload = payload[:MaxPayload]
	}

	var header [headerLen]byte
	binary.LittleEndian.PutUint16(header[:], uint16(len(payload)))
	if _, err := f.w.Write(header[:]); err != nil {
		return 0, err
	}
	if _, err := f.w.Write(payload); err != nil {
		return 0, err
	}
	if err := f.w.Flush(); err != nil {
		return 0, err
	}
	return len(payload), nil
}

// WriteEnd writes the zero-length end-of-stream sentinel.
func (f *FrameWriter) WriteEnd() error {
	var header [headerLen]byte
	if _, err := f.w.Write(header[:]); err != nil {
		return err
	}
	return f.w.Flush()
}
