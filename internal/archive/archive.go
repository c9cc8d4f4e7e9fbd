// Package archive captures the compressed side of a bridge run and uploads it
// to blob storage once the stream is over.
//
// The capture uses the bridge's own wire format, so an archived object can be
// fed straight back into the uplink for replay.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/glizzus/opus-bridge/internal/datalayer"
	"github.com/glizzus/opus-bridge/internal/opus"
)

const contentType = "application/x-opus-frames"

// Recorder buffers frames in memory up to a byte limit. Frames that would
// exceed the limit are dropped and the recording is marked truncated.
// Not safe for concurrent use.
type Recorder struct {
	buf       bytes.Buffer
	frames    *opus.FrameWriter
	maxBytes  int
	count     int
	truncated bool
}

// NewRecorder returns a recorder that keeps at most maxBytes of framed data.
func NewRecorder(maxBytes int) *Recorder {
	r := &Recorder{maxBytes: maxBytes}
	r.frames = opus.NewFrameWriter(&r.buf)
	return r
}

// Record appends packet as one frame. It has the signature of a pipeline tap.
func (r *Recorder) Record(packet []byte) {
	if r.truncated {
		return
	}
	if r.buf.Len()+2+len(packet) > r.maxBytes {
		r.truncated = true
		slog.Warn(
			"archive limit reached, dropping remaining frames",
			slog.Int("maxBytes", r.maxBytes),
			slog.Int("frames", r.count),
		)
		return
	}
	// Writes to a bytes.Buffer cannot fail.
	_, _ = r.frames.WriteFrame(packet)
	r.count++
}

// Frames is the number of frames captured.
func (r *Recorder) Frames() int {
	return r.count
}

// Truncated reports whether frames were dropped.
func (r *Recorder) Truncated() bool {
	return r.truncated
}

// Bytes returns the captured framed stream.
func (r *Recorder) Bytes() []byte {
	return r.buf.Bytes()
}

// Key is the object key a run is archived under.
func Key(direction, runID string) string {
	return direction + "/" + runID + ".frames"
}

// Upload stores the capture under key. An empty capture is not uploaded and
// Upload returns false.
func (r *Recorder) Upload(ctx context.Context, storage datalayer.BlobStorage, key string) (bool, error) {
	if r.count == 0 {
		return false, nil
	}
	err := storage.Put(ctx, key, bytes.NewReader(r.buf.Bytes()), datalayer.PutOptions{
		Size:        int64(r.buf.Len()),
		ContentType: contentType,
		Metadata: map[string]string{
			"frames":    strconv.Itoa(r.count),
			"truncated": strconv.FormatBool(r.truncated),
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to upload archive %s: %w", key, err)
	}
	return true, nil
}
