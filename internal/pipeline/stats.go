package pipeline

import (
	"log/slog"

	"github.com/glizzus/opus-bridge/internal/opus"
)

// Direction names the two pipelines.
type Direction string

const (
	Uplink   Direction = "uplink"
	Downlink Direction = "downlink"
)

// Stats summarises one pipeline run.
type Stats struct {
	Direction Direction

	// FramesIn counts input frames. The downlink input is unframed, so it
	// stays zero there and Reads counts its read calls instead.
	FramesIn  int
	FramesOut int
	BytesIn   int64
	BytesOut  int64

	// Reads counts downlink reads that returned data.
	Reads int

	// DecodeFailures counts uplink packets replaced by silence.
	DecodeFailures int
	// PaddedFrames is 1 when the downlink flushed a zero-padded tail.
	PaddedFrames int
	// EmptyEncodes counts downlink blocks that produced no packet.
	EmptyEncodes int
	// PeakRMS is the loudest decoded uplink block.
	PeakRMS float64

	End opus.EndReason
}

// LogAttrs returns the stats as slog attributes.
func (s Stats) LogAttrs() []any {
	return []any{
		slog.String("direction", string(s.Direction)),
		slog.Int("framesIn", s.FramesIn),
		slog.Int("framesOut", s.FramesOut),
		slog.Int("reads", s.Reads),
		slog.Int64("bytesIn", s.BytesIn),
		slog.Int64("bytesOut", s.BytesOut),
		slog.Int("decodeFailures", s.DecodeFailures),
		slog.Int("paddedFrames", s.PaddedFrames),
		slog.Int("emptyEncodes", s.EmptyEncodes),
		slog.Float64("peakRMS", s.PeakRMS),
		slog.String("end", s.End.String()),
	}
}
