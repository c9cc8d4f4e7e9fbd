package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/glizzus/opus-bridge/internal/codec"
	"github.com/glizzus/opus-bridge/internal/opus"
	"github.com/glizzus/opus-bridge/internal/pcm"
)

// PacketDecoder is the codec session used by the uplink.
type PacketDecoder interface {
	Decode(packet []byte) codec.Outcome
}

// UplinkPipeline decodes compressed frames into PCM blocks.
type UplinkPipeline struct {
	format  pcm.Format
	decoder PacketDecoder
	tap     func(packet []byte)
}

// NewUplink returns an uplink bound to format. The decoder must have been
// created for the same format and is owned by the pipeline from now on.
func NewUplink(format pcm.Format, decoder PacketDecoder) *UplinkPipeline {
	return &UplinkPipeline{format: format, decoder: decoder}
}

// WithTap registers fn to observe every compressed input frame.
func (u *UplinkPipeline) WithTap(fn func(packet []byte)) *UplinkPipeline {
	u.tap = fn
	return u
}

// Run reads frames from src until it ends, writing exactly one block of
// format.BlockBytes() bytes to dst per frame read. It returns nil when src
// ends; only read and write faults are returned.
func (u *UplinkPipeline) Run(src opus.FrameSource, dst *opus.FrameWriter) (Stats, error) {
	stats := Stats{Direction: Uplink}

	for {
		packet, err := src.ReadFrame()
		if err != nil {
			if reason, ok := opus.EndReasonOf(err); ok {
				stats.End = reason
				return stats, nil
			}
			return stats, fmt.Errorf("failed to read frame %d: %w", stats.FramesIn, err)
		}
		stats.FramesIn++
		stats.BytesIn += int64(len(packet))
		if u.tap != nil {
			u.tap(packet)
		}

		block := u.decode(packet, &stats)

		n, err := dst.WriteFrame(block)
		if err != nil {
			return stats, fmt.Errorf("failed to write block %d: %w", stats.FramesOut, err)
		}
		stats.FramesOut++
		stats.BytesOut += int64(n)
		if level := pcm.RMS(block); level > stats.PeakRMS {
			stats.PeakRMS = level
		}
	}
}

// decode always returns exactly one block.
func (u *UplinkPipeline) decode(packet []byte, stats *Stats) []byte {
	out := u.decoder.Decode(packet)
	if out.Failed() {
		stats.DecodeFailures++
		slog.Debug(
			"substituting silence for undecodable frame",
			slog.Int("frame", stats.FramesIn),
			slog.Int("bytes", len(packet)),
			slog.Any("error", out.Err),
		)
		return u.format.Silence()
	}
	return pcm.Fit(out.Block, u.format.BlockBytes())
}
