package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/glizzus/opus-bridge/internal/opus"
	"github.com/glizzus/opus-bridge/internal/pcm"
)

// DefaultChunkSize is how many raw bytes the downlink asks for per read.
const DefaultChunkSize = 4096

// BlockEncoder is the codec session used by the downlink.
type BlockEncoder interface {
	Encode(block []byte) ([]byte, error)
}

type downlinkState int

const (
	stateRunning downlinkState = iota
	stateDraining
	stateStopped
)

// DownlinkPipeline encodes an unframed PCM stream into compressed frames.
type DownlinkPipeline struct {
	format    pcm.Format
	encoder   BlockEncoder
	tap       func(packet []byte)
	chunkSize int
}

// NewDownlink returns a downlink bound to format. The encoder must have been
// created for the same format and is owned by the pipeline from now on.
func NewDownlink(format pcm.Format, encoder BlockEncoder) *DownlinkPipeline {
	return &DownlinkPipeline{
		format:    format,
		encoder:   encoder,
		chunkSize: DefaultChunkSize,
	}
}

// WithTap registers fn to observe every compressed output frame.
func (d *DownlinkPipeline) WithTap(fn func(packet []byte)) *DownlinkPipeline {
	d.tap = fn
	return d
}

// WithChunkSize overrides the read size. Values below one are ignored.
func (d *DownlinkPipeline) WithChunkSize(n int) *DownlinkPipeline {
	if n > 0 {
		d.chunkSize = n
	}
	return d
}

// Run reads src until EOF, emitting one frame per full block and one final
// frame for a zero-padded partial tail. Encode, read and write faults are
// returned; reaching EOF is not an error.
func (d *DownlinkPipeline) Run(src io.Reader, dst *opus.FrameWriter) (Stats, error) {
	stats := Stats{Direction: Downlink}
	acc := NewAccumulator(d.format.BlockBytes())
	chunk := make([]byte, d.chunkSize)

	state := stateRunning
	for state != stateStopped {
		switch state {
		case stateRunning:
			n, err := src.Read(chunk)
			if n > 0 {
				stats.Reads++
				stats.BytesIn += int64(n)
				acc.Write(chunk[:n])
				for {
					block, ok := acc.Next()
					if !ok {
						break
					}
					if err := d.emit(block, dst, &stats); err != nil {
						return stats, err
					}
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					return stats, fmt.Errorf("failed to read pcm: %w", err)
				}
				state = stateDraining
			}

		case stateDraining:
			if block, ok := acc.Flush(); ok {
				stats.PaddedFrames++
				if err := d.emit(block, dst, &stats); err != nil {
					return stats, err
				}
			}
			stats.End = opus.EndClean
			state = stateStopped
		}
	}
	return stats, nil
}

func (d *DownlinkPipeline) emit(block []byte, dst *opus.FrameWriter, stats *Stats) error {
	packet, err := d.encoder.Encode(block)
	if err != nil {
		return fmt.Errorf("failed to encode block %d: %w", stats.FramesOut+stats.EmptyEncodes, err)
	}
	if len(packet) == 0 {
		stats.EmptyEncodes++
		slog.Debug("encoder produced no packet, skipping frame", slog.Int("block", stats.FramesOut+stats.EmptyEncodes))
		return nil
	}

	n, err := dst.WriteFrame(packet)
	if err != nil {
		return fmt.Errorf("failed to write frame %d: %w", stats.FramesOut, err)
	}
	stats.FramesOut++
	stats.BytesOut += int64(n)
	if d.tap != nil {
		d.tap(packet)
	}
	return nil
}
