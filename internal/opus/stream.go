package opus

import (
	"fmt"
)

// CopyStats summarises a CopyFrames run.
type CopyStats struct {
	Frames int
	Bytes  int
	Min    int
	Max    int
	End    EndReason
}

// CopyFrames writes every frame from src to dst until src ends.
// Returns nil on any end of stream.
func CopyFrames(dst *FrameWriter, src FrameSource) (CopyStats, error) {
	var stats CopyStats
	for {
		frame, err := src.ReadFrame()
		if err != nil {
			if reason, ok := EndReasonOf(err); ok {
				stats.End = reason
				return stats, nil
			}
			return stats, err
		}

		if dst != nil {
			if _, err := dst.WriteFrame(frame); err != nil {
				return stats, fmt.Errorf("failed to write frame: %w", err)
			}
		}
		stats.observe(len(frame))
	}
}

func (s *CopyStats) observe(n int) {
	if s.Frames == 0 || n < s.Min {
		s.Min = n
	}
	if n > s.Max {
		s.Max = n
	}
	s.Frames++
	s.Bytes += n
}
