package pipeline_test

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"

	"github.com/glizzus/opus-bridge/internal/opus"
	"github.com/glizzus/opus-bridge/internal/pcm"
	"github.com/glizzus/opus-bridge/internal/pipeline"
)

// recordingEncoder keeps a copy of every block and returns a packet holding
// the block index. Blocks listed in empty produce no packet.
type recordingEncoder struct {
	blocks [][]byte
	empty  map[int]bool
	fail   error
}

func (e *recordingEncoder) Encode(block []byte) ([]byte, error) {
	if e.fail != nil {
		return nil, e.fail
	}
	i := len(e.blocks)
	e.blocks = append(e.blocks, bytes.Clone(block))
	if e.empty[i] {
		return nil, nil
	}
	return []byte{0xFC, byte(i)}, nil
}

// ramp returns n bytes counting up from 1 so block boundaries are visible.
func ramp(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i%251 + 1)
	}
	return b
}

func TestDownlinkFrameCounts(t *testing.T) {
	const frameBytes = 2880

	tc := []struct {
		name   string
		input  int
		frames int
		padded int
	}{
		{name: "no input", input: 0, frames: 0, padded: 0},
		{name: "exactly one block", input: frameBytes, frames: 1, padded: 0},
		{name: "exactly three blocks", input: 3 * frameBytes, frames: 3, padded: 0},
		{name: "partial block only", input: 100, frames: 1, padded: 1},
		{name: "two blocks and a tail", input: 2*frameBytes + 1, frames: 3, padded: 1},
		{name: "one byte short of two blocks", input: 2*frameBytes - 1, frames: 2, padded: 1},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			format := mustFormat(t, pcm.DownlinkSampleRate)
			if format.BlockBytes() != frameBytes {
				t.Fatalf("BlockBytes() = %d, want %d", format.BlockBytes(), frameBytes)
			}

			enc := &recordingEncoder{}
			var out bytes.Buffer
			stats, err := pipeline.NewDownlink(format, enc).Run(bytes.NewReader(ramp(tt.input)), opus.NewFrameWriter(&out))
			if err != nil {
				t.Fatalf("Run returned error: %v", err)
			}

			frames := readFrames(t, out.Bytes())
			if len(frames) != tt.frames {
				t.Errorf("got %d frames, want %d", len(frames), tt.frames)
			}
			if stats.FramesOut != tt.frames {
				t.Errorf("FramesOut = %d, want %d", stats.FramesOut, tt.frames)
			}
			if stats.PaddedFrames != tt.padded {
				t.Errorf("PaddedFrames = %d, want %d", stats.PaddedFrames, tt.padded)
			}
			if stats.BytesIn != int64(tt.input) {
				t.Errorf("BytesIn = %d, want %d", stats.BytesIn, tt.input)
			}
			for i, b := range enc.blocks {
				if len(b) != frameBytes {
					t.Errorf("block %d handed to encoder is %d bytes, want %d", i, len(b), frameBytes)
				}
			}
		})
	}
}

func TestDownlinkPreservesOrderAndPadsTail(t *testing.T) {
	format := mustFormat(t, pcm.DownlinkSampleRate)
	block := format.BlockBytes()
	input := ramp(2*block + 7)

	enc := &recordingEncoder{}
	var out bytes.Buffer
	// One byte at a time exercises accumulation across many reads.
	_, err := pipeline.NewDownlink(format, enc).Run(iotest.OneByteReader(bytes.NewReader(input)), opus.NewFrameWriter(&out))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(enc.blocks) != 3 {
		t.Fatalf("encoder saw %d blocks, want 3", len(enc.blocks))
	}
	if !bytes.Equal(enc.blocks[0], input[:block]) {
		t.Error("block 0 is not the first block of input")
	}
	if !bytes.Equal(enc.blocks[1], input[block:2*block]) {
		t.Error("block 1 is not the second block of input")
	}
	tail := append(bytes.Clone(input[2*block:]), make([]byte, block-7)...)
	if !bytes.Equal(enc.blocks[2], tail) {
		t.Error("final block is not the zero padded tail")
	}

	want := [][]byte{{0xFC, 0}, {0xFC, 1}, {0xFC, 2}}
	if diff := cmp.Diff(want, readFrames(t, out.Bytes())); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
}

func TestDownlinkSkipsEmptyEncodes(t *testing.T) {
	format := mustFormat(t, pcm.DownlinkSampleRate)
	enc := &recordingEncoder{empty: map[int]bool{1: true}}
	var tapped int

	var out bytes.Buffer
	stats, err := pipeline.NewDownlink(format, enc).
		WithTap(func([]byte) { tapped++ }).
		Run(bytes.NewReader(ramp(3*format.BlockBytes())), opus.NewFrameWriter(&out))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := [][]byte{{0xFC, 0}, {0xFC, 2}}
	if diff := cmp.Diff(want, readFrames(t, out.Bytes())); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
	if stats.EmptyEncodes != 1 {
		t.Errorf("EmptyEncodes = %d, want 1", stats.EmptyEncodes)
	}
	if tapped != 2 {
		t.Errorf("tap saw %d packets, want 2", tapped)
	}
}

func TestDownlinkFaults(t *testing.T) {
	format := mustFormat(t, pcm.DownlinkSampleRate)

	t.Run("encode failure is returned", func(t *testing.T) {
		fault := errors.New("encoder exploded")
		_, err := pipeline.NewDownlink(format, &recordingEncoder{fail: fault}).
			Run(bytes.NewReader(ramp(format.BlockBytes())), opus.NewFrameWriter(io.Discard))
		if !errors.Is(err, fault) {
			t.Errorf("Run error = %v, want %v", err, fault)
		}
	})

	t.Run("read failure is returned", func(t *testing.T) {
		fault := errors.New("stdin vanished")
		_, err := pipeline.NewDownlink(format, &recordingEncoder{}).
			Run(iotest.ErrReader(fault), opus.NewFrameWriter(io.Discard))
		if !errors.Is(err, fault) {
			t.Errorf("Run error = %v, want %v", err, fault)
		}
	})

	t.Run("broken consumer is recognised", func(t *testing.T) {
		_, err := pipeline.NewDownlink(format, &recordingEncoder{}).
			Run(bytes.NewReader(ramp(format.BlockBytes())), opus.NewFrameWriter(epipeWriter{}))
		if !pipeline.IsConsumerGone(err) {
			t.Errorf("IsConsumerGone(%v) = false, want true", err)
		}
	})
}

func TestDownlinkDataWithEOF(t *testing.T) {
	format := mustFormat(t, pcm.DownlinkSampleRate)
	enc := &recordingEncoder{}
	// DataErrReader returns the last chunk together with io.EOF.
	src := iotest.DataErrReader(bytes.NewReader(ramp(format.BlockBytes() + 10)))

	stats, err := pipeline.NewDownlink(format, enc).WithChunkSize(1000).Run(src, opus.NewFrameWriter(io.Discard))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stats.FramesOut != 2 || stats.PaddedFrames != 1 {
		t.Errorf("FramesOut = %d, PaddedFrames = %d, want 2 and 1", stats.FramesOut, stats.PaddedFrames)
	}

}

func TestDownlinkCountsReadsNotFrames(t *testing.T) {
	format := mustFormat(t, pcm.DownlinkSampleRate)
	src := bytes.NewReader(ramp(format.BlockBytes() + 10))

	stats, err := pipeline.NewDownlink(format, &recordingEncoder{}).WithChunkSize(1000).Run(src, opus.NewFrameWriter(io.Discard))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	// 1000 + 1000 + 890 bytes; the empty read that reports io.EOF is not counted.
	if stats.Reads != 3 {
		t.Errorf("Reads = %d, want 3", stats.Reads)
	}
	if stats.FramesIn != 0 {
		t.Errorf("FramesIn = %d, want 0 for unframed input", stats.FramesIn)
	}
}
