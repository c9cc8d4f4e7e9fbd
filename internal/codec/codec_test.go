package codec_test

import (
	"errors"
	"testing"

	"github.com/glizzus/opus-bridge/internal/codec"
	"github.com/glizzus/opus-bridge/internal/pcm"
)

func mustFormat(t *testing.T, rate int) pcm.Format {
	t.Helper()
	f, err := pcm.NewFormat(rate)
	if err != nil {
		t.Fatalf("NewFormat(%d) returned error: %v", rate, err)
	}
	return f
}

func TestSilenceRoundTrip(t *testing.T) {
	format := mustFormat(t, pcm.DownlinkSampleRate)

	enc, err := codec.NewEncoder(format)
	if err != nil {
		t.Fatalf("NewEncoder returned error: %v", err)
	}
	dec, err := codec.NewDecoder(format)
	if err != nil {
		t.Fatalf("NewDecoder returned error: %v", err)
	}

	// A few blocks so the decoder settles past its initial state.
	for i := range 5 {
		packet, err := enc.Encode(format.Silence())
		if err != nil {
			t.Fatalf("Encode block %d returned error: %v", i, err)
		}
		if len(packet) == 0 {
			t.Fatalf("Encode block %d produced an empty packet", i)
		}

		out := dec.Decode(packet)
		if out.Failed() {
			t.Fatalf("Decode block %d failed: %v", i, out.Err)
		}
		if len(out.Block) != format.BlockBytes() {
			t.Errorf("block %d decoded to %d bytes, want %d", i, len(out.Block), format.BlockBytes())
		}
		if !pcm.IsSilent(out.Block, 8) {
			t.Errorf("block %d decoded silence is not silent", i)
		}
	}
}

func TestDecodeGarbageFails(t *testing.T) {
	dec, err := codec.NewDecoder(mustFormat(t, pcm.UplinkSampleRate))
	if err != nil {
		t.Fatalf("NewDecoder returned error: %v", err)
	}

	// TOC byte 0xFF announces code 3 (arbitrary frame count) with a frame
	// count byte of zero, which libopus rejects.
	out := dec.Decode([]byte{0xFF, 0x00})
	if !out.Failed() {
		t.Fatalf("expected decode of invalid packet to fail, got %d bytes", len(out.Block))
	}
}

func TestEncodeRejectsPartialBlock(t *testing.T) {
	format := mustFormat(t, pcm.DownlinkSampleRate)
	enc, err := codec.NewEncoder(format)
	if err != nil {
		t.Fatalf("NewEncoder returned error: %v", err)
	}
	if _, err := enc.Encode(make([]byte, format.BlockBytes()-2)); err == nil {
		t.Error("expected error encoding a short block")
	}
}

func TestNewDecoderRejectsBadFormat(t *testing.T) {
	_, err := codec.NewDecoder(pcm.Format{SampleRate: 44100, Channels: 1, FrameDurationMs: 60})
	var initErr *codec.InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("NewDecoder error = %v, want *codec.InitError", err)
	}
	if initErr.Op != "decoder" {
		t.Errorf("InitError.Op = %q, want %q", initErr.Op, "decoder")
	}
}
