// Package codec binds Opus encoder and decoder sessions to a fixed PCM format.
//
// A session is stateful (packet loss concealment and prediction memory evolve
// across calls) and must be owned by exactly one stream for its whole life.
package codec

import (
	"errors"
	"fmt"

	"layeh.com/gopus"

	"github.com/glizzus/opus-bridge/internal/pcm"
)

// maxPacketBytes bounds one encoded packet; libopus never needs more for a
// single 60 ms frame.
const maxPacketBytes = 4000

// ErrEmptyDecode is the failure reported when the decoder produced no samples.
var ErrEmptyDecode = errors.New("codec: decoder returned no samples")

// InitError is returned when a codec session cannot be created.
type InitError struct {
	Op     string
	Format pcm.Format
	Err    error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("failed to create opus %s for %s: %v", e.Op, e.Format, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

var _ error = (*InitError)(nil)

// Outcome is the result of decoding one packet. Exactly one of Block and Err
// is meaningful: a non-nil Err means the packet could not be decoded.
type Outcome struct {
	Block []byte
	Err   error
}

// Failed reports whether the outcome carries no usable audio.
func (o Outcome) Failed() bool {
	return o.Err != nil || len(o.Block) == 0
}

// Decoder decodes Opus packets into s16le blocks.
// Not safe for concurrent use.
type Decoder struct {
	dec    *gopus.Decoder
	format pcm.Format
}

// NewDecoder creates a decoder session for format.
func NewDecoder(format pcm.Format) (*Decoder, error) {
	if err := format.Validate(); err != nil {
		return nil, &InitError{Op: "decoder", Format: format, Err: err}
	}
	dec, err := gopus.NewDecoder(format.SampleRate, format.Channels)
	if err != nil {
		return nil, &InitError{Op: "decoder", Format: format, Err: err}
	}
	return &Decoder{dec: dec, format: format}, nil
}

// Decode decodes packet into at most one block of samples.
func (d *Decoder) Decode(packet []byte) Outcome {
	samples, err := d.dec.Decode(packet, d.format.SamplesPerFrame(), false)
	if err != nil {
		return Outcome{Err: fmt.Errorf("opus decode: %w", err)}
	}
	if len(samples) == 0 {
		return Outcome{Err: ErrEmptyDecode}
	}
	return Outcome{Block: pcm.Int16sToBytes(samples)}
}

// Format returns the format the session was created for.
func (d *Decoder) Format() pcm.Format {
	return d.format
}

// Encoder encodes s16le blocks into Opus packets.
// Not safe for concurrent use.
type Encoder struct {
	enc    *gopus.Encoder
	format pcm.Format
}

// NewEncoder creates an encoder session for format tuned for general audio.
func NewEncoder(format pcm.Format) (*Encoder, error) {
	if err := format.Validate(); err != nil {
		return nil, &InitError{Op: "encoder", Format: format, Err: err}
	}
	enc, err := gopus.NewEncoder(format.SampleRate, format.Channels, gopus.Audio)
	if err != nil {
		return nil, &InitError{Op: "encoder", Format: format, Err: err}
	}
	return &Encoder{enc: enc, format: format}, nil
}

// Encode encodes one full block. block must be exactly format.BlockBytes() long.
func (e *Encoder) Encode(block []byte) ([]byte, error) {
	if len(block) != e.format.BlockBytes() {
		return nil, fmt.Errorf("opus encode: block is %d bytes, want %d", len(block), e.format.BlockBytes())
	}
	packet, err := e.enc.Encode(pcm.BytesToInt16s(block), e.format.SamplesPerFrame(), maxPacketBytes)
	if err != nil {
		return nil, fmt.Errorf("opus encode: %w", err)
	}
	return packet, nil
}

// Format returns the format the session was created for.
func (e *Encoder) Format() pcm.Format {
	return e.format
}
