// Package pcm describes fixed-duration blocks of signed 16-bit little-endian
// linear audio and the arithmetic that sizes them.
package pcm

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// BytesPerSample is the width of one s16le sample.
	BytesPerSample = 2

	// FrameDurationMs is the duration of every block on both directions.
	FrameDurationMs = 60

	// Channels is fixed; both directions carry mono audio.
	Channels = 1

	// UplinkSampleRate is the default device capture rate.
	UplinkSampleRate = 16000

	// DownlinkSampleRate is the rate synthesized speech arrives at.
	DownlinkSampleRate = 24000
)

// supportedRates are the rates libopus accepts for encoding and decoding.
var supportedRates = []int{8000, 12000, 16000, 24000, 48000}

// Format fixes the shape of every Audio Block in a stream. It is resolved
// once before a pipeline starts and never changes mid-stream.
type Format struct {
	SampleRate      int
	Channels        int
	FrameDurationMs int
}

// NewFormat returns the format for a mono 60 ms stream at sampleRate.
func NewFormat(sampleRate int) (Format, error) {
	f := Format{
		SampleRate:      sampleRate,
		Channels:        Channels,
		FrameDurationMs: FrameDurationMs,
	}
	if err := f.Validate(); err != nil {
		return Format{}, err
	}
	return f, nil
}

// Validate reports whether the format can be handed to the codec.
func (f Format) Validate() error {
	if !IsSupportedRate(f.SampleRate) {
		return fmt.Errorf("unsupported sample rate %d, want one of %v", f.SampleRate, supportedRates)
	}
	if f.Channels < 1 || f.Channels > 2 {
		return fmt.Errorf("unsupported channel count %d", f.Channels)
	}
	if f.FrameDurationMs <= 0 {
		return fmt.Errorf("frame duration must be positive, got %dms", f.FrameDurationMs)
	}
	return nil
}

// SamplesPerFrame is the per-channel sample count of one block.
func (f Format) SamplesPerFrame() int {
	return f.SampleRate * f.FrameDurationMs / 1000
}

// BlockBytes is the exact byte size of one block.
func (f Format) BlockBytes() int {
	return f.SamplesPerFrame() * f.Channels * BytesPerSample
}

// Silence returns a freshly allocated all-zero block.
func (f Format) Silence() []byte {
	return make([]byte, f.BlockBytes())
}

func (f Format) String() string {
	ch := "mono"
	if f.Channels == 2 {
		ch = "stereo"
	}
	return fmt.Sprintf("%dHz %s %dms", f.SampleRate, ch, f.FrameDurationMs)
}

// IsSupportedRate reports whether rate is an Opus sample rate.
func IsSupportedRate(rate int) bool {
	for _, r := range supportedRates {
		if r == rate {
			return true
		}
	}
	return false
}

// BytesToInt16s converts little-endian bytes to samples. A trailing odd byte
// is ignored.
func BytesToInt16s(b []byte) []int16 {
	samples := make([]int16, len(b)/BytesPerSample)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return samples
}

// Int16sToBytes converts samples to little-endian bytes.
func Int16sToBytes(samples []int16) []byte {
	b := make([]byte, len(samples)*BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(s))
	}
	return b
}

// Fit returns block resized to exactly size bytes, zero-padding on the right
// or truncating as needed. block is returned unchanged when it already fits.
func Fit(block []byte, size int) []byte {
	if len(block) == size {
		return block
	}
	out := make([]byte, size)
	copy(out, block)
	return out
}

// IsSilent reports whether every sample in block is within tolerance of zero.
func IsSilent(block []byte, tolerance int16) bool {
	for _, s := range BytesToInt16s(block) {
		if s > tolerance || s < -tolerance {
			return false
		}
	}
	return true
}

// RMS returns the root mean square level of block, in sample units.
func RMS(block []byte) float64 {
	samples := BytesToInt16s(block)
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}
