package opus

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/jonas747/ogg"
)

var (
	opusHeadMagic = []byte("OpusHead")
	opusTagsMagic = []byte("OpusTags")
)

// OggReader reads raw Opus packets out of an Ogg Opus stream. The
// identification and comment header packets are skipped.
type OggReader struct {
	packets *ogg.PacketDecoder
}

// NewOggReader returns a new OggReader that reads from r.
func NewOggReader(r io.Reader) *OggReader {
	return &OggReader{packets: ogg.NewPacketDecoder(ogg.NewDecoder(r))}
}

// ReadFrame returns the next audio packet.
func (o *OggReader) ReadFrame() ([]byte, error) {
	for {
		packet, _, err := o.packets.Decode()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				return nil, &EndOfStream{Reason: EndClean}
			case errors.Is(err, io.ErrUnexpectedEOF):
				return nil, &EndOfStream{Reason: EndTruncated}
			}
			return nil, fmt.Errorf("failed to decode ogg packet: %w", err)
		}
		if len(packet) == 0 || bytes.HasPrefix(packet, opusHeadMagic) || bytes.HasPrefix(packet, opusTagsMagic) {
			continue
		}
		return packet, nil
	}
}

var _ FrameSource = (*OggReader)(nil)
