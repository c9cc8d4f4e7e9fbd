// Package opus moves Opus packets between processes over a byte stream that has
// no message boundaries of its own.
//
// The wire format is a sequence of length-prefixed frames,
// [uint16 LE length][payload], with no header and no metadata. A frame of
// length zero marks the end of a compressed stream. The same framing carries
// PCM blocks on the uplink output.
//
// FrameReader and FrameWriter implement the framing. OggReader lifts packets out
// of an Ogg Opus file so recorded audio can be replayed through the same path.
package opus
