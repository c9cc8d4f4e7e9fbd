// Package pipeline runs the two transcoding loops of the bridge.
//
// Uplink reads length-prefixed Opus packets and writes one length-prefixed PCM
// block per packet, substituting silence for anything that fails to decode.
// Downlink reads an unframed PCM byte stream, re-chunks it into fixed-size
// blocks, and writes one length-prefixed Opus packet per block, zero-padding
// the final partial block.
//
// Both loops are synchronous and single-goroutine: every read and write
// blocks, and backpressure comes from the pipes on either side.
package pipeline
