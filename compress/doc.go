// Package compress provides compression and decompression codecs for archive payloads.
//
// Archives store titration series as raw little- or big-endian float64 columns
// plus a names payload and optional fit records. Compression is applied per
// payload section after encoding, so a codec only ever sees a contiguous byte
// slice and never needs to understand the archive layout.
//
// # Overview
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// Four built-in codecs cover the archive compression flags:
//   - None: no compression (fastest, largest)
//   - Zstd: best compression ratio, moderate speed
//   - S2: balanced compression and speed
//   - LZ4: fast decompression, moderate compression
//
// # Algorithm Selection
//
// Conductimetric titration series are short (tens to a few hundred points per
// dataset), so payloads are typically well under 64KB. Raw float64 columns
// from instrument exports compress modestly because mantissa bits are close
// to random; the shared exponent bytes and the names payload are where the
// codecs recover space.
//
//   - Archival of many sessions: Zstd
//   - Interactive tooling, frequent reads: LZ4 or S2
//   - Tiny archives where codec framing outweighs savings: None
//
// # Thread Safety
//
// All built-in codecs are stateless value types and safe for concurrent use.
// Pooled encoder/decoder instances are handled internally.
//
// # Zstd Implementations
//
// By default Zstd uses the pure Go github.com/klauspost/compress/zstd
// implementation. Building with the "czstd" tag switches to the cgo-backed
// github.com/valyala/gozstd bindings, which trade build portability for
// upstream-C speed. Both produce standard Zstandard frames and can decode
// each other's output.
package compress
