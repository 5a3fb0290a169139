package compress

// ZstdCompressor provides Zstandard compression for archive payloads.
//
// Zstd favors compression ratio over speed, making it the default choice for
// long-term storage of titration sessions:
//   - Archival of many datasets in one file
//   - Network transmission where bandwidth is limited
//   - Scenarios where decompression happens infrequently
//
// Two implementations back this type. The default pure Go implementation
// builds everywhere; the "czstd" build tag selects the cgo bindings instead.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(data)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
