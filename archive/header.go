package archive

import (
	"time"
	"unsafe"

	"github.com/micellab/cmcfit/errs"
)

// Header represents the fixed-size section at the start of an archive.
type Header struct {
	// CreatedAt is the archive creation time as a unix timestamp in
	// microseconds.
	CreatedAt int64 // byte offset 4-11
	// DatasetCount is the number of datasets stored in the archive.
	DatasetCount uint32 // byte offset 12-15
	// IndexOffset is the byte offset to the start of the index section.
	// It is always HeaderSize in format v1.
	IndexOffset uint32 // byte offset 16-19
	// NamesOffset is the byte offset to the start of the names payload,
	// directly after the index section.
	NamesOffset uint32 // byte offset 20-23
	// ColumnsOffset is the byte offset to the start of the compressed
	// columns payload, directly after the names payload.
	ColumnsOffset uint32 // byte offset 24-27
	// ResultsOffset is the byte offset to the start of the fit records
	// payload, directly after the columns payload. When the archive has no
	// fit records this equals the checksum trailer offset.
	ResultsOffset uint32 // byte offset 28-31

	// Flag is a packed field for options, compression, and the magic number.
	Flag Flag // byte offset 0-3
}

// NewHeader creates a Header stamped with the given creation time.
// The dataset count and payload offsets are set when the encoder finishes.
func NewHeader(createdAt time.Time) *Header {
	return &Header{
		CreatedAt:   createdAt.UnixMicro(),
		Flag:        NewFlag(),
		IndexOffset: IndexOffsetValue,
	}
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be exactly 32 bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is not 32 bytes, or flag validation errors
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	// The Options field itself is always little-endian so the decoder can
	// discover the archive byte order.
	h.Flag.Options = uint16(data[0]) | (uint16(data[1]) << 8)
	h.Flag.Compression = data[2]

	if err := h.Flag.Validate(); err != nil {
		return err
	}

	engine := h.Flag.GetEndianEngine()

	createdAt := engine.Uint64(data[4:12])
	h.CreatedAt = *(*int64)(unsafe.Pointer(&createdAt))

	h.DatasetCount = engine.Uint32(data[12:16])
	h.IndexOffset = engine.Uint32(data[16:20])
	h.NamesOffset = engine.Uint32(data[20:24])
	h.ColumnsOffset = engine.Uint32(data[24:28])
	h.ResultsOffset = engine.Uint32(data[28:32])

	return nil
}

// Bytes serializes the header into a 32-byte slice.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)

	engine := h.Flag.GetEndianEngine()

	b[0] = byte(h.Flag.Options)
	b[1] = byte(h.Flag.Options >> 8)
	b[2] = h.Flag.Compression
	b[3] = 0 // reserved

	// Bitwise conversion, timestamps are stored as-is in binary.
	engine.PutUint64(b[4:12], *(*uint64)(unsafe.Pointer(&h.CreatedAt)))
	engine.PutUint32(b[12:16], h.DatasetCount)
	engine.PutUint32(b[16:20], h.IndexOffset)
	engine.PutUint32(b[20:24], h.NamesOffset)
	engine.PutUint32(b[24:28], h.ColumnsOffset)
	engine.PutUint32(b[28:32], h.ResultsOffset)

	return b
}

// CreatedAtTime returns the creation time as a time.Time in UTC.
func (h *Header) CreatedAtTime() time.Time {
	return time.UnixMicro(h.CreatedAt).UTC()
}

// ParseHeader parses a Header from a byte slice that contains at least
// HeaderSize bytes.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errs.ErrInvalidHeaderSize
	}

	h := Header{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return Header{}, err
	}

	return h, nil
}
