package archive

const (
	// Bit masks for the packed Options field.
	EndiannessMask   = 0x0001 // endianness bit (bit 0): 0=little, 1=big
	FitResultsMask   = 0x0002 // fit results payload bit (bit 1)
	ReservedBitsMask = 0x000C // reserved bits (bits 2-3), must be zero
	MagicNumberMask  = 0xFFF0 // magic number (bits 4-15)

	// MagicV1Opt is the version 1 magic number of the archive format,
	// occupying bits 4-15 of the Options field.
	MagicV1Opt = 0xCF10
)

// Section sizes and limits.
const (
	// HeaderSize is the fixed header size in bytes.
	HeaderSize = 32

	// IndexEntrySize is the fixed index entry size in bytes.
	IndexEntrySize = 16

	// FitRecordSize is the fixed on-disk size of one fit record in bytes.
	FitRecordSize = 112

	// TrailerSize is the size of the trailing checksum in bytes.
	TrailerSize = 8

	// IndexOffsetValue is the byte offset where the index section starts.
	// The index always follows the header directly.
	IndexOffsetValue = HeaderSize

	// MaxDatasetCount is the maximum number of datasets per archive.
	MaxDatasetCount = 65536

	// MaxPointCount is the maximum number of points per dataset. Column
	// offsets are stored as uint32, so a dataset's 16 bytes per point must
	// leave room inside that range even in a full archive.
	MaxPointCount = 1 << 24

	// MaxDatasetNameLength is the longest encodable dataset name. Names are
	// stored with a uint8 length prefix.
	MaxDatasetNameLength = 255

	// pointSize is the number of column payload bytes per point: one float64
	// concentration plus one float64 conductivity.
	pointSize = 16
)
