package archive

import (
	"github.com/micellab/cmcfit/endian"
	"github.com/micellab/cmcfit/errs"
)

// IndexEntry records where one dataset lives inside the columns payload.
// It is a fixed size of 16 bytes.
//
// Offsets are absolute byte positions inside the UNCOMPRESSED columns
// payload. Datasets are laid out in index order, so for consecutive entries
// entry[i+1].ColumnOffset = entry[i].ColumnOffset + entry[i].Count*16.
// Decoders verify this invariant instead of trusting either field alone.
type IndexEntry struct {
	// DatasetID is the xxHash64 hash of the dataset name.
	//
	// Offset: 0, Size: 8 bytes
	DatasetID uint64

	// Count is the number of points in the dataset.
	//
	// Offset: 8, Size: 4 bytes (stored as uint32 on disk)
	Count int

	// ColumnOffset is the byte offset of this dataset's columns inside the
	// uncompressed columns payload. The concentration column starts here;
	// the conductivity column follows after Count*8 bytes.
	//
	// Offset: 12, Size: 4 bytes (stored as uint32 on disk)
	ColumnOffset int
}

// NewIndexEntry creates an IndexEntry for a dataset with the given ID and
// point count. The column offset is set by the encoder when the dataset ends.
func NewIndexEntry(datasetID uint64, count int) IndexEntry {
	return IndexEntry{
		DatasetID: datasetID,
		Count:     count,
	}
}

// ByteSize returns the number of column payload bytes the dataset occupies.
func (e IndexEntry) ByteSize() int {
	return e.Count * pointSize
}

// WriteToSlice writes the entry to a pre-allocated slice and returns the next
// write position.
//
// Parameters:
//   - data: Pre-allocated byte slice (must have space for 16 bytes at offset)
//   - offset: Starting position in data
//   - engine: Endian engine for byte order
//
// Returns:
//   - int: Next write position (offset + 16)
func (e *IndexEntry) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) int {
	engine.PutUint64(data[offset:offset+8], e.DatasetID)
	engine.PutUint32(data[offset+8:offset+12], uint32(e.Count))         //nolint: gosec
	engine.PutUint32(data[offset+12:offset+16], uint32(e.ColumnOffset)) //nolint: gosec

	return offset + IndexEntrySize
}

// ParseIndexEntry parses an IndexEntry from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the entry (must be at least 16 bytes)
//   - engine: Endian engine for byte order
//
// Returns:
//   - IndexEntry: Parsed index entry
//   - error: ErrInvalidIndexSize if data is too short
func ParseIndexEntry(data []byte, engine endian.EndianEngine) (IndexEntry, error) {
	if len(data) < IndexEntrySize {
		return IndexEntry{}, errs.ErrInvalidIndexSize
	}

	return IndexEntry{
		DatasetID:    engine.Uint64(data[0:8]),
		Count:        int(engine.Uint32(data[8:12])),
		ColumnOffset: int(engine.Uint32(data[12:16])),
	}, nil
}
