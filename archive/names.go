package archive

import (
	"fmt"

	"github.com/micellab/cmcfit/errs"
)

// encodeNames encodes dataset names into the names payload format:
// [Len1: uint8][Name1: UTF-8] [Len2: uint8][Name2: UTF-8] ...
//
// Names appear in index order. The payload has no count field of its own;
// the header's dataset count governs how many names a decoder reads.
func encodeNames(names []string) ([]byte, error) {
	totalSize := 0
	for _, name := range names {
		if len(name) == 0 {
			return nil, fmt.Errorf("%w: empty name", errs.ErrInvalidDatasetName)
		}
		if len(name) > MaxDatasetNameLength {
			return nil, fmt.Errorf("%w: %q is %d bytes, max %d",
				errs.ErrInvalidDatasetName, name, len(name), MaxDatasetNameLength)
		}
		totalSize += 1 + len(name)
	}

	buf := make([]byte, 0, totalSize)
	for _, name := range names {
		buf = append(buf, uint8(len(name)))
		buf = append(buf, name...)
	}

	return buf, nil
}

// decodeNames decodes count names from a names payload.
//
// Returns the names in index order and the number of bytes consumed. The
// caller is responsible for checking that the payload was consumed exactly.
func decodeNames(data []byte, count int) ([]string, int, error) {
	names := make([]string, count)
	offset := 0

	for i := range count {
		if offset >= len(data) {
			return nil, 0, fmt.Errorf("%w: cannot read length of name %d at offset %d",
				errs.ErrInvalidNamesPayload, i, offset)
		}

		nameLen := int(data[offset])
		offset++

		if nameLen == 0 {
			return nil, 0, fmt.Errorf("%w: name %d has zero length", errs.ErrInvalidNamesPayload, i)
		}
		if offset+nameLen > len(data) {
			return nil, 0, fmt.Errorf("%w: cannot read name %d (need %d bytes at offset %d, have %d total)",
				errs.ErrInvalidNamesPayload, i, nameLen, offset, len(data))
		}

		// Copies out of the archive buffer so names outlive the input slice.
		names[i] = string(data[offset : offset+nameLen])
		offset += nameLen
	}

	return names, offset, nil
}

// verifyNameHashes checks that every decoded name hashes to the dataset ID
// recorded in the corresponding index entry.
func verifyNameHashes(names []string, entries []IndexEntry, hashFunc func(string) uint64) error {
	if len(names) != len(entries) {
		return fmt.Errorf("%w: %d names for %d index entries",
			errs.ErrInvalidNamesPayload, len(names), len(entries))
	}

	for i, name := range names {
		expected := hashFunc(name)
		if expected != entries[i].DatasetID {
			return fmt.Errorf("%w: name %q at index %d: expected hash 0x%016x, got 0x%016x",
				errs.ErrInvalidNamesPayload, name, i, expected, entries[i].DatasetID)
		}
	}

	return nil
}
