package archive

import (
	"fmt"
	"iter"
	"math"
	"time"

	"github.com/micellab/cmcfit/compress"
	"github.com/micellab/cmcfit/dataset"
	"github.com/micellab/cmcfit/endian"
	"github.com/micellab/cmcfit/errs"
	"github.com/micellab/cmcfit/format"
	"github.com/micellab/cmcfit/internal/hash"
)

// Archive is a decoded session archive.
//
// All structural validation happens in Decode: checksum, magic number,
// section offsets, index consistency, name hashes, and column values. A
// non-nil Archive is internally consistent, and its accessors cannot fail
// except for lookups of names that are not present.
type Archive struct {
	header  Header
	engine  endian.EndianEngine
	entries []IndexEntry
	names   []string
	byID    map[uint64]int // entries/names position by dataset ID
	columns []byte         // decompressed columns payload
	records map[uint64]FitRecord

	compressedColumnsSize int
}

// Decode parses and validates an encoded archive.
//
// The checksum trailer is verified before any other field is trusted. When
// the archive was encoded without compression the returned Archive aliases
// data; callers must not modify data while the Archive is in use.
//
// Returns:
//   - *Archive: Decoded archive
//   - error: ErrInvalidHeaderSize, ErrChecksumMismatch, ErrInvalidMagicNumber,
//     ErrInvalidHeaderFlags, ErrInvalidPayloadOffset, ErrInvalidIndexSize,
//     ErrInvalidPointCount, ErrInvalidNamesPayload, ErrInvalidColumnPayload,
//     ErrInvalidResultsPayload, or decompression errors
func Decode(data []byte) (*Archive, error) {
	if len(data) < HeaderSize+TrailerSize {
		return nil, fmt.Errorf("%w: %d bytes", errs.ErrInvalidHeaderSize, len(data))
	}

	trailerOffset := len(data) - TrailerSize
	stored := endian.GetLittleEndianEngine().Uint64(data[trailerOffset:])
	computed := hash.Checksum(data[:trailerOffset])
	if stored != computed {
		return nil, fmt.Errorf("%w: stored 0x%016x, computed 0x%016x",
			errs.ErrChecksumMismatch, stored, computed)
	}

	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	count := int(header.DatasetCount)
	if count == 0 {
		return nil, fmt.Errorf("%w: archive has no datasets", errs.ErrNoDatasetsAdded)
	}
	if count > MaxDatasetCount {
		return nil, fmt.Errorf("%w: %d datasets, max %d", errs.ErrDatasetCountExceeded, count, MaxDatasetCount)
	}

	arc := &Archive{
		header: header,
		engine: header.Flag.GetEndianEngine(),
	}

	namesOffset := HeaderSize + count*IndexEntrySize
	if err := validateOffsets(header, namesOffset, trailerOffset); err != nil {
		return nil, err
	}

	if err := arc.parseIndex(data[HeaderSize:namesOffset], count); err != nil {
		return nil, err
	}

	if err := arc.parseNames(data[header.NamesOffset:header.ColumnsOffset]); err != nil {
		return nil, err
	}

	if err := arc.decompressColumns(data[header.ColumnsOffset:header.ResultsOffset]); err != nil {
		return nil, err
	}

	if err := arc.parseFitRecords(data[header.ResultsOffset:trailerOffset]); err != nil {
		return nil, err
	}

	return arc, nil
}

// validateOffsets checks that the header's section offsets tile the archive
// exactly: header, index, names, columns, results, trailer.
func validateOffsets(header Header, namesOffset, trailerOffset int) error {
	if header.IndexOffset != IndexOffsetValue {
		return fmt.Errorf("%w: index offset %d, want %d",
			errs.ErrInvalidPayloadOffset, header.IndexOffset, IndexOffsetValue)
	}
	if namesOffset > trailerOffset {
		return fmt.Errorf("%w: index section needs %d bytes, have %d",
			errs.ErrInvalidIndexSize, namesOffset-HeaderSize, trailerOffset-HeaderSize)
	}
	if int(header.NamesOffset) != namesOffset {
		return fmt.Errorf("%w: names offset %d, want %d",
			errs.ErrInvalidPayloadOffset, header.NamesOffset, namesOffset)
	}
	if header.ColumnsOffset < header.NamesOffset || int(header.ColumnsOffset) > trailerOffset {
		return fmt.Errorf("%w: columns offset %d", errs.ErrInvalidPayloadOffset, header.ColumnsOffset)
	}
	if header.ResultsOffset < header.ColumnsOffset || int(header.ResultsOffset) > trailerOffset {
		return fmt.Errorf("%w: results offset %d", errs.ErrInvalidPayloadOffset, header.ResultsOffset)
	}

	return nil
}

// parseIndex parses the index entries and checks that they tile the
// uncompressed columns payload contiguously.
func (a *Archive) parseIndex(indexData []byte, count int) error {
	a.entries = make([]IndexEntry, count)
	a.byID = make(map[uint64]int, count)

	expectedOffset := 0
	for i := range count {
		entry, err := ParseIndexEntry(indexData[i*IndexEntrySize:], a.engine)
		if err != nil {
			return err
		}

		if entry.Count <= 0 || entry.Count > MaxPointCount {
			return fmt.Errorf("%w: dataset %d claims %d points",
				errs.ErrInvalidPointCount, i, entry.Count)
		}
		if entry.ColumnOffset != expectedOffset {
			return fmt.Errorf("%w: dataset %d starts at %d, want %d",
				errs.ErrInvalidColumnPayload, i, entry.ColumnOffset, expectedOffset)
		}
		if _, dup := a.byID[entry.DatasetID]; dup {
			return fmt.Errorf("%w: duplicate dataset ID 0x%016x", errs.ErrInvalidColumnPayload, entry.DatasetID)
		}

		a.entries[i] = entry
		a.byID[entry.DatasetID] = i
		expectedOffset += entry.ByteSize()
	}

	return nil
}

// parseNames decodes the names payload and verifies every name hashes to its
// index entry's dataset ID.
func (a *Archive) parseNames(namesData []byte) error {
	names, consumed, err := decodeNames(namesData, len(a.entries))
	if err != nil {
		return err
	}
	if consumed != len(namesData) {
		return fmt.Errorf("%w: %d trailing bytes", errs.ErrInvalidNamesPayload, len(namesData)-consumed)
	}

	if err := verifyNameHashes(names, a.entries, hash.ID); err != nil {
		return err
	}

	a.names = names

	return nil
}

// decompressColumns decompresses the columns payload and validates its size
// and values against the index.
func (a *Archive) decompressColumns(columnsData []byte) error {
	codec, err := compress.GetCodec(a.header.Flag.CompressionType())
	if err != nil {
		return fmt.Errorf("unsupported columns compression: %w", err)
	}

	columns, err := codec.Decompress(columnsData)
	if err != nil {
		return fmt.Errorf("failed to decompress columns payload: %w", err)
	}

	last := a.entries[len(a.entries)-1]
	expectedSize := last.ColumnOffset + last.ByteSize()
	if len(columns) != expectedSize {
		return fmt.Errorf("%w: %d bytes, index describes %d",
			errs.ErrInvalidColumnPayload, len(columns), expectedSize)
	}

	a.columns = columns
	a.compressedColumnsSize = len(columnsData)

	return a.validateColumnValues()
}

// validateColumnValues scans every column for values the encoder would have
// rejected, so dataset accessors never have to re-validate.
func (a *Archive) validateColumnValues() error {
	for i, entry := range a.entries {
		concStart := entry.ColumnOffset
		condStart := concStart + entry.Count*8

		for j := range entry.Count {
			conc := math.Float64frombits(a.engine.Uint64(a.columns[concStart+j*8:]))
			cond := math.Float64frombits(a.engine.Uint64(a.columns[condStart+j*8:]))

			if math.IsNaN(conc) || math.IsInf(conc, 0) || math.IsNaN(cond) || math.IsInf(cond, 0) {
				return fmt.Errorf("%w: dataset %q row %d is not finite",
					errs.ErrInvalidColumnPayload, a.names[i], j)
			}
			if conc < 0 {
				return fmt.Errorf("%w: dataset %q row %d has negative concentration %g",
					errs.ErrInvalidColumnPayload, a.names[i], j, conc)
			}
		}
	}

	return nil
}

// parseFitRecords decodes the fit records payload when the header announces
// one, and rejects stray bytes when it does not.
func (a *Archive) parseFitRecords(resultsData []byte) error {
	if !a.header.Flag.HasFitResults() {
		if len(resultsData) != 0 {
			return fmt.Errorf("%w: %d bytes present but results flag is clear",
				errs.ErrInvalidResultsPayload, len(resultsData))
		}

		return nil
	}

	if len(resultsData) < 4 {
		return fmt.Errorf("%w: cannot read record count", errs.ErrInvalidResultsPayload)
	}

	count := int(a.engine.Uint32(resultsData[0:4]))
	if count == 0 || count > len(a.entries) {
		return fmt.Errorf("%w: %d records for %d datasets",
			errs.ErrInvalidResultsPayload, count, len(a.entries))
	}
	if len(resultsData) != 4+count*FitRecordSize {
		return fmt.Errorf("%w: %d bytes for %d records",
			errs.ErrInvalidResultsPayload, len(resultsData), count)
	}

	a.records = make(map[uint64]FitRecord, count)
	for i := range count {
		id, rec, err := parseFitRecord(resultsData[4+i*FitRecordSize:], a.engine)
		if err != nil {
			return err
		}
		if _, ok := a.byID[id]; !ok {
			return fmt.Errorf("%w: record %d references unknown dataset 0x%016x",
				errs.ErrInvalidResultsPayload, i, id)
		}
		if _, dup := a.records[id]; dup {
			return fmt.Errorf("%w: duplicate record for dataset 0x%016x",
				errs.ErrInvalidResultsPayload, id)
		}
		a.records[id] = rec
	}

	return nil
}

// Count returns the number of datasets in the archive.
func (a *Archive) Count() int {
	return len(a.entries)
}

// Names returns the dataset names in index order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.names))
	copy(names, a.names)

	return names
}

// CreatedAt returns the archive creation time in UTC.
func (a *Archive) CreatedAt() time.Time {
	return a.header.CreatedAtTime()
}

// Compression returns the columns payload compression type.
func (a *Archive) Compression() format.CompressionType {
	return a.header.Flag.CompressionType()
}

// HasDataset reports whether a dataset with the given name is present.
func (a *Archive) HasDataset(name string) bool {
	_, ok := a.byID[hash.ID(name)]

	return ok
}

// PointCount returns the number of points of the named dataset without
// materializing its columns.
func (a *Archive) PointCount(name string) (int, bool) {
	i, ok := a.byID[hash.ID(name)]
	if !ok {
		return 0, false
	}

	return a.entries[i].Count, true
}

// Dataset materializes the named dataset. The returned columns are fresh
// slices owned by the caller.
//
// Returns:
//   - dataset.Dataset: Decoded dataset
//   - error: ErrDatasetNotFound if no dataset has the given name
func (a *Archive) Dataset(name string) (dataset.Dataset, error) {
	i, ok := a.byID[hash.ID(name)]
	if !ok {
		return dataset.Dataset{}, fmt.Errorf("%w: %q", errs.ErrDatasetNotFound, name)
	}

	return a.materialize(i), nil
}

// All iterates over every dataset in index order, materializing one at a
// time.
func (a *Archive) All() iter.Seq[dataset.Dataset] {
	return func(yield func(dataset.Dataset) bool) {
		for i := range a.entries {
			if !yield(a.materialize(i)) {
				return
			}
		}
	}
}

// materialize decodes the columns of entry i into a Dataset. Values were
// validated during Decode.
func (a *Archive) materialize(i int) dataset.Dataset {
	entry := a.entries[i]
	conc := make([]float64, entry.Count)
	cond := make([]float64, entry.Count)

	concStart := entry.ColumnOffset
	condStart := concStart + entry.Count*8
	for j := range entry.Count {
		conc[j] = math.Float64frombits(a.engine.Uint64(a.columns[concStart+j*8:]))
		cond[j] = math.Float64frombits(a.engine.Uint64(a.columns[condStart+j*8:]))
	}

	return dataset.Dataset{Name: a.names[i], Conc: conc, Cond: cond}
}

// HasFitRecords reports whether the archive carries any fit records.
func (a *Archive) HasFitRecords() bool {
	return a.header.Flag.HasFitResults()
}

// FitRecord returns the fit record of the named dataset, if one was stored.
func (a *Archive) FitRecord(name string) (FitRecord, bool) {
	rec, ok := a.records[hash.ID(name)]

	return rec, ok
}

// Stats reports how well the columns payload compressed.
func (a *Archive) Stats() compress.CompressionStats {
	return compress.CompressionStats{
		Algorithm:      a.Compression(),
		OriginalSize:   int64(len(a.columns)),
		CompressedSize: int64(a.compressedColumnsSize),
	}
}
