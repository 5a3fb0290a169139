package archive

import (
	"fmt"
	"math"
	"time"

	"github.com/micellab/cmcfit/compress"
	"github.com/micellab/cmcfit/dataset"
	"github.com/micellab/cmcfit/endian"
	"github.com/micellab/cmcfit/errs"
	"github.com/micellab/cmcfit/format"
	"github.com/micellab/cmcfit/internal/collision"
	"github.com/micellab/cmcfit/internal/hash"
	"github.com/micellab/cmcfit/internal/options"
	"github.com/micellab/cmcfit/internal/pool"
)

// Encoder encodes datasets and their fit records into the binary archive
// format.
//
// Datasets are encoded with a start/add/end cycle: StartDataset claims a
// name and point count, AddPoint/AddPoints stage the columns, an optional
// SetFitRecord attaches the fit outcome, and EndDataset seals the dataset.
// Finish assembles and returns the complete archive.
//
// Note: The Encoder is NOT thread-safe. Each encoder instance should be used
// by a single goroutine at a time.
//
// Note: The Encoder is NOT reusable. After calling Finish, a new encoder must
// be created for further encoding.
type Encoder struct {
	header  *Header
	engine  endian.EndianEngine
	tracker *collision.Tracker

	columnsBuf *pool.ByteBuffer // sealed datasets' columns, uncompressed
	concBuf    *pool.ByteBuffer // open dataset's concentration column
	condBuf    *pool.ByteBuffer // open dataset's conductivity column

	indexEntries []IndexEntry
	records      map[uint64]FitRecord

	started   bool
	curID     uint64
	curName   string
	claimed   int
	added     int
	hasRecord bool
	curRecord FitRecord
}

// EncoderOption configures an Encoder during construction.
type EncoderOption = options.Option[*Encoder]

// WithCompression selects the compression codec for the columns payload.
// The default is Zstd.
func WithCompression(compression format.CompressionType) EncoderOption {
	return options.New(func(e *Encoder) error {
		if !compression.IsValid() {
			return fmt.Errorf("%w: %d", errs.ErrInvalidCompressionType, uint8(compression))
		}
		e.header.Flag.SetCompressionType(compression)

		return nil
	})
}

// WithLittleEndian encodes the archive in little-endian byte order.
// This is the default.
func WithLittleEndian() EncoderOption {
	return options.NoError(func(e *Encoder) {
		e.header.Flag.WithLittleEndian()
	})
}

// WithBigEndian encodes the archive in big-endian byte order.
func WithBigEndian() EncoderOption {
	return options.NoError(func(e *Encoder) {
		e.header.Flag.WithBigEndian()
	})
}

// WithCreatedAt overrides the creation timestamp stamped into the header.
// The default is the time NewEncoder was called.
func WithCreatedAt(createdAt time.Time) EncoderOption {
	return options.NoError(func(e *Encoder) {
		e.header.CreatedAt = createdAt.UnixMicro()
	})
}

// NewEncoder creates an archive encoder.
//
// Parameters:
//   - opts: Optional configuration (compression, endianness, creation time)
//
// Returns:
//   - *Encoder: New encoder instance ready for dataset encoding
//   - error: Configuration error if invalid options provided
func NewEncoder(opts ...EncoderOption) (*Encoder, error) {
	encoder := &Encoder{
		header:     NewHeader(time.Now()),
		tracker:    collision.NewTracker(),
		columnsBuf: pool.GetArchiveBuffer(),
		concBuf:    pool.GetArchiveBuffer(),
		condBuf:    pool.GetArchiveBuffer(),
		records:    make(map[uint64]FitRecord),
	}

	if err := options.Apply(encoder, opts...); err != nil {
		encoder.releaseBuffers()
		return nil, err
	}

	encoder.engine = encoder.header.Flag.GetEndianEngine()

	return encoder, nil
}

// StartDataset begins encoding a new dataset with the given name and number
// of points.
//
// The name is hashed to a 64-bit dataset ID with xxHash64. Names must be
// unique within an archive; a hash collision between two distinct names is
// reported as an error because index entries address datasets by hash alone.
//
// Parameters:
//   - name: Dataset name (1-255 bytes, unique within the archive)
//   - points: Expected number of points (1 to MaxPointCount)
//
// Returns:
//   - error: ErrDatasetAlreadyStarted, ErrInvalidDatasetName,
//     ErrInvalidPointCount, ErrDatasetCountExceeded, or ErrHashCollision
func (e *Encoder) StartDataset(name string, points int) error {
	if e.started {
		return fmt.Errorf("%w: dataset %q is still open", errs.ErrDatasetAlreadyStarted, e.curName)
	}

	if len(name) > MaxDatasetNameLength {
		return fmt.Errorf("%w: %q is %d bytes, max %d",
			errs.ErrInvalidDatasetName, name, len(name), MaxDatasetNameLength)
	}

	if points <= 0 || points > MaxPointCount {
		return fmt.Errorf("%w: %d", errs.ErrInvalidPointCount, points)
	}

	if len(e.indexEntries) >= MaxDatasetCount {
		return fmt.Errorf("%w: max %d", errs.ErrDatasetCountExceeded, MaxDatasetCount)
	}

	id := hash.ID(name)
	if err := e.tracker.Track(name, id); err != nil {
		return err
	}

	e.started = true
	e.curID = id
	e.curName = name
	e.claimed = points
	e.added = 0
	e.hasRecord = false

	return nil
}

// AddPoint stages a single concentration/conductivity pair for the open
// dataset.
//
// Returns:
//   - error: ErrNoDatasetStarted, ErrNonFiniteSample, or ErrNegativeConcentration
func (e *Encoder) AddPoint(conc, cond float64) error {
	if !e.started {
		return errs.ErrNoDatasetStarted
	}

	if math.IsNaN(conc) || math.IsInf(conc, 0) || math.IsNaN(cond) || math.IsInf(cond, 0) {
		return fmt.Errorf("%w: point %d of %q (%g, %g)",
			errs.ErrNonFiniteSample, e.added, e.curName, conc, cond)
	}
	if conc < 0 {
		return fmt.Errorf("%w: point %d of %q (%g)",
			errs.ErrNegativeConcentration, e.added, e.curName, conc)
	}

	e.concBuf.B = e.engine.AppendUint64(e.concBuf.B, math.Float64bits(conc))
	e.condBuf.B = e.engine.AppendUint64(e.condBuf.B, math.Float64bits(cond))
	e.added++

	return nil
}

// AddPoints stages a batch of points for the open dataset. The two slices
// must have equal length.
func (e *Encoder) AddPoints(conc, cond []float64) error {
	if !e.started {
		return errs.ErrNoDatasetStarted
	}
	if len(conc) != len(cond) {
		return fmt.Errorf("%w: %d concentrations, %d conductivities",
			errs.ErrLengthMismatch, len(conc), len(cond))
	}

	for i := range conc {
		if err := e.AddPoint(conc[i], cond[i]); err != nil {
			return err
		}
	}

	return nil
}

// SetFitRecord attaches a fit record to the open dataset. Calling it again
// before EndDataset replaces the previous record.
func (e *Encoder) SetFitRecord(rec FitRecord) error {
	if !e.started {
		return errs.ErrNoDatasetStarted
	}

	e.curRecord = rec
	e.hasRecord = true

	return nil
}

// EndDataset seals the open dataset, validates its point count, and moves
// its columns into the archive payload.
//
// Returns:
//   - error: ErrNoDatasetStarted, ErrNoPointsAdded, or ErrPointCountMismatch
func (e *Encoder) EndDataset() error {
	if !e.started {
		return errs.ErrNoDatasetStarted
	}

	if e.added == 0 {
		return errs.ErrNoPointsAdded
	}
	if e.added != e.claimed {
		return fmt.Errorf("%w: claimed %d, got %d", errs.ErrPointCountMismatch, e.claimed, e.added)
	}

	entry := NewIndexEntry(e.curID, e.added)
	entry.ColumnOffset = e.columnsBuf.Len()
	e.indexEntries = append(e.indexEntries, entry)

	e.columnsBuf.MustWrite(e.concBuf.Bytes())
	e.columnsBuf.MustWrite(e.condBuf.Bytes())

	if e.hasRecord {
		e.records[e.curID] = e.curRecord
	}

	e.concBuf.Reset()
	e.condBuf.Reset()
	e.started = false
	e.curID = 0
	e.curName = ""
	e.claimed = 0
	e.added = 0
	e.hasRecord = false

	return nil
}

// AddDataset encodes a whole dataset in one call: StartDataset, AddPoints,
// and EndDataset. Use the explicit cycle instead when a fit record must be
// attached.
func (e *Encoder) AddDataset(ds dataset.Dataset) error {
	if err := e.StartDataset(ds.Name, ds.Len()); err != nil {
		return err
	}
	if err := e.AddPoints(ds.Conc, ds.Cond); err != nil {
		return err
	}

	return e.EndDataset()
}

// Finish assembles and returns the complete archive.
//
// This method compresses the columns payload, builds the header with final
// offsets, writes the index, names, and fit record sections, and appends the
// checksum trailer. After calling Finish the encoder cannot be reused.
//
// Returns:
//   - []byte: Complete encoded archive
//   - error: ErrDatasetNotEnded if a dataset is still open, ErrNoDatasetsAdded
//     if no datasets were added, or compression errors
func (e *Encoder) Finish() ([]byte, error) {
	defer e.releaseBuffers()

	if e.started {
		return nil, fmt.Errorf("%w: dataset %q is still open", errs.ErrDatasetNotEnded, e.curName)
	}
	if len(e.indexEntries) == 0 {
		return nil, errs.ErrNoDatasetsAdded
	}

	// Work on a copy so the configured header stays untouched on error.
	finalHeader := *e.header
	finalHeader.DatasetCount = uint32(len(e.indexEntries)) //nolint: gosec
	finalHeader.Flag.SetHasFitResults(len(e.records) > 0)

	namesPayload, err := encodeNames(e.tracker.Names())
	if err != nil {
		return nil, err
	}

	codec, err := compress.CreateCodec(finalHeader.Flag.CompressionType(), "columns")
	if err != nil {
		return nil, err
	}
	columnsPayload, err := codec.Compress(e.columnsBuf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to compress columns payload: %w", err)
	}

	recordsPayload := e.encodeFitRecords()

	indexSize := len(e.indexEntries) * IndexEntrySize
	namesOffset := HeaderSize + indexSize
	columnsOffset := namesOffset + len(namesPayload)
	resultsOffset := columnsOffset + len(columnsPayload)
	totalSize := resultsOffset + len(recordsPayload) + TrailerSize

	if uint64(totalSize) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: archive size %d exceeds format limit", errs.ErrInvalidPayloadOffset, totalSize)
	}

	finalHeader.NamesOffset = uint32(namesOffset)     //nolint: gosec
	finalHeader.ColumnsOffset = uint32(columnsOffset) //nolint: gosec
	finalHeader.ResultsOffset = uint32(resultsOffset) //nolint: gosec

	out := make([]byte, totalSize)
	offset := copy(out, finalHeader.Bytes())

	for i := range e.indexEntries {
		offset = e.indexEntries[i].WriteToSlice(out, offset, e.engine)
	}

	offset += copy(out[offset:], namesPayload)
	offset += copy(out[offset:], columnsPayload)
	offset += copy(out[offset:], recordsPayload)

	// The trailer checksum is always little-endian, independent of the
	// archive byte order, so it can be verified before parsing the header.
	checksum := hash.Checksum(out[:offset])
	endian.GetLittleEndianEngine().PutUint64(out[offset:], checksum)

	return out, nil
}

// encodeFitRecords builds the fit records payload: a uint32 record count
// followed by fixed-size records in index order. Returns nil when no records
// were attached.
func (e *Encoder) encodeFitRecords() []byte {
	if len(e.records) == 0 {
		return nil
	}

	payload := make([]byte, 4+len(e.records)*FitRecordSize)
	e.engine.PutUint32(payload[0:4], uint32(len(e.records))) //nolint: gosec

	offset := 4
	for _, entry := range e.indexEntries {
		rec, ok := e.records[entry.DatasetID]
		if !ok {
			continue
		}
		offset = writeFitRecord(payload, offset, entry.DatasetID, rec, e.engine)
	}

	return payload
}

// releaseBuffers returns the staging buffers to the pool. Any later use of
// the encoder will panic on the nil buffers instead of corrupting pooled
// memory.
func (e *Encoder) releaseBuffers() {
	pool.PutArchiveBuffer(e.columnsBuf)
	pool.PutArchiveBuffer(e.concBuf)
	pool.PutArchiveBuffer(e.condBuf)
	e.columnsBuf = nil
	e.concBuf = nil
	e.condBuf = nil
}
