package archive

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/micellab/cmcfit/dataset"
	"github.com/micellab/cmcfit/endian"
	"github.com/micellab/cmcfit/errs"
	"github.com/micellab/cmcfit/format"
	"github.com/micellab/cmcfit/internal/hash"
)

// ==================== Round-Trip Helpers ====================

var testCreatedAt = time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC)

// buildSessionArchive encodes a three-dataset session. The first two
// datasets carry fit records, the last does not.
func buildSessionArchive(t *testing.T, opts ...EncoderOption) []byte {
	t.Helper()

	encoder := createTestEncoder(t, append([]EncoderOption{WithCreatedAt(testCreatedAt)}, opts...)...)

	conc, cond := titrationSeries(70)
	require.NoError(t, encoder.StartDataset("sls-water", 70))
	require.NoError(t, encoder.AddPoints(conc, cond))
	require.NoError(t, encoder.SetFitRecord(testFitRecord()))
	require.NoError(t, encoder.EndDataset())

	conc, cond = titrationSeries(24)
	rec := testFitRecord()
	rec.Params.CMC = 1.02
	rec.Converged = false
	require.NoError(t, encoder.StartDataset("ctab-saline", 24))
	require.NoError(t, encoder.AddPoints(conc, cond))
	require.NoError(t, encoder.SetFitRecord(rec))
	require.NoError(t, encoder.EndDataset())

	require.NoError(t, encoder.StartDataset("dtab-3mM", 1))
	require.NoError(t, encoder.AddPoint(3.0, 191.5))
	require.NoError(t, encoder.EndDataset())

	data, err := encoder.Finish()
	require.NoError(t, err)

	return data
}

// rechecksum rewrites the trailer so corruption tests can reach validation
// stages beyond the checksum.
func rechecksum(data []byte) {
	trailerOffset := len(data) - TrailerSize
	checksum := hash.Checksum(data[:trailerOffset])
	endian.GetLittleEndianEngine().PutUint64(data[trailerOffset:], checksum)
}

// corrupt copies the archive, applies the mutation, and restores a valid
// checksum over the mutated bytes.
func corrupt(data []byte, mutate func([]byte)) []byte {
	out := append([]byte(nil), data...)
	mutate(out)
	rechecksum(out)

	return out
}

// ==================== Round-Trip Tests ====================

func TestArchiveRoundTrip(t *testing.T) {
	for _, cType := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		t.Run(cType.String(), func(t *testing.T) {
			data := buildSessionArchive(t, WithCompression(cType))

			arc, err := Decode(data)
			require.NoError(t, err)

			require.Equal(t, 3, arc.Count())
			require.Equal(t, []string{"sls-water", "ctab-saline", "dtab-3mM"}, arc.Names())
			require.Equal(t, testCreatedAt, arc.CreatedAt())
			require.Equal(t, cType, arc.Compression())

			require.True(t, arc.HasDataset("ctab-saline"))
			require.False(t, arc.HasDataset("unknown"))

			points, ok := arc.PointCount("sls-water")
			require.True(t, ok)
			require.Equal(t, 70, points)
			_, ok = arc.PointCount("unknown")
			require.False(t, ok)

			conc, cond := titrationSeries(70)
			ds, err := arc.Dataset("sls-water")
			require.NoError(t, err)
			require.Equal(t, "sls-water", ds.Name)
			require.Equal(t, conc, ds.Conc)
			require.Equal(t, cond, ds.Cond)

			single, err := arc.Dataset("dtab-3mM")
			require.NoError(t, err)
			require.Equal(t, []float64{3.0}, single.Conc)
			require.Equal(t, []float64{191.5}, single.Cond)

			require.True(t, arc.HasFitRecords())
			rec, ok := arc.FitRecord("sls-water")
			require.True(t, ok)
			require.Equal(t, testFitRecord(), rec)

			rec, ok = arc.FitRecord("ctab-saline")
			require.True(t, ok)
			require.InDelta(t, 1.02, rec.Params.CMC, 1e-15)
			require.False(t, rec.Converged)

			_, ok = arc.FitRecord("dtab-3mM")
			require.False(t, ok)
		})
	}
}

func TestArchiveRoundTripBigEndian(t *testing.T) {
	data := buildSessionArchive(t, WithBigEndian(), WithCompression(format.CompressionS2))

	arc, err := Decode(data)
	require.NoError(t, err)
	require.True(t, arc.header.Flag.IsBigEndian())
	require.Equal(t, 3, arc.Count())

	conc, cond := titrationSeries(24)
	ds, err := arc.Dataset("ctab-saline")
	require.NoError(t, err)
	require.Equal(t, conc, ds.Conc)
	require.Equal(t, cond, ds.Cond)

	rec, ok := arc.FitRecord("sls-water")
	require.True(t, ok)
	require.Equal(t, testFitRecord(), rec)
}

func TestArchiveRoundTripNoRecords(t *testing.T) {
	encoder := createTestEncoder(t)
	conc, cond := titrationSeries(16)
	ds, err := dataset.New("plain", conc, cond)
	require.NoError(t, err)
	require.NoError(t, encoder.AddDataset(ds))

	data, err := encoder.Finish()
	require.NoError(t, err)

	arc, err := Decode(data)
	require.NoError(t, err)
	require.False(t, arc.HasFitRecords())
	_, ok := arc.FitRecord("plain")
	require.False(t, ok)

	got, err := arc.Dataset("plain")
	require.NoError(t, err)
	require.Equal(t, ds.Conc, got.Conc)
	require.Equal(t, ds.Cond, got.Cond)
}

func TestArchiveAll(t *testing.T) {
	data := buildSessionArchive(t)
	arc, err := Decode(data)
	require.NoError(t, err)

	t.Run("IndexOrder", func(t *testing.T) {
		var names []string
		var lens []int
		for ds := range arc.All() {
			names = append(names, ds.Name)
			lens = append(lens, ds.Len())
		}
		require.Equal(t, []string{"sls-water", "ctab-saline", "dtab-3mM"}, names)
		require.Equal(t, []int{70, 24, 1}, lens)
	})

	t.Run("EarlyBreak", func(t *testing.T) {
		count := 0
		for range arc.All() {
			count++
			break
		}
		require.Equal(t, 1, count)
	})
}

func TestArchiveStats(t *testing.T) {
	columnsSize := int64((70 + 24 + 1) * pointSize)

	t.Run("None", func(t *testing.T) {
		data := buildSessionArchive(t, WithCompression(format.CompressionNone))
		arc, err := Decode(data)
		require.NoError(t, err)

		stats := arc.Stats()
		require.Equal(t, format.CompressionNone, stats.Algorithm)
		require.Equal(t, columnsSize, stats.OriginalSize)
		require.Equal(t, columnsSize, stats.CompressedSize)
		require.InDelta(t, 1.0, stats.CompressionRatio(), 1e-15)
	})

	t.Run("Zstd", func(t *testing.T) {
		data := buildSessionArchive(t, WithCompression(format.CompressionZstd))
		arc, err := Decode(data)
		require.NoError(t, err)

		stats := arc.Stats()
		require.Equal(t, format.CompressionZstd, stats.Algorithm)
		require.Equal(t, columnsSize, stats.OriginalSize)
		require.Positive(t, stats.CompressedSize)
	})
}

func TestArchiveDatasetNotFound(t *testing.T) {
	data := buildSessionArchive(t)
	arc, err := Decode(data)
	require.NoError(t, err)

	_, err = arc.Dataset("does-not-exist")
	require.ErrorIs(t, err, errs.ErrDatasetNotFound)
}

// ==================== Decode Corruption Tests ====================

func TestDecodeTruncated(t *testing.T) {
	data := buildSessionArchive(t)

	t.Run("Empty", func(t *testing.T) {
		_, err := Decode(nil)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("BelowMinimumSize", func(t *testing.T) {
		_, err := Decode(data[:HeaderSize+TrailerSize-1])
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("TailCutOff", func(t *testing.T) {
		_, err := Decode(data[:len(data)-3])
		require.ErrorIs(t, err, errs.ErrChecksumMismatch)
	})
}

func TestDecodeChecksumMismatch(t *testing.T) {
	data := buildSessionArchive(t)
	bad := append([]byte(nil), data...)
	bad[len(bad)/2] ^= 0xFF

	_, err := Decode(bad)
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)
}

func TestDecodeHeaderCorruption(t *testing.T) {
	data := buildSessionArchive(t)

	t.Run("BadMagic", func(t *testing.T) {
		bad := corrupt(data, func(b []byte) { b[1] ^= 0xFF })
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidMagicNumber)
	})

	t.Run("ReservedFlagBits", func(t *testing.T) {
		bad := corrupt(data, func(b []byte) { b[0] |= 0x04 })
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderFlags)
	})

	t.Run("UnknownCompression", func(t *testing.T) {
		bad := corrupt(data, func(b []byte) { b[2] = 0x7F })
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderFlags)
	})

	t.Run("ZeroDatasetCount", func(t *testing.T) {
		bad := corrupt(data, func(b []byte) {
			endian.GetLittleEndianEngine().PutUint32(b[12:16], 0)
		})
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrNoDatasetsAdded)
	})

	t.Run("DatasetCountExceeded", func(t *testing.T) {
		bad := corrupt(data, func(b []byte) {
			endian.GetLittleEndianEngine().PutUint32(b[12:16], MaxDatasetCount+1)
		})
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrDatasetCountExceeded)
	})

	t.Run("IndexLargerThanArchive", func(t *testing.T) {
		bad := corrupt(data, func(b []byte) {
			endian.GetLittleEndianEngine().PutUint32(b[12:16], 60000)
		})
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidIndexSize)
	})

	t.Run("BadIndexOffset", func(t *testing.T) {
		bad := corrupt(data, func(b []byte) {
			endian.GetLittleEndianEngine().PutUint32(b[16:20], 48)
		})
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidPayloadOffset)
	})

	t.Run("BadNamesOffset", func(t *testing.T) {
		bad := corrupt(data, func(b []byte) {
			endian.GetLittleEndianEngine().PutUint32(b[20:24], 9999)
		})
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidPayloadOffset)
	})

	t.Run("ColumnsOffsetBeforeNames", func(t *testing.T) {
		bad := corrupt(data, func(b []byte) {
			endian.GetLittleEndianEngine().PutUint32(b[24:28], 8)
		})
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidPayloadOffset)
	})

	t.Run("ResultsOffsetPastTrailer", func(t *testing.T) {
		bad := corrupt(data, func(b []byte) {
			endian.GetLittleEndianEngine().PutUint32(b[28:32], uint32(len(data)))
		})
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidPayloadOffset)
	})
}

func TestDecodeIndexCorruption(t *testing.T) {
	data := buildSessionArchive(t, WithCompression(format.CompressionNone))
	engine := endian.GetLittleEndianEngine()

	t.Run("ZeroPointCount", func(t *testing.T) {
		bad := corrupt(data, func(b []byte) {
			engine.PutUint32(b[HeaderSize+8:], 0)
		})
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidPointCount)
	})

	t.Run("NonContiguousOffsets", func(t *testing.T) {
		bad := corrupt(data, func(b []byte) {
			// Second entry's column offset, nudged off the end of the first
			// dataset's columns.
			secondOffset := HeaderSize + IndexEntrySize + 12
			engine.PutUint32(b[secondOffset:], uint32(70*pointSize+16))
		})
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidColumnPayload)
	})

	t.Run("DuplicateDatasetID", func(t *testing.T) {
		bad := corrupt(data, func(b []byte) {
			first := b[HeaderSize : HeaderSize+8]
			second := b[HeaderSize+IndexEntrySize : HeaderSize+IndexEntrySize+8]
			copy(second, first)
			// Keep the tiling valid so the duplicate check is what trips.
			engine.PutUint32(b[HeaderSize+IndexEntrySize+8:], 70)
			engine.PutUint32(b[HeaderSize+IndexEntrySize+12:], uint32(70*pointSize))
		})
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidColumnPayload)
	})

	t.Run("CountLargerThanColumns", func(t *testing.T) {
		bad := corrupt(data, func(b []byte) {
			// Last entry claims one extra point.
			lastCount := HeaderSize + 2*IndexEntrySize + 8
			engine.PutUint32(b[lastCount:], 2)
		})
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidColumnPayload)
	})
}

func TestDecodeNamesCorruption(t *testing.T) {
	data := buildSessionArchive(t, WithCompression(format.CompressionNone))
	arc, err := Decode(data)
	require.NoError(t, err)
	namesOffset := int(arc.header.NamesOffset)

	t.Run("TamperedName", func(t *testing.T) {
		bad := corrupt(data, func(b []byte) {
			// First byte of "sls-water"; the stored hash no longer matches.
			b[namesOffset+1] ^= 0x01
		})
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidNamesPayload)
	})

	t.Run("TruncatedNamesPayload", func(t *testing.T) {
		bad := corrupt(data, func(b []byte) {
			// Claims more name bytes than the section holds.
			b[namesOffset] = 0xFF
		})
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidNamesPayload)
	})
}

func TestDecodeColumnsCorruption(t *testing.T) {
	t.Run("NaNValue", func(t *testing.T) {
		data := buildSessionArchive(t, WithCompression(format.CompressionNone))
		arc, err := Decode(data)
		require.NoError(t, err)
		columnsOffset := int(arc.header.ColumnsOffset)

		bad := corrupt(data, func(b []byte) {
			endian.GetLittleEndianEngine().PutUint64(b[columnsOffset:], math.Float64bits(math.NaN()))
		})
		_, err = Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidColumnPayload)
		require.Contains(t, err.Error(), "not finite")
	})

	t.Run("NegativeConcentration", func(t *testing.T) {
		data := buildSessionArchive(t, WithCompression(format.CompressionNone))
		arc, err := Decode(data)
		require.NoError(t, err)
		columnsOffset := int(arc.header.ColumnsOffset)

		bad := corrupt(data, func(b []byte) {
			endian.GetLittleEndianEngine().PutUint64(b[columnsOffset:], math.Float64bits(-1.0))
		})
		_, err = Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidColumnPayload)
		require.Contains(t, err.Error(), "negative concentration")
	})

	t.Run("CorruptCompressedFrame", func(t *testing.T) {
		data := buildSessionArchive(t, WithCompression(format.CompressionZstd))
		arc, err := Decode(data)
		require.NoError(t, err)
		columnsOffset := int(arc.header.ColumnsOffset)

		bad := corrupt(data, func(b []byte) {
			// Breaks the zstd frame magic.
			b[columnsOffset] ^= 0xFF
		})
		_, err = Decode(bad)
		require.Error(t, err)
		require.Contains(t, err.Error(), "decompress")
	})
}

func TestDecodeResultsCorruption(t *testing.T) {
	withRecords := buildSessionArchive(t)

	t.Run("FlagClearButBytesPresent", func(t *testing.T) {
		bad := corrupt(withRecords, func(b []byte) { b[0] &^= FitResultsMask })
		_, err := Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidResultsPayload)
	})

	t.Run("FlagSetButNoBytes", func(t *testing.T) {
		encoder := createTestEncoder(t)
		conc, cond := titrationSeries(4)
		ds, err := dataset.New("plain", conc, cond)
		require.NoError(t, err)
		require.NoError(t, encoder.AddDataset(ds))
		plain, err := encoder.Finish()
		require.NoError(t, err)

		bad := corrupt(plain, func(b []byte) { b[0] |= FitResultsMask })
		_, err = Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidResultsPayload)
	})

	t.Run("ZeroRecordCount", func(t *testing.T) {
		arc, err := Decode(withRecords)
		require.NoError(t, err)
		resultsOffset := int(arc.header.ResultsOffset)

		bad := corrupt(withRecords, func(b []byte) {
			endian.GetLittleEndianEngine().PutUint32(b[resultsOffset:], 0)
		})
		_, err = Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidResultsPayload)
	})

	t.Run("RecordCountExceedsDatasets", func(t *testing.T) {
		arc, err := Decode(withRecords)
		require.NoError(t, err)
		resultsOffset := int(arc.header.ResultsOffset)

		bad := corrupt(withRecords, func(b []byte) {
			endian.GetLittleEndianEngine().PutUint32(b[resultsOffset:], 4)
		})
		_, err = Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidResultsPayload)
	})

	t.Run("UnknownDatasetID", func(t *testing.T) {
		arc, err := Decode(withRecords)
		require.NoError(t, err)
		resultsOffset := int(arc.header.ResultsOffset)

		bad := corrupt(withRecords, func(b []byte) {
			b[resultsOffset+4] ^= 0xFF
		})
		_, err = Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidResultsPayload)
	})

	t.Run("DuplicateRecord", func(t *testing.T) {
		arc, err := Decode(withRecords)
		require.NoError(t, err)
		resultsOffset := int(arc.header.ResultsOffset)

		bad := corrupt(withRecords, func(b []byte) {
			firstID := b[resultsOffset+4 : resultsOffset+12]
			secondID := b[resultsOffset+4+FitRecordSize : resultsOffset+12+FitRecordSize]
			copy(secondID, firstID)
		})
		_, err = Decode(bad)
		require.ErrorIs(t, err, errs.ErrInvalidResultsPayload)
	})
}
