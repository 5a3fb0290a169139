package archive

import (
	"github.com/micellab/cmcfit/endian"
	"github.com/micellab/cmcfit/errs"
	"github.com/micellab/cmcfit/format"
)

// Flag represents the packed option fields of the archive header.
type Flag struct {
	// Options is a packed field for archive-wide options.
	// Bit 0 is the endianness flag, 0 means little-endian, 1 means big-endian.
	// Bit 1 is the fit results flag, set when the archive carries fit records.
	// Bits 2-3 are reserved for future use, must be set to 0.
	// Bits 4-15 are the magic number identifying the archive format:
	//   - 0xCF10 (0b1100_1111_0001_0000): session archive format v1
	Options uint16

	// Compression identifies the codec applied to the columns payload.
	Compression uint8
}

// NewFlag creates a Flag with default settings: little-endian, Zstd columns,
// no fit records.
func NewFlag() Flag {
	flag := Flag{
		Options:     MagicV1Opt,
		Compression: uint8(format.CompressionZstd),
	}
	flag.WithLittleEndian()

	return flag
}

// IsLittleEndian returns whether the archive data is little-endian.
func (f Flag) IsLittleEndian() bool {
	return (f.Options & EndiannessMask) == 0
}

// IsBigEndian returns whether the archive data is big-endian.
func (f Flag) IsBigEndian() bool {
	return (f.Options & EndiannessMask) != 0
}

// WithLittleEndian sets little-endian byte order.
func (f *Flag) WithLittleEndian() {
	f.Options &= ^uint16(EndiannessMask)
}

// WithBigEndian sets big-endian byte order.
func (f *Flag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// HasFitResults returns whether the archive carries a fit records payload.
func (f Flag) HasFitResults() bool {
	return (f.Options & FitResultsMask) != 0
}

// SetHasFitResults enables or disables the fit records payload.
func (f *Flag) SetHasFitResults(enabled bool) {
	if enabled {
		f.Options |= FitResultsMask
	} else {
		f.Options &^= FitResultsMask
	}
}

// GetMagicNumber returns the magic number from the Options field.
func (f Flag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// IsValidMagicNumber checks if the magic number is valid.
func (f Flag) IsValidMagicNumber() bool {
	return f.GetMagicNumber() == MagicV1Opt
}

// CompressionType returns the columns payload compression type.
func (f Flag) CompressionType() format.CompressionType {
	return format.CompressionType(f.Compression)
}

// SetCompressionType sets the columns payload compression type.
func (f *Flag) SetCompressionType(compression format.CompressionType) {
	f.Compression = uint8(compression)
}

// Validate checks that the flag fields contain valid values.
func (f Flag) Validate() error {
	if !f.IsValidMagicNumber() {
		return errs.ErrInvalidMagicNumber
	}

	if f.Options&ReservedBitsMask != 0 {
		return errs.ErrInvalidHeaderFlags
	}

	if !f.CompressionType().IsValid() {
		return errs.ErrInvalidHeaderFlags
	}

	return nil
}

// GetEndianEngine returns the endian engine matching the endianness flag.
func (f Flag) GetEndianEngine() endian.EndianEngine {
	if f.IsLittleEndian() {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}
