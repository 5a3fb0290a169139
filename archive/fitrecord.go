package archive

import (
	"math"

	"github.com/micellab/cmcfit/apn"
	"github.com/micellab/cmcfit/endian"
	"github.com/micellab/cmcfit/errs"
)

// Fit record flag bits.
const (
	fitFlagConverged = 1 << 0 // fit met a convergence criterion
	fitFlagStdErrOK  = 1 << 1 // standard errors are valid
	fitFlagAlphaOK   = 1 << 2 // degree of ionization is valid
)

// FitRecord stores the outcome of fitting one dataset.
//
// StdErr components follow the canonical parameter order (cmc, r, a, b, c).
// When StdErrOK is false the StdErr values are meaningless and are typically
// NaN; the same applies to Alpha when AlphaOK is false. Records are stored
// as fixed 112-byte entries:
//
//	[0:8)     dataset ID (uint64)
//	[8:16)    flags (uint64)
//	[16:56)   parameters (5 x float64)
//	[56:96)   standard errors (5 x float64)
//	[96:104)  residual sum of squares (float64)
//	[104:112) degree of ionization (float64)
type FitRecord struct {
	// Params holds the fitted model parameters.
	Params apn.Params
	// StdErr holds the one-sigma standard error of each parameter.
	StdErr [apn.NumParams]float64
	// RSS is the residual sum of squares at the fitted parameters.
	RSS float64
	// Alpha is the degree of ionization derived from the fitted slopes.
	Alpha float64

	// Converged reports whether the fit met a convergence criterion.
	Converged bool
	// StdErrOK reports whether the standard errors are valid.
	StdErrOK bool
	// AlphaOK reports whether Alpha is valid.
	AlphaOK bool
}

// writeFitRecord writes a fit record for the given dataset ID to a
// pre-allocated slice and returns the next write position.
func writeFitRecord(data []byte, offset int, datasetID uint64, rec FitRecord, engine endian.EndianEngine) int {
	engine.PutUint64(data[offset:], datasetID)

	var flags uint64
	if rec.Converged {
		flags |= fitFlagConverged
	}
	if rec.StdErrOK {
		flags |= fitFlagStdErrOK
	}
	if rec.AlphaOK {
		flags |= fitFlagAlphaOK
	}
	engine.PutUint64(data[offset+8:], flags)

	params := rec.Params.Vector()
	for i, v := range params {
		engine.PutUint64(data[offset+16+i*8:], math.Float64bits(v))
	}
	for i, v := range rec.StdErr {
		engine.PutUint64(data[offset+56+i*8:], math.Float64bits(v))
	}
	engine.PutUint64(data[offset+96:], math.Float64bits(rec.RSS))
	engine.PutUint64(data[offset+104:], math.Float64bits(rec.Alpha))

	return offset + FitRecordSize
}

// parseFitRecord parses one fit record from a byte slice.
//
// Returns the dataset ID the record belongs to and the decoded record.
func parseFitRecord(data []byte, engine endian.EndianEngine) (uint64, FitRecord, error) {
	if len(data) < FitRecordSize {
		return 0, FitRecord{}, errs.ErrInvalidResultsPayload
	}

	datasetID := engine.Uint64(data[0:8])
	flags := engine.Uint64(data[8:16])

	vec := make([]float64, apn.NumParams)
	for i := range vec {
		vec[i] = math.Float64frombits(engine.Uint64(data[16+i*8:]))
	}
	params, err := apn.FromVector(vec)
	if err != nil {
		return 0, FitRecord{}, err
	}

	rec := FitRecord{
		Params:    params,
		RSS:       math.Float64frombits(engine.Uint64(data[96:104])),
		Alpha:     math.Float64frombits(engine.Uint64(data[104:112])),
		Converged: flags&fitFlagConverged != 0,
		StdErrOK:  flags&fitFlagStdErrOK != 0,
		AlphaOK:   flags&fitFlagAlphaOK != 0,
	}
	for i := range rec.StdErr {
		rec.StdErr[i] = math.Float64frombits(engine.Uint64(data[56+i*8:]))
	}

	return datasetID, rec, nil
}
