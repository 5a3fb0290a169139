// Package cmcfit estimates the critical micelle concentration (cmc) of a
// surfactant from conductivity titration data.
//
// Conductivity grows roughly linearly with surfactant concentration, with a
// slope change at the cmc where micelles start forming. cmcfit models the
// whole titration curve at once with the APN monomer-concentration model
// (package apn) and fits its five parameters (cmc, r, a, b, c) to the data
// by Levenberg–Marquardt least squares (package fit). Treating the cmc as a
// model parameter avoids the classical two-line intersection construction
// and yields a standard error for the cmc itself.
//
// # Fitting
//
// The one-call pipeline reads a dataset and fits it:
//
//	ds, err := dataset.ReadCSVFile("sls_water.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := cmcfit.Fit(ds)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(res)
//
//	alpha, err := res.DegreeOfIonization()
//
// Options adjust the starting point, the optimizer budget, and the physical
// constants of the ionization estimate:
//
//	res, err := cmcfit.Fit(ds,
//	    cmcfit.WithInitialGuess(apn.Params{CMC: 1.0, R: 0.05, A: 90, B: 25, C: 0}),
//	    cmcfit.WithMaxEvals(500),
//	    cmcfit.WithCounterionConductivity(78.1), // Br⁻
//	)
//
// # Session archives
//
// Archives persist one or more named datasets together with their fit
// outcomes in a compact checksummed binary format (package archive):
//
//	encoder, _ := cmcfit.NewArchiveEncoder()
//	_ = encoder.StartDataset(ds.Name, ds.Len())
//	_ = encoder.AddPoints(ds.Conc, ds.Cond)
//	_ = encoder.SetFitRecord(res.FitRecord())
//	_ = encoder.EndDataset()
//	data, _ := encoder.Finish()
//
//	arc, _ := cmcfit.DecodeArchive(data)
//	for stored := range arc.All() {
//	    fmt.Println(stored.Name, stored.Len())
//	}
//
// # Package Structure
//
// This package provides the assembled pipeline around the leaf packages:
// apn (model and derived quantities), fit (optimizer and uncertainties),
// dataset (sample sets and CSV ingest), and archive (binary persistence).
// Use those directly for fine-grained control, such as fitting a different
// model with the same optimizer.
package cmcfit

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/micellab/cmcfit/apn"
	"github.com/micellab/cmcfit/archive"
	"github.com/micellab/cmcfit/dataset"
	"github.com/micellab/cmcfit/fit"
	"github.com/micellab/cmcfit/internal/hash"
	"github.com/micellab/cmcfit/internal/options"
)

// Fit estimates the cmc of the given dataset by fitting the APN
// conductivity model.
//
// The analytic Jacobian drives the optimizer unless WithNumericJacobian
// selects finite differences. When the optimizer exhausts its evaluation
// budget the returned error wraps errs.ErrTooManyEvaluations and the Result
// still holds the best parameters found, marked with fit.StatusMaxEvals;
// budget exhaustion is never reported as success.
//
// Parameters:
//   - ds: The dataset to fit. Must pass its Validate method.
//   - opts: Optional configuration (initial guess, budget, tolerances,
//     ionization constants)
//
// Returns:
//   - *Result: Fit outcome with parameters, uncertainties, and diagnostics
//   - error: Validation, configuration, or convergence error
func Fit(ds dataset.Dataset, opts ...Option) (*Result, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	cfg := defaultFitConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	problem := fit.Problem{
		Xs:    ds.Conc,
		Ys:    ds.Cond,
		Model: conductivityModel,
		Init:  cfg.guess.Vector(),
	}
	if !cfg.numericJacobian {
		problem.Jac = conductivityJacobian
	}

	fitRes, fitErr := fit.Fit(problem, cfg.fitOpts...)
	if fitErr != nil && fitRes.Status == fit.StatusNone {
		// Validation failure: no iterate to report.
		return nil, fitErr
	}

	params, err := apn.FromVector(fitRes.Params)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Dataset:  ds,
		Params:   params,
		RSS:      fitRes.RSS,
		RSquared: fitRes.RSquared,
		Evals:    fitRes.Evals,
		Iters:    fitRes.Iters,
		Status:   fitRes.Status,
		NAgg:     cfg.nAgg,
		LambdaC:  cfg.lambdaC,
	}

	if stdErrs, seErr := fitRes.StdErrors(); seErr == nil {
		res.StdErr, _ = apn.FromVector(stdErrs)
		res.StdErrOK = true
	} else {
		nan := math.NaN()
		res.StdErr = apn.Params{CMC: nan, R: nan, A: nan, B: nan, C: nan}
	}

	return res, fitErr
}

// conductivityModel adapts the APN conductivity model to the fit.Func
// contract, rejecting parameter vectors outside the model domain.
func conductivityModel(dst, xs, p []float64) error {
	params, err := apn.FromVector(p)
	if err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}
	apn.ConductivitySeries(dst, xs, params)

	return nil
}

// conductivityJacobian adapts the analytic partial derivatives to the
// fit.JacFunc contract.
func conductivityJacobian(dst *mat.Dense, xs, p []float64) error {
	params, err := apn.FromVector(p)
	if err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}
	apn.ConductivityJacobian(dst, xs, params)

	return nil
}

// DatasetID returns the 64-bit identifier an archive derives from a dataset
// name (xxHash64). Useful for correlating archives with external storage
// keyed by the same hash.
func DatasetID(name string) uint64 {
	return hash.ID(name)
}

// NewArchiveEncoder creates an encoder for the binary session archive
// format.
//
// Parameters:
//   - opts: Optional configuration (see archive.EncoderOption)
//
// Returns:
//   - *archive.Encoder: The created encoder.
//   - error: An error if the configuration is invalid.
//
// Available options:
//   - archive.WithCompression(format.CompressionNone|Zstd|S2|LZ4)
//   - archive.WithLittleEndian() / archive.WithBigEndian()
//   - archive.WithCreatedAt(time.Time)
func NewArchiveEncoder(opts ...archive.EncoderOption) (*archive.Encoder, error) {
	return archive.NewEncoder(opts...)
}

// DecodeArchive parses and validates an encoded session archive.
//
// The archive's checksum trailer is verified before anything else is
// trusted, so corrupted inputs fail fast with errs.ErrChecksumMismatch.
//
// Parameters:
//   - data: The raw archive bytes (from Encoder.Finish or storage)
//
// Returns:
//   - *archive.Archive: The decoded archive.
//   - error: An error if the data is corrupt or malformed.
func DecodeArchive(data []byte) (*archive.Archive, error) {
	return archive.Decode(data)
}
