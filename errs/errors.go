// Package errs defines the sentinel errors shared across cmcfit packages.
//
// All errors are wrapped with context at call sites using fmt.Errorf with
// the %w verb, so callers can match them with errors.Is:
//
//	res, err := cmcfit.Fit(ds, cmcfit.WithMaxEvals(100))
//	if errors.Is(err, errs.ErrTooManyEvaluations) {
//	    // fit did not converge within the evaluation budget
//	}
package errs

import "errors"

// Model and parameter errors.
var (
	// ErrInvalidCMC is returned when the critical micelle concentration
	// parameter is zero, negative, or not finite.
	ErrInvalidCMC = errors.New("invalid cmc parameter")

	// ErrInvalidTransitionWidth is returned when the relative transition
	// width parameter r is zero, negative, or not finite.
	ErrInvalidTransitionWidth = errors.New("invalid transition width parameter")

	// ErrInvalidParamCount is returned when a parameter vector does not
	// have exactly the five components (cmc, r, a, b, c).
	ErrInvalidParamCount = errors.New("invalid parameter count")

	// ErrIonizationDomain is returned when the degree-of-ionization formula
	// has no real solution for the given inputs.
	ErrIonizationDomain = errors.New("degree of ionization undefined")
)

// Fitting errors.
var (
	// ErrInvalidProblem is returned when a fitting problem is malformed:
	// missing model function, mismatched sample lengths, or no samples.
	ErrInvalidProblem = errors.New("invalid fitting problem")

	// ErrInvalidInitialGuess is returned when the model cannot be evaluated
	// at the initial parameter vector, or the evaluation is not finite.
	ErrInvalidInitialGuess = errors.New("invalid initial guess")

	// ErrTooManyEvaluations is returned when the optimizer exhausts its
	// model evaluation budget before meeting a convergence criterion.
	ErrTooManyEvaluations = errors.New("too many model evaluations")

	// ErrCovarianceUnavailable is returned when parameter uncertainties are
	// requested but the covariance matrix could not be computed, typically
	// because the Jacobian was singular at the solution or the fit had no
	// spare degrees of freedom.
	ErrCovarianceUnavailable = errors.New("covariance unavailable")
)

// Dataset errors.
var (
	// ErrEmptyDataset is returned when a dataset contains no samples.
	ErrEmptyDataset = errors.New("empty dataset")

	// ErrLengthMismatch is returned when concentration and conductivity
	// columns have different lengths.
	ErrLengthMismatch = errors.New("column length mismatch")

	// ErrNonFiniteSample is returned when a sample contains NaN or Inf.
	ErrNonFiniteSample = errors.New("non-finite sample")

	// ErrNegativeConcentration is returned when a concentration is negative.
	ErrNegativeConcentration = errors.New("negative concentration")

	// ErrMissingColumn is returned when a CSV input lacks a required column.
	ErrMissingColumn = errors.New("missing column")

	// ErrInvalidSample is returned when a CSV cell cannot be parsed as a
	// floating point number.
	ErrInvalidSample = errors.New("invalid sample")

	// ErrInvalidDatasetName is returned when a dataset name is empty or
	// exceeds the maximum encodable length.
	ErrInvalidDatasetName = errors.New("invalid dataset name")
)

// Archive encoding errors.
var (
	// ErrDatasetAlreadyStarted is returned when StartDataset is called while
	// another dataset is still open, or with a name that was already added.
	ErrDatasetAlreadyStarted = errors.New("dataset already started")

	// ErrNoDatasetStarted is returned when points or fit records are added
	// without an open dataset.
	ErrNoDatasetStarted = errors.New("no dataset started")

	// ErrDatasetNotEnded is returned when Finish is called while a dataset
	// is still open.
	ErrDatasetNotEnded = errors.New("dataset not ended")

	// ErrNoDatasetsAdded is returned when Finish is called on an encoder
	// with no datasets.
	ErrNoDatasetsAdded = errors.New("no datasets added")

	// ErrNoPointsAdded is returned when EndDataset is called before any
	// points were added.
	ErrNoPointsAdded = errors.New("no points added")

	// ErrPointCountMismatch is returned when the number of added points does
	// not match the count claimed by StartDataset.
	ErrPointCountMismatch = errors.New("point count mismatch")

	// ErrInvalidPointCount is returned when the claimed point count is not
	// positive or exceeds MaxPointCount.
	ErrInvalidPointCount = errors.New("invalid point count")

	// ErrDatasetCountExceeded is returned when an archive would contain more
	// than MaxDatasetCount datasets.
	ErrDatasetCountExceeded = errors.New("dataset count exceeded")

	// ErrHashCollision is returned when two different dataset names hash to
	// the same 64-bit identifier.
	ErrHashCollision = errors.New("dataset name hash collision")
)

// Archive decoding errors.
var (
	// ErrInvalidHeaderSize is returned when archive data is shorter than the
	// fixed header.
	ErrInvalidHeaderSize = errors.New("invalid header size")

	// ErrInvalidMagicNumber is returned when the header magic bits do not
	// identify a known archive format version.
	ErrInvalidMagicNumber = errors.New("invalid magic number")

	// ErrInvalidHeaderFlags is returned when header flags carry an unknown
	// compression type or reserved bits are set.
	ErrInvalidHeaderFlags = errors.New("invalid header flags")

	// ErrInvalidIndexSize is returned when the index section is truncated or
	// not a multiple of the fixed entry size.
	ErrInvalidIndexSize = errors.New("invalid index size")

	// ErrInvalidPayloadOffset is returned when a header payload offset does
	// not lie inside the archive or payload sections overlap.
	ErrInvalidPayloadOffset = errors.New("invalid payload offset")

	// ErrInvalidNamesPayload is returned when the dataset names payload is
	// truncated or does not contain one name per index entry.
	ErrInvalidNamesPayload = errors.New("invalid names payload")

	// ErrInvalidColumnPayload is returned when the decompressed column
	// payload does not match the sizes recorded in the index.
	ErrInvalidColumnPayload = errors.New("invalid column payload")

	// ErrInvalidResultsPayload is returned when the fit results payload is
	// truncated or its record count is inconsistent.
	ErrInvalidResultsPayload = errors.New("invalid results payload")

	// ErrChecksumMismatch is returned when the archive trailer checksum does
	// not match the stored bytes.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrDatasetNotFound is returned when a requested dataset name or ID is
	// not present in the archive.
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrInvalidCompressionType is returned when a compression type is
	// unknown, either in a header or a user-facing name.
	ErrInvalidCompressionType = errors.New("invalid compression type")
)
