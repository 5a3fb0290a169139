package fit

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/micellab/cmcfit/errs"
)

// Status describes how the optimizer stopped.
type Status uint8

const (
	// StatusNone is the zero value and never appears in a returned Result.
	StatusNone Status = iota
	// StatusConverged marks a stop on the ftol or ptol criterion.
	StatusConverged
	// StatusMaxEvals marks exhaustion of the model evaluation budget.
	StatusMaxEvals
	// StatusFailed marks an aborted fit, such as a Jacobian that cannot be
	// evaluated near the current iterate.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusConverged:
		return "converged"
	case StatusMaxEvals:
		return "max-evals"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result carries the outcome of a fit. On budget exhaustion it still holds
// the best iterate found, paired with a non-nil error from Fit.
type Result struct {
	// Params is the final parameter vector.
	Params []float64
	// Covariance is the parameter covariance matrix σ²·(JᵀJ)⁻¹, or nil when
	// the normal matrix is singular or there are no residual degrees of
	// freedom (n ≤ len(Params)).
	Covariance *mat.SymDense
	// RSS is the residual sum of squares at Params.
	RSS float64
	// RSquared is the coefficient of determination at Params.
	RSquared float64
	// Evals counts model evaluations, Iters outer iterations.
	Evals int
	Iters int
	// Status records the stopping condition.
	Status Status
}

// StdErrors returns the per-parameter standard errors, the square roots of
// the covariance diagonal. A negative diagonal entry yields NaN in that
// component. Returns errs.ErrCovarianceUnavailable when no covariance was
// computed.
func (r Result) StdErrors() ([]float64, error) {
	if r.Covariance == nil {
		return nil, errs.ErrCovarianceUnavailable
	}

	n, _ := r.Covariance.Dims()
	out := make([]float64, n)
	for i := range out {
		// Sqrt maps negative diagonals to NaN without panicking.
		out[i] = math.Sqrt(r.Covariance.At(i, i))
	}

	return out, nil
}
