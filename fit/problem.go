package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/micellab/cmcfit/errs"
)

// Func evaluates the model at every sample location in xs for the parameter
// vector p and writes the predictions into dst (len(dst) == len(xs)).
//
// Returning an error marks p as outside the model domain. During a fit this
// rejects the trial step rather than aborting, so models should prefer an
// error over returning NaN or Inf.
type Func func(dst, xs, p []float64) error

// JacFunc fills dst, a len(xs)×len(p) matrix, with the partial derivatives
// ∂f(xs[i]; p)/∂p[j]. It is optional: a nil JacFunc selects forward finite
// differences. Analytic Jacobians cost no model evaluations and therefore
// do not consume the evaluation budget.
type JacFunc func(dst *mat.Dense, xs, p []float64) error

// Problem bundles the observations and model for one least-squares fit.
type Problem struct {
	// Xs holds the sample locations, Ys the observed values; they must have
	// equal nonzero length. The optimizer never mutates either.
	Xs []float64
	Ys []float64

	// Model is the vectorized model function. Required.
	Model Func

	// Jac optionally supplies the analytic Jacobian.
	Jac JacFunc

	// Init is the starting parameter vector; its length fixes the number of
	// free parameters.
	Init []float64
}

func (p Problem) validate() error {
	if p.Model == nil {
		return fmt.Errorf("%w: nil model function", errs.ErrInvalidProblem)
	}
	if len(p.Xs) == 0 {
		return fmt.Errorf("%w: no samples", errs.ErrInvalidProblem)
	}
	if len(p.Xs) != len(p.Ys) {
		return fmt.Errorf("%w: %d sample locations but %d observations", errs.ErrInvalidProblem, len(p.Xs), len(p.Ys))
	}
	if len(p.Init) == 0 {
		return fmt.Errorf("%w: empty initial guess", errs.ErrInvalidInitialGuess)
	}
	for i, v := range p.Init {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: component %d is %g", errs.ErrInvalidInitialGuess, i, v)
		}
	}

	return nil
}
