package cmcfit

import (
	"fmt"
	"math"

	"github.com/micellab/cmcfit/apn"
	"github.com/micellab/cmcfit/fit"
	"github.com/micellab/cmcfit/internal/options"
)

type config struct {
	guess           apn.Params
	nAgg            float64
	lambdaC         float64
	numericJacobian bool

	fitOpts []fit.Option
}

func defaultFitConfig() config {
	return config{
		guess:   apn.DefaultGuess(),
		nAgg:    apn.DefaultAggregationNumber,
		lambdaC: apn.DefaultCounterionConductivity,
	}
}

// Option represents a functional option for configuring a fit.
// This is a type alias for the generic Option interface specialized for the
// fit configuration.
type Option = options.Option[*config]

// WithInitialGuess sets the starting parameter vector. The default,
// apn.DefaultGuess, suits conductivity data in mM and µS/cm with a cmc in
// the single-digit mM range.
//
// The guess must satisfy apn.Params.Validate: positive finite cmc and
// transition width.
func WithInitialGuess(guess apn.Params) Option {
	return options.New(func(c *config) error {
		if err := guess.Validate(); err != nil {
			return err
		}
		c.guess = guess

		return nil
	})
}

// WithMaxEvals caps the number of model evaluations, including those spent
// on finite-difference Jacobian columns. The default is fit.DefaultMaxEvals.
func WithMaxEvals(n int) Option {
	return options.NoError(func(c *config) {
		c.fitOpts = append(c.fitOpts, fit.WithMaxEvals(n))
	})
}

// WithFTol sets the relative cost-reduction convergence threshold. The
// default is fit.DefaultFTol.
func WithFTol(tol float64) Option {
	return options.NoError(func(c *config) {
		c.fitOpts = append(c.fitOpts, fit.WithFTol(tol))
	})
}

// WithPTol sets the relative step-norm convergence threshold. The default
// is fit.DefaultPTol.
func WithPTol(tol float64) Option {
	return options.NoError(func(c *config) {
		c.fitOpts = append(c.fitOpts, fit.WithPTol(tol))
	})
}

// WithAggregationNumber sets the micelle aggregation number used by the
// degree-of-ionization estimate. Must be positive and finite. The default
// is apn.DefaultAggregationNumber.
func WithAggregationNumber(nAgg float64) Option {
	return options.New(func(c *config) error {
		if !(nAgg > 0) || math.IsInf(nAgg, 0) {
			return fmt.Errorf("aggregation number must be positive and finite, got %g", nAgg)
		}
		c.nAgg = nAgg

		return nil
	})
}

// WithCounterionConductivity sets the molar conductivity of the free
// counterion used by the degree-of-ionization estimate, in S·cm²·mol⁻¹.
// The default is apn.DefaultCounterionConductivity (Na⁺).
func WithCounterionConductivity(lambdaC float64) Option {
	return options.New(func(c *config) error {
		if math.IsNaN(lambdaC) || math.IsInf(lambdaC, 0) {
			return fmt.Errorf("counterion conductivity must be finite, got %g", lambdaC)
		}
		c.lambdaC = lambdaC

		return nil
	})
}

// WithNumericJacobian forces forward finite differences instead of the
// analytic Jacobian. Difference evaluations count against the evaluation
// budget, so fits need a larger budget than the analytic path.
//
// Intended for cross-checking the analytic derivatives; the analytic path
// is both faster and more accurate.
func WithNumericJacobian() Option {
	return options.NoError(func(c *config) {
		c.numericJacobian = true
	})
}
