package fit

import (
	"fmt"
	"math"

	"github.com/micellab/cmcfit/internal/options"
)

// Defaults for the optimizer configuration. The tolerance defaults follow
// the long-standing MINPACK convention of √(machine epsilon).
const (
	// DefaultMaxEvals caps the number of model evaluations per fit.
	DefaultMaxEvals = 2000
	// DefaultFTol is the relative cost-reduction convergence threshold.
	DefaultFTol = 1.49e-8
	// DefaultPTol is the relative step-norm convergence threshold.
	DefaultPTol = 1.49e-8
	// DefaultDamping is the initial Levenberg–Marquardt damping factor λ.
	DefaultDamping = 1e-3
)

// Config holds the optimizer settings applied through functional options.
type Config struct {
	maxEvals int
	ftol     float64
	ptol     float64
	damping  float64
}

func defaultConfig() Config {
	return Config{
		maxEvals: DefaultMaxEvals,
		ftol:     DefaultFTol,
		ptol:     DefaultPTol,
		damping:  DefaultDamping,
	}
}

// Option represents a functional option for configuring the optimizer.
// This is a type alias for the generic Option interface specialized for Config.
type Option = options.Option[*Config]

// WithMaxEvals caps the number of model evaluations, including those spent
// on finite-difference Jacobian columns. Must be positive.
func WithMaxEvals(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("max evaluations must be positive, got %d", n)
		}
		c.maxEvals = n

		return nil
	})
}

// WithFTol sets the relative cost-reduction threshold: the fit converges
// when an accepted step lowers the residual sum of squares by no more than
// ftol·RSS. Must be positive and finite.
func WithFTol(tol float64) Option {
	return options.New(func(c *Config) error {
		if !(tol > 0) || math.IsInf(tol, 0) {
			return fmt.Errorf("ftol must be positive and finite, got %g", tol)
		}
		c.ftol = tol

		return nil
	})
}

// WithPTol sets the relative step-norm threshold: the fit converges when
// the proposed step satisfies ‖δ‖ ≤ ptol·(‖p‖ + ptol). Must be positive
// and finite.
func WithPTol(tol float64) Option {
	return options.New(func(c *Config) error {
		if !(tol > 0) || math.IsInf(tol, 0) {
			return fmt.Errorf("ptol must be positive and finite, got %g", tol)
		}
		c.ptol = tol

		return nil
	})
}

// WithDamping sets the initial damping factor λ. Larger values start the
// search closer to gradient descent, smaller ones closer to Gauss–Newton.
// Must be positive and finite.
func WithDamping(lambda float64) Option {
	return options.New(func(c *Config) error {
		if !(lambda > 0) || math.IsInf(lambda, 0) {
			return fmt.Errorf("damping must be positive and finite, got %g", lambda)
		}
		c.damping = lambda

		return nil
	})
}
