package apn

import (
	"fmt"
	"math"

	"github.com/micellab/cmcfit/errs"
)

// NumParams is the number of free parameters of the conductivity model.
const NumParams = 5

// Params holds the free parameters of the APN conductivity model in their
// canonical order (cmc, r, a, b, c).
type Params struct {
	CMC float64 // critical micelle concentration
	R   float64 // relative transition width of the micellization region
	A   float64 // conductivity slope of the monomeric form, below the cmc
	B   float64 // conductivity slope of the micellized form, above the cmc
	C   float64 // solvent background conductivity
}

// DefaultGuess returns the initial parameter guess used when the caller
// provides none. It suits conductivity data in mM and µS/cm with a cmc in
// the single-digit mM range, the common regime for ionic surfactants.
func DefaultGuess() Params {
	return Params{CMC: 8.0, R: 0.1, A: 70.0, B: 30.0, C: 10.0}
}

// Vector returns the parameters as a freshly allocated slice in canonical
// (cmc, r, a, b, c) order.
func (p Params) Vector() []float64 {
	return []float64{p.CMC, p.R, p.A, p.B, p.C}
}

// FromVector builds Params from a canonical-order slice.
//
// Returns ErrInvalidParamCount unless v has exactly NumParams components.
func FromVector(v []float64) (Params, error) {
	if len(v) != NumParams {
		return Params{}, fmt.Errorf("%w: got %d, want %d", errs.ErrInvalidParamCount, len(v), NumParams)
	}

	return Params{CMC: v[0], R: v[1], A: v[2], B: v[3], C: v[4]}, nil
}

// Validate checks the model's domain constraints: the cmc and the transition
// width must be positive and finite. The slopes and the background are
// unconstrained.
func (p Params) Validate() error {
	if !(p.CMC > 0) || math.IsInf(p.CMC, 0) {
		return fmt.Errorf("%w: cmc = %g", errs.ErrInvalidCMC, p.CMC)
	}
	if !(p.R > 0) || math.IsInf(p.R, 0) {
		return fmt.Errorf("%w: r = %g", errs.ErrInvalidTransitionWidth, p.R)
	}

	return nil
}
