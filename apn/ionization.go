package apn

import (
	"fmt"
	"math"

	"github.com/micellab/cmcfit/errs"
)

// Default physical constants for the degree-of-ionization estimate of sodium
// alkyl sulfates in water.
const (
	// DefaultAggregationNumber is the mean micellar aggregation number.
	DefaultAggregationNumber = 50.0
	// DefaultCounterionConductivity is the molar conductivity of the free
	// counterion in S·cm²·mol⁻¹: 50.1 for Na⁺ (78.1 for Br⁻).
	DefaultCounterionConductivity = 50.1
)

// DegreeOfIonization derives the micellar degree of ionization α from the
// fitted conductivity slopes a (below the cmc) and b (above it), the micelle
// aggregation number nAgg, and the counterion molar conductivity lambdaC.
//
// α is the positive root of
//
//	nAgg^0.667·(a−λC)·α² + λC·α − b = 0
//
// evaluated in the conjugate form 2b/(√(λC²+4·b·k)+λC) with
// k = nAgg^0.667·(a−λC), which avoids cancellation and covers the
// degenerate a = λC case, where the quadratic collapses to α = b/λC.
//
// Returns ErrIonizationDomain when nAgg is not positive, the discriminant is
// negative, or the inputs place the root outside the real line.
func DegreeOfIonization(a, b, nAgg, lambdaC float64) (float64, error) {
	if !(nAgg > 0) {
		return 0, fmt.Errorf("%w: aggregation number %g is not positive", errs.ErrIonizationDomain, nAgg)
	}

	k := math.Pow(nAgg, 0.667) * (a - lambdaC)
	radicand := 4*b*k + lambdaC*lambdaC
	if radicand < 0 {
		return 0, fmt.Errorf("%w: negative discriminant %g for a=%g b=%g", errs.ErrIonizationDomain, radicand, a, b)
	}

	den := math.Sqrt(radicand) + lambdaC
	if den == 0 {
		return 0, fmt.Errorf("%w: degenerate inputs a=%g b=%g lambdaC=%g", errs.ErrIonizationDomain, a, b, lambdaC)
	}

	alpha := 2 * b / den
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return 0, fmt.Errorf("%w: non-finite result for a=%g b=%g", errs.ErrIonizationDomain, a, b)
	}

	return alpha, nil
}
