package apn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Conductivity returns the model conductivity κ at total concentration cS0:
// the monomeric and micellized populations conduct with slopes A and B on
// top of the solvent background C.
func Conductivity(cS0 float64, p Params) float64 {
	cS1 := Monomer(cS0, p.CMC, p.R)
	return p.A*cS1 + p.B*(cS0-cS1) + p.C
}

// ConductivitySeries evaluates Conductivity over every concentration in cS0
// and writes the results into dst, returning the filled slice. A nil dst is
// allocated; otherwise len(dst) must be at least len(cS0).
func ConductivitySeries(dst, cS0 []float64, p Params) []float64 {
	if dst == nil {
		dst = make([]float64, len(cS0))
	}

	norm := transitionNorm(p.R)
	for i, c := range cS0 {
		cS1 := monomer(c, p.CMC, p.R, norm)
		dst[i] = p.A*cS1 + p.B*(c-cS1) + p.C
	}

	return dst
}

// ConductivityJacobian fills dst with the analytic partial derivatives of
// the model conductivity with respect to (cmc, r, a, b, c), one row per
// concentration in cS0. dst must be a len(cS0)×NumParams matrix.
//
// The closed forms follow from differentiating the monomer expression:
//
//	∂κ/∂cmc = (a−b)·([S1]/cmc − s0·∂[S1]/∂[S]0)
//	∂κ/∂r   = (a−b)·∂[S1]/∂r
//	∂κ/∂a   = [S1],  ∂κ/∂b = [S]0 − [S1],  ∂κ/∂c = 1
//
// They stay finite as r → 0⁺, where finite differencing loses accuracy.
// The caller must ensure p satisfies Params.Validate.
func ConductivityJacobian(dst *mat.Dense, cS0 []float64, p Params) {
	norm := transitionNorm(p.R)
	// exp(-1/(2r²)) reappears in dA/dr.
	xr := 1 / (math.Sqrt2 * p.R)
	expNorm := math.Exp(-xr * xr)
	slopeDiff := p.A - p.B

	for i, c := range cS0 {
		s0 := c / p.CMC
		u := (s0 - 1) / (math.Sqrt2 * p.R)
		gauss := math.Exp(-u * u)
		bracket := sqrt2OverPi*p.R*gauss - (s0-1)*math.Erfc(u)

		cS1 := p.CMC * (1 - 0.5*norm*bracket)
		// slope = ∂[S1]/∂[S]0, the smoothed step derivative.
		slope := 0.5 * norm * math.Erfc(u)

		dCMC := cS1/p.CMC - s0*slope
		dR := 0.5 * p.CMC * sqrt2OverPi * (0.5*norm*norm*expNorm*bracket - norm*gauss)

		dst.Set(i, 0, slopeDiff*dCMC)
		dst.Set(i, 1, slopeDiff*dR)
		dst.Set(i, 2, cS1)
		dst.Set(i, 3, c-cS1)
		dst.Set(i, 4, 1)
	}
}
