package apn

import "math"

// sqrt2OverPi is the Gaussian prefactor sqrt(2/π) shared by the monomer
// expressions and their derivatives.
var sqrt2OverPi = math.Sqrt(2 / math.Pi)

// transitionNorm returns the normalization A(r) that pins the monomer
// concentration to exactly zero at zero total concentration.
func transitionNorm(r float64) float64 {
	x := 1 / (math.Sqrt2 * r)
	return 2 / (1 + sqrt2OverPi*r*math.Exp(-x*x) + math.Erf(x))
}

// Monomer returns the free monomer concentration [S1] at total surfactant
// concentration cS0, for the given cmc and relative transition width r.
//
// The result is exactly zero at cS0 = 0, grows with near-unit slope well
// below the cmc, passes through the transition with half that growth rate at
// cS0 = cmc, and saturates toward cmc above it. As r → 0⁺ the curve
// approaches the sharp pseudo-phase limit min(cS0, cmc).
//
// The caller must ensure cmc > 0 and r > 0 (see Params.Validate); the result
// is undefined otherwise.
func Monomer(cS0, cmc, r float64) float64 {
	return monomer(cS0, cmc, r, transitionNorm(r))
}

// monomer is the shared kernel; norm carries the precomputed transitionNorm(r)
// so series evaluations pay for it once.
func monomer(cS0, cmc, r, norm float64) float64 {
	s0 := cS0 / cmc
	u := (s0 - 1) / (math.Sqrt2 * r)
	// The erf tail is evaluated through Erfc: for large |u| the textbook
	// erf(u)-1 form underflows to zero before the (s0-1) factor can scale
	// it, which matters in the r → 0⁺ regime.
	bracket := sqrt2OverPi*r*math.Exp(-u*u) - (s0-1)*math.Erfc(u)

	return cmc * (1 - 0.5*norm*bracket)
}

// MonomerSeries evaluates Monomer over every concentration in cS0 and writes
// the results into dst, returning the filled slice. A nil dst is allocated;
// otherwise len(dst) must be at least len(cS0).
func MonomerSeries(dst, cS0 []float64, cmc, r float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(cS0))
	}

	norm := transitionNorm(r)
	for i, c := range cS0 {
		dst[i] = monomer(c, cmc, r, norm)
	}

	return dst
}
