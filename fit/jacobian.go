package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/micellab/cmcfit/errs"
)

// epsilon is the double-precision machine epsilon.
const epsilon = 2.220446049250313e-16

var sqrtEpsilon = math.Sqrt(epsilon)

// numericJacobian fills dst with a forward-difference approximation of the
// model Jacobian at p, reusing the already computed predictions fvec = f(p).
// The step for parameter j is h = √ε·max(|p_j|, √ε).
//
// eval is the budget-counted model evaluator. When the forward point lies
// outside the model domain or produces non-finite columns, the backward
// point is tried instead; only when both sides fail does the Jacobian as a
// whole fail. A budget error always aborts immediately.
func numericJacobian(dst *mat.Dense, p, fvec []float64, eval func(dst, p []float64) error, scratchF, scratchP []float64) error {
	for j := range p {
		h := sqrtEpsilon * math.Max(math.Abs(p[j]), sqrtEpsilon)

		var lastErr error
		filled := false
		for _, sign := range [2]float64{1, -1} {
			copy(scratchP, p)
			scratchP[j] = p[j] + sign*h

			if err := eval(scratchF, scratchP); err != nil {
				if errors.Is(err, errs.ErrTooManyEvaluations) {
					return err
				}
				lastErr = err

				continue
			}

			if fillColumn(dst, j, fvec, scratchF, sign*h) {
				filled = true
				break
			}
			lastErr = fmt.Errorf("non-finite difference quotient at step %g", sign*h)
		}

		if !filled {
			return fmt.Errorf("jacobian column %d undefined near %g: %v", j, p[j], lastErr)
		}
	}

	return nil
}

// fillColumn writes the difference quotients (fs−fvec)/h into column j,
// reporting whether every entry came out finite.
func fillColumn(dst *mat.Dense, j int, fvec, fs []float64, h float64) bool {
	for i := range fvec {
		d := (fs[i] - fvec[i]) / h
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return false
		}
		dst.Set(i, j, d)
	}

	return true
}

// finiteMatrix reports whether every entry of m is finite. Analytic
// Jacobians pass through this check before entering the normal equations.
func finiteMatrix(m *mat.Dense) bool {
	rows, cols := m.Dims()
	for i := range rows {
		for j := range cols {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}

	return true
}
