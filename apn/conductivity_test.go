package apn

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestConductivityBackgroundAtZero(t *testing.T) {
	p := Params{CMC: 8, R: 0.1, A: 70, B: 30, C: 10}
	assert.InDelta(t, p.C, Conductivity(0, p), 1e-9)
}

// TestConductivityLinearRegimes checks the two asymptotic branches for a
// near-sharp transition: slope a with intercept c below the cmc, slope b
// with intercept (a−b)·cmc+c above it.
func TestConductivityLinearRegimes(t *testing.T) {
	p := Params{CMC: 8, R: 1e-4, A: 70, B: 30, C: 10}

	for _, c := range []float64{1, 3, 5, 7} {
		assert.InDeltaf(t, p.A*c+p.C, Conductivity(c, p), 1e-6, "pre-micellar branch at cS0=%g", c)
	}
	for _, c := range []float64{9, 12, 20, 25} {
		want := p.A*p.CMC + p.B*(c-p.CMC) + p.C
		assert.InDeltaf(t, want, Conductivity(c, p), 1e-6, "micellar branch at cS0=%g", c)
	}
}

func TestConductivityMatchesMonomerSplit(t *testing.T) {
	p := Params{CMC: 8, R: 0.8, A: 70, B: 30, C: 10}

	for c := 0.0; c <= 25.0; c += 0.5 {
		cS1 := Monomer(c, p.CMC, p.R)
		want := p.A*cS1 + p.B*(c-cS1) + p.C
		require.Equal(t, want, Conductivity(c, p)) //nolint:testifylint // identical evaluation path
	}
}

func TestConductivitySeries(t *testing.T) {
	p := Params{CMC: 8, R: 0.8, A: 70, B: 30, C: 10}
	cS0 := []float64{0, 0.5, 2, 7.5, 8, 8.5, 14, 25}

	t.Run("allocates on nil dst", func(t *testing.T) {
		got := ConductivitySeries(nil, cS0, p)
		require.Len(t, got, len(cS0))
		for i, c := range cS0 {
			assert.Equal(t, Conductivity(c, p), got[i]) //nolint:testifylint // identical evaluation path
		}
	})

	t.Run("reuses provided dst", func(t *testing.T) {
		dst := make([]float64, len(cS0))
		got := ConductivitySeries(dst, cS0, p)
		require.Same(t, &dst[0], &got[0])
	})
}

// TestConductivityJacobianLinearColumns verifies the columns with exact
// closed forms: the slope and background derivatives fall straight out of
// the κ = a·[S1] + b·([S]0−[S1]) + c decomposition.
func TestConductivityJacobianLinearColumns(t *testing.T) {
	p := Params{CMC: 8, R: 0.35, A: 70, B: 30, C: 10}
	cS0 := []float64{0.5, 2, 5, 7, 8, 9, 12, 18, 25}

	jac := mat.NewDense(len(cS0), NumParams, nil)
	ConductivityJacobian(jac, cS0, p)

	for i, c := range cS0 {
		cS1 := Monomer(c, p.CMC, p.R)
		assert.InDelta(t, cS1, jac.At(i, 2), 1e-12)
		assert.InDelta(t, c-cS1, jac.At(i, 3), 1e-12)
		assert.Equal(t, 1.0, jac.At(i, 4)) //nolint:testifylint // stored constant
	}
}

// TestConductivityJacobianMatchesFiniteDifference cross-checks every
// analytic column against central differences over parameter sets that
// exercise both narrow and wide transitions.
func TestConductivityJacobianMatchesFiniteDifference(t *testing.T) {
	cS0 := []float64{0.5, 2, 5, 7, 7.5, 8, 8.5, 9, 12, 18, 25}
	paramSets := []Params{
		{CMC: 8, R: 0.1, A: 70, B: 30, C: 10},
		{CMC: 8, R: 0.8, A: 70, B: 30, C: 10},
		{CMC: 5, R: 0.35, A: 55, B: 22, C: 2.5},
	}

	for _, p := range paramSets {
		t.Run(fmt.Sprintf("cmc=%g,r=%g", p.CMC, p.R), func(t *testing.T) {
			jac := mat.NewDense(len(cS0), NumParams, nil)
			ConductivityJacobian(jac, cS0, p)

			base := p.Vector()
			for j := range NumParams {
				h := 1e-6 * math.Max(math.Abs(base[j]), 1e-2)

				up := append([]float64(nil), base...)
				down := append([]float64(nil), base...)
				up[j] += h
				down[j] -= h

				pUp, err := FromVector(up)
				require.NoError(t, err)
				pDown, err := FromVector(down)
				require.NoError(t, err)

				for i, c := range cS0 {
					fd := (Conductivity(c, pUp) - Conductivity(c, pDown)) / (2 * h)
					tol := 1e-4 * (1 + math.Abs(fd))
					assert.InDeltaf(t, fd, jac.At(i, j), tol, "param %d at cS0=%g", j, c)
				}
			}
		})
	}
}

func BenchmarkConductivityJacobian(b *testing.B) {
	cS0 := make([]float64, 256)
	for i := range cS0 {
		cS0[i] = float64(i) * 0.1
	}
	p := DefaultGuess()
	jac := mat.NewDense(len(cS0), NumParams, nil)

	b.ReportAllocs()
	for b.Loop() {
		ConductivityJacobian(jac, cS0, p)
	}
}
