package apn

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMonomerZeroConcentration verifies the normalization: the free monomer
// concentration vanishes with the total concentration for any width.
func TestMonomerZeroConcentration(t *testing.T) {
	for _, r := range []float64{1e-4, 0.01, 0.1, 0.5, 1.0, 3.0} {
		t.Run(fmt.Sprintf("r=%g", r), func(t *testing.T) {
			assert.InDelta(t, 0.0, Monomer(0, 8.0, r), 1e-12)
			assert.InDelta(t, 0.0, Monomer(0, 0.3, r), 1e-12)
		})
	}
}

// TestMonomerAtCMC pins the closed form at the transition midpoint, where
// the bracket collapses to sqrt(2/π)·r.
func TestMonomerAtCMC(t *testing.T) {
	for _, tt := range []struct{ cmc, r float64 }{
		{cmc: 8.0, r: 0.1},
		{cmc: 8.0, r: 0.8},
		{cmc: 0.9, r: 0.05},
		{cmc: 150.0, r: 0.3},
	} {
		t.Run(fmt.Sprintf("cmc=%g,r=%g", tt.cmc, tt.r), func(t *testing.T) {
			want := tt.cmc * (1 - 0.5*transitionNorm(tt.r)*sqrt2OverPi*tt.r)
			assert.InDelta(t, want, Monomer(tt.cmc, tt.cmc, tt.r), 1e-12)
		})
	}

	// Regression anchor for the default-guess shape.
	assert.InDelta(t, 7.6808461756788536, Monomer(8.0, 8.0, 0.1), 1e-12)
}

// TestMonomerMidpointGrowthRate checks that the monomer concentration grows
// at half the ideal rate when crossing the cmc: d[S1]/d[S]0 at cS0 = cmc is
// A(r)/2, which tends to 1/2 for narrow transitions.
func TestMonomerMidpointGrowthRate(t *testing.T) {
	const (
		cmc = 8.0
		r   = 0.1
		h   = 1e-4
	)

	slope := (Monomer(cmc+h, cmc, r) - Monomer(cmc-h, cmc, r)) / (2 * h)
	assert.InDelta(t, 0.5*transitionNorm(r), slope, 1e-8)
	assert.InDelta(t, 0.5, slope, 1e-6)
}

// TestMonomerSlopeDecreasing verifies the smoothed-step character: the
// growth rate of [S1] against [S]0 only ever falls as micelles take over.
func TestMonomerSlopeDecreasing(t *testing.T) {
	const (
		cmc  = 8.0
		r    = 0.5
		step = 0.5
	)

	prev := math.Inf(1)
	for c := 0.0; c < 16.0; c += step {
		secant := (Monomer(c+step, cmc, r) - Monomer(c, cmc, r)) / step
		require.Lessf(t, secant, prev, "secant at cS0=%g should drop below %g", c, prev)
		require.Greater(t, secant, 0.0)
		prev = secant
	}
}

// TestMonomerSharpLimit drives r toward zero, where the model reduces to the
// pseudo-phase picture [S1] = min([S]0, cmc).
func TestMonomerSharpLimit(t *testing.T) {
	const (
		cmc = 8.0
		r   = 1e-4
	)

	for _, c := range []float64{1, 3, 5, 7} {
		assert.InDeltaf(t, c, Monomer(c, cmc, r), 1e-9, "below the cmc all surfactant stays monomeric (cS0=%g)", c)
	}
	for _, c := range []float64{9, 12, 20, 25} {
		assert.InDeltaf(t, cmc, Monomer(c, cmc, r), 1e-9, "above the cmc the monomer pool saturates (cS0=%g)", c)
	}
}

// TestMonomerBounded checks 0 ≤ [S1] ≤ min([S]0, cmc·(1+ε)) across widths,
// including wide transitions where the normalization differs visibly from 1.
func TestMonomerBounded(t *testing.T) {
	const cmc = 8.0

	for _, r := range []float64{0.05, 0.2, 0.8, 2.0} {
		for c := 0.25; c <= 40.0; c += 0.25 {
			got := Monomer(c, cmc, r)
			require.GreaterOrEqualf(t, got, 0.0, "r=%g cS0=%g", r, c)
			require.LessOrEqualf(t, got, c+1e-12, "monomer cannot exceed total (r=%g cS0=%g)", r, c)
		}
	}
}

func TestMonomerSeries(t *testing.T) {
	const (
		cmc = 8.0
		r   = 0.3
	)
	cS0 := []float64{0, 0.5, 2, 7.5, 8, 8.5, 14, 25}

	t.Run("allocates on nil dst", func(t *testing.T) {
		got := MonomerSeries(nil, cS0, cmc, r)
		require.Len(t, got, len(cS0))
		for i, c := range cS0 {
			assert.Equal(t, Monomer(c, cmc, r), got[i]) //nolint:testifylint // identical evaluation path
		}
	})

	t.Run("reuses provided dst", func(t *testing.T) {
		dst := make([]float64, len(cS0))
		got := MonomerSeries(dst, cS0, cmc, r)
		require.Same(t, &dst[0], &got[0])
	})
}

func BenchmarkMonomerSeries(b *testing.B) {
	cS0 := make([]float64, 256)
	for i := range cS0 {
		cS0[i] = float64(i) * 0.1
	}
	dst := make([]float64, len(cS0))

	b.ReportAllocs()
	for b.Loop() {
		MonomerSeries(dst, cS0, 8.0, 0.1)
	}
}
