package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micellab/cmcfit/errs"
)

func TestNew(t *testing.T) {
	t.Run("ValidSeries", func(t *testing.T) {
		ds, err := New("sls", []float64{0, 1, 2}, []float64{3.5, 60, 120})
		require.NoError(t, err)
		assert.Equal(t, "sls", ds.Name)
		assert.Equal(t, 3, ds.Len())
	})

	t.Run("EmptyName", func(t *testing.T) {
		ds, err := New("", []float64{0, 1}, []float64{3.5, 60})
		require.NoError(t, err)
		assert.Empty(t, ds.Name)
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		_, err := New("sls", []float64{0, 1, 2}, []float64{3.5, 60})
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrLengthMismatch)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := New("sls", nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrEmptyDataset)
	})

	t.Run("NaNConcentration", func(t *testing.T) {
		_, err := New("sls", []float64{0, math.NaN()}, []float64{3.5, 60})
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrNonFiniteSample)
		assert.Contains(t, err.Error(), "row 1")
	})

	t.Run("InfConductivity", func(t *testing.T) {
		_, err := New("sls", []float64{0, 1}, []float64{3.5, math.Inf(1)})
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrNonFiniteSample)
	})

	t.Run("NegativeConcentration", func(t *testing.T) {
		_, err := New("sls", []float64{0, -0.5}, []float64{3.5, 60})
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrNegativeConcentration)
		assert.Contains(t, err.Error(), "row 1")
	})

	t.Run("NegativeConductivityAllowed", func(t *testing.T) {
		// Background-subtracted data can dip below zero.
		_, err := New("sls", []float64{0, 1}, []float64{-0.2, 60})
		require.NoError(t, err)
	})
}

func TestConcRange(t *testing.T) {
	ds, err := New("sls", []float64{4, 0, 25, 12}, []float64{10, 3.5, 1074, 600})
	require.NoError(t, err)

	lo, hi := ds.ConcRange()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 25.0, hi)
}

func TestSortedByConc(t *testing.T) {
	ds, err := New("sls", []float64{4, 0, 25, 12}, []float64{10, 3.5, 1074, 600})
	require.NoError(t, err)

	sorted := ds.SortedByConc()
	assert.Equal(t, []float64{0, 4, 12, 25}, sorted.Conc)
	assert.Equal(t, []float64{3.5, 10, 600, 1074}, sorted.Cond)
	assert.Equal(t, ds.Name, sorted.Name)

	// The receiver is untouched.
	assert.Equal(t, []float64{4, 0, 25, 12}, ds.Conc)
}

func TestSortedByConcStable(t *testing.T) {
	// Duplicate concentrations keep their original order.
	ds, err := New("dup", []float64{2, 1, 2, 1}, []float64{20, 10, 21, 11})
	require.NoError(t, err)

	sorted := ds.SortedByConc()
	assert.Equal(t, []float64{1, 1, 2, 2}, sorted.Conc)
	assert.Equal(t, []float64{10, 11, 20, 21}, sorted.Cond)
}
