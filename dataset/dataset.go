// Package dataset defines the conductivity sample sets consumed by the
// fitting pipeline, their validation rules, and CSV ingestion.
//
// A Dataset holds one measurement series in columnar form: total surfactant
// concentrations paired with measured conductivities. The fitter treats a
// Dataset as immutable; helpers that need a different point order return
// copies.
//
// The conventional units are mM for concentration and µS/cm for
// conductivity, but nothing in this module converts units: the fitted
// parameters come out on whatever scale the data carries.
package dataset

import (
	"fmt"
	"math"
	"slices"

	"github.com/micellab/cmcfit/errs"
)

// Dataset is one conductivity measurement series in columnar form.
// Conc[i] and Cond[i] describe the same sample.
type Dataset struct {
	// Name identifies the series, for reports and archive storage. It may be
	// empty for throwaway fits; the archive encoder rejects unnamed datasets.
	Name string
	// Conc holds the total surfactant concentrations, Cond the measured
	// conductivities. Equal lengths, finite values, Conc[i] ≥ 0.
	Conc []float64
	Cond []float64
}

// New builds a validated Dataset. The slices are referenced, not copied;
// the caller must not mutate them afterwards.
func New(name string, conc, cond []float64) (Dataset, error) {
	d := Dataset{Name: name, Conc: conc, Cond: cond}
	if err := d.Validate(); err != nil {
		return Dataset{}, err
	}

	return d, nil
}

// Len returns the number of samples.
func (d Dataset) Len() int {
	return len(d.Conc)
}

// Validate checks the column invariants: equal lengths, at least one
// sample, finite values, and non-negative concentrations.
func (d Dataset) Validate() error {
	if len(d.Conc) != len(d.Cond) {
		return fmt.Errorf("%w: %d concentrations, %d conductivities", errs.ErrLengthMismatch, len(d.Conc), len(d.Cond))
	}
	if len(d.Conc) == 0 {
		return errs.ErrEmptyDataset
	}

	for i, c := range d.Conc {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: concentration %g at row %d", errs.ErrNonFiniteSample, c, i)
		}
		if c < 0 {
			return fmt.Errorf("%w: %g at row %d", errs.ErrNegativeConcentration, c, i)
		}
		k := d.Cond[i]
		if math.IsNaN(k) || math.IsInf(k, 0) {
			return fmt.Errorf("%w: conductivity %g at row %d", errs.ErrNonFiniteSample, k, i)
		}
	}

	return nil
}

// ConcRange returns the smallest and largest concentration. The fitter does
// not care about point order, so the range is scanned, not assumed sorted.
func (d Dataset) ConcRange() (lo, hi float64) {
	if len(d.Conc) == 0 {
		return 0, 0
	}

	lo, hi = d.Conc[0], d.Conc[0]
	for _, c := range d.Conc[1:] {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}

	return lo, hi
}

// SortedByConc returns a copy of the dataset with samples ordered by
// ascending concentration, the order curve rendering wants. The sort is
// stable so replicate measurements keep their input order.
func (d Dataset) SortedByConc() Dataset {
	perm := make([]int, d.Len())
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(a, b int) int {
		switch {
		case d.Conc[a] < d.Conc[b]:
			return -1
		case d.Conc[a] > d.Conc[b]:
			return 1
		default:
			return 0
		}
	})

	out := Dataset{
		Name: d.Name,
		Conc: make([]float64, d.Len()),
		Cond: make([]float64, d.Len()),
	}
	for i, j := range perm {
		out.Conc[i] = d.Conc[j]
		out.Cond[i] = d.Cond[j]
	}

	return out
}
