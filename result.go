package cmcfit

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/micellab/cmcfit/apn"
	"github.com/micellab/cmcfit/archive"
	"github.com/micellab/cmcfit/dataset"
	"github.com/micellab/cmcfit/fit"
)

// Result carries the outcome of one cmc fit: the fitted parameters, their
// uncertainties, goodness-of-fit diagnostics, and the physical constants the
// degree-of-ionization estimate uses.
//
// Values are on the scale of the input data; with the conventional units the
// cmc comes out in mM and the slopes in µS·cm⁻¹·mM⁻¹.
type Result struct {
	// Dataset is the sample set the fit ran on.
	Dataset dataset.Dataset

	// Params holds the fitted model parameters.
	Params apn.Params
	// StdErr holds the one-sigma standard error of each parameter, in
	// Params' own shape. Meaningful only when StdErrOK is true.
	StdErr apn.Params
	// StdErrOK reports whether the covariance matrix was available. It is
	// false when the Jacobian was singular at the solution or the fit had
	// no spare degrees of freedom.
	StdErrOK bool

	// RSS is the residual sum of squares at Params.
	RSS float64
	// RSquared is the coefficient of determination at Params.
	RSquared float64
	// Evals counts model evaluations, Iters outer optimizer iterations.
	Evals int
	Iters int
	// Status records the optimizer's stopping condition.
	Status fit.Status

	// NAgg and LambdaC are the aggregation number and counterion molar
	// conductivity the degree-of-ionization estimate uses.
	NAgg    float64
	LambdaC float64
}

// DegreeOfIonization derives the micellar degree of ionization α from the
// fitted slopes and the result's physical constants.
//
// Returns errs.ErrIonizationDomain when the fitted slopes admit no real
// solution.
func (r Result) DegreeOfIonization() (float64, error) {
	return apn.DegreeOfIonization(r.Params.A, r.Params.B, r.NAgg, r.LambdaC)
}

// Curve samples the fitted model at n evenly spaced concentrations spanning
// the dataset's concentration range, the series a conductivity-vs-fit plot
// overlays on the data. n must be at least 2.
func (r Result) Curve(n int) (conc, cond []float64, err error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("curve needs at least 2 samples, got %d", n)
	}

	lo, hi := r.Dataset.ConcRange()
	conc = floats.Span(make([]float64, n), lo, hi)
	cond = apn.ConductivitySeries(nil, conc, r.Params)

	return conc, cond, nil
}

// FitRecord converts the result into its archive representation, ready for
// Encoder.SetFitRecord.
func (r Result) FitRecord() archive.FitRecord {
	rec := archive.FitRecord{
		Params:    r.Params,
		RSS:       r.RSS,
		Converged: r.Status == fit.StatusConverged,
		StdErrOK:  r.StdErrOK,
	}
	copy(rec.StdErr[:], r.StdErr.Vector())

	if alpha, err := r.DegreeOfIonization(); err == nil {
		rec.Alpha = alpha
		rec.AlphaOK = true
	} else {
		rec.Alpha = math.NaN()
	}

	return rec
}

// String formats a plain-text fit report:
//
//	fit of "sls-water" (70 points): converged after 9 iterations, 10 evaluations
//	  cmc = 8.226 ± 0.079
//	  r   = 0.1277 ± 0.014
//	  ...
//	  rss = 814.2, R² = 0.99988
//	  α   = 0.448 (nAgg = 50, λC = 50.1)
func (r Result) String() string {
	name := r.Dataset.Name
	if name == "" {
		name = "dataset"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "fit of %q (%d points): %s after %d iterations, %d evaluations\n",
		name, r.Dataset.Len(), r.Status, r.Iters, r.Evals)

	labels := [apn.NumParams]string{"cmc", "r", "a", "b", "c"}
	values := r.Params.Vector()
	stdErrs := r.StdErr.Vector()
	for i, label := range labels {
		if r.StdErrOK {
			fmt.Fprintf(&sb, "  %-3s = %.4g ± %.2g\n", label, values[i], stdErrs[i])
		} else {
			fmt.Fprintf(&sb, "  %-3s = %.4g (uncertainty unavailable)\n", label, values[i])
		}
	}

	fmt.Fprintf(&sb, "  rss = %.4g, R² = %.5f\n", r.RSS, r.RSquared)
	if alpha, err := r.DegreeOfIonization(); err == nil {
		fmt.Fprintf(&sb, "  α   = %.3f (nAgg = %g, λC = %g)\n", alpha, r.NAgg, r.LambdaC)
	}

	return sb.String()
}
