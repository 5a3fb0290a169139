package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/micellab/cmcfit/errs"
	"github.com/micellab/cmcfit/internal/options"
)

// Damping schedule for the λ factor. The floor keeps λ strictly positive so
// growth after a rejection always takes effect; the ceiling bounds the
// retreat toward gradient descent when nothing improves the cost.
const (
	dampingGrow   = 10.0
	dampingShrink = 0.1
	dampingFloor  = 1e-14
	dampingCeil   = 1e100
)

var errDampingOverflow = errors.New("damping overflow without progress")

// Fit minimizes Σ (Ys[i] − Model(Xs[i]; p))² over p, starting from
// problem.Init, using the Levenberg–Marquardt method.
//
// A nil error means the fit converged. When the evaluation budget runs out
// the returned error wraps errs.ErrTooManyEvaluations and the Result still
// carries the best iterate found together with its diagnostics; budget
// exhaustion is never reported as success. Validation failures wrap
// errs.ErrInvalidProblem, and a model that cannot be evaluated at the
// starting point wraps errs.ErrInvalidInitialGuess.
func Fit(problem Problem, opts ...Option) (Result, error) {
	if err := problem.validate(); err != nil {
		return Result{}, err
	}

	cfg := defaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return Result{}, err
	}

	n := len(problem.Xs)
	np := len(problem.Init)

	evals := 0
	evalModel := func(dst, pt []float64) error {
		if evals >= cfg.maxEvals {
			return fmt.Errorf("%w: budget of %d model evaluations exhausted", errs.ErrTooManyEvaluations, cfg.maxEvals)
		}
		evals++

		return problem.Model(dst, problem.Xs, pt)
	}

	p := append([]float64(nil), problem.Init...)
	fvec := make([]float64, n)
	resid := make([]float64, n)

	if err := evalModel(fvec, p); err != nil {
		return Result{}, fmt.Errorf("%w: %v", errs.ErrInvalidInitialGuess, err)
	}
	rss, finite := residualSumSquares(resid, problem.Ys, fvec)
	if !finite {
		return Result{}, fmt.Errorf("%w: non-finite model output", errs.ErrInvalidInitialGuess)
	}

	jac := mat.NewDense(n, np, nil)
	scratchF := make([]float64, n)
	scratchP := make([]float64, np)

	jacobianAt := func(pt []float64) error {
		if problem.Jac != nil {
			if err := problem.Jac(jac, problem.Xs, pt); err != nil {
				return err
			}
			if !finiteMatrix(jac) {
				return errors.New("analytic jacobian produced non-finite entries")
			}

			return nil
		}

		return numericJacobian(jac, pt, fvec, evalModel, scratchF, scratchP)
	}

	var jtj *mat.SymDense
	jtr := make([]float64, np)
	delta := make([]float64, np)
	trialP := make([]float64, np)
	trialF := make([]float64, n)
	trialResid := make([]float64, n)

	lambda := cfg.damping
	iters := 0
	jacFresh := false
	status := StatusNone
	var fitErr error

	// rejectStep raises the damping after a rejected trial. A proposed step
	// already below the ptol threshold cannot move the iterate, so it ends
	// the search as converged instead.
	rejectStep := func(stepNorm float64) (stop bool) {
		if stepNorm <= cfg.ptol*(floats.Norm(p, 2)+cfg.ptol) {
			status = StatusConverged
			return true
		}
		lambda *= dampingGrow
		if lambda > dampingCeil {
			status, fitErr = StatusFailed, errDampingOverflow
			return true
		}

		return false
	}

outer:
	for {
		iters++

		if err := jacobianAt(p); err != nil {
			status, fitErr = failure(err)
			break
		}
		jacFresh = true
		if jtj == nil {
			jtj = mat.NewSymDense(np, nil)
		}
		formNormalEquations(jtj, jtr, jac, resid)

		for {
			if !solveDamped(delta, jtj, jtr, lambda) {
				// Not positive definite at this damping.
				lambda *= dampingGrow
				if lambda > dampingCeil {
					status, fitErr = StatusFailed, errDampingOverflow
					break outer
				}

				continue
			}

			stepNorm := floats.Norm(delta, 2)
			floats.AddTo(trialP, p, delta)

			if err := evalModel(trialF, trialP); err != nil {
				if errors.Is(err, errs.ErrTooManyEvaluations) {
					status, fitErr = StatusMaxEvals, err
					break outer
				}
				// Trial lies outside the model domain.
				if rejectStep(stepNorm) {
					break outer
				}

				continue
			}

			trialRSS, trialFinite := residualSumSquares(trialResid, problem.Ys, trialF)
			if !trialFinite || trialRSS >= rss {
				if rejectStep(stepNorm) {
					break outer
				}

				continue
			}

			drop := rss - trialRSS
			copy(p, trialP)
			fvec, trialF = trialF, fvec
			resid, trialResid = trialResid, resid
			rss = trialRSS
			lambda = math.Max(lambda*dampingShrink, dampingFloor)
			jacFresh = false

			if drop <= cfg.ftol*rss || stepNorm <= cfg.ptol*(floats.Norm(p, 2)+cfg.ptol) {
				status = StatusConverged
				break outer
			}

			continue outer
		}
	}

	// The covariance wants JᵀJ at the optimum. When the last accepted step
	// outran the Jacobian, refresh it if the budget still allows; otherwise
	// the normal matrix is at most one accepted step stale.
	var cov *mat.SymDense
	if jtj != nil {
		if status == StatusConverged && !jacFresh {
			if err := jacobianAt(p); err == nil {
				formNormalEquations(jtj, jtr, jac, resid)
			}
		}
		cov = covarianceMatrix(jtj, rss, n, np)
	}

	result := Result{
		Params:     p,
		Covariance: cov,
		RSS:        rss,
		RSquared:   rSquared(problem.Ys, fvec),
		Evals:      evals,
		Iters:      iters,
		Status:     status,
	}

	return result, fitErr
}

// failure classifies an error that aborts the outer iteration.
func failure(err error) (Status, error) {
	if errors.Is(err, errs.ErrTooManyEvaluations) {
		return StatusMaxEvals, err
	}

	return StatusFailed, fmt.Errorf("jacobian evaluation: %w", err)
}

// residualSumSquares fills dst with ys−fs and returns the sum of squares,
// reporting false when the sum is not finite.
func residualSumSquares(dst, ys, fs []float64) (float64, bool) {
	var rss float64
	for i := range ys {
		d := ys[i] - fs[i]
		dst[i] = d
		rss += d * d
	}

	return rss, !math.IsNaN(rss) && !math.IsInf(rss, 0)
}

// formNormalEquations fills jtj = JᵀJ and jtr = Jᵀr from the current
// Jacobian and residual vector.
func formNormalEquations(jtj *mat.SymDense, jtr []float64, jac *mat.Dense, resid []float64) {
	n, np := jac.Dims()
	for j := range np {
		for k := j; k < np; k++ {
			var s float64
			for i := range n {
				s += jac.At(i, j) * jac.At(i, k)
			}
			jtj.SetSym(j, k, s)
		}

		var g float64
		for i := range n {
			g += jac.At(i, j) * resid[i]
		}
		jtr[j] = g
	}
}

// solveDamped solves (JᵀJ + λ·diag(JᵀJ))·δ = Jᵀr by Cholesky factorization,
// reporting false when the damped matrix is not positive definite. A zero
// or negative diagonal entry falls back to unit scaling so the damping
// always bites.
func solveDamped(delta []float64, jtj *mat.SymDense, jtr []float64, lambda float64) bool {
	np := len(jtr)

	damped := mat.NewSymDense(np, nil)
	damped.CopySym(jtj)
	for j := range np {
		d := jtj.At(j, j)
		if d <= 0 {
			d = 1
		}
		damped.SetSym(j, j, jtj.At(j, j)+lambda*d)
	}

	var chol mat.Cholesky
	if !chol.Factorize(damped) {
		return false
	}

	return chol.SolveVecTo(mat.NewVecDense(np, delta), mat.NewVecDense(np, jtr)) == nil
}
