// Package fit implements damped least-squares (Levenberg–Marquardt) curve
// fitting for small, dense nonlinear models.
//
// The optimizer minimizes the residual sum of squares between observed
// values and a vectorized model function over a handful of parameters. It
// is built for the conductivity-fitting workload: tens to hundreds of
// samples, five parameters, and models whose domain excludes parts of the
// parameter space.
//
// # Key Features
//
//   - **Vectorized model contract**: the model fills a prediction slice per
//     call, so series evaluation stays allocation-free
//   - **Domain-aware stepping**: a model error on a trial vector rejects the
//     step instead of aborting the fit
//   - **Analytic or numeric Jacobian**: callers supply closed-form partials
//     or fall back to forward differences with a specified step
//   - **Hard evaluation budget**: every model call counts; exhausting the
//     budget surfaces errs.ErrTooManyEvaluations with the best-found iterate
//   - **Uncertainty output**: parameter covariance σ²·(JᵀJ)⁻¹ and standard
//     errors when the normal matrix is invertible
//
// # Usage
//
//	problem := fit.Problem{
//	    Xs:    concentrations,
//	    Ys:    conductivities,
//	    Model: model,      // func(dst, xs, p []float64) error
//	    Jac:   jacobian,   // optional, nil selects forward differences
//	    Init:  guess,
//	}
//
//	result, err := fit.Fit(problem, fit.WithMaxEvals(2000))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	stderrs, err := result.StdErrors()
//
// # Algorithm
//
// Each iteration solves the damped normal equations
//
//	(JᵀJ + λ·diag(JᵀJ))·δ = Jᵀr
//
// by Cholesky factorization. A step that lowers the residual sum of squares
// is accepted and relaxes the damping (λ/10); a failed factorization, a
// model domain error, a non-finite residual, or a cost increase rejects the
// step and raises it (λ·10). Convergence is declared when the cost drop
// falls below ftol·RSS or the step norm below ptol·(‖p‖+ptol).
package fit
