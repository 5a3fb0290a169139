package fit

import "gonum.org/v1/gonum/mat"

// covarianceMatrix estimates the parameter covariance σ²·(JᵀJ)⁻¹ with
// σ² = RSS/(n−np), the residual variance. Returns nil when there are no
// residual degrees of freedom or the normal matrix cannot be inverted;
// callers treat a nil covariance as "parameters valid, uncertainty unknown".
func covarianceMatrix(jtj *mat.SymDense, rss float64, n, np int) *mat.SymDense {
	if n <= np {
		return nil
	}

	var chol mat.Cholesky
	if !chol.Factorize(jtj) {
		return nil
	}

	var cov mat.SymDense
	if err := chol.InverseTo(&cov); err != nil {
		return nil
	}

	sigma2 := rss / float64(n-np)
	cov.ScaleSym(sigma2, &cov)

	return &cov
}

// rSquared is the coefficient of determination 1 − RSS/TSS. Constant
// observations have no variance to explain and score zero.
func rSquared(observed, predicted []float64) float64 {
	if len(observed) == 0 {
		return 0
	}

	var mean float64
	for _, y := range observed {
		mean += y
	}
	mean /= float64(len(observed))

	ssTot := 0.0
	ssRes := 0.0
	for i := range observed {
		ssTot += (observed[i] - mean) * (observed[i] - mean)
		ssRes += (observed[i] - predicted[i]) * (observed[i] - predicted[i])
	}

	if ssTot == 0 {
		return 0
	}

	return 1.0 - (ssRes / ssTot)
}
