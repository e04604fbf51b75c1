package passthrough

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	apperrors "fxcpi/internal/errors"
	"fxcpi/pkg/contracts/domain"
)

// OLS fits y = c + X b by the normal equations b = (X'X)^-1 X'y. Each entry
// of regressors is one column of length len(y); names labels them. An
// intercept is always included.
//
// Fewer observations than parameters is an InsufficientDataError. A constant
// regressor or a singular or ill-conditioned X'X is an UnstableFitError.
func OLS(y []float64, regressors [][]float64, names []string) (*domain.RegressionResult, error) {
	if len(regressors) != len(names) {
		return nil, fmt.Errorf("ols: %d regressors but %d names", len(regressors), len(names))
	}
	n, k := len(y), len(regressors)+1
	for j, col := range regressors {
		if len(col) != n {
			return nil, fmt.Errorf("ols: regressor %s has %d rows, want %d", names[j], len(col), n)
		}
	}
	if n < k {
		return nil, &apperrors.InsufficientDataError{Need: k, Have: n}
	}
	for j, col := range regressors {
		if stat.Variance(col, nil) == 0 {
			return nil, &apperrors.UnstableFitError{Reason: "zero variance in " + names[j], N: n}
		}
	}

	X := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
		for j, col := range regressors {
			X.Set(i, j+1, col[i])
		}
	}
	Y := mat.NewVecDense(n, append([]float64(nil), y...))

	var xtx mat.Dense
	xtx.Mul(X.T(), X)

	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, &apperrors.UnstableFitError{Reason: "singular design: " + err.Error(), N: n}
	}

	var xty, b mat.VecDense
	xty.MulVec(X.T(), Y)
	b.MulVec(&xtxInv, &xty)

	var fitted, resid mat.VecDense
	fitted.MulVec(X, &b)
	resid.SubVec(Y, &fitted)
	sse := mat.Dot(&resid, &resid)

	ybar := stat.Mean(y, nil)
	sst := 0.0
	for _, v := range y {
		sst += (v - ybar) * (v - ybar)
	}

	res := &domain.RegressionResult{
		Terms:        append([]string(nil), names...),
		Coefficients: make([]float64, k-1),
		StdErrors:    make([]float64, k-1),
		TStats:       make([]float64, k-1),
		Intercept:    b.AtVec(0),
		N:            n,
		RSquared:     math.NaN(),
	}
	if sst > 0 {
		res.RSquared = 1 - sse/sst
	}

	sigma2 := math.NaN()
	if dof := n - k; dof > 0 {
		sigma2 = sse / float64(dof)
	}
	for j := 1; j < k; j++ {
		coef := b.AtVec(j)
		se := math.Sqrt(sigma2 * xtxInv.At(j, j))
		res.Coefficients[j-1] = coef
		res.StdErrors[j-1] = se
		res.TStats[j-1] = coef / se
	}
	return res, nil
}
