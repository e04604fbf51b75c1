package passthrough

import (
	"math"

	apperrors "fxcpi/internal/errors"
	"fxcpi/pkg/contracts/domain"
)

// FitAR1 regresses v(t) on [1, v(t-1)] over the pairs where both are present.
// The lag is taken by position, so a gap removes the pairs on either side.
func FitAR1(values []float64) (*domain.RegressionResult, error) {
	cur := make([]float64, 0, len(values))
	prev := make([]float64, 0, len(values))
	for i := 1; i < len(values); i++ {
		if math.IsNaN(values[i]) || math.IsNaN(values[i-1]) {
			continue
		}
		cur = append(cur, values[i])
		prev = append(prev, values[i-1])
	}
	return OLS(cur, [][]float64{prev}, []string{domain.ColInflLag1})
}

// HalfLife is the number of periods for a shock to halve under an AR(1)
// coefficient rho: ln(0.5) / ln(|rho|). |rho| >= 1 has no finite half-life.
func HalfLife(rho float64) (float64, error) {
	if math.IsNaN(rho) || math.Abs(rho) >= 1 {
		return math.NaN(), &apperrors.NonStationaryError{Rho: rho}
	}
	if rho == 0 {
		return 0, nil
	}
	return math.Log(0.5) / math.Log(math.Abs(rho)), nil
}

// EstimatePersistence fits a whole-sample AR(1) and derives the half-life
// and the share of a shock left after three periods. A non-stationary
// coefficient leaves HalfLife missing and is reported in Err.
func EstimatePersistence(name string, values []float64) (*domain.Persistence, error) {
	r, err := FitAR1(values)
	if err != nil {
		return nil, err
	}
	rho := r.Coefficients[0]
	p := &domain.Persistence{
		Series:          name,
		Rho:             rho,
		Intercept:       r.Intercept,
		RemainingAfter3: math.Pow(rho, 3),
		N:               r.N,
	}
	p.HalfLife, p.Err = HalfLife(rho)
	return p, nil
}

// compact drops missing values, keeping order
func compact(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
