package passthrough

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"fxcpi/pkg/contracts/domain"
)

// LagProfile returns corr(y(t), x(t-lag)) for lag = 0..maxLag, lag 0 first.
// Each lag uses the pairs where both aligned values are present. Fewer than
// two pairs or a constant side gives a missing correlation. A negative
// maxLag gives an empty profile.
func LagProfile(y, x []float64, maxLag int) []domain.LagCorrelation {
	if maxLag < 0 {
		return []domain.LagCorrelation{}
	}
	profile := make([]domain.LagCorrelation, 0, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		var ys, xs []float64
		for t := lag; t < len(y) && t-lag < len(x); t++ {
			yv, xv := y[t], x[t-lag]
			if math.IsNaN(yv) || math.IsNaN(xv) {
				continue
			}
			ys = append(ys, yv)
			xs = append(xs, xv)
		}
		profile = append(profile, domain.LagCorrelation{
			Lag:         lag,
			Correlation: pearson(ys, xs),
			N:           len(ys),
		})
	}
	return profile
}

// PeakLag returns the entry with the largest absolute correlation. Missing
// correlations are ignored and ties go to the smallest lag. ok is false when
// every correlation is missing.
func PeakLag(profile []domain.LagCorrelation) (peak domain.LagCorrelation, ok bool) {
	for _, p := range profile {
		if math.IsNaN(p.Correlation) {
			continue
		}
		if !ok || math.Abs(p.Correlation) > math.Abs(peak.Correlation) {
			peak, ok = p, true
		}
	}
	return peak, ok
}

// Autocorrelation is the lag profile of a series against itself
func Autocorrelation(x []float64, maxLag int) []domain.LagCorrelation {
	return LagProfile(x, x, maxLag)
}

func pearson(a, b []float64) float64 {
	if len(a) < 2 || stat.Variance(a, nil) == 0 || stat.Variance(b, nil) == 0 {
		return math.NaN()
	}
	return stat.Correlation(a, b, nil)
}
