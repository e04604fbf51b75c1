package passthrough

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"fxcpi/pkg/contracts/domain"
)

func TestLagProfile_LagZeroIsPearson(t *testing.T) {
	x := noise(21, 50)
	y := noise(22, 50)
	for i := range y {
		y[i] += 0.5 * x[i]
	}

	profile := LagProfile(y, x, 12)
	require.Len(t, profile, 13)
	assert.Equal(t, 0, profile[0].Lag)
	assert.Equal(t, 12, profile[12].Lag)
	assert.InDelta(t, stat.Correlation(y, x, nil), profile[0].Correlation, 1e-12)
	assert.Equal(t, 50, profile[0].N)
	assert.Equal(t, 38, profile[12].N)
}

func TestLagProfile_PlantedPeak(t *testing.T) {
	const n, planted = 60, 3
	x := noise(5, n)
	y := make([]float64, n)
	for i := range y {
		if i < planted {
			y[i] = math.NaN()
			continue
		}
		y[i] = 1 + 2*x[i-planted]
	}

	profile := LagProfile(y, x, 12)
	assert.InDelta(t, 1.0, profile[planted].Correlation, 1e-12)

	peak, ok := PeakLag(profile)
	require.True(t, ok)
	assert.Equal(t, planted, peak.Lag)
	for _, p := range profile {
		if p.Lag != planted {
			assert.Less(t, math.Abs(p.Correlation), 0.9, "lag %d", p.Lag)
		}
	}
}

func TestLagProfile_TooFewPairs(t *testing.T) {
	y := []float64{1, math.NaN(), 3}
	x := []float64{math.NaN(), 2, 5}

	profile := LagProfile(y, x, 2)
	for _, p := range profile {
		assert.True(t, math.IsNaN(p.Correlation), "lag %d", p.Lag)
	}
	_, ok := PeakLag(profile)
	assert.False(t, ok)

	constant := LagProfile([]float64{1, 2, 3, 4}, []float64{7, 7, 7, 7}, 0)
	assert.True(t, math.IsNaN(constant[0].Correlation))
}

func TestLagProfile_NegativeMaxLag(t *testing.T) {
	x := noise(3, 10)
	for _, maxLag := range []int{-1, -5} {
		profile := LagProfile(x, x, maxLag)
		assert.Empty(t, profile, "maxLag %d", maxLag)
		_, ok := PeakLag(profile)
		assert.False(t, ok)
	}
	assert.Empty(t, Autocorrelation(x, -2))
}

func TestPeakLag_TiesAndSign(t *testing.T) {
	tests := []struct {
		name    string
		profile []domain.LagCorrelation
		want    int
	}{
		{
			name: "tie goes to smallest lag",
			profile: []domain.LagCorrelation{
				{Lag: 0, Correlation: 0.1},
				{Lag: 1, Correlation: 0.6},
				{Lag: 2, Correlation: -0.6},
				{Lag: 3, Correlation: 0.6},
			},
			want: 1,
		},
		{
			name: "negative correlation counts by magnitude",
			profile: []domain.LagCorrelation{
				{Lag: 0, Correlation: 0.3},
				{Lag: 1, Correlation: -0.8},
			},
			want: 1,
		},
		{
			name: "missing entries skipped",
			profile: []domain.LagCorrelation{
				{Lag: 0, Correlation: math.NaN()},
				{Lag: 1, Correlation: 0.2},
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peak, ok := PeakLag(tt.profile)
			require.True(t, ok)
			assert.Equal(t, tt.want, peak.Lag)
		})
	}
}

func TestAutocorrelation(t *testing.T) {
	x := noise(9, 40)
	profile := Autocorrelation(x, 6)
	require.Len(t, profile, 7)
	assert.InDelta(t, 1.0, profile[0].Correlation, 1e-12)
}
