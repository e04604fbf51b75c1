package passthrough

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxcpi/pkg/contracts/domain"
)

func TestLagTerm(t *testing.T) {
	assert.Equal(t, "fx_mom_pct_lag6", LagTerm("fx_mom_pct", 6))
	assert.Equal(t, "fx_mom_pct_lag0", LagTerm("fx_mom_pct", 0))
}

func TestBaseline_RecoversLaggedSlope(t *testing.T) {
	const m, lag = 40, 6
	x := noise(17, m)
	y := make([]float64, m)
	for i := range y {
		if i < lag {
			y[i] = noise(18, lag)[i]
			continue
		}
		y[i] = 0.5 + 0.8*x[i-lag]
	}
	tbl := table(t, months(month(2020, time.February), m),
		map[string][]float64{"infl_mom_pct": y, "fx_mom_pct": x}, "infl_mom_pct", "fx_mom_pct")

	r, err := Baseline(tbl, "infl_mom_pct", "fx_mom_pct", lag, false)
	require.NoError(t, err)

	assert.Equal(t, "infl_mom_pct", r.Dependent)
	assert.Equal(t, []string{"fx_mom_pct_lag6"}, r.Terms)
	assert.Equal(t, m-lag, r.N)
	assert.InDelta(t, 0.8, r.Coefficients[0], 1e-9)
	assert.InDelta(t, 0.5, r.Intercept, 1e-9)
}

func TestBaseline_WithAR(t *testing.T) {
	const m = 36
	x := noise(23, m)
	y := make([]float64, m)
	y[0] = 1
	for i := 1; i < m; i++ {
		y[i] = 0.2 + 0.3*x[i] + 0.4*y[i-1]
	}
	x[12] = math.NaN()
	tbl := table(t, months(month(2020, time.February), m),
		map[string][]float64{"infl_mom_pct": y, "fx_mom_pct": x}, "infl_mom_pct", "fx_mom_pct")

	r, err := Baseline(tbl, "infl_mom_pct", "fx_mom_pct", 0, true)
	require.NoError(t, err)

	// first row has no lag, row 12 has no regressor
	assert.Equal(t, m-2, r.N)
	beta, ok := r.Coefficient("fx_mom_pct_lag0")
	require.True(t, ok)
	assert.InDelta(t, 0.3, beta, 1e-9)
	rho, ok := r.Coefficient(domain.ColInflLag1)
	require.True(t, ok)
	assert.InDelta(t, 0.4, rho, 1e-9)
}

func TestBaseline_MissingColumn(t *testing.T) {
	tbl := table(t, months(month(2020, time.February), 3),
		map[string][]float64{"y": {1, 2, 3}}, "y")
	_, err := Baseline(tbl, "y", "fx_mom_pct", 0, false)
	assert.Error(t, err)
}
