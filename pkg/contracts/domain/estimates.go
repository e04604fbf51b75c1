package domain

import (
	"math"
	"time"
)

// Estimate is the fitted coefficient of one rolling window, dated at the
// window's last observation. Coefficient is NaN when Err is set.
type Estimate struct {
	Date        time.Time `json:"date"`
	Coefficient float64   `json:"coefficient"`
	Intercept   float64   `json:"intercept"`
	N           int       `json:"n"`
	Err         error     `json:"-"`
}

// JointEstimate carries both slopes of the three-regressor window fit
type JointEstimate struct {
	Date      time.Time `json:"date"`
	BetaFX    float64   `json:"beta_fx"`
	RhoInfl   float64   `json:"rho_infl"`
	Intercept float64   `json:"intercept"`
	N         int       `json:"n"`
	Err       error     `json:"-"`
}

// RegressionResult is a whole-sample least squares fit
type RegressionResult struct {
	Model        string    `json:"model"`
	Dependent    string    `json:"dependent"`
	Terms        []string  `json:"terms"`
	Coefficients []float64 `json:"coefficients"`
	StdErrors    []float64 `json:"std_errors"`
	TStats       []float64 `json:"t_stats"`
	Intercept    float64   `json:"intercept"`
	N            int       `json:"n"`
	RSquared     float64   `json:"r_squared"`
}

// Coefficient returns the slope for a named term
func (r *RegressionResult) Coefficient(term string) (float64, bool) {
	for i, t := range r.Terms {
		if t == term {
			return r.Coefficients[i], true
		}
	}
	return 0, false
}

// Persistence summarizes a whole-sample AR(1) fit. HalfLife is NaN when Err is set.
type Persistence struct {
	Series          string  `json:"series"`
	Rho             float64 `json:"rho"`
	Intercept       float64 `json:"intercept"`
	HalfLife        float64 `json:"half_life"`
	RemainingAfter3 float64 `json:"remaining_after_3"`
	N               int     `json:"n"`
	Err             error   `json:"-"`
}

// LagCorrelation is one point of a lag profile
type LagCorrelation struct {
	Lag         int     `json:"lag"`
	Correlation float64 `json:"correlation"`
	N           int     `json:"n"`
}

// Regime is an analyst-defined calendar interval, inclusive on both ends
type Regime struct {
	Name  string    `json:"name" yaml:"name" validate:"required"`
	Start time.Time `json:"start" yaml:"-"`
	End   time.Time `json:"end" yaml:"-"`
}

// Contains reports whether d is inside the regime
func (r Regime) Contains(d time.Time) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// RegimeSummary holds per-target coefficients for one regime. Missing cells are NaN.
type RegimeSummary struct {
	Regime     string             `json:"regime"`
	Betas      map[string]float64 `json:"betas"`
	Rhos       map[string]float64 `json:"rhos"`
	SampleSize int                `json:"sample_size"`
}

// Event is a dated structural marker
type Event struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
}

// Description is a count/mean/std/quantile summary of one column
type Description struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// VolatilityShift compares the mean of a volatility column before and after
// a structural break
type VolatilityShift struct {
	Series string  `json:"series"`
	Pre    float64 `json:"pre"`
	Post   float64 `json:"post"`
}

// Ratio is Post / Pre, NaN when either side is missing or Pre is zero
func (v VolatilityShift) Ratio() float64 {
	if v.Pre == 0 {
		return math.NaN()
	}
	return v.Post / v.Pre
}

// TableCheck records the shape of one processed table
type TableCheck struct {
	Name         string    `json:"name"`
	Rows         int       `json:"rows"`
	First        time.Time `json:"first"`
	Last         time.Time `json:"last"`
	MissingCells int       `json:"missing_cells"`
}
