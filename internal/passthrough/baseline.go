package passthrough

import (
	"fmt"

	"fxcpi/internal/dataprocessing"
	"fxcpi/pkg/contracts/domain"
)

// LagTerm names x lagged by lag rows in a regression
func LagTerm(x string, lag int) string {
	return fmt.Sprintf("%s_lag%d", x, lag)
}

// Baseline fits the whole-sample regression y(t) = c + b x(t-lag), adding
// y(t-1) as a second regressor when withAR is set. Lags are taken by row on
// the full table, then incomplete rows are dropped.
func Baseline(t *domain.Table, y, x string, lag int, withAR bool) (*domain.RegressionResult, error) {
	yv, err := t.Column(y)
	if err != nil {
		return nil, err
	}
	xv, err := t.Column(x)
	if err != nil {
		return nil, err
	}

	term := LagTerm(x, lag)
	work := domain.NewTable(t.Dates())
	if err := work.AddColumn(y, yv); err != nil {
		return nil, err
	}
	if err := work.AddColumn(term, dataprocessing.Lag(xv, lag)); err != nil {
		return nil, err
	}
	names := []string{term}
	if withAR {
		if err := work.AddColumn(domain.ColInflLag1, dataprocessing.Lag(yv, 1)); err != nil {
			return nil, err
		}
		names = append(names, domain.ColInflLag1)
	}

	d, err := work.DropMissing(append([]string{y}, names...)...)
	if err != nil {
		return nil, err
	}
	ys, _ := d.Column(y)
	regressors := make([][]float64, len(names))
	for i, n := range names {
		regressors[i], _ = d.Column(n)
	}

	r, err := OLS(ys, regressors, names)
	if err != nil {
		return nil, err
	}
	r.Dependent = y
	return r, nil
}
