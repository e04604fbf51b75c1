package passthrough

import (
	"context"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	apperrors "fxcpi/internal/errors"
	"fxcpi/pkg/contracts/domain"
)

// Target names a dependent column of the regime comparison
type Target struct {
	Name   string
	Column string
}

// CompareRegimes fits, inside each regime, the whole-sample pass-through of
// every target on x and the AR(1) persistence of every target. A cell that
// cannot be fitted is NaN and the comparison continues. Only a missing
// column is an error.
func CompareRegimes(ctx context.Context, t *domain.Table, regimes []domain.Regime, targets []Target, x string) ([]domain.RegimeSummary, error) {
	cols := []string{x}
	for _, tg := range targets {
		cols = append(cols, tg.Column)
	}
	if err := requireColumns(t, cols...); err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "regime_comparator")
	out := make([]domain.RegimeSummary, 0, len(regimes))
	for _, r := range regimes {
		sub := t.Filter(r.Start, r.End)
		summary := domain.RegimeSummary{
			Regime:     r.Name,
			Betas:      make(map[string]float64, len(targets)),
			Rhos:       make(map[string]float64, len(targets)),
			SampleSize: sub.Len(),
		}

		for _, tg := range targets {
			beta, err := regimeBeta(sub, tg.Column, x)
			if err != nil {
				logCell(ctx, logger, r.Name, tg.Name, "beta", err)
			}
			summary.Betas[tg.Name] = beta

			rho, err := regimeRho(sub, tg.Column)
			if err != nil {
				logCell(ctx, logger, r.Name, tg.Name, "rho", err)
			}
			summary.Rhos[tg.Name] = rho
		}

		logger.InfoContext(ctx, "regime_compared",
			slog.String("regime", r.Name),
			slog.Int("n_months", summary.SampleSize))
		out = append(out, summary)
	}
	return out, nil
}

func regimeBeta(sub *domain.Table, y, x string) (float64, error) {
	d, err := sub.DropMissing(y, x)
	if err != nil {
		return math.NaN(), err
	}
	if d.Len() < 2 {
		return math.NaN(), &apperrors.InsufficientDataError{Need: 2, Have: d.Len()}
	}
	ys, _ := d.Column(y)
	xs, _ := d.Column(x)
	r, err := OLS(ys, [][]float64{xs}, []string{x})
	if err != nil {
		return math.NaN(), err
	}
	return r.Coefficients[0], nil
}

// regimeRho lags the target after its missing values are dropped
func regimeRho(sub *domain.Table, y string) (float64, error) {
	values, err := sub.Column(y)
	if err != nil {
		return math.NaN(), err
	}
	r, err := FitAR1(compact(values))
	if err != nil {
		return math.NaN(), err
	}
	return r.Coefficients[0], nil
}

func logCell(ctx context.Context, logger *slog.Logger, regime, target, kind string, err error) {
	logger.WarnContext(ctx, "regime_cell_missing",
		slog.String("regime", regime),
		slog.String("target", target),
		slog.String("kind", kind),
		slog.Bool("numerical", apperrors.IsNumerical(err)),
		slog.String("error", err.Error()))
}

// CountMissingCells counts the NaN cells of a regime comparison
func CountMissingCells(summaries []domain.RegimeSummary) int {
	n := 0
	for _, s := range summaries {
		for _, v := range s.Betas {
			if math.IsNaN(v) {
				n++
			}
		}
		for _, v := range s.Rhos {
			if math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}

// VolatilitySplit averages a column over rows dated before preBefore and
// over rows dated on or after postStart. Missing values are skipped; a side
// with no values is NaN.
func VolatilitySplit(t *domain.Table, column string, preBefore, postStart time.Time) (pre, post float64, err error) {
	values, err := t.Column(column)
	if err != nil {
		return math.NaN(), math.NaN(), err
	}
	var preVals, postVals []float64
	for i, d := range t.Dates() {
		if math.IsNaN(values[i]) {
			continue
		}
		if d.Before(preBefore) {
			preVals = append(preVals, values[i])
		}
		if !d.Before(postStart) {
			postVals = append(postVals, values[i])
		}
	}
	return mean(preVals), mean(postVals), nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}
