package passthrough

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"fxcpi/internal/dataprocessing"
	apperrors "fxcpi/internal/errors"
	"fxcpi/pkg/contracts/domain"
)

// DefaultWindow is the rolling window length in rows
const DefaultWindow = 24

// Engine fits fixed-length rolling regressions. Windows are counted in rows
// after incomplete rows are dropped, so a window may span more calendar
// months than its length when the data has gaps. Such windows are counted
// and logged.
type Engine struct {
	Window int
	logger *slog.Logger
}

// NewEngine creates an engine with the given window length
func NewEngine(window int, logger *slog.Logger) *Engine {
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{Window: window, logger: logger.With("component", "rolling_engine")}
}

// RollingBeta regresses y on [1, x] over every window of complete rows and
// returns one estimate per window, dated at its last row.
func (e *Engine) RollingBeta(ctx context.Context, t *domain.Table, y, x string) ([]domain.Estimate, error) {
	d, err := t.DropMissing(y, x)
	if err != nil {
		return nil, err
	}
	ys, _ := d.Column(y)
	xs, _ := d.Column(x)

	out := e.slide(ctx, "beta", y, d.Dates(), func(lo, hi int) (float64, float64, int, error) {
		r, err := OLS(ys[lo:hi], [][]float64{xs[lo:hi]}, []string{x})
		if err != nil {
			return math.NaN(), math.NaN(), hi - lo, err
		}
		return r.Coefficients[0], r.Intercept, r.N, nil
	})
	return out, nil
}

// RollingRho fits an AR(1) of y over every window. The lag is taken on the
// series after missing values are dropped, and the first row, which has no
// lag, is discarded.
func (e *Engine) RollingRho(ctx context.Context, t *domain.Table, y string) ([]domain.Estimate, error) {
	d, err := t.DropMissing(y)
	if err != nil {
		return nil, err
	}
	values, _ := d.Column(y)
	if len(values) < 2 {
		e.logShort(ctx, "rho", y, len(values))
		return []domain.Estimate{}, nil
	}
	cur, prev := values[1:], values[:len(values)-1]
	dates := d.Dates()[1:]

	out := e.slide(ctx, "rho", y, dates, func(lo, hi int) (float64, float64, int, error) {
		r, err := OLS(cur[lo:hi], [][]float64{prev[lo:hi]}, []string{domain.ColInflLag1})
		if err != nil {
			return math.NaN(), math.NaN(), hi - lo, err
		}
		return r.Coefficients[0], r.Intercept, r.N, nil
	})
	return out, nil
}

// RollingJoint regresses y on [1, x, y(t-1)] over every window of complete
// rows. The lag is taken inside each window, so its first row has no lag and
// every fit uses W-1 rows.
func (e *Engine) RollingJoint(ctx context.Context, t *domain.Table, y, x string) ([]domain.JointEstimate, error) {
	d, err := t.DropMissing(y, x)
	if err != nil {
		return nil, err
	}
	ys, _ := d.Column(y)
	xs, _ := d.Column(x)

	rhos := make([]float64, 0, d.Len())
	estimates := e.slide(ctx, "joint", y, d.Dates(), func(lo, hi int) (float64, float64, int, error) {
		win := ys[lo:hi]
		lagged := dataprocessing.Lag(win, 1)
		r, err := OLS(win[1:], [][]float64{xs[lo+1 : hi], lagged[1:]}, []string{x, domain.ColInflLag1})
		if err != nil {
			rhos = append(rhos, math.NaN())
			return math.NaN(), math.NaN(), hi - lo - 1, err
		}
		rhos = append(rhos, r.Coefficients[1])
		return r.Coefficients[0], r.Intercept, r.N, nil
	})

	joint := make([]domain.JointEstimate, len(estimates))
	for i, est := range estimates {
		joint[i] = domain.JointEstimate{
			Date:      est.Date,
			BetaFX:    est.Coefficient,
			RhoInfl:   rhos[i],
			Intercept: est.Intercept,
			N:         est.N,
			Err:       est.Err,
		}
	}
	return joint, nil
}

type windowFit func(lo, hi int) (coef, intercept float64, n int, err error)

// slide runs fit over rows [i-W, i) for i = W..M and collects the estimates
func (e *Engine) slide(ctx context.Context, kind, series string, dates []time.Time, fit windowFit) []domain.Estimate {
	m, w := len(dates), e.Window
	if m < w {
		e.logShort(ctx, kind, series, m)
		return []domain.Estimate{}
	}

	out := make([]domain.Estimate, 0, m-w+1)
	unstable, compressed := 0, 0
	for hi := w; hi <= m; hi++ {
		lo := hi - w
		coef, intercept, n, err := fit(lo, hi)
		if err != nil {
			if !apperrors.IsNumerical(err) {
				err = &apperrors.UnstableFitError{Reason: err.Error(), N: n}
			}
			unstable++
			e.logger.DebugContext(ctx, "window_unstable",
				slog.String("kind", kind),
				slog.String("series", series),
				slog.String("window_end", dates[hi-1].Format(domain.DateLayout)),
				slog.String("error", err.Error()))
		}
		if span := domain.MonthsBetween(dates[lo], dates[hi-1]) + 1; span > w {
			compressed++
		}
		out = append(out, domain.Estimate{
			Date:        dates[hi-1],
			Coefficient: coef,
			Intercept:   intercept,
			N:           n,
			Err:         err,
		})
	}

	attrs := []any{
		slog.String("kind", kind),
		slog.String("series", series),
		slog.Int("window", w),
		slog.Int("rows", m),
		slog.Int("windows", len(out)),
		slog.Int("unstable_windows", unstable),
		slog.String("first_window_end", out[0].Date.Format(domain.DateLayout)),
		slog.String("last_window_end", out[len(out)-1].Date.Format(domain.DateLayout)),
	}
	e.logger.InfoContext(ctx, "rolling_estimated", attrs...)
	if compressed > 0 {
		e.logger.WarnContext(ctx, "calendar_compressed_windows",
			slog.String("kind", kind),
			slog.String("series", series),
			slog.Int("windows", compressed),
			slog.Int("window", w))
	}
	return out
}

func (e *Engine) logShort(ctx context.Context, kind, series string, rows int) {
	e.logger.WarnContext(ctx, "insufficient_rows_for_window",
		slog.String("kind", kind),
		slog.String("series", series),
		slog.Int("rows", rows),
		slog.Int("window", e.Window))
}

// Unstable counts the estimates that carry an error
func Unstable(estimates []domain.Estimate) int {
	n := 0
	for _, est := range estimates {
		if est.Err != nil {
			n++
		}
	}
	return n
}

// CoefficientSeries projects estimates onto a dated series
func CoefficientSeries(name string, estimates []domain.Estimate) *domain.Series {
	s := &domain.Series{Name: name, Observations: make([]domain.Observation, len(estimates))}
	for i, est := range estimates {
		s.Observations[i] = domain.Observation{Date: est.Date, Value: est.Coefficient}
	}
	return s
}

// CoefficientTable lays several estimate sequences side by side over the
// union of their dates. A date missing from one sequence is NaN in its column.
func CoefficientTable(columns []string, estimates map[string][]domain.Estimate) (*domain.Table, error) {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, c := range columns {
		for _, est := range estimates[c] {
			if !seen[est.Date] {
				seen[est.Date] = true
				dates = append(dates, est.Date)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	pos := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		pos[d] = i
	}
	t := domain.NewTable(dates)
	for _, c := range columns {
		values := make([]float64, len(dates))
		for i := range values {
			values[i] = math.NaN()
		}
		for _, est := range estimates[c] {
			values[pos[est.Date]] = est.Coefficient
		}
		if err := t.AddColumn(c, values); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// JointTable turns joint estimates into a beta_fx / rho_infl table
func JointTable(estimates []domain.JointEstimate) (*domain.Table, error) {
	dates := make([]time.Time, len(estimates))
	beta := make([]float64, len(estimates))
	rho := make([]float64, len(estimates))
	for i, est := range estimates {
		dates[i] = est.Date
		beta[i] = est.BetaFX
		rho[i] = est.RhoInfl
	}
	t := domain.NewTable(dates)
	if err := t.AddColumn(domain.ColBetaFX, beta); err != nil {
		return nil, err
	}
	if err := t.AddColumn(domain.ColRhoInfl, rho); err != nil {
		return nil, err
	}
	return t, nil
}

func requireColumns(t *domain.Table, names ...string) error {
	for _, n := range names {
		if !t.HasColumn(n) {
			return fmt.Errorf("column %s not found", n)
		}
	}
	return nil
}
