package exporter

import (
	"fxcpi/pkg/contracts/domain"
)

// LagProfile is a named lag profile, e.g. infl_mom_pct against fx_mom_pct
type LagProfile struct {
	Series string
	Points []domain.LagCorrelation
}

// WriteLagProfiles writes profiles in long form: one row per series and lag
func (w *CSVWriter) WriteLagProfiles(filePath string, profiles []LagProfile) error {
	var records [][]string
	for _, p := range profiles {
		for _, pt := range p.Points {
			records = append(records, []string{
				p.Series,
				formatInt(pt.Lag),
				formatFloat(pt.Correlation),
				formatInt(pt.N),
			})
		}
	}
	return w.WriteSimpleCSV(filePath,
		[]string{"series", domain.ColLag, "correlation", domain.ColN}, records)
}

// WriteRegressions writes one row per regressor of every model
func (w *CSVWriter) WriteRegressions(filePath string, results []*domain.RegressionResult) error {
	var records [][]string
	for _, r := range results {
		for i, term := range r.Terms {
			records = append(records, []string{
				r.Model,
				r.Dependent,
				term,
				formatFloat(r.Coefficients[i]),
				formatFloat(r.StdErrors[i]),
				formatFloat(r.TStats[i]),
				formatFloat(r.Intercept),
				formatInt(r.N),
				formatFloat(r.RSquared),
			})
		}
	}
	return w.WriteSimpleCSV(filePath, []string{
		"model", "dependent", "term", "coefficient", "std_error", "t_stat",
		domain.ColIntercept, domain.ColN, "r_squared",
	}, records)
}

// WriteRegimeTable writes regime, beta_<target>..., rho_<target>..., n_months.
// Missing cells are empty.
func (w *CSVWriter) WriteRegimeTable(filePath string, summaries []domain.RegimeSummary, targets []string) error {
	headers := []string{domain.ColRegime}
	for _, t := range targets {
		headers = append(headers, domain.BetaColumn(t))
	}
	for _, t := range targets {
		headers = append(headers, domain.RhoColumn(t))
	}
	headers = append(headers, domain.ColNMonths)

	records := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rec := []string{s.Regime}
		for _, t := range targets {
			rec = append(rec, formatFloat(cell(s.Betas, t)))
		}
		for _, t := range targets {
			rec = append(rec, formatFloat(cell(s.Rhos, t)))
		}
		rec = append(rec, formatInt(s.SampleSize))
		records = append(records, rec)
	}
	return w.WriteSimpleCSV(filePath, headers, records)
}

// WriteEvents writes the structural markers as date, label
func (w *CSVWriter) WriteEvents(filePath string, events []domain.Event) error {
	records := make([][]string, len(events))
	for i, e := range events {
		records[i] = []string{formatDate(e.Date), e.Label}
	}
	return w.WriteSimpleCSV(filePath, []string{domain.ColDate, "label"}, records)
}

// WriteDescriptions writes one summary row per column
func (w *CSVWriter) WriteDescriptions(filePath string, descriptions []domain.Description) error {
	records := make([][]string, len(descriptions))
	for i, d := range descriptions {
		records[i] = []string{
			d.Column,
			formatInt(d.Count),
			formatFloat(d.Mean),
			formatFloat(d.Std),
			formatFloat(d.Min),
			formatFloat(d.Q25),
			formatFloat(d.Median),
			formatFloat(d.Q75),
			formatFloat(d.Max),
		}
	}
	return w.WriteSimpleCSV(filePath, []string{
		"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max",
	}, records)
}

// WritePersistence writes the AR(1) summaries. The note column carries the
// reason a half-life is missing.
func (w *CSVWriter) WritePersistence(filePath string, results []*domain.Persistence) error {
	records := make([][]string, len(results))
	for i, p := range results {
		records[i] = []string{
			p.Series,
			formatFloat(p.Rho),
			formatFloat(p.Intercept),
			formatFloat(p.HalfLife),
			formatFloat(p.RemainingAfter3),
			formatInt(p.N),
			errString(p.Err),
		}
	}
	return w.WriteSimpleCSV(filePath, []string{
		"series", "rho", domain.ColIntercept, "half_life", "remaining_after_3", domain.ColN, "note",
	}, records)
}

// WriteVolatilityShifts writes the pre/post break volatility comparison
func (w *CSVWriter) WriteVolatilityShifts(filePath string, shifts []domain.VolatilityShift) error {
	records := make([][]string, len(shifts))
	for i, v := range shifts {
		records[i] = []string{
			v.Series,
			formatFloat(v.Pre),
			formatFloat(v.Post),
			formatFloat(v.Ratio()),
		}
	}
	return w.WriteSimpleCSV(filePath, []string{"series", "pre", "post", "ratio"}, records)
}

// WriteValidation writes the shape of every processed table
func (w *CSVWriter) WriteValidation(filePath string, checks []domain.TableCheck) error {
	records := make([][]string, len(checks))
	for i, c := range checks {
		records[i] = []string{
			c.Name,
			formatInt(c.Rows),
			formatDate(c.First),
			formatDate(c.Last),
			formatInt(c.MissingCells),
		}
	}
	return w.WriteSimpleCSV(filePath, []string{
		"file", "rows", "min_date", "max_date", "missing_cells",
	}, records)
}

func cell(m map[string]float64, key string) float64 {
	v, ok := m[key]
	if !ok {
		return nan
	}
	return v
}
