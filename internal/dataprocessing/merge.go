package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"fxcpi/internal/config"
	"fxcpi/pkg/contracts/domain"
)

// Merge inner-joins tables on date. Rows missing from any operand are
// dropped and the narrowing is logged.
func Merge(ctx context.Context, tables ...*domain.Table) (*domain.Table, error) {
	merged, err := domain.InnerJoin(tables...)
	if err != nil {
		return nil, fmt.Errorf("merge failed: %w", err)
	}

	attrs := []any{slog.Int("operands", len(tables)), slog.Int("rows", merged.Len())}
	for i, t := range tables {
		attrs = append(attrs, slog.Int(fmt.Sprintf("operand_%d_rows", i), t.Len()))
	}
	if first, last, ok := merged.DateRange(); ok {
		attrs = append(attrs,
			slog.String("min_date", first.Format(domain.DateLayout)),
			slog.String("max_date", last.Format(domain.DateLayout)))
	}
	slog.Default().With("component", "series_merger").InfoContext(ctx, "series_merged", attrs...)

	return merged, nil
}

// AddServicesProxy adds the unweighted mean of the component columns as name.
// Missing components are skipped; a row with none is missing.
func AddServicesProxy(t *domain.Table, name string, components []string) error {
	cols := make([][]float64, 0, len(components))
	for _, c := range components {
		v, err := t.Column(c)
		if err != nil {
			return fmt.Errorf("services proxy component: %w", err)
		}
		cols = append(cols, v)
	}

	proxy := make([]float64, t.Len())
	for i := range proxy {
		sum, n := 0.0, 0
		for _, v := range cols {
			if math.IsNaN(v[i]) {
				continue
			}
			sum += v[i]
			n++
		}
		if n == 0 {
			proxy[i] = math.NaN()
			continue
		}
		proxy[i] = sum / float64(n)
	}
	return t.AddColumn(name, proxy)
}

// AddInflation derives the MoM and YoY inflation columns of a level column
func AddInflation(t *domain.Table, column string) error {
	levels, err := t.Column(column)
	if err != nil {
		return err
	}
	if err := t.AddColumn(domain.MoMColumn(column), MoM(levels)); err != nil {
		return err
	}
	return t.AddColumn(domain.YoYColumn(column), YoY(levels))
}

// BuildCategoryTable extracts every configured category series from the
// panel, joins them, then adds the services proxy and the inflation columns.
func BuildCategoryTable(ctx context.Context, panel *Panel, cfg config.AnalysisConfig) (*domain.Table, error) {
	start, err := cfg.StartDate()
	if err != nil {
		return nil, err
	}
	end, err := cfg.EndDate()
	if err != nil {
		return nil, err
	}

	narrowed := panel.
		Where(ColCountry, cfg.Country).
		Where(ColFrequency, cfg.Frequency).
		Where(ColTransformation, cfg.CategoryTransformation)

	tables := make([]*domain.Table, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		s, err := narrowed.ExtractCategory(ctx, c.Name, c.Code, start, end)
		if err != nil {
			return nil, err
		}
		tables = append(tables, s.Table())
	}

	out, err := Merge(ctx, tables...)
	if err != nil {
		return nil, err
	}

	if err := AddServicesProxy(out, config.ServicesProxyColumn, cfg.ServicesComponents); err != nil {
		return nil, err
	}
	for _, c := range cfg.InflationCategories {
		if err := AddInflation(out, c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SeriesTable builds a table from a series with derived columns appended in order
func SeriesTable(s *domain.Series, derived ...NamedColumn) (*domain.Table, error) {
	t := s.Table()
	for _, d := range derived {
		if err := t.AddColumn(d.Name, d.Values); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// NamedColumn is a derived column waiting to be attached to a table
type NamedColumn struct {
	Name   string
	Values []float64
}
