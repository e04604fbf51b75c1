package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "fxcpi/internal/errors"
	"fxcpi/pkg/contracts/domain"
)

// Metadata columns of the CPI panel
const (
	ColCountry        = "COUNTRY"
	ColFrequency      = "FREQUENCY"
	ColCategory       = "COICOP_1999"
	ColTransformation = "TYPE_OF_TRANSFORMATION"
	ColSeriesCode     = "SERIES_CODE"
)

const utf8BOM = "\uFEFF"

var monthColumnPattern = regexp.MustCompile(`^\d{4}-M(0[1-9]|1[0-2])$`)

// IsMonthColumn reports whether a header names a calendar month, e.g. 2020-M02
func IsMonthColumn(name string) bool {
	return monthColumnPattern.MatchString(name)
}

// monthColumnDate converts a month column name to its month-start date
func monthColumnDate(name string) time.Time {
	year, _ := strconv.Atoi(name[:4])
	month, _ := strconv.Atoi(name[len(name)-2:])
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

type monthColumn struct {
	index int
	date  time.Time
}

// Panel is a wide statistical export: one row per series, metadata columns
// followed by one column per YYYY-Mxx period.
type Panel struct {
	header []string
	index  map[string]int
	months []monthColumn
	rows   [][]string
	logger *slog.Logger
	source string
}

// SeriesFilter identifies one headline series by its metadata
type SeriesFilter struct {
	Country        string
	Frequency      string
	Category       string
	Transformation string
}

func (f SeriesFilter) String() string {
	return fmt.Sprintf("%s=%q %s=%q %s=%q %s=%q",
		ColCountry, f.Country, ColFrequency, f.Frequency,
		ColCategory, f.Category, ColTransformation, f.Transformation)
}

// LoadPanel reads a wide CPI CSV export
func LoadPanel(path string) (*Panel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewIOError("failed to open CPI panel", err).WithContext("path", path)
	}
	defer f.Close()

	p, err := ReadPanel(f)
	if err != nil {
		return nil, err
	}
	p.source = path

	p.logger.Info("panel_loaded",
		slog.String("path", path),
		slog.Int("rows", len(p.rows)),
		slog.Int("month_columns", len(p.months)))
	return p, nil
}

// ReadPanel parses a wide CPI CSV from r
func ReadPanel(r io.Reader) (*Panel, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read CPI panel", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewParsingError("CPI panel is empty", nil)
	}

	header := records[0]
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	p := &Panel{
		header: header,
		index:  make(map[string]int, len(header)),
		rows:   records[1:],
		logger: slog.Default().With("component", "series_extractor"),
	}
	for i, h := range header {
		name := strings.TrimSpace(h)
		if _, dup := p.index[name]; !dup {
			p.index[name] = i
		}
		if IsMonthColumn(name) {
			p.months = append(p.months, monthColumn{index: i, date: monthColumnDate(name)})
		}
	}
	sort.SliceStable(p.months, func(i, j int) bool {
		return p.months[i].date.Before(p.months[j].date)
	})

	if len(p.months) == 0 {
		return nil, apperrors.NewParsingError("CPI panel has no YYYY-Mxx columns", nil)
	}
	return p, nil
}

// Len returns the number of series rows
func (p *Panel) Len() int {
	return len(p.rows)
}

// Where returns the rows whose trimmed column value equals value. A missing
// column matches nothing.
func (p *Panel) Where(column, value string) *Panel {
	out := &Panel{
		header: p.header,
		index:  p.index,
		months: p.months,
		logger: p.logger,
		source: p.source,
	}
	i, ok := p.index[column]
	if !ok {
		return out
	}
	for _, row := range p.rows {
		if cell(row, i) == value {
			out.rows = append(out.rows, row)
		}
	}
	return out
}

// ExtractSeries returns the single series matching filter inside [start, end].
// Zero or several matches fail with AmbiguousOrMissingSeriesError.
func (p *Panel) ExtractSeries(name string, filter SeriesFilter, start, end time.Time) (*domain.Series, error) {
	matched := p.Where(ColCountry, filter.Country).
		Where(ColFrequency, filter.Frequency).
		Where(ColCategory, filter.Category).
		Where(ColTransformation, filter.Transformation)

	if len(matched.rows) != 1 {
		return nil, &apperrors.AmbiguousOrMissingSeriesError{
			Filter:  filter.String(),
			Matches: len(matched.rows),
		}
	}
	return p.rowSeries(name, matched.rows[0], start, end)
}

// ExtractCategory returns the series whose SERIES_CODE equals code. When the
// code appears more than once the first row is kept and a warning is logged.
func (p *Panel) ExtractCategory(ctx context.Context, name, code string, start, end time.Time) (*domain.Series, error) {
	matched := p.Where(ColSeriesCode, code)
	switch {
	case len(matched.rows) == 0:
		return nil, &apperrors.AmbiguousOrMissingSeriesError{
			Filter:  fmt.Sprintf("%s=%q (%s)", ColSeriesCode, code, name),
			Matches: 0,
		}
	case len(matched.rows) > 1:
		p.logger.WarnContext(ctx, "duplicate_series_code",
			slog.String("series", name),
			slog.String("code", code),
			slog.Int("matches", len(matched.rows)))
	}
	return p.rowSeries(name, matched.rows[0], start, end)
}

func (p *Panel) rowSeries(name string, row []string, start, end time.Time) (*domain.Series, error) {
	s := &domain.Series{Name: name}
	for _, m := range p.months {
		if m.date.Before(start) || m.date.After(end) {
			continue
		}
		s.Observations = append(s.Observations, domain.Observation{
			Date:  m.date,
			Value: parseNumber(cell(row, m.index)),
		})
	}
	if err := s.Validate(); err != nil {
		return nil, apperrors.NewParsingError("invalid month columns", err)
	}
	// a month column absent from the panel is a gap, not a shorter series
	return s.Regular(), nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseNumber coerces a cell to float. Empty and non-numeric cells are NaN.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
