package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "fxcpi/internal/errors"
	"fxcpi/pkg/contracts/domain"
)

// Header keywords of the central bank rate sheets
const (
	keywordDate     = "date"
	keywordCurrency = "devise"
	keywordRate     = "cours"
)

// textual date layouts accepted in rate sheets. Slash, dash and dot dates
// are day first, as the French-language source sheets write them.
var quoteDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
}

// RateQuote is one daily exchange rate observation
type RateQuote struct {
	Date     time.Time
	Currency string
	Rate     float64
}

// FXOptions selects the sheets of the rate workbook
type FXOptions struct {
	Years          []int
	HeaderScanRows int
}

// ParseFXWorkbook reads the daily rate quotes of every configured year sheet.
// Rows with an unparseable date, currency or rate are dropped.
func ParseFXWorkbook(path string, opts FXOptions) ([]RateQuote, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewIOError("failed to open FX workbook", err).WithContext("path", path)
	}
	defer f.Close()

	if opts.HeaderScanRows <= 0 {
		opts.HeaderScanRows = 10
	}

	logger := slog.Default().With("component", "fx_workbook")

	var quotes []RateQuote
	for _, year := range opts.Years {
		sheet := strconv.Itoa(year)
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, apperrors.NewParsingError("failed to read FX sheet", err).WithContext("sheet", sheet)
		}

		headerRow, columns, err := detectHeader(rows, opts.HeaderScanRows)
		if err != nil {
			return nil, apperrors.NewParsingError(err.Error(), nil).WithContext("sheet", sheet)
		}

		parsed, dropped := 0, 0
		for _, row := range rows[headerRow+1:] {
			q, ok := parseQuote(row, columns)
			if !ok {
				dropped++
				continue
			}
			quotes = append(quotes, q)
			parsed++
		}

		logger.Info("fx_sheet_parsed",
			slog.String("sheet", sheet),
			slog.Int("header_row", headerRow),
			slog.Int("quotes", parsed),
			slog.Int("dropped_rows", dropped))
	}

	return quotes, nil
}

type quoteColumns struct {
	date     int
	currency int
	rate     int
}

// detectHeader scans the first maxRows rows for a row with date, currency and
// rate headers. Matching is a case-insensitive substring check on trimmed cells.
func detectHeader(rows [][]string, maxRows int) (int, quoteColumns, error) {
	for i := 0; i < len(rows) && i < maxRows; i++ {
		cols := quoteColumns{
			date:     pickColumn(rows[i], keywordDate),
			currency: pickColumn(rows[i], keywordCurrency),
			rate:     pickColumn(rows[i], keywordRate),
		}
		if cols.date >= 0 && cols.currency >= 0 && cols.rate >= 0 {
			return i, cols, nil
		}
	}
	return -1, quoteColumns{}, fmt.Errorf("could not detect header row with %q, %q and %q in the first %d rows",
		keywordDate, keywordCurrency, keywordRate, maxRows)
}

// pickColumn returns the first header cell containing keyword, or -1
func pickColumn(header []string, keyword string) int {
	for j, h := range header {
		if strings.Contains(strings.ToLower(strings.TrimSpace(h)), keyword) {
			return j
		}
	}
	return -1
}

func parseQuote(row []string, cols quoteColumns) (RateQuote, bool) {
	date, ok := parseQuoteDate(cell(row, cols.date))
	if !ok {
		return RateQuote{}, false
	}
	currency := cell(row, cols.currency)
	if currency == "" {
		return RateQuote{}, false
	}
	rate, ok := parseRate(cell(row, cols.rate))
	if !ok {
		return RateQuote{}, false
	}
	return RateQuote{Date: date, Currency: currency, Rate: rate}, true
}

// parseQuoteDate accepts Excel serial numbers and the textual layouts above
func parseQuoteDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	for _, layout := range quoteDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseRate accepts both decimal separators and ignores blanks
func parseRate(s string) (float64, bool) {
	s = strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// MonthlyAverage averages the quotes of one currency per calendar month. The
// result covers every month from the first to the last quote; months without
// quotes are missing.
func MonthlyAverage(quotes []RateQuote, currency string) (*domain.Series, error) {
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	var first, last time.Time
	for _, q := range quotes {
		if strings.TrimSpace(q.Currency) != currency {
			continue
		}
		m := domain.MonthStart(q.Date)
		if len(counts) == 0 || m.Before(first) {
			first = m
		}
		if len(counts) == 0 || m.After(last) {
			last = m
		}
		sums[m] += q.Rate
		counts[m]++
	}
	if len(counts) == 0 {
		return nil, &apperrors.AmbiguousOrMissingSeriesError{
			Filter:  fmt.Sprintf("currency=%q", currency),
			Matches: 0,
		}
	}

	name := domain.ColFXAvg
	if currency != "USD" {
		name = "fx_" + strings.ToLower(currency) + "_avg"
	}

	s := &domain.Series{Name: name}
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		v := math.NaN()
		if n := counts[m]; n > 0 {
			v = sums[m] / float64(n)
		}
		s.Observations = append(s.Observations, domain.Observation{Date: m, Value: v})
	}
	return s, nil
}
