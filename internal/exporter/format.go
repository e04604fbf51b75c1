package exporter

import (
	"math"
	"strconv"
	"strings"
	"time"

	"fxcpi/pkg/contracts/domain"
)

var nan = math.NaN()

// formatFloat writes the shortest representation that parses back to the
// same value. Missing values are empty cells.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatDate writes an ISO date, empty for the zero time
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}

// parseFloat reads a cell written by formatFloat. Empty and "NaN" cells are missing.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// errString is the message of err, empty when nil
func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
