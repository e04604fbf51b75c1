package passthrough

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fxcpi/pkg/contracts/domain"
)

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

func months(start time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, i, 0)
	}
	return out
}

// noise returns a reproducible non-periodic sequence
func noise(seed int64, n int) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = r.NormFloat64()
	}
	return out
}

func table(t *testing.T, dates []time.Time, cols map[string][]float64, order ...string) *domain.Table {
	t.Helper()
	tbl := domain.NewTable(dates)
	for _, name := range order {
		require.NoError(t, tbl.AddColumn(name, cols[name]))
	}
	return tbl
}
