package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestInnerJoin_Intersection(t *testing.T) {
	a := NewTable([]time.Time{month(2020, 1), month(2020, 2), month(2020, 3), month(2020, 4)})
	require.NoError(t, a.AddColumn("a", []float64{1, 2, 3, 4}))

	b := NewTable([]time.Time{month(2020, 2), month(2020, 4), month(2020, 5)})
	require.NoError(t, b.AddColumn("b", []float64{20, 40, 50}))

	joined, err := InnerJoin(a, b)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{month(2020, 2), month(2020, 4)}, joined.Dates())
	av, _ := joined.Column("a")
	bv, _ := joined.Column("b")
	assert.Equal(t, []float64{2, 4}, av)
	assert.Equal(t, []float64{20, 40}, bv)
	assert.Equal(t, []string{"a", "b"}, joined.Columns())
}

func TestInnerJoin_Errors(t *testing.T) {
	_, err := InnerJoin()
	assert.Error(t, err)

	a := NewTable([]time.Time{month(2020, 1)})
	require.NoError(t, a.AddColumn("x", []float64{1}))
	b := NewTable([]time.Time{month(2020, 1)})
	require.NoError(t, b.AddColumn("x", []float64{2}))
	_, err = InnerJoin(a, b)
	assert.Error(t, err, "duplicate column names are rejected")
}

func TestTable_AddColumn(t *testing.T) {
	tbl := NewTable([]time.Time{month(2021, 1), month(2021, 2)})

	tests := []struct {
		name    string
		col     string
		values  []float64
		wantErr bool
	}{
		{"valid", "x", []float64{1, 2}, false},
		{"duplicate", "x", []float64{1, 2}, true},
		{"length mismatch", "y", []float64{1}, true},
		{"empty name", "", []float64{1, 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tbl.AddColumn(tt.col, tt.values)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTable_FilterAndDropMissing(t *testing.T) {
	dates := []time.Time{month(2022, 1), month(2022, 2), month(2022, 3), month(2022, 4)}
	tbl := NewTable(dates)
	require.NoError(t, tbl.AddColumn("y", []float64{1, math.NaN(), 3, 4}))
	require.NoError(t, tbl.AddColumn("x", []float64{10, 20, math.NaN(), 40}))

	f := tbl.Filter(month(2022, 2), month(2022, 3))
	assert.Equal(t, 2, f.Len())

	d, err := tbl.DropMissing("y", "x")
	require.NoError(t, err)
	assert.Equal(t, []time.Time{month(2022, 1), month(2022, 4)}, d.Dates())

	_, err = tbl.DropMissing("missing")
	assert.Error(t, err)

	// source is untouched
	assert.Equal(t, 4, tbl.Len())
}

func TestSeries_Validate(t *testing.T) {
	_, err := NewSeries("s", []time.Time{month(2020, 2), month(2020, 1)}, []float64{1, 2})
	assert.Error(t, err)

	_, err = NewSeries("s", []time.Time{month(2020, 1), month(2020, 1)}, []float64{1, 2})
	assert.Error(t, err)

	s, err := NewSeries("s", []time.Time{month(2020, 1), month(2020, 3)}, []float64{1, math.NaN()})
	require.NoError(t, err)
	assert.True(t, s.Observations[1].IsMissing())
	assert.Equal(t, 1, s.Between(month(2020, 2), month(2020, 12)).Len())
}

func TestSeries_RegularAndTrim(t *testing.T) {
	s, err := NewSeries("cpi",
		[]time.Time{month(2020, 1), month(2020, 2), month(2020, 4), month(2020, 5)},
		[]float64{math.NaN(), 100, 102, math.NaN()})
	require.NoError(t, err)

	reg := s.Regular()
	assert.Equal(t, []time.Time{month(2020, 1), month(2020, 2), month(2020, 3), month(2020, 4), month(2020, 5)}, reg.Dates())
	assert.Equal(t, 3, reg.Missing())
	assert.True(t, reg.Observations[2].IsMissing())

	trimmed := reg.TrimMissing()
	assert.Equal(t, []time.Time{month(2020, 2), month(2020, 3), month(2020, 4)}, trimmed.Dates())
	assert.Equal(t, 1, trimmed.Missing())

	// interior gaps survive a trim
	assert.True(t, trimmed.Observations[1].IsMissing())

	empty, err := NewSeries("cpi", []time.Time{month(2020, 1)}, []float64{math.NaN()})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TrimMissing().Len())
	assert.Equal(t, 0, (&Series{Name: "none"}).Regular().Len())
}

func TestMonthsBetween(t *testing.T) {
	assert.Equal(t, 23, MonthsBetween(month(2020, 2), month(2022, 1)))
	assert.Equal(t, 0, MonthsBetween(month(2020, 2), month(2020, 2)))
}
