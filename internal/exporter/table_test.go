package exporter

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "fxcpi/internal/errors"
	"fxcpi/pkg/contracts/domain"
)

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

func sampleTable(t *testing.T) *domain.Table {
	t.Helper()
	dates := []time.Time{month(2020, time.February), month(2020, time.March), month(2020, time.April)}
	tbl := domain.NewTable(dates)
	require.NoError(t, tbl.AddColumn(domain.ColInflMoM, []float64{0.1 + 0.2, math.NaN(), -1.0 / 7.0}))
	require.NoError(t, tbl.AddColumn(domain.ColFXMoM, []float64{1e-9, 2.5, 123456.789}))
	return tbl
}

func TestWriteTable_RoundTrip(t *testing.T) {
	writer, tempDir := setupTestEnv(t, false)
	original := sampleTable(t)

	require.NoError(t, writer.WriteTable("merged.csv", original))
	path := filepath.Join(tempDir, "outputs", "merged.csv")

	lines := readLines(t, path)
	assert.Equal(t, "date,infl_mom_pct,fx_mom_pct", lines[0])
	assert.Equal(t, "2020-03-01,,2.5", lines[2])

	back, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, original.Dates(), back.Dates())
	assert.Equal(t, original.Columns(), back.Columns())
	for _, name := range original.Columns() {
		want, _ := original.Column(name)
		got, _ := back.Column(name)
		require.Len(t, got, len(want))
		for i := range want {
			if math.IsNaN(want[i]) {
				assert.True(t, math.IsNaN(got[i]), "%s[%d]", name, i)
				continue
			}
			assert.Equal(t, want[i], got[i], "%s[%d]", name, i)
		}
	}
}

func TestWriteTable_BOMRoundTrip(t *testing.T) {
	writer, tempDir := setupTestEnv(t, true)
	require.NoError(t, writer.WriteTable("bom.csv", sampleTable(t)))

	back, err := ReadTable(filepath.Join(tempDir, "outputs", "bom.csv"))
	require.NoError(t, err)
	assert.Equal(t, 3, back.Len())
	assert.True(t, back.HasColumn(domain.ColInflMoM))
}

func TestDecodeTable_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "no date column", input: "month,x\n2020-01-01,1\n"},
		{name: "bad date", input: "date,x\n2020/01/01,1\n"},
		{name: "bad number", input: "date,x\n2020-01-01,one\n"},
		{name: "unordered dates", input: "date,x\n2020-02-01,1\n2020-01-01,2\n"},
		{name: "duplicate column", input: "date,x,x\n2020-01-01,1,2\n"},
		{name: "ragged row", input: "date,x\n2020-01-01\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTable(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
		})
	}
}

func TestReadTable_MissingFile(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeIO))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
