package testutil

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fxcpi/internal/config"
)

// Planted headline pass-through of the generated data
const (
	AmplifierBeta = 0.6
	CalmBeta      = 0.1
)

// PipelineFixture is a project root holding generated raw inputs
type PipelineFixture struct {
	Root   string
	Config *config.Config
	Paths  *config.Paths
}

// NewPipelineFixture writes a synthetic CPI panel and FX workbook under a
// temporary root and returns a matching configuration. FX changes pass
// into headline inflation with AmplifierBeta in 2022-2023 and CalmBeta
// otherwise.
func NewPipelineFixture(t *testing.T) *PipelineFixture {
	t.Helper()

	cfg := config.Default()
	cfg.Paths = config.PathsConfig{
		Root:         t.TempDir(),
		CPIPanel:     "data/raw/cpi_panel.csv",
		FXWorkbook:   "data/raw/fx_rates.xlsx",
		ProcessedDir: "data/processed",
		OutputsDir:   "analysis/outputs",
		LogsDir:      "logs",
	}
	paths, err := config.ResolvePaths(cfg.Paths)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())
	require.NoError(t, os.MkdirAll(filepath.Dir(paths.CPIPanel), 0755))

	g := &generator{rng: rand.New(rand.NewSource(42))}
	fxMonths := monthRange(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 72)
	levels, changes := g.fxPath(len(fxMonths))

	writeRateWorkbook(t, paths.FXWorkbook, fxMonths, levels)
	writeCPIPanel(t, paths.CPIPanel, cfg.Analysis, g, fxMonths, changes)

	return &PipelineFixture{Root: paths.Root, Config: cfg, Paths: paths}
}

// RemoveRawInputs deletes the raw files so later runs must rely on processed tables
func (f *PipelineFixture) RemoveRawInputs(t *testing.T) {
	t.Helper()
	require.NoError(t, os.Remove(f.Paths.CPIPanel))
	require.NoError(t, os.Remove(f.Paths.FXWorkbook))
}

// BlankHeadlineMonth empties the headline CPI cell of month in the raw panel
func (f *PipelineFixture) BlankHeadlineMonth(t *testing.T, month time.Time) {
	t.Helper()
	data, err := os.ReadFile(f.Paths.CPIPanel)
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)

	col := -1
	for i, h := range records[0] {
		if h == fmt.Sprintf("%d-M%02d", month.Year(), int(month.Month())) {
			col = i
		}
	}
	require.NotEqual(t, -1, col, "month %s not in panel", month.Format("2006-01"))

	// the headline row is written first
	records[1][col] = ""

	var b strings.Builder
	w := csv.NewWriter(&b)
	require.NoError(t, w.WriteAll(records))
	require.NoError(t, os.WriteFile(f.Paths.CPIPanel, []byte(b.String()), 0644))
}

// OutputLines reads an output file as lines
func (f *PipelineFixture) OutputLines(t *testing.T, name string) []string {
	t.Helper()
	data, err := os.ReadFile(f.Paths.OutputPath(name))
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

type generator struct {
	rng *rand.Rand
}

// fxPath returns monthly average levels and their percentage changes
func (g *generator) fxPath(n int) (levels, changes []float64) {
	levels = make([]float64, n)
	changes = make([]float64, n)
	levels[0] = 36
	for i := 1; i < n; i++ {
		changes[i] = 0.8 * g.rng.NormFloat64()
		levels[i] = levels[i-1] * (1 + changes[i]/100)
	}
	return levels, changes
}

// indexPath builds a price index whose monthly inflation follows
// c + beta(t) fx(t) + 0.3 infl(t-1) + noise
func (g *generator) indexPath(months []time.Time, fx map[time.Time]float64, c float64, beta func(time.Time) float64) []float64 {
	index := make([]float64, len(months))
	prev := 0.0
	level := 100.0
	for i, m := range months {
		infl := c + beta(m)*fx[m] + 0.3*prev + 0.05*g.rng.NormFloat64()
		if i > 0 {
			level *= 1 + infl/100
		}
		index[i] = level
		prev = infl
	}
	return index
}

func headlineBeta(m time.Time) float64 {
	if m.Year() == 2022 || m.Year() == 2023 {
		return AmplifierBeta
	}
	return CalmBeta
}

func monthRange(first time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = first.AddDate(0, i, 0)
	}
	return out
}

// writeRateWorkbook writes one sheet per year: a title block, the header on
// the third row, then three USD quotes per month averaging to the level, and
// a EUR quote that must be ignored
func writeRateWorkbook(t *testing.T, path string, months []time.Time, levels []float64) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	rows := make(map[int]int)
	for i, m := range months {
		sheet := strconv.Itoa(m.Year())
		if _, ok := rows[m.Year()]; !ok {
			if len(rows) == 0 {
				require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))
			} else {
				_, err := f.NewSheet(sheet)
				require.NoError(t, err)
			}
			require.NoError(t, f.SetCellValue(sheet, "A1", "Banque Centrale de Mauritanie"))
			require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"N°", "Date", "Devise", "Cours de référence"}))
			rows[m.Year()] = 4
		}

		quotes := []struct {
			day      int
			currency string
			rate     float64
		}{
			{2, "USD", levels[i] * 0.999},
			{12, "USD", levels[i]},
			{15, "EUR", levels[i] * 1.1},
			{22, "USD", levels[i] * 1.001},
		}
		for j, q := range quotes {
			cellName, err := excelize.CoordinatesToCellName(1, rows[m.Year()])
			require.NoError(t, err)
			day := time.Date(m.Year(), m.Month(), q.day, 0, 0, 0, 0, time.UTC)
			require.NoError(t, f.SetSheetRow(sheet, cellName, &[]interface{}{j + 1, day, q.currency, q.rate}))
			rows[m.Year()]++
		}
	}

	require.NoError(t, f.SaveAs(path))
}

// writeCPIPanel writes the headline series, every configured category and a
// series of another country as a wide panel starting a year before the FX data
func writeCPIPanel(t *testing.T, path string, cfg config.AnalysisConfig, g *generator, fxMonths []time.Time, changes []float64) {
	t.Helper()

	fx := make(map[time.Time]float64, len(fxMonths))
	for i, m := range fxMonths {
		fx[m] = changes[i]
	}
	months := monthRange(fxMonths[0].AddDate(-1, 0, 0), len(fxMonths)+12)

	var b strings.Builder
	b.WriteString("COUNTRY,FREQUENCY,COICOP_1999,TYPE_OF_TRANSFORMATION,SERIES_CODE")
	for _, m := range months {
		fmt.Fprintf(&b, ",%d-M%02d", m.Year(), int(m.Month()))
	}
	b.WriteString("\n")

	writeRow := func(country, category, transformation, code string, values []float64) {
		fmt.Fprintf(&b, "%q,%s,%s,%q,%s", country, cfg.Frequency, category, transformation, code)
		for _, v := range values {
			b.WriteString(",")
			b.WriteString(strconv.FormatFloat(v, 'f', 4, 64))
		}
		b.WriteString("\n")
	}

	headline := g.indexPath(months, fx, 0.2, headlineBeta)
	writeRow(cfg.Country, cfg.HeadlineCategory, cfg.HeadlineTransformation, "HEADLINE.REF", headline)

	for i, c := range cfg.Categories {
		values := headline
		if c.Name != "headline" {
			slope := 0.05 * float64(i)
			values = g.indexPath(months, fx, 0.1, func(time.Time) float64 { return slope })
		}
		writeRow(cfg.Country, c.Name, cfg.CategoryTransformation, c.Code, values)
	}

	other := g.indexPath(months, fx, 0.4, func(time.Time) float64 { return 0 })
	writeRow("Senegal", cfg.HeadlineCategory, cfg.HeadlineTransformation, "SEN.CPI._T.IX.M", other)

	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
}
