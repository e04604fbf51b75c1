package operations

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"fxcpi/internal/config"
	"fxcpi/internal/dataprocessing"
	"fxcpi/internal/passthrough"
	"fxcpi/pkg/contracts/domain"
)

// CPIBaselineStage extracts the headline CPI index from the panel
type CPIBaselineStage struct {
	BaseStage
	env *Env
}

// NewCPIBaselineStage creates the headline extraction stage
func NewCPIBaselineStage(env *Env) *CPIBaselineStage {
	return &CPIBaselineStage{
		BaseStage: NewBaseStage(StageIDCPIBaseline, StageNameCPIBaseline, nil),
		env:       env,
	}
}

// Validate checks that the CPI panel exists
func (s *CPIBaselineStage) Validate(state *OperationState) error {
	return requireFile(s.env.Paths.CPIPanel)
}

// Execute writes the headline index for the analysis period. Months with a
// blank cell stay in the table as missing so later changes stay one month apart.
func (s *CPIBaselineStage) Execute(ctx context.Context, state *OperationState) error {
	stage := state.GetStage(s.ID())
	cfg := s.env.Config.Analysis

	start, end, err := s.env.dateRange()
	if err != nil {
		return err
	}
	panel, err := s.env.loadPanel(state)
	if err != nil {
		return err
	}

	series, err := panel.ExtractSeries(domain.ColCPIIndex, dataprocessing.SeriesFilter{
		Country:        cfg.Country,
		Frequency:      cfg.Frequency,
		Category:       cfg.HeadlineCategory,
		Transformation: cfg.HeadlineTransformation,
	}, start, end)
	if err != nil {
		return err
	}

	series = series.TrimMissing()
	if series.Len() == 0 {
		return fmt.Errorf("headline CPI has no observations between %s and %s",
			start.Format(domain.DateLayout), end.Format(domain.DateLayout))
	}
	t := series.Table()

	logger := s.env.stageLogger(s.ID())
	first, last, _ := t.DateRange()
	logger.InfoContext(ctx, "headline_extracted",
		slog.Int("rows", t.Len()),
		slog.String("min_date", first.Format(domain.DateLayout)),
		slog.String("max_date", last.Format(domain.DateLayout)))
	if gaps := series.Missing(); gaps > 0 {
		logger.WarnContext(ctx, "headline_gaps", slog.Int("missing_months", gaps))
	}

	return s.env.saveTable(state, stage, ContextKeyCPIBaseline, t)
}

// CPIInflationStage derives headline MoM and YoY inflation
type CPIInflationStage struct {
	BaseStage
	env *Env
}

// NewCPIInflationStage creates the headline inflation stage
func NewCPIInflationStage(env *Env) *CPIInflationStage {
	return &CPIInflationStage{
		BaseStage: NewBaseStage(StageIDCPIInflation, StageNameCPIInflation, []string{StageIDCPIBaseline}),
		env:       env,
	}
}

// Validate checks that the headline index is available
func (s *CPIInflationStage) Validate(state *OperationState) error {
	return s.env.requireTables(state, ContextKeyCPIBaseline)
}

// Execute adds the inflation columns to the headline index
func (s *CPIInflationStage) Execute(ctx context.Context, state *OperationState) error {
	stage := state.GetStage(s.ID())

	base, err := s.env.loadTable(state, ContextKeyCPIBaseline)
	if err != nil {
		return err
	}
	series, err := base.Series(domain.ColCPIIndex)
	if err != nil {
		return err
	}
	series = series.Regular()
	levels := series.Values()

	out, err := dataprocessing.SeriesTable(series,
		dataprocessing.NamedColumn{Name: domain.ColInflMoM, Values: dataprocessing.MoM(levels)},
		dataprocessing.NamedColumn{Name: domain.ColInflYoY, Values: dataprocessing.YoY(levels)},
	)
	if err != nil {
		return err
	}

	s.env.stageLogger(s.ID()).InfoContext(ctx, "inflation_derived", slog.Int("rows", out.Len()))
	return s.env.saveTable(state, stage, ContextKeyInflation, out)
}

// FXMonthlyStage averages the daily rate workbook per month
type FXMonthlyStage struct {
	BaseStage
	env *Env
}

// NewFXMonthlyStage creates the FX averaging stage
func NewFXMonthlyStage(env *Env) *FXMonthlyStage {
	return &FXMonthlyStage{
		BaseStage: NewBaseStage(StageIDFXMonthly, StageNameFXMonthly, nil),
		env:       env,
	}
}

// Validate checks that the rate workbook exists
func (s *FXMonthlyStage) Validate(state *OperationState) error {
	return requireFile(s.env.Paths.FXWorkbook)
}

// Execute writes the monthly average rate and its MoM change. The change is
// taken before trimming to the analysis period so the first month keeps it.
func (s *FXMonthlyStage) Execute(ctx context.Context, state *OperationState) error {
	stage := state.GetStage(s.ID())
	cfg := s.env.Config.Analysis
	logger := s.env.stageLogger(s.ID())

	start, end, err := s.env.dateRange()
	if err != nil {
		return err
	}

	quotes, err := dataprocessing.ParseFXWorkbook(s.env.Paths.FXWorkbook, dataprocessing.FXOptions{
		Years:          cfg.FXYears,
		HeaderScanRows: cfg.HeaderScanRows,
	})
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	monthly, err := dataprocessing.MonthlyAverage(quotes, cfg.Currency)
	if err != nil {
		return err
	}
	full, err := dataprocessing.SeriesTable(monthly,
		dataprocessing.NamedColumn{Name: domain.ColFXMoM, Values: dataprocessing.MoM(monthly.Values())},
	)
	if err != nil {
		return err
	}
	t := full.Filter(start, end)

	logger.InfoContext(ctx, "fx_averaged",
		slog.Int("quotes", len(quotes)),
		slog.Int("months", full.Len()),
		slog.Int("rows", t.Len()),
		slog.String("currency", cfg.Currency))

	return s.env.saveTable(state, stage, ContextKeyFXMonthly, t)
}

// MergeStage joins headline inflation and FX on date
type MergeStage struct {
	BaseStage
	env *Env
}

// NewMergeStage creates the FX/CPI merge stage
func NewMergeStage(env *Env) *MergeStage {
	return &MergeStage{
		BaseStage: NewBaseStage(StageIDMerge, StageNameMerge, []string{StageIDCPIInflation, StageIDFXMonthly}),
		env:       env,
	}
}

// Validate checks that both operands are available
func (s *MergeStage) Validate(state *OperationState) error {
	return s.env.requireTables(state, ContextKeyInflation, ContextKeyFXMonthly)
}

// Execute writes the inner join of the inflation and FX tables
func (s *MergeStage) Execute(ctx context.Context, state *OperationState) error {
	stage := state.GetStage(s.ID())

	inflation, err := s.env.loadTable(state, ContextKeyInflation)
	if err != nil {
		return err
	}
	fx, err := s.env.loadTable(state, ContextKeyFXMonthly)
	if err != nil {
		return err
	}

	merged, err := dataprocessing.Merge(ctx, inflation, fx)
	if err != nil {
		return err
	}
	if merged.Len() == 0 {
		return fmt.Errorf("inflation and FX tables share no month")
	}

	return s.env.saveTable(state, stage, ContextKeyMerged, merged)
}

// CPICategoriesStage extracts the category indices and their inflation
type CPICategoriesStage struct {
	BaseStage
	env *Env
}

// NewCPICategoriesStage creates the category extraction stage
func NewCPICategoriesStage(env *Env) *CPICategoriesStage {
	return &CPICategoriesStage{
		BaseStage: NewBaseStage(StageIDCPICategories, StageNameCPICategories, nil),
		env:       env,
	}
}

// Validate checks that the CPI panel exists
func (s *CPICategoriesStage) Validate(state *OperationState) error {
	return requireFile(s.env.Paths.CPIPanel)
}

// Execute writes the category table with the services proxy
func (s *CPICategoriesStage) Execute(ctx context.Context, state *OperationState) error {
	stage := state.GetStage(s.ID())

	panel, err := s.env.loadPanel(state)
	if err != nil {
		return err
	}
	t, err := dataprocessing.BuildCategoryTable(ctx, panel, s.env.Config.Analysis)
	if err != nil {
		return err
	}

	s.env.stageLogger(s.ID()).InfoContext(ctx, "categories_extracted",
		slog.Int("rows", t.Len()),
		slog.Int("columns", len(t.Columns())))

	return s.env.saveTable(state, stage, ContextKeyCategories, t)
}

// ValidateStage reports the shape of every processed table and the
// descriptive statistics of headline inflation
type ValidateStage struct {
	BaseStage
	env *Env
}

// NewValidateStage creates the pipeline validation stage
func NewValidateStage(env *Env) *ValidateStage {
	return &ValidateStage{
		BaseStage: NewBaseStage(StageIDValidate, StageNameValidate,
			[]string{StageIDCPIInflation, StageIDFXMonthly, StageIDMerge, StageIDCPICategories}),
		env: env,
	}
}

// validatedTables lists the tables checked, in report order
var validatedTables = []string{
	ContextKeyCPIBaseline,
	ContextKeyInflation,
	ContextKeyFXMonthly,
	ContextKeyMerged,
	ContextKeyCategories,
}

// Validate checks that every processed table is available
func (s *ValidateStage) Validate(state *OperationState) error {
	return s.env.requireTables(state, validatedTables...)
}

// Execute writes the validation and summary statistics files
func (s *ValidateStage) Execute(ctx context.Context, state *OperationState) error {
	stage := state.GetStage(s.ID())
	logger := s.env.stageLogger(s.ID())

	checks := make([]domain.TableCheck, 0, len(validatedTables))
	for _, key := range validatedTables {
		t, err := s.env.loadTable(state, key)
		if err != nil {
			return err
		}
		check := checkTable(processedFiles[key], t)
		if check.MissingCells > 0 {
			logger.WarnContext(ctx, "table_has_missing_cells",
				slog.String("file", check.Name),
				slog.Int("missing_cells", check.MissingCells))
		}
		checks = append(checks, check)
	}

	if err := s.env.writeOutput(stage, config.FileValidation, len(checks), func(path string) error {
		return s.env.Writer.WriteValidation(path, checks)
	}); err != nil {
		return err
	}

	merged, err := s.env.loadTable(state, ContextKeyMerged)
	if err != nil {
		return err
	}
	descriptions, err := passthrough.DescribeTable(merged, domain.ColInflMoM, domain.ColInflYoY, domain.ColFXMoM)
	if err != nil {
		return err
	}
	return s.env.writeOutput(stage, config.FileSummaryStats, len(descriptions), func(path string) error {
		return s.env.Writer.WriteDescriptions(path, descriptions)
	})
}

// checkTable summarizes the rows, date span and missing cells of a table
func checkTable(name string, t *domain.Table) domain.TableCheck {
	check := domain.TableCheck{Name: name, Rows: t.Len()}
	check.First, check.Last, _ = t.DateRange()
	for _, c := range t.Columns() {
		values, _ := t.Column(c)
		for _, v := range values {
			if math.IsNaN(v) {
				check.MissingCells++
			}
		}
	}
	return check
}
