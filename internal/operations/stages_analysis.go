package operations

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"fxcpi/internal/config"
	"fxcpi/internal/dataprocessing"
	apperrors "fxcpi/internal/errors"
	"fxcpi/internal/exporter"
	"fxcpi/internal/passthrough"
	"fxcpi/pkg/contracts/domain"
)

// LagProfileStage correlates inflation with lagged FX changes
type LagProfileStage struct {
	BaseStage
	env *Env
}

// NewLagProfileStage creates the lag correlation stage
func NewLagProfileStage(env *Env) *LagProfileStage {
	return &LagProfileStage{
		BaseStage: NewBaseStage(StageIDLagProfile, StageNameLagProfile, []string{StageIDMerge}),
		env:       env,
	}
}

// Validate checks that the merged table is available
func (s *LagProfileStage) Validate(state *OperationState) error {
	return s.env.requireTables(state, ContextKeyMerged)
}

// Execute writes the lag profiles and the FX autocorrelation
func (s *LagProfileStage) Execute(ctx context.Context, state *OperationState) error {
	stage := state.GetStage(s.ID())
	cfg := s.env.Config.Analysis
	logger := s.env.stageLogger(s.ID())

	merged, err := s.env.loadTable(state, ContextKeyMerged)
	if err != nil {
		return err
	}
	fx, err := merged.Column(domain.ColFXMoM)
	if err != nil {
		return err
	}

	var profiles []exporter.LagProfile
	rows := 0
	for _, y := range []string{domain.ColInflMoM, domain.ColInflYoY} {
		values, err := merged.Column(y)
		if err != nil {
			return err
		}
		points := passthrough.LagProfile(values, fx, cfg.MaxLag)
		stage.AddUnstable(missingCorrelations(points))

		if peak, ok := passthrough.PeakLag(points); ok {
			logger.InfoContext(ctx, "peak_lag",
				slog.String("series", y),
				slog.Int("lag", peak.Lag),
				slog.Float64("correlation", peak.Correlation))
		} else {
			logger.WarnContext(ctx, "no_peak_lag", slog.String("series", y))
		}

		profiles = append(profiles, exporter.LagProfile{Series: y, Points: points})
		rows += len(points)
	}
	if err := s.env.writeOutput(stage, config.FileLagProfile, rows, func(path string) error {
		return s.env.Writer.WriteLagProfiles(path, profiles)
	}); err != nil {
		return err
	}

	auto := passthrough.Autocorrelation(fx, cfg.AutocorrMaxLag)
	stage.AddUnstable(missingCorrelations(auto))
	autoProfile := []exporter.LagProfile{{Series: domain.ColFXMoM, Points: auto}}
	return s.env.writeOutput(stage, config.FileFXAutocorrelation, len(auto), func(path string) error {
		return s.env.Writer.WriteLagProfiles(path, autoProfile)
	})
}

func missingCorrelations(points []domain.LagCorrelation) int {
	n := 0
	for _, p := range points {
		if math.IsNaN(p.Correlation) {
			n++
		}
	}
	return n
}

// BaselinesStage fits the whole-sample pass-through regressions
type BaselinesStage struct {
	BaseStage
	env *Env
}

// NewBaselinesStage creates the baseline regression stage
func NewBaselinesStage(env *Env) *BaselinesStage {
	return &BaselinesStage{
		BaseStage: NewBaseStage(StageIDBaselines, StageNameBaselines, []string{StageIDMerge}),
		env:       env,
	}
}

// Validate checks that the merged table is available
func (s *BaselinesStage) Validate(state *OperationState) error {
	return s.env.requireTables(state, ContextKeyMerged)
}

type baselineModel struct {
	name   string
	lag    int
	withAR bool
}

// Execute fits one model per configured lag plus the contemporaneous model
// with lagged inflation. A model that cannot be fitted is logged and left out.
func (s *BaselinesStage) Execute(ctx context.Context, state *OperationState) error {
	stage := state.GetStage(s.ID())
	logger := s.env.stageLogger(s.ID())

	merged, err := s.env.loadTable(state, ContextKeyMerged)
	if err != nil {
		return err
	}

	models := make([]baselineModel, 0, len(s.env.Config.Analysis.BaselineLags)+1)
	for _, lag := range s.env.Config.Analysis.BaselineLags {
		models = append(models, baselineModel{name: fmt.Sprintf("lag%d", lag), lag: lag})
	}
	models = append(models, baselineModel{name: "lag0_ar1", withAR: true})

	results := make([]*domain.RegressionResult, 0, len(models))
	for _, m := range models {
		r, err := passthrough.Baseline(merged, domain.ColInflMoM, domain.ColFXMoM, m.lag, m.withAR)
		if err != nil {
			if !apperrors.IsNumerical(err) {
				return err
			}
			stage.AddUnstable(1)
			logger.WarnContext(ctx, "baseline_not_fitted",
				slog.String("model", m.name),
				slog.String("error", err.Error()))
			continue
		}
		r.Model = m.name

		coef, _ := r.Coefficient(passthrough.LagTerm(domain.ColFXMoM, m.lag))
		logger.InfoContext(ctx, "baseline_fitted",
			slog.String("model", m.name),
			slog.Float64("beta_fx", coef),
			slog.Float64("r_squared", r.RSquared),
			slog.Int("n_obs", r.N))
		results = append(results, r)
	}

	rows := 0
	for _, r := range results {
		rows += len(r.Terms)
	}
	return s.env.writeOutput(stage, config.FileBaselines, rows, func(path string) error {
		return s.env.Writer.WriteRegressions(path, results)
	})
}

// VolatilityStage computes rolling volatility and the pre/post comparison
type VolatilityStage struct {
	BaseStage
	env *Env
}

// NewVolatilityStage creates the rolling volatility stage
func NewVolatilityStage(env *Env) *VolatilityStage {
	return &VolatilityStage{
		BaseStage: NewBaseStage(StageIDVolatility, StageNameVolatility, []string{StageIDMerge}),
		env:       env,
	}
}

// Validate checks that the merged table is available
func (s *VolatilityStage) Validate(state *OperationState) error {
	return s.env.requireTables(state, ContextKeyMerged)
}

// Execute writes the rolling standard deviations and the split comparison
func (s *VolatilityStage) Execute(ctx context.Context, state *OperationState) error {
	stage := state.GetStage(s.ID())
	cfg := s.env.Config.Analysis

	merged, err := s.env.loadTable(state, ContextKeyMerged)
	if err != nil {
		return err
	}
	vol, err := merged.Select(domain.ColInflMoM, domain.ColFXMoM)
	if err != nil {
		return err
	}
	for _, c := range []struct{ from, to string }{
		{domain.ColInflMoM, domain.ColInflVol},
		{domain.ColFXMoM, domain.ColFXVol},
	} {
		values, _ := vol.Column(c.from)
		if err := vol.AddColumn(c.to, dataprocessing.RollingStd(values, cfg.VolatilityWindow)); err != nil {
			return err
		}
	}
	if err := s.env.writeOutput(stage, config.FileVolatility, vol.Len(), func(path string) error {
		return s.env.Writer.WriteTable(path, vol)
	}); err != nil {
		return err
	}

	preBefore, postStart, err := cfg.SplitDates()
	if err != nil {
		return err
	}
	shifts := make([]domain.VolatilityShift, 0, 2)
	for _, c := range []string{domain.ColInflVol, domain.ColFXVol} {
		pre, post, err := passthrough.VolatilitySplit(vol, c, preBefore, postStart)
		if err != nil {
			return err
		}
		shift := domain.VolatilityShift{Series: c, Pre: pre, Post: post}
		if math.IsNaN(shift.Ratio()) {
			stage.AddUnstable(1)
		}
		s.env.stageLogger(s.ID()).InfoContext(ctx, "volatility_split",
			slog.String("series", c),
			slog.Float64("pre", pre),
			slog.Float64("post", post),
			slog.Float64("ratio", shift.Ratio()))
		shifts = append(shifts, shift)
	}
	return s.env.writeOutput(stage, config.FileVolatilitySplit, len(shifts), func(path string) error {
		return s.env.Writer.WriteVolatilityShifts(path, shifts)
	})
}

// PersistenceStage fits whole-sample AR(1) models of inflation and FX
type PersistenceStage struct {
	BaseStage
	env *Env
}

// NewPersistenceStage creates the persistence stage
func NewPersistenceStage(env *Env) *PersistenceStage {
	return &PersistenceStage{
		BaseStage: NewBaseStage(StageIDPersistence, StageNamePersistence, []string{StageIDMerge}),
		env:       env,
	}
}

// Validate checks that the merged table is available
func (s *PersistenceStage) Validate(state *OperationState) error {
	return s.env.requireTables(state, ContextKeyMerged)
}

// Execute writes one persistence row per series. A series that cannot be
// fitted keeps its row with missing values and the reason in the note.
func (s *PersistenceStage) Execute(ctx context.Context, state *OperationState) error {
	stage := state.GetStage(s.ID())
	logger := s.env.stageLogger(s.ID())

	merged, err := s.env.loadTable(state, ContextKeyMerged)
	if err != nil {
		return err
	}

	var results []*domain.Persistence
	for _, c := range []string{domain.ColInflMoM, domain.ColFXMoM} {
		values, err := merged.Column(c)
		if err != nil {
			return err
		}
		p, err := passthrough.EstimatePersistence(c, values)
		if err != nil {
			if !apperrors.IsNumerical(err) {
				return err
			}
			nan := math.NaN()
			p = &domain.Persistence{Series: c, Rho: nan, Intercept: nan, HalfLife: nan, RemainingAfter3: nan, Err: err}
		}
		if p.Err != nil {
			stage.AddUnstable(1)
			logger.WarnContext(ctx, "half_life_missing",
				slog.String("series", c),
				slog.String("error", p.Err.Error()))
		} else {
			logger.InfoContext(ctx, "persistence_estimated",
				slog.String("series", c),
				slog.Float64("rho", p.Rho),
				slog.Float64("half_life", p.HalfLife))
		}
		results = append(results, p)
	}

	return s.env.writeOutput(stage, config.FilePersistence, len(results), func(path string) error {
		return s.env.Writer.WritePersistence(path, results)
	})
}

// RollingPassThroughStage estimates the joint rolling pass-through and persistence
type RollingPassThroughStage struct {
	BaseStage
	env *Env
}

// NewRollingPassThroughStage creates the headline rolling stage
func NewRollingPassThroughStage(env *Env) *RollingPassThroughStage {
	return &RollingPassThroughStage{
		BaseStage: NewBaseStage(StageIDRollingPassThrough, StageNameRollingPassThrough, []string{StageIDMerge}),
		env:       env,
	}
}

// Validate checks that the merged table is available
func (s *RollingPassThroughStage) Validate(state *OperationState) error {
	return s.env.requireTables(state, ContextKeyMerged)
}

// Execute writes the rolling joint estimates and the event markers inside
// the estimated period
func (s *RollingPassThroughStage) Execute(ctx context.Context, state *OperationState) error {
	stage := state.GetStage(s.ID())
	logger := s.env.stageLogger(s.ID())

	merged, err := s.env.loadTable(state, ContextKeyMerged)
	if err != nil {
		return err
	}

	estimates, err := s.env.Engine.RollingJoint(ctx, merged, domain.ColInflMoM, domain.ColFXMoM)
	if err != nil {
		return err
	}
	for _, e := range estimates {
		if e.Err != nil {
			stage.AddUnstable(1)
		}
	}
	t, err := passthrough.JointTable(estimates)
	if err != nil {
		return err
	}
	if err := s.env.writeOutput(stage, config.FileRollingPassThrough, t.Len(), func(path string) error {
		return s.env.Writer.WriteTable(path, t)
	}); err != nil {
		return err
	}

	events, err := s.env.Config.Analysis.EventList()
	if err != nil {
		return err
	}
	used := make([]domain.Event, 0, len(events))
	first, last, ok := merged.DateRange()
	for _, e := range events {
		if ok && !e.Date.Before(first) && !e.Date.After(last) {
			used = append(used, e)
			continue
		}
		logger.InfoContext(ctx, "event_outside_sample",
			slog.String("label", e.Label),
			slog.String("date", e.Date.Format(domain.DateLayout)))
	}
	return s.env.writeOutput(stage, config.FileEventMarkers, len(used), func(path string) error {
		return s.env.Writer.WriteEvents(path, used)
	})
}

// categoryFXTable joins the category inflation columns with the FX change
func (e *Env) categoryFXTable(ctx context.Context, state *OperationState) (*domain.Table, error) {
	categories, err := e.loadTable(state, ContextKeyCategories)
	if err != nil {
		return nil, err
	}
	merged, err := e.loadTable(state, ContextKeyMerged)
	if err != nil {
		return nil, err
	}
	fx, err := merged.Select(domain.ColFXMoM)
	if err != nil {
		return nil, err
	}
	return dataprocessing.Merge(ctx, categories, fx)
}

// RollingCategoriesStage estimates rolling pass-through and persistence per category
type RollingCategoriesStage struct {
	BaseStage
	env *Env
}

// NewRollingCategoriesStage creates the category rolling stage
func NewRollingCategoriesStage(env *Env) *RollingCategoriesStage {
	return &RollingCategoriesStage{
		BaseStage: NewBaseStage(StageIDRollingCategories, StageNameRollingCategories,
			[]string{StageIDMerge, StageIDCPICategories}),
		env: env,
	}
}

// Validate checks that the merged and category tables are available
func (s *RollingCategoriesStage) Validate(state *OperationState) error {
	return s.env.requireTables(state, ContextKeyMerged, ContextKeyCategories)
}

// Execute writes one wide beta table and one wide rho table
func (s *RollingCategoriesStage) Execute(ctx context.Context, state *OperationState) error {
	stage := state.GetStage(s.ID())
	categories := s.env.Config.Analysis.RollingCategories

	joined, err := s.env.categoryFXTable(ctx, state)
	if err != nil {
		return err
	}

	betaCols := make([]string, 0, len(categories))
	rhoCols := make([]string, 0, len(categories))
	betas := make(map[string][]domain.Estimate, len(categories))
	rhos := make(map[string][]domain.Estimate, len(categories))
	for _, c := range categories {
		y := domain.MoMColumn(c)

		b, err := s.env.Engine.RollingBeta(ctx, joined, y, domain.ColFXMoM)
		if err != nil {
			return err
		}
		r, err := s.env.Engine.RollingRho(ctx, joined, y)
		if err != nil {
			return err
		}
		stage.AddUnstable(passthrough.Unstable(b) + passthrough.Unstable(r))

		betaCols = append(betaCols, domain.BetaColumn(c))
		rhoCols = append(rhoCols, domain.RhoColumn(c))
		betas[domain.BetaColumn(c)] = b
		rhos[domain.RhoColumn(c)] = r
	}

	for _, out := range []struct {
		file      string
		columns   []string
		estimates map[string][]domain.Estimate
	}{
		{config.FileRollingBeta, betaCols, betas},
		{config.FileRollingRho, rhoCols, rhos},
	} {
		t, err := passthrough.CoefficientTable(out.columns, out.estimates)
		if err != nil {
			return err
		}
		if err := s.env.writeOutput(stage, out.file, t.Len(), func(path string) error {
			return s.env.Writer.WriteTable(path, t)
		}); err != nil {
			return err
		}
	}
	return nil
}

// RegimeSummaryStage compares pass-through and persistence across regimes
type RegimeSummaryStage struct {
	BaseStage
	env *Env
}

// NewRegimeSummaryStage creates the regime comparison stage
func NewRegimeSummaryStage(env *Env) *RegimeSummaryStage {
	return &RegimeSummaryStage{
		BaseStage: NewBaseStage(StageIDRegimeSummary, StageNameRegimeSummary,
			[]string{StageIDMerge, StageIDCPICategories}),
		env: env,
	}
}

// Validate checks that the merged and category tables are available
func (s *RegimeSummaryStage) Validate(state *OperationState) error {
	return s.env.requireTables(state, ContextKeyMerged, ContextKeyCategories)
}

// Execute writes the regime table. Cells that cannot be fitted are left empty.
func (s *RegimeSummaryStage) Execute(ctx context.Context, state *OperationState) error {
	stage := state.GetStage(s.ID())
	cfg := s.env.Config.Analysis

	regimes, err := cfg.RegimeList()
	if err != nil {
		return err
	}
	joined, err := s.env.categoryFXTable(ctx, state)
	if err != nil {
		return err
	}

	targets := make([]passthrough.Target, len(cfg.RegimeTargets))
	for i, c := range cfg.RegimeTargets {
		targets[i] = passthrough.Target{Name: c, Column: domain.MoMColumn(c)}
	}

	summaries, err := passthrough.CompareRegimes(ctx, joined, regimes, targets, domain.ColFXMoM)
	if err != nil {
		return err
	}
	stage.AddUnstable(passthrough.CountMissingCells(summaries))

	return s.env.writeOutput(stage, config.FileRegimeTable, len(summaries), func(path string) error {
		return s.env.Writer.WriteRegimeTable(path, summaries, cfg.RegimeTargets)
	})
}
