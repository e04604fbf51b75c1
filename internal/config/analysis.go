package config

import (
	"fmt"
	"time"

	"fxcpi/pkg/contracts/domain"
)

// ServicesProxyColumn is the derived equal-weight services index
const ServicesProxyColumn = "services_proxy"

// AnalysisConfig holds every run constant of the pass-through analysis
type AnalysisConfig struct {
	Country                string `yaml:"country" envconfig:"COUNTRY" validate:"required"`
	Frequency              string `yaml:"frequency" envconfig:"FREQUENCY" validate:"required"`
	HeadlineCategory       string `yaml:"headline_category" envconfig:"HEADLINE_CATEGORY" validate:"required"`
	HeadlineTransformation string `yaml:"headline_transformation" envconfig:"HEADLINE_TRANSFORMATION" validate:"required"`
	CategoryTransformation string `yaml:"category_transformation" envconfig:"CATEGORY_TRANSFORMATION" validate:"required"`

	Start string `yaml:"start" envconfig:"START" validate:"required"`
	End   string `yaml:"end" envconfig:"END" validate:"required"`

	RollingWindow    int `yaml:"rolling_window" envconfig:"ROLLING_WINDOW" validate:"gte=3"`
	VolatilityWindow int `yaml:"volatility_window" envconfig:"VOLATILITY_WINDOW" validate:"gte=2"`
	MaxLag           int `yaml:"max_lag" envconfig:"MAX_LAG" validate:"gte=0"`
	AutocorrMaxLag   int `yaml:"autocorr_max_lag" envconfig:"AUTOCORR_MAX_LAG" validate:"gte=0"`

	// BaselineLags are the FX lags of the whole-sample baseline regressions
	BaselineLags []int `yaml:"baseline_lags" envconfig:"BASELINE_LAGS" validate:"dive,gte=0"`

	Currency       string `yaml:"currency" envconfig:"CURRENCY" validate:"required"`
	FXYears        []int  `yaml:"fx_years" envconfig:"FX_YEARS" validate:"min=1"`
	HeaderScanRows int    `yaml:"header_scan_rows" envconfig:"HEADER_SCAN_ROWS" validate:"gte=1"`

	Categories          []CategorySpec `yaml:"categories" ignored:"true" validate:"min=1,dive"`
	ServicesComponents  []string       `yaml:"services_components" envconfig:"SERVICES_COMPONENTS" validate:"min=1"`
	InflationCategories []string       `yaml:"inflation_categories" envconfig:"INFLATION_CATEGORIES"`
	RollingCategories   []string       `yaml:"rolling_categories" envconfig:"ROLLING_CATEGORIES"`
	RegimeTargets       []string       `yaml:"regime_targets" envconfig:"REGIME_TARGETS"`

	Regimes         []RegimeSpec    `yaml:"regimes" ignored:"true" validate:"dive"`
	Events          []EventSpec     `yaml:"events" ignored:"true" validate:"dive"`
	VolatilitySplit VolatilitySplit `yaml:"volatility_split" envconfig:"VOLATILITY_SPLIT"`
}

// CategorySpec maps a column name to a panel series code
type CategorySpec struct {
	Name string `yaml:"name" validate:"required"`
	Code string `yaml:"code" validate:"required"`
}

// RegimeSpec is a named inclusive date range
type RegimeSpec struct {
	Name  string `yaml:"name" validate:"required"`
	Start string `yaml:"start" validate:"required"`
	End   string `yaml:"end" validate:"required"`
}

// EventSpec is a dated structural marker
type EventSpec struct {
	Date  string `yaml:"date" validate:"required"`
	Label string `yaml:"label" validate:"required"`
}

// VolatilitySplit separates the pre and post periods of the volatility
// comparison. Pre rows are strictly before PreBefore, post rows start at PostStart.
type VolatilitySplit struct {
	PreBefore string `yaml:"pre_before" envconfig:"PRE_BEFORE"`
	PostStart string `yaml:"post_start" envconfig:"POST_START"`
}

// StartDate parses Start
func (a *AnalysisConfig) StartDate() (time.Time, error) {
	return parseDate("analysis.start", a.Start)
}

// EndDate parses End
func (a *AnalysisConfig) EndDate() (time.Time, error) {
	return parseDate("analysis.end", a.End)
}

// RegimeList converts the configured regimes. Overlaps are not checked.
func (a *AnalysisConfig) RegimeList() ([]domain.Regime, error) {
	regimes := make([]domain.Regime, 0, len(a.Regimes))
	for _, r := range a.Regimes {
		start, err := parseDate("regime "+r.Name+" start", r.Start)
		if err != nil {
			return nil, err
		}
		end, err := parseDate("regime "+r.Name+" end", r.End)
		if err != nil {
			return nil, err
		}
		if end.Before(start) {
			return nil, fmt.Errorf("regime %s ends before it starts", r.Name)
		}
		regimes = append(regimes, domain.Regime{Name: r.Name, Start: start, End: end})
	}
	return regimes, nil
}

// EventList converts the configured event markers
func (a *AnalysisConfig) EventList() ([]domain.Event, error) {
	events := make([]domain.Event, 0, len(a.Events))
	for _, e := range a.Events {
		d, err := parseDate("event "+e.Label, e.Date)
		if err != nil {
			return nil, err
		}
		events = append(events, domain.Event{Date: d, Label: e.Label})
	}
	return events, nil
}

// SplitDates parses the volatility split boundaries
func (a *AnalysisConfig) SplitDates() (preBefore, postStart time.Time, err error) {
	if preBefore, err = parseDate("volatility_split.pre_before", a.VolatilitySplit.PreBefore); err != nil {
		return
	}
	postStart, err = parseDate("volatility_split.post_start", a.VolatilitySplit.PostStart)
	return
}

// CategoryCode returns the series code configured for name
func (a *AnalysisConfig) CategoryCode(name string) (string, bool) {
	for _, c := range a.Categories {
		if c.Name == name {
			return c.Code, true
		}
	}
	return "", false
}

// DefaultAnalysis returns the 2020-2025 Mauritania configuration
func DefaultAnalysis() AnalysisConfig {
	return AnalysisConfig{
		Country:                "Mauritania, Islamic Republic of",
		Frequency:              "Monthly",
		HeadlineCategory:       "All Items",
		HeadlineTransformation: "Standard reference period (2010=100), Index",
		CategoryTransformation: "Index",
		Start:                  "2020-02-01",
		End:                    "2025-12-01",
		RollingWindow:          DefaultRollingWindow,
		VolatilityWindow:       DefaultVolatilityWindow,
		MaxLag:                 DefaultMaxLag,
		AutocorrMaxLag:         DefaultAutocorrMaxLag,
		BaselineLags:           []int{0, 6},
		Currency:               "USD",
		FXYears:                []int{2020, 2021, 2022, 2023, 2024, 2025},
		HeaderScanRows:         DefaultHeaderScanRows,
		Categories: []CategorySpec{
			{Name: "headline", Code: "MRT.CPI._T.IX.M"},
			{Name: "food", Code: "MRT.CPI.CP01.IX.M"},
			{Name: "transport", Code: "MRT.CPI.CP07.IX.M"},
			{Name: "housing_utilities", Code: "MRT.CPI.CP04.IX.M"},
			{Name: "education", Code: "MRT.CPI.CP10.IX.M"},
			{Name: "health", Code: "MRT.CPI.CP06.IX.M"},
			{Name: "restaurants_hotels", Code: "MRT.CPI.CP11.IX.M"},
			{Name: "communication", Code: "MRT.CPI.CP08.IX.M"},
			{Name: "recreation_culture", Code: "MRT.CPI.CP09.IX.M"},
			{Name: "misc_goods_services", Code: "MRT.CPI.CP12.IX.M"},
		},
		ServicesComponents: []string{
			"education", "health", "restaurants_hotels",
			"communication", "recreation_culture", "misc_goods_services",
		},
		InflationCategories: []string{"headline", "food", "transport", "housing_utilities", ServicesProxyColumn},
		RollingCategories:   []string{"headline", "food", "transport", ServicesProxyColumn},
		RegimeTargets:       []string{"headline", "food"},
		Regimes: []RegimeSpec{
			{Name: "Amplifier (2022–2023)", Start: "2022-01-01", End: "2023-12-31"},
			{Name: "Absorber (2024–2025)", Start: "2024-01-01", End: "2025-12-31"},
		},
		Events: []EventSpec{
			{Date: "2020-03-01", Label: "COVID shock"},
			{Date: "2022-03-01", Label: "Global commodity shock"},
			{Date: "2023-12-01", Label: "FX market modernization"},
			{Date: "2024-06-01", Label: "Election window"},
			{Date: "2024-08-01", Label: "New PM / cabinet reset"},
		},
		VolatilitySplit: VolatilitySplit{
			PreBefore: "2023-01-01",
			PostStart: "2024-01-01",
		},
	}
}
