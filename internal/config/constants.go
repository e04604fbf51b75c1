package config

import "fxcpi/pkg/contracts"

// Application constants
const (
	AppName    = "fxcpi"
	AppVersion = contracts.Version

	// File paths (relative to the project root)
	DefaultCPIPanel     = "data/raw/imf_cpi_full.csv"
	DefaultFXWorkbook   = "data/raw/fx_bcm_2020_2025.xlsx"
	DefaultProcessedDir = "data/processed"
	DefaultOutputsDir   = "analysis/outputs"
	DefaultLogsDir      = "logs"

	// Analysis defaults
	DefaultRollingWindow    = 24
	DefaultVolatilityWindow = 6
	DefaultMaxLag           = 12
	DefaultAutocorrMaxLag   = 6
	DefaultHeaderScanRows   = 10
)

// Processed data files
const (
	FileCPIBaseline   = "cpi_mauritania_monthly_2020_2025.csv"
	FileInflation     = "inflation_mauritania_monthly_2020_2025.csv"
	FileFXMonthly     = "fx_usd_monthly_2020_2025.csv"
	FileMerged        = "merged_fx_cpi_2020_2025.csv"
	FileCPICategories = "cpi_categories_monthly_2020_2025.csv"
)

// Analysis output files
const (
	FileValidation         = "pipeline_validation.csv"
	FileSummaryStats       = "cpi_summary_stats.csv"
	FileLagProfile         = "lag_profile.csv"
	FileFXAutocorrelation  = "fx_autocorrelation.csv"
	FileBaselines          = "regression_baselines.csv"
	FileVolatility         = "rolling_volatility_6m.csv"
	FileVolatilitySplit    = "volatility_split.csv"
	FilePersistence        = "persistence.csv"
	FileRollingPassThrough = "rolling_pass_through_24m.csv"
	FileRollingBeta        = "rolling_beta_categories.csv"
	FileRollingRho         = "rolling_rho_categories.csv"
	FileRegimeTable        = "10_regime_table.csv"
	FileEventMarkers       = "event_markers_used.csv"
)
