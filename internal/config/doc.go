// Package config provides centralized configuration management for fxcpi.
// Every run constant of the analysis (country filters, date bounds, window
// lengths, category codes, regimes, event markers) lives here instead of in
// package-level state.
//
// # Configuration Sources
//
// Configuration is layered in the following order, later sources winning:
//
//	1. Default() values
//	2. A YAML file (--config, or fxcpi.yaml / configs/fxcpi.yaml if present)
//	3. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern FXCPI_<SECTION>_<KEY>:
//
//	FXCPI_LOGGING_LEVEL=debug
//	FXCPI_PATHS_ROOT=/srv/fxcpi
//	FXCPI_ANALYSIS_ROLLING_WINDOW=36
//	FXCPI_ANALYSIS_BASELINE_LAGS=0,6
//
// List-of-struct settings (categories, regimes, events) are file only.
//
// # Validation
//
// Load validates struct tags with go-playground/validator and then checks
// dates, regime bounds and category references.
package config
