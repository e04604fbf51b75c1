package operations

import (
	"time"

	"fxcpi/internal/config"
)

// Stage identifiers
const (
	StageIDCPIBaseline        = "cpi_baseline"
	StageIDCPIInflation       = "cpi_inflation"
	StageIDFXMonthly          = "fx_monthly"
	StageIDMerge              = "merge"
	StageIDCPICategories      = "cpi_categories"
	StageIDValidate           = "validate"
	StageIDLagProfile         = "lag_profile"
	StageIDBaselines          = "baselines"
	StageIDVolatility         = "volatility"
	StageIDPersistence        = "persistence"
	StageIDRollingPassThrough = "rolling_pass_through"
	StageIDRollingCategories  = "rolling_categories"
	StageIDRegimeSummary      = "regime_summary"
)

// Stage names
const (
	StageNameCPIBaseline        = "Headline CPI Extraction"
	StageNameCPIInflation       = "Headline Inflation"
	StageNameFXMonthly          = "Monthly FX Average"
	StageNameMerge              = "FX/CPI Merge"
	StageNameCPICategories      = "CPI Categories"
	StageNameValidate           = "Pipeline Validation"
	StageNameLagProfile         = "Lag Correlation Profile"
	StageNameBaselines          = "Baseline Regressions"
	StageNameVolatility         = "Rolling Volatility"
	StageNamePersistence        = "Inflation Persistence"
	StageNameRollingPassThrough = "Rolling Pass-Through"
	StageNameRollingCategories  = "Rolling Category Pass-Through"
	StageNameRegimeSummary      = "Regime Summary"
)

// Context keys for tables shared between stages
const (
	ContextKeyPanel       = "cpi_panel"
	ContextKeyCPIBaseline = "cpi_baseline"
	ContextKeyInflation   = "inflation"
	ContextKeyFXMonthly   = "fx_monthly"
	ContextKeyMerged      = "merged"
	ContextKeyCategories  = "cpi_categories"
)

// processedFiles maps each shared table to the file it is persisted in
var processedFiles = map[string]string{
	ContextKeyCPIBaseline: config.FileCPIBaseline,
	ContextKeyInflation:   config.FileInflation,
	ContextKeyFXMonthly:   config.FileFXMonthly,
	ContextKeyMerged:      config.FileMerged,
	ContextKeyCategories:  config.FileCPICategories,
}

// ParameterStep selects a single stage in OperationRequest.Parameters
const ParameterStep = "step"

// FullPipeline is the ParameterStep value that runs every stage
const FullPipeline = "full_pipeline"

// DefaultStageTimeout bounds a single stage
const DefaultStageTimeout = 5 * time.Minute

// OperationRequest represents a request to execute a operation
type OperationRequest struct {
	ID         string                 `json:"id"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// OperationResponse represents the response from a operation execution
type OperationResponse struct {
	ID       string                `json:"id"`
	Status   OperationStatusValue  `json:"status"`
	Duration time.Duration         `json:"duration"`
	Order    []string              `json:"order"`
	Steps    map[string]*StepState `json:"steps"`
	Error    string                `json:"error,omitempty"`
}
