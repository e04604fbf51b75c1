package domain

// Column vocabulary of the processed and output CSV files
const (
	ColDate       = "date"
	ColCPIIndex   = "cpi_index"
	ColInflMoM    = "infl_mom_pct"
	ColInflYoY    = "infl_yoy_pct"
	ColFXAvg      = "fx_usd_avg"
	ColFXMoM      = "fx_mom_pct"
	ColInflVol    = "infl_vol_6m"
	ColFXVol      = "fx_vol_6m"
	ColBetaFX     = "beta_fx"
	ColRhoInfl    = "rho_infl"
	ColInflLag1   = "infl_lag1"
	ColIntercept  = "intercept"
	ColN          = "n_obs"
	ColRegime     = "regime"
	ColNMonths    = "n_months"
	ColEvent      = "event"
	ColLag        = "lag"
	ColCorrFXInfl = "corr_fx_infl"
)

// Suffixes of the per-category derived columns
const (
	SuffixMoM = "_infl_mom_pct"
	SuffixYoY = "_infl_yoy_pct"
)

// MoMColumn names the month-over-month inflation column of a category
func MoMColumn(category string) string {
	return category + SuffixMoM
}

// YoYColumn names the year-over-year inflation column of a category
func YoYColumn(category string) string {
	return category + SuffixYoY
}

// BetaColumn names the rolling pass-through column of a category
func BetaColumn(category string) string {
	return "beta_" + category
}

// RhoColumn names the rolling persistence column of a category
func RhoColumn(category string) string {
	return "rho_" + category
}
