// Package passthrough estimates how exchange rate movements pass into
// consumer price inflation.
//
// The Engine fits rolling fixed-window regressions: pass-through (beta) of
// inflation on the FX change, persistence (rho) of inflation on its own lag,
// and both jointly. Whole-sample fits cover the baseline regressions, the
// AR(1) half-life, the lag-correlation profile and the regime comparison.
//
// Degenerate fits never abort a batch. A window or regime cell whose design
// is singular, constant or too short carries NaN and the error that caused it.
package passthrough
