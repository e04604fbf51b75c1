package errors

import (
	stderrors "errors"
	"fmt"
)

// Sentinels for the analysis error taxonomy. Typed errors below match them
// through errors.Is.
var (
	ErrAmbiguousOrMissingSeries = stderrors.New("ambiguous or missing series")
	ErrUnstableFit              = stderrors.New("unstable fit")
	ErrNonStationary            = stderrors.New("non-stationary autoregressive coefficient")
	ErrInsufficientData         = stderrors.New("insufficient data")
)

// AmbiguousOrMissingSeriesError is returned when a metadata filter does not
// match exactly one row of a panel. It aborts the run.
type AmbiguousOrMissingSeriesError struct {
	Filter  string
	Matches int
}

func (e *AmbiguousOrMissingSeriesError) Error() string {
	if e.Matches == 0 {
		return fmt.Sprintf("no series matches filter %s", e.Filter)
	}
	return fmt.Sprintf("filter %s matches %d series, expected exactly 1", e.Filter, e.Matches)
}

func (e *AmbiguousOrMissingSeriesError) Is(target error) bool {
	return target == ErrAmbiguousOrMissingSeries
}

// UnstableFitError marks a degenerate regression: zero-variance regressor,
// too few observations or a singular design.
type UnstableFitError struct {
	Reason string
	N      int
}

func (e *UnstableFitError) Error() string {
	return fmt.Sprintf("unstable fit (n=%d): %s", e.N, e.Reason)
}

func (e *UnstableFitError) Is(target error) bool {
	return target == ErrUnstableFit
}

// NonStationaryError is returned for a half-life request with |rho| >= 1
type NonStationaryError struct {
	Rho float64
}

func (e *NonStationaryError) Error() string {
	return fmt.Sprintf("half-life undefined for rho=%g (|rho| >= 1)", e.Rho)
}

func (e *NonStationaryError) Is(target error) bool {
	return target == ErrNonStationary
}

// InsufficientDataError is returned when fewer observations than required are available
type InsufficientDataError struct {
	Need int
	Have int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: need %d observations, have %d", e.Need, e.Have)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// IsNumerical reports whether err is a per-window or per-cell numerical
// failure that should become a missing value rather than abort the run.
func IsNumerical(err error) bool {
	return stderrors.Is(err, ErrUnstableFit) ||
		stderrors.Is(err, ErrNonStationary) ||
		stderrors.Is(err, ErrInsufficientData)
}
