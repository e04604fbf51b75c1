package dataprocessing

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// PctChange returns (v[t]/v[t-periods] - 1) * 100. The first periods entries
// are missing, as is any entry whose inputs are missing or whose base is zero.
func PctChange(values []float64, periods int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < periods {
			out[i] = math.NaN()
			continue
		}
		cur, prev := values[i], values[i-periods]
		if math.IsNaN(cur) || math.IsNaN(prev) || prev == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (cur/prev - 1) * 100
	}
	return out
}

// MoM is the month-over-month percentage change
func MoM(values []float64) []float64 {
	return PctChange(values, 1)
}

// YoY is the year-over-year percentage change of a monthly series
func YoY(values []float64) []float64 {
	return PctChange(values, 12)
}

// RollingStd is the sample standard deviation of the trailing window of w
// values. It is missing until w values exist and whenever the window holds a
// missing value.
func RollingStd(values []float64, w int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		out[i] = math.NaN()
		if w < 2 || i+1 < w {
			continue
		}
		window := values[i+1-w : i+1]
		if hasMissing(window) {
			continue
		}
		out[i] = stat.StdDev(window, nil)
	}
	return out
}

// Lag shifts values k rows forward, filling the head with missing values
func Lag(values []float64, k int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < k || i-k >= len(values) {
			out[i] = math.NaN()
			continue
		}
		out[i] = values[i-k]
	}
	return out
}

func hasMissing(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
