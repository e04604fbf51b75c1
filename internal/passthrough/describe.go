package passthrough

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"fxcpi/pkg/contracts/domain"
)

// Describe summarizes the present values of a column: count, mean, sample
// standard deviation, min, quartiles and max. Quartiles are linearly
// interpolated.
func Describe(column string, values []float64) domain.Description {
	present := compact(values)
	d := domain.Description{
		Column: column,
		Count:  len(present),
		Mean:   math.NaN(),
		Std:    math.NaN(),
		Min:    math.NaN(),
		Q25:    math.NaN(),
		Median: math.NaN(),
		Q75:    math.NaN(),
		Max:    math.NaN(),
	}
	if len(present) == 0 {
		return d
	}

	sort.Float64s(present)
	d.Mean = stat.Mean(present, nil)
	if len(present) > 1 {
		d.Std = stat.StdDev(present, nil)
	}
	d.Min = floats.Min(present)
	d.Max = floats.Max(present)
	d.Q25 = stat.Quantile(0.25, stat.LinInterp, present, nil)
	d.Median = stat.Quantile(0.5, stat.LinInterp, present, nil)
	d.Q75 = stat.Quantile(0.75, stat.LinInterp, present, nil)
	return d
}

// DescribeTable describes the named columns of a table
func DescribeTable(t *domain.Table, columns ...string) ([]domain.Description, error) {
	out := make([]domain.Description, 0, len(columns))
	for _, c := range columns {
		values, err := t.Column(c)
		if err != nil {
			return nil, err
		}
		out = append(out, Describe(c, values))
	}
	return out, nil
}
