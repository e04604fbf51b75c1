package passthrough

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	d := Describe("infl_mom_pct", []float64{3, math.NaN(), 1, 5, 2, 4})

	assert.Equal(t, "infl_mom_pct", d.Column)
	assert.Equal(t, 5, d.Count)
	assert.InDelta(t, 3.0, d.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), d.Std, 1e-12)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 5.0, d.Max)
	assert.LessOrEqual(t, d.Min, d.Q25)
	assert.LessOrEqual(t, d.Q25, d.Median)
	assert.LessOrEqual(t, d.Median, d.Q75)
	assert.LessOrEqual(t, d.Q75, d.Max)
}

func TestDescribe_Degenerate(t *testing.T) {
	empty := Describe("x", []float64{math.NaN(), math.NaN()})
	assert.Equal(t, 0, empty.Count)
	assert.True(t, math.IsNaN(empty.Mean))
	assert.True(t, math.IsNaN(empty.Max))

	single := Describe("x", []float64{7})
	assert.Equal(t, 1, single.Count)
	assert.Equal(t, 7.0, single.Mean)
	assert.True(t, math.IsNaN(single.Std))
}

func TestDescribeTable(t *testing.T) {
	tbl := table(t, months(month(2021, time.January), 3),
		map[string][]float64{"a": {1, 2, 3}, "b": {4, math.NaN(), 6}}, "a", "b")

	out, err := DescribeTable(tbl, "b", "a")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].Column)
	assert.Equal(t, 2, out[0].Count)
	assert.Equal(t, 3, out[1].Count)

	_, err = DescribeTable(tbl, "c")
	assert.Error(t, err)
}
