package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestMoM(t *testing.T) {
	got := MoM([]float64{100, 102, 101})
	require.Len(t, got, 3)
	assert.True(t, math.IsNaN(got[0]))
	assert.InDelta(t, 2.0, got[1], 1e-12)
	assert.InDelta(t, -0.98039215686, got[2], 1e-9)
}

func TestPctChange_MissingInputs(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []bool // true where the output is missing
	}{
		{"gap propagates", []float64{100, math.NaN(), 110, 121}, []bool{true, true, true, false}},
		{"zero base", []float64{0, 5, 10}, []bool{true, true, false}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PctChange(tt.values, 1)
			require.Len(t, got, len(tt.want))
			for i, missing := range tt.want {
				assert.Equal(t, missing, math.IsNaN(got[i]), "index %d", i)
			}
		})
	}
}

func TestYoY(t *testing.T) {
	levels := make([]float64, 15)
	for i := range levels {
		levels[i] = 100 + float64(i)
	}

	got := YoY(levels)
	for i := 0; i < 12; i++ {
		assert.True(t, math.IsNaN(got[i]), "index %d must be missing", i)
	}
	assert.InDelta(t, 12.0, got[12], 1e-12)
	assert.InDelta(t, (114.0/102.0-1)*100, got[14], 1e-12)
}

func TestRollingStd(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7}
	got := RollingStd(values, 3)

	for i := 0; i < 2; i++ {
		assert.True(t, math.IsNaN(got[i]))
	}
	for i := 2; i < len(values); i++ {
		assert.InDelta(t, stat.StdDev(values[i-2:i+1], nil), got[i], 1e-12)
		assert.InDelta(t, 1.0, got[i], 1e-12, "sample std of three consecutive integers")
	}

	withGap := RollingStd([]float64{1, 2, math.NaN(), 4, 5, 6}, 3)
	assert.True(t, math.IsNaN(withGap[2]))
	assert.True(t, math.IsNaN(withGap[3]))
	assert.True(t, math.IsNaN(withGap[4]))
	assert.InDelta(t, 1.0, withGap[5], 1e-12)
}

func TestLag(t *testing.T) {
	got := Lag([]float64{1, 2, 3, 4}, 2)
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	assert.Equal(t, []float64{1, 2}, got[2:])

	same := Lag([]float64{1, 2}, 0)
	assert.Equal(t, []float64{1, 2}, same)
}
