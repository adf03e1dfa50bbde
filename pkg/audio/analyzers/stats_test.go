package analyzers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		p        float64
		expected float64
	}{
		{"empty", nil, 20, 0},
		{"single", []float64{3}, 20, 3},
		{"interpolated", []float64{5, 1, 4, 2, 3}, 20, 1.8},
		{"median", []float64{1, 2, 3, 4}, 50, 2.5},
		{"max", []float64{1, 2, 3, 4}, 100, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Percentile(tt.values, tt.p), 1e-12)
		})
	}
}

func TestMeanAndPopStd(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, PopStd(nil))
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), PopStd([]float64{1, 2, 3, 4}), 1e-12)
}

func TestDiffMinMax(t *testing.T) {
	assert.Equal(t, []float64{1, -3}, Diff([]float64{2, 3, 0}))
	assert.Empty(t, Diff([]float64{1}))
	assert.Equal(t, 3.0, Max([]float64{2, 3, 0}))
	assert.Equal(t, 0.0, Min([]float64{2, 3, 0}))
	assert.Equal(t, 0.0, Max(nil))
}

func TestMaxAbsDiff(t *testing.T) {
	assert.Equal(t, 3.0, MaxAbsDiff([]float64{2, 3, 0}))
	assert.Equal(t, 100.0, MaxAbsDiff([]float64{100, 200, 300}))
	assert.Zero(t, MaxAbsDiff([]float64{5}))
	assert.Zero(t, MaxAbsDiff(nil))
}

func TestClampAndFinite(t *testing.T) {
	assert.Equal(t, 0.1, Clamp(math.NaN(), 0.1, 0.9))
	assert.Equal(t, 0.9, Clamp(math.Inf(1), 0.1, 0.9))
	assert.Equal(t, 0.1, Clamp(math.Inf(-1), 0.1, 0.9))
	assert.Equal(t, 0.5, Clamp(0.5, 0.1, 0.9))

	assert.Equal(t, 0.0, Finite(math.NaN()))
	assert.Equal(t, 0.0, Finite(math.Inf(-1)))
	assert.Equal(t, 1.5, Finite(1.5))
}

func TestMelScale(t *testing.T) {
	for _, hz := range []float64{0, 200, 999, 1000, 4000, 8000} {
		assert.InDelta(t, hz, MelToHz(HzToMel(hz)), 1e-6)
	}

	filters := MelFilterBank(16000, DefaultFrameLength, 128)
	require.Len(t, filters, 128)
	for _, row := range filters {
		require.Len(t, row, DefaultFrameLength/2+1)
		for _, w := range row {
			assert.GreaterOrEqual(t, w, 0.0)
		}
	}
}

func TestPowerToDB(t *testing.T) {
	db := PowerToDB([][]float64{{1, 1e-20}, {100, 0}}, 1.0, 1e-10, 80)

	assert.InDelta(t, 0.0, db[0][0], 1e-9)
	assert.InDelta(t, 20.0, db[1][0], 1e-9)
	// Clipped to peak - 80 dB
	assert.InDelta(t, -60.0, db[0][1], 1e-9)
	assert.InDelta(t, -60.0, db[1][1], 1e-9)
}
