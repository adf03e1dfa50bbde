package analyzers

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean, or 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Finite(stat.Mean(values, nil))
}

// PopStd returns the population standard deviation, or 0 for an empty slice
func PopStd(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Finite(stat.PopStdDev(values, nil))
}

// Max returns the largest value, or 0 for an empty slice
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Max(values)
}

// Min returns the smallest value, or 0 for an empty slice
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Min(values)
}

// Percentile returns the p-th percentile (0-100) using linear interpolation
// between the closest ranks
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := Clamp(p, 0, 100) / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := min(lo+1, len(sorted)-1)
	frac := rank - float64(lo)

	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Diff returns consecutive differences values[i+1]-values[i]
func Diff(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}
	diffs := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		diffs[i-1] = values[i] - values[i-1]
	}
	return diffs
}

// MaxAbsDiff returns the largest absolute step between neighbouring values
func MaxAbsDiff(values []float64) float64 {
	largest := 0.0
	for _, d := range Diff(values) {
		largest = math.Max(largest, math.Abs(d))
	}
	return largest
}

// Finite maps NaN and infinities to 0
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Clamp bounds v to [lo, hi]; NaN clamps to lo
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
