package onset

import (
	"math"
	"sort"
)

// PickParams controls peak picking over an onset strength envelope. Window
// sizes and Wait are in frames.
type PickParams struct {
	PreMax  int
	PostMax int
	PreAvg  int
	PostAvg int
	Wait    int
	Delta   float64
}

// NewPickParams derives frame windows from the frame rate: 30 ms look-back
// for the local max and 100 ms either side for the moving average. wait is
// the minimum peak spacing in frames.
func NewPickParams(sampleRate, hopLength int, delta float64, wait int) PickParams {
	return PickParams{
		PreMax:  SecondsToFrames(0.03, sampleRate, hopLength),
		PostMax: 1,
		PreAvg:  SecondsToFrames(0.10, sampleRate, hopLength),
		PostAvg: SecondsToFrames(0.10, sampleRate, hopLength) + 1,
		Wait:    max(wait, 0),
		Delta:   delta,
	}
}

// SecondsToFrames converts a duration to whole hops, rounding down
func SecondsToFrames(seconds float64, sampleRate, hopLength int) int {
	if hopLength <= 0 {
		return 0
	}
	return int(math.Floor(seconds * float64(sampleRate) / float64(hopLength)))
}

// PickPeaks returns frames that are positive, equal to the local maximum over
// [n-PreMax, n+PostMax), at least Delta above the moving average over
// [n-PreAvg, n+PostAvg) with edge replication, and more than Wait frames
// after the previously accepted peak
func PickPeaks(envelope []float64, p PickParams) []int {
	n := len(envelope)
	peaks := make([]int, 0)
	if n == 0 {
		return peaks
	}

	avgWidth := p.PreAvg + p.PostAvg
	last := 0
	havePeak := false

	for i, v := range envelope {
		if v <= 0 {
			continue
		}

		lo := max(0, i-p.PreMax)
		hi := min(n, i+p.PostMax)
		isMax := true
		for j := lo; j < hi; j++ {
			if envelope[j] > v {
				isMax = false
				break
			}
		}
		if !isMax {
			continue
		}

		if avgWidth > 0 {
			sum := 0.0
			for j := i - p.PreAvg; j < i+p.PostAvg; j++ {
				sum += envelope[min(max(j, 0), n-1)]
			}
			if v < sum/float64(avgWidth)+p.Delta {
				continue
			}
		} else if v < p.Delta {
			continue
		}

		if havePeak && i <= last+p.Wait {
			continue
		}
		peaks = append(peaks, i)
		last = i
		havePeak = true
	}

	return peaks
}

// Backtrack moves each peak to the closest local minimum of energy at or
// before it. Frame 0 always counts as a minimum. Duplicates are collapsed so
// the result is strictly increasing.
func Backtrack(peaks []int, energy []float64) []int {
	minima := []int{0}
	for i := 1; i+1 < len(energy); i++ {
		if energy[i] <= energy[i-1] && energy[i] < energy[i+1] {
			minima = append(minima, i)
		}
	}

	backtracked := make([]int, 0, len(peaks))
	for _, peak := range peaks {
		// index of the first minimum strictly after the peak
		idx := sort.SearchInts(minima, peak+1)
		frame := minima[max(idx-1, 0)]

		if len(backtracked) > 0 && frame <= backtracked[len(backtracked)-1] {
			continue
		}
		backtracked = append(backtracked, frame)
	}

	return backtracked
}

// Normalize shifts the envelope to start at 0 and scales its peak to 1.
// A flat envelope becomes all zeros.
func Normalize(envelope []float64) []float64 {
	normalized := make([]float64, len(envelope))
	if len(envelope) == 0 {
		return normalized
	}

	lo, hi := envelope[0], envelope[0]
	for _, v := range envelope {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	span := hi - lo
	for i, v := range envelope {
		if span > 0 {
			normalized[i] = (v - lo) / span
		}
	}
	return normalized
}
