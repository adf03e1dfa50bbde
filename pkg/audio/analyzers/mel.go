package analyzers

import "math"

// Slaney mel scale constants
const (
	melLinearStep = 200.0 / 3
	melLogMinHz   = 1000.0
	melLogMin     = melLogMinHz / melLinearStep
)

var melLogStep = math.Log(6.4) / 27.0

// HzToMel converts a frequency to the Slaney mel scale
func HzToMel(hz float64) float64 {
	if hz >= melLogMinHz {
		return melLogMin + math.Log(hz/melLogMinHz)/melLogStep
	}
	return hz / melLinearStep
}

// MelToHz converts a Slaney mel value back to Hz
func MelToHz(mel float64) float64 {
	if mel >= melLogMin {
		return melLogMinHz * math.Exp(melLogStep*(mel-melLogMin))
	}
	return mel * melLinearStep
}

// MelFilterBank builds nMels triangular filters spanning 0 Hz to Nyquist with
// area normalization. Each row has windowSize/2+1 weights.
func MelFilterBank(sampleRate, windowSize, nMels int) [][]float64 {
	numBins := windowSize/2 + 1
	fftFreqs := make([]float64, numBins)
	for k := range numBins {
		fftFreqs[k] = float64(k) * float64(sampleRate) / float64(windowSize)
	}

	minMel := HzToMel(0)
	maxMel := HzToMel(float64(sampleRate) / 2)
	melFreqs := make([]float64, nMels+2)
	for i := range melFreqs {
		melFreqs[i] = MelToHz(minMel + (maxMel-minMel)*float64(i)/float64(nMels+1))
	}

	weights := make([][]float64, nMels)
	for m := range nMels {
		weights[m] = make([]float64, numBins)
		lowerWidth := melFreqs[m+1] - melFreqs[m]
		upperWidth := melFreqs[m+2] - melFreqs[m+1]
		norm := 2.0 / (melFreqs[m+2] - melFreqs[m])

		for k, f := range fftFreqs {
			lower := (f - melFreqs[m]) / lowerWidth
			upper := (melFreqs[m+2] - f) / upperWidth
			w := math.Max(0, math.Min(lower, upper))
			weights[m][k] = w * norm
		}
	}

	return weights
}

// MelPower projects STFT magnitudes onto a mel filter bank as power
func MelPower(spec *Spectrogram, filters [][]float64) [][]float64 {
	power := make([][]float64, spec.TimeFrames)
	for t, frame := range spec.Magnitude {
		power[t] = make([]float64, len(filters))
		for m, weights := range filters {
			sum := 0.0
			for k, w := range weights {
				if w == 0 {
					continue
				}
				sum += w * frame[k] * frame[k]
			}
			power[t][m] = sum
		}
	}
	return power
}

// PowerToDB converts a power matrix to decibels relative to ref, flooring at
// amin and clipping everything below the global peak minus topDB
func PowerToDB(power [][]float64, ref, amin, topDB float64) [][]float64 {
	refDB := 10 * math.Log10(math.Max(amin, ref))
	peak := math.Inf(-1)

	db := make([][]float64, len(power))
	for t, row := range power {
		db[t] = make([]float64, len(row))
		for i, p := range row {
			v := 10*math.Log10(math.Max(amin, p)) - refDB
			db[t][i] = v
			if v > peak {
				peak = v
			}
		}
	}

	if topDB > 0 && !math.IsInf(peak, -1) {
		floor := peak - topDB
		for _, row := range db {
			for i := range row {
				if row[i] < floor {
					row[i] = floor
				}
			}
		}
	}

	return db
}
