package quality

import (
	"math"

	"github.com/RyanBlaney/prosody-profiler/pkg/audio/analyzers"
)

// Band edges in Hz
const (
	LowBandMax  = 300.0
	MidBandMax  = 3000.0
	HighBandMax = 8000.0

	// NeutralClarity is reported when the buffer carries no band energy
	NeutralClarity = 0.5
)

// Analysis describes loudness and spectral balance of a recording
type Analysis struct {
	AvgRMS         float64 `json:"rms_energy_avg" yaml:"rms_energy_avg"`
	MaxRMS         float64 `json:"rms_energy_max" yaml:"rms_energy_max"`
	MinRMS         float64 `json:"rms_energy_min" yaml:"rms_energy_min"`
	DynamicRangeDB float64 `json:"dynamic_range_db" yaml:"dynamic_range_db"`
	LowFreqRatio   float64 `json:"low_freq_energy_ratio" yaml:"low_freq_energy_ratio"`
	MidFreqRatio   float64 `json:"mid_freq_energy_ratio" yaml:"mid_freq_energy_ratio"`
	HighFreqRatio  float64 `json:"high_freq_energy_ratio" yaml:"high_freq_energy_ratio"`
	ClarityScore   float64 `json:"clarity_score" yaml:"clarity_score"`
}

// Bands holds summed spectral magnitude per frequency band
type Bands struct {
	Low  float64
	Mid  float64
	High float64
}

// Total is the energy across all three bands
func (b Bands) Total() float64 {
	return b.Low + b.Mid + b.High
}

// Ratios returns each band's share of the total, all zero when the total is zero
func (b Bands) Ratios() (low, mid, high float64) {
	total := b.Total()
	if total <= 0 {
		return 0, 0, 0
	}
	return b.Low / total, b.Mid / total, b.High / total
}

// BandEnergies splits a spectrum into the low, mid and high speech bands
func BandEnergies(spectrum *analyzers.Spectrum) Bands {
	return Bands{
		Low:  spectrum.BandEnergy(0, LowBandMax, true),
		Mid:  spectrum.BandEnergy(LowBandMax, MidBandMax, false),
		High: spectrum.BandEnergy(MidBandMax, HighBandMax, false),
	}
}

// DynamicRange returns 20*log10(max/min), or 0 when min is not positive
func DynamicRange(maxRMS, minRMS float64) float64 {
	if minRMS <= 0 {
		return 0
	}
	return analyzers.Finite(20 * math.Log10(maxRMS/minRMS))
}

// Analyze computes quality metrics for a buffer using the given RMS framing
func Analyze(buf analyzers.SampleBuffer, frameLength, hopLength int) Analysis {
	rms := analyzers.FrameRMS(buf.Samples, frameLength, hopLength)

	result := Analysis{
		AvgRMS: analyzers.Finite(analyzers.Mean(rms)),
		MaxRMS: analyzers.Finite(analyzers.Max(rms)),
		MinRMS: analyzers.Finite(analyzers.Min(rms)),
	}
	result.DynamicRangeDB = DynamicRange(result.MaxRMS, result.MinRMS)

	spectrum := analyzers.NewSpectralAnalyzer(buf.SampleRate).FullSpectrum(buf.Samples)
	bands := BandEnergies(spectrum)

	low, mid, high := bands.Ratios()
	result.LowFreqRatio = analyzers.Finite(low)
	result.MidFreqRatio = analyzers.Finite(mid)
	result.HighFreqRatio = analyzers.Finite(high)

	if bands.Total() > 0 {
		result.ClarityScore = result.MidFreqRatio
	} else {
		result.ClarityScore = NeutralClarity
	}

	return result
}
