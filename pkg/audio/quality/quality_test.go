package quality

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RyanBlaney/prosody-profiler/pkg/audio/analyzers"
)

func generateSine(freq float64, sampleRate int, seconds float64) analyzers.SampleBuffer {
	samples := make([]float64, int(seconds*float64(sampleRate)))
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return analyzers.SampleBuffer{Samples: samples, SampleRate: sampleRate}
}

func TestAnalyzeBandPlacement(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		band func(Analysis) float64
	}{
		{"low band tone", 150, func(a Analysis) float64 { return a.LowFreqRatio }},
		{"mid band tone", 1000, func(a Analysis) float64 { return a.MidFreqRatio }},
		{"high band tone", 5000, func(a Analysis) float64 { return a.HighFreqRatio }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Analyze(generateSine(tt.freq, 16000, 1.0), 2048, 512)

			assert.InDelta(t, 1.0, tt.band(result), 0.05)
			assert.InDelta(t, 1.0, result.LowFreqRatio+result.MidFreqRatio+result.HighFreqRatio, 1e-9)
			assert.Equal(t, result.MidFreqRatio, result.ClarityScore)
		})
	}
}

func TestAnalyzeRMS(t *testing.T) {
	result := Analyze(generateSine(440, 16000, 1.0), 2048, 512)

	assert.InDelta(t, 0.5/math.Sqrt2, result.MaxRMS, 0.01)
	assert.Greater(t, result.MinRMS, 0.0)
	assert.LessOrEqual(t, result.MinRMS, result.AvgRMS)
	assert.LessOrEqual(t, result.AvgRMS, result.MaxRMS)
	assert.GreaterOrEqual(t, result.DynamicRangeDB, 0.0)
}

func TestAnalyzeSilence(t *testing.T) {
	buf := analyzers.SampleBuffer{Samples: make([]float64, 16000), SampleRate: 16000}
	result := Analyze(buf, 2048, 512)

	assert.Equal(t, NeutralClarity, result.ClarityScore)
	assert.Zero(t, result.LowFreqRatio)
	assert.Zero(t, result.MidFreqRatio)
	assert.Zero(t, result.HighFreqRatio)
	assert.Zero(t, result.DynamicRangeDB)
	assert.Zero(t, result.AvgRMS)
}

func TestDynamicRange(t *testing.T) {
	tests := []struct {
		name     string
		max, min float64
		expected float64
	}{
		{"tenfold", 1.0, 0.1, 20},
		{"equal", 0.5, 0.5, 0},
		{"zero floor", 1.0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, DynamicRange(tt.max, tt.min), 1e-9)
		})
	}
}

func TestBandsRatios(t *testing.T) {
	low, mid, high := Bands{Low: 1, Mid: 2, High: 1}.Ratios()
	assert.Equal(t, 0.25, low)
	assert.Equal(t, 0.5, mid)
	assert.Equal(t, 0.25, high)

	low, mid, high = Bands{}.Ratios()
	assert.Zero(t, low+mid+high)
}

func TestBandEdges(t *testing.T) {
	spectrum := &analyzers.Spectrum{
		Frequencies: []float64{0, 300, 3000, 8000, 9000},
		Magnitude:   []float64{1, 2, 3, 4, 5},
	}

	bands := BandEnergies(spectrum)
	assert.Equal(t, 1.0+2.0, bands.Low)
	assert.Equal(t, 3.0, bands.Mid)
	assert.Equal(t, 4.0, bands.High)
}

func TestAnalyzeTwoToneRatios(t *testing.T) {
	const sampleRate = 16000
	samples := make([]float64, sampleRate)
	for i := range samples {
		ts := float64(i) / sampleRate
		samples[i] = math.Sin(2*math.Pi*200*ts) + 0.5*math.Sin(2*math.Pi*1000*ts)
	}

	result := Analyze(analyzers.SampleBuffer{Samples: samples, SampleRate: sampleRate}, 2048, 512)

	// band energy follows amplitude, not power
	assert.InDelta(t, 2.0/3.0, result.LowFreqRatio, 0.01)
	assert.InDelta(t, 1.0/3.0, result.MidFreqRatio, 0.01)
	assert.InDelta(t, 1.0/3.0, result.ClarityScore, 0.01)
	assert.InDelta(t, 0.0, result.HighFreqRatio, 0.01)
}
