package analyzers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateSine(freq float64, sampleRate int, seconds float64, amplitude float64) []float64 {
	n := int(seconds * float64(sampleRate))
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return signal
}

func TestFullSpectrumDegenerateInput(t *testing.T) {
	sa := NewSpectralAnalyzer(16000)

	tests := []struct {
		name   string
		signal []float64
	}{
		{"nil", nil},
		{"empty", []float64{}},
		{"single sample", []float64{0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spectrum := sa.FullSpectrum(tt.signal)
			require.NotNil(t, spectrum)
			assert.Empty(t, spectrum.Magnitude)
			assert.Empty(t, spectrum.Frequencies)
			assert.Equal(t, 0.0, spectrum.PeakFrequency(0, 8000))
		})
	}
}

func TestFullSpectrumBinLayout(t *testing.T) {
	sa := NewSpectralAnalyzer(8)

	even := sa.FullSpectrum([]float64{1, 0, -1, 0})
	assert.Equal(t, []float64{0, 2}, even.Frequencies)

	odd := sa.FullSpectrum([]float64{1, 0, -1, 0, 1})
	require.Len(t, odd.Frequencies, 3)
	assert.InDelta(t, 1.6, odd.Frequencies[1], 1e-12)
}

func TestFullSpectrumPeak(t *testing.T) {
	sa := NewSpectralAnalyzer(16000)
	spectrum := sa.FullSpectrum(generateSine(200, 16000, 1.0, 0.8))

	require.Len(t, spectrum.Magnitude, 8000)
	assert.InDelta(t, 200.0, spectrum.PeakFrequency(0, 8000), 1e-9)
	assert.Equal(t, 0.0, spectrum.PeakFrequency(9000, 12000))
}

func TestPeakFrequencyRangeEdge(t *testing.T) {
	spectrum := &Spectrum{
		Magnitude:   []float64{0, 9, 2, 1, 0},
		Frequencies: []float64{400, 500, 600, 700, 800},
	}

	// strongest bin sits on the lower edge of the range
	assert.Equal(t, 500.0, spectrum.PeakFrequency(500, 800))
	assert.Equal(t, 600.0, spectrum.PeakFrequency(550, 800))

	silent := &Spectrum{Magnitude: []float64{0, 0}, Frequencies: []float64{500, 600}}
	assert.Equal(t, 0.0, silent.PeakFrequency(500, 800))
}

func TestBandEnergyEdges(t *testing.T) {
	spectrum := &Spectrum{
		Magnitude:   []float64{1, 2, 3, 4},
		Frequencies: []float64{0, 300, 3000, 8000},
	}

	assert.Equal(t, 3.0, spectrum.BandEnergy(0, 300, true))
	assert.Equal(t, 3.0, spectrum.BandEnergy(300, 3000, false))
	assert.Equal(t, 4.0, spectrum.BandEnergy(3000, 8000, false))
}

func TestSTFTFrameCountAndPeak(t *testing.T) {
	sa := NewSpectralAnalyzer(16000)
	spec := sa.STFT(generateSine(1000, 16000, 1.0, 0.5), DefaultFrameLength, DefaultHopLength)

	assert.Equal(t, 32, spec.TimeFrames)
	assert.Equal(t, 1025, spec.FreqBins)

	middle := spec.Magnitude[spec.TimeFrames/2]
	peakBin := 0
	for k, m := range middle {
		if m > middle[peakBin] {
			peakBin = k
		}
	}
	assert.Equal(t, 128, peakBin)
	assert.InDelta(t, 1000.0, spec.BinFrequency(peakBin), 1e-9)
}

func TestSTFTShortSignal(t *testing.T) {
	sa := NewSpectralAnalyzer(16000)
	spec := sa.STFT([]float64{0.1}, DefaultFrameLength, DefaultHopLength)
	assert.Equal(t, 0, spec.TimeFrames)
	assert.Empty(t, sa.FrameCentroids(spec))
}

func TestMeanCentroid(t *testing.T) {
	sa := NewSpectralAnalyzer(16000)
	centroid := sa.MeanCentroid(generateSine(1000, 16000, 1.0, 0.5), DefaultFrameLength, DefaultHopLength)
	assert.InDelta(t, 1000.0, centroid, 100.0)

	silent := sa.MeanCentroid(make([]float64, 8000), DefaultFrameLength, DefaultHopLength)
	assert.Equal(t, 0.0, silent)
}

func TestFrameRMS(t *testing.T) {
	rms := FrameRMS(generateSine(440, 16000, 1.0, 1.0), DefaultFrameLength, DefaultHopLength)
	require.Len(t, rms, 32)
	assert.InDelta(t, 1/math.Sqrt2, rms[16], 0.01)

	// Edge frames see half zero padding
	assert.Less(t, rms[0], rms[16])

	assert.Empty(t, FrameRMS(nil, DefaultFrameLength, DefaultHopLength))
	assert.Empty(t, FrameRMS([]float64{1}, DefaultFrameLength, DefaultHopLength))
}

func TestFrameTimeConversions(t *testing.T) {
	assert.InDelta(t, 1.024, FramesToTime(32, 16000, 512), 1e-12)
	assert.Equal(t, 0.0, FramesToTime(10, 0, 512))
	assert.Equal(t, 8000, TimeToSample(0.5, 16000))
}

func TestSampleBufferSlice(t *testing.T) {
	buf := SampleBuffer{Samples: []float64{1, 2, 3, 4}, SampleRate: 4}

	assert.Equal(t, 1.0, buf.Duration())
	assert.Equal(t, []float64{2, 3}, buf.Slice(1, 3).Samples)
	assert.Equal(t, []float64{3, 4}, buf.Slice(2, 10).Samples)
	assert.Empty(t, buf.Slice(5, 2).Samples)
}
