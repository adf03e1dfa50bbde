package analyzers

import (
	"math/cmplx"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	sonido "github.com/RyanBlaney/sonido-sonar/fingerprint/analyzers"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Spectrum holds the non-negative half of a full-buffer magnitude spectrum
type Spectrum struct {
	Magnitude   []float64 `json:"magnitude"`
	Frequencies []float64 `json:"frequencies"`
	SampleRate  int       `json:"sample_rate"`
}

// Spectrogram holds STFT magnitudes as a time x frequency matrix
type Spectrogram struct {
	Magnitude  [][]float64 `json:"magnitude"`
	TimeFrames int         `json:"time_frames"`
	FreqBins   int         `json:"freq_bins"`
	SampleRate int         `json:"sample_rate"`
	WindowSize int         `json:"window_size"`
	HopSize    int         `json:"hop_size"`
}

// SpectralAnalyzer computes spectra for a fixed sample rate
type SpectralAnalyzer struct {
	sampleRate int
	logger     logging.Logger
}

// NewSpectralAnalyzer creates a new spectral analyzer
func NewSpectralAnalyzer(sampleRate int) *SpectralAnalyzer {
	return &SpectralAnalyzer{
		sampleRate: sampleRate,
		logger: logging.WithFields(logging.Fields{
			"component":   "spectral_analyzer",
			"sample_rate": sampleRate,
		}),
	}
}

// FullSpectrum runs a single FFT over the whole signal and keeps the bins at
// or above 0 Hz. Signals shorter than two samples yield an empty spectrum.
func (sa *SpectralAnalyzer) FullSpectrum(signal []float64) *Spectrum {
	spectrum := &Spectrum{SampleRate: sa.sampleRate}
	if len(signal) < 2 || sa.sampleRate <= 0 {
		return spectrum
	}

	n := len(signal)
	fftResult := fft.FFTReal(signal)

	// Bins past ceil(n/2) carry negative frequencies
	positiveBins := (n + 1) / 2
	spectrum.Magnitude = make([]float64, positiveBins)
	spectrum.Frequencies = make([]float64, positiveBins)
	for k := range positiveBins {
		spectrum.Magnitude[k] = cmplx.Abs(fftResult[k])
		spectrum.Frequencies[k] = float64(k) * float64(sa.sampleRate) / float64(n)
	}

	sa.logger.Debug("Full spectrum computed", logging.Fields{
		"signal_length": n,
		"freq_bins":     positiveBins,
	})

	return spectrum
}

// STFT computes a centered magnitude spectrogram with a periodic Hann window
func (sa *SpectralAnalyzer) STFT(signal []float64, windowSize, hopSize int) *Spectrogram {
	spec := &Spectrogram{
		SampleRate: sa.sampleRate,
		WindowSize: windowSize,
		HopSize:    hopSize,
		FreqBins:   windowSize/2 + 1,
	}
	if len(signal) < 2 || windowSize <= 0 || hopSize <= 0 {
		return spec
	}

	padded := CenterPad(signal, windowSize/2)
	win := window.Hann(windowSize + 1)[:windowSize]

	numFrames := (len(padded)-windowSize)/hopSize + 1
	spec.Magnitude = make([][]float64, 0, numFrames)
	frame := make([]float64, windowSize)

	for t := range numFrames {
		start := t * hopSize
		for i := range windowSize {
			frame[i] = padded[start+i] * win[i]
		}

		fftResult := fft.FFTReal(frame)
		mags := make([]float64, spec.FreqBins)
		for k := range spec.FreqBins {
			mags[k] = cmplx.Abs(fftResult[k])
		}
		spec.Magnitude = append(spec.Magnitude, mags)
	}
	spec.TimeFrames = len(spec.Magnitude)

	return spec
}

// BinFrequency returns the center frequency of an STFT bin
func (s *Spectrogram) BinFrequency(bin int) float64 {
	if s.WindowSize == 0 {
		return 0
	}
	return float64(bin) * float64(s.SampleRate) / float64(s.WindowSize)
}

// FrameCentroids returns the spectral centroid of every STFT frame
func (sa *SpectralAnalyzer) FrameCentroids(spec *Spectrogram) []float64 {
	if spec == nil || spec.TimeFrames == 0 {
		return []float64{}
	}

	extractor := sonido.NewSpectralAnalyzer(spec.SampleRate)
	centroids := make([]float64, spec.TimeFrames)
	for t, frame := range spec.Magnitude {
		centroids[t] = Finite(extractor.ExtractFrameFeatures(frame).SpectralCentroid)
	}

	return centroids
}

// MeanCentroid is the average spectral centroid of a signal in Hz
func (sa *SpectralAnalyzer) MeanCentroid(signal []float64, windowSize, hopSize int) float64 {
	centroids := sa.FrameCentroids(sa.STFT(signal, windowSize, hopSize))
	return Mean(centroids)
}

// BandEnergy sums magnitudes for bins with lo <= f <= hi, or
// lo < f <= hi when the lower edge is exclusive.
func (s *Spectrum) BandEnergy(lo, hi float64, lowerInclusive bool) float64 {
	energy := 0.0
	for k, f := range s.Frequencies {
		if f > hi || f < lo || (!lowerInclusive && f == lo) {
			continue
		}
		energy += s.Magnitude[k]
	}
	return energy
}

// PeakFrequency returns the frequency of the strongest bin in [lo, hi], or
// 0 when the range is empty or silent.
func (s *Spectrum) PeakFrequency(lo, hi float64) float64 {
	peak := 0.0
	peakMag := 0.0
	for k, f := range s.Frequencies {
		if f < lo || f > hi {
			continue
		}
		if s.Magnitude[k] > peakMag {
			peakMag = s.Magnitude[k]
			peak = f
		}
	}
	return peak
}
