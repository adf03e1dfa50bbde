package pitch

import (
	"context"
	"math"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/prosody-profiler/pkg/audio/analyzers"
)

// SpectralPeakEstimator picks the strongest spectral peak of each STFT frame
type SpectralPeakEstimator struct {
	config Config
	logger logging.Logger
}

// NewSpectralPeakEstimator creates a spectral peak estimator
func NewSpectralPeakEstimator(config Config) *SpectralPeakEstimator {
	return &SpectralPeakEstimator{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "spectral_peak_estimator",
		}),
	}
}

// Name implements Estimator
func (s *SpectralPeakEstimator) Name() string {
	return MethodSpectral
}

// Estimate returns one pitch per frame that has a local peak above
// PeakThreshold times that frame's maximum magnitude
func (s *SpectralPeakEstimator) Estimate(ctx context.Context, signal []float64, sampleRate int) (Contour, error) {
	if len(signal) < 2 || sampleRate <= 0 {
		return nil, ErrSignalTooShort
	}

	spec := analyzers.NewSpectralAnalyzer(sampleRate).STFT(signal, s.config.FrameLength, s.config.HopLength)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Candidate bins satisfy PeakMinFreq <= f < PeakMaxFreq and need both neighbours
	loBin, hiBin := 1, spec.FreqBins-2
	for loBin < spec.FreqBins && spec.BinFrequency(loBin) < s.config.PeakMinFreq {
		loBin++
	}
	for hiBin > 0 && spec.BinFrequency(hiBin) >= s.config.PeakMaxFreq {
		hiBin--
	}

	contour := make(Contour, 0, spec.TimeFrames)
	for _, frame := range spec.Magnitude {
		threshold := s.config.PeakThreshold * analyzers.Max(frame)
		if threshold <= 0 {
			continue
		}

		best := -1
		for k := max(loBin, 1); k <= hiBin; k++ {
			m := frame[k]
			if m <= threshold || m <= frame[k-1] || m < frame[k+1] {
				continue
			}
			if best < 0 || m > frame[best] {
				best = k
			}
		}
		if best < 0 {
			continue
		}

		freq := interpolatePeak(frame, best) * float64(sampleRate) / float64(s.config.FrameLength)
		if freq > 0 && !math.IsNaN(freq) {
			contour = append(contour, freq)
		}
	}

	if len(contour) == 0 {
		return nil, ErrNoVoicedFrames
	}

	s.logger.Debug("Spectral peak contour extracted", logging.Fields{
		"voiced_frames": len(contour),
		"total_frames":  spec.TimeFrames,
	})

	return contour, nil
}

// interpolatePeak refines a peak bin with a parabola through its neighbours
func interpolatePeak(frame []float64, k int) float64 {
	curvature := 2*frame[k] - frame[k+1] - frame[k-1]
	if math.Abs(curvature) < 1e-300 {
		return float64(k)
	}
	shift := 0.5 * (frame[k+1] - frame[k-1]) / curvature
	return float64(k) + shift
}
