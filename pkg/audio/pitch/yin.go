package pitch

import (
	"context"
	"fmt"
	"math"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/sonido-sonar/algorithms/tonal"

	"github.com/RyanBlaney/prosody-profiler/pkg/audio/analyzers"
)

// YINEstimator tracks pitch frame by frame with the YIN difference function
type YINEstimator struct {
	config Config
	logger logging.Logger
}

// NewYINEstimator creates a YIN estimator
func NewYINEstimator(config Config) *YINEstimator {
	return &YINEstimator{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "yin_estimator",
		}),
	}
}

// Name implements Estimator
func (y *YINEstimator) Name() string {
	return MethodYIN
}

// Estimate runs YIN over centered frames and keeps the voiced ones.
// A fresh detector is used per call so concurrent calls share nothing.
func (y *YINEstimator) Estimate(ctx context.Context, signal []float64, sampleRate int) (Contour, error) {
	if len(signal) < 2 || sampleRate <= 0 {
		return nil, ErrSignalTooShort
	}

	frameLength := y.config.FrameLength
	hopLength := y.config.HopLength

	detector := tonal.NewPitchDetectorWithParams(tonal.PitchDetectionParams{
		Method:            tonal.AutocorrelationYin,
		SampleRate:        sampleRate,
		WindowSize:        frameLength,
		HopSize:           hopLength,
		MinFreq:           y.config.MinFreq,
		MaxFreq:           y.config.MaxFreq,
		YinThreshold:      y.config.YINThreshold,
		MinConfidence:     0.5,
		VoicingThreshold:  0.45,
		MaxHarmonics:      10,
		HarmonicTolerance: 0.1,
		PreEmphasis:       false,
		WindowFunction:    "rectangular",
		ZeroPadding:       1,
	})

	padded := analyzers.CenterPad(signal, frameLength/2)
	contour := make(Contour, 0, len(signal)/hopLength+1)

	for start := 0; start+frameLength <= len(padded); start += hopLength {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := detector.DetectPitch(padded[start : start+frameLength])
		if err != nil {
			return nil, fmt.Errorf("yin detection failed at sample %d: %w", start, err)
		}

		if result.Pitch > 0 && !math.IsNaN(result.Pitch) && !math.IsInf(result.Pitch, 0) {
			contour = append(contour, result.Pitch)
		}
	}

	if len(contour) == 0 {
		return nil, ErrNoVoicedFrames
	}

	y.logger.Debug("YIN contour extracted", logging.Fields{
		"voiced_frames": len(contour),
		"sample_rate":   sampleRate,
	})

	return contour, nil
}
