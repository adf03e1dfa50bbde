package pitch

import (
	"context"
	"errors"
)

var (
	// ErrNoVoicedFrames is returned when an estimator finds no pitched frame
	ErrNoVoicedFrames = errors.New("no voiced frames")
	// ErrSignalTooShort is returned for signals that cannot fill a frame
	ErrSignalTooShort = errors.New("signal too short for pitch estimation")
)

// Method names accepted by NewTrackerForMethod
const (
	MethodYIN      = "yin"
	MethodSpectral = "spectral"
)

// Estimator produces a pitch contour from a mono signal
type Estimator interface {
	Name() string
	Estimate(ctx context.Context, signal []float64, sampleRate int) (Contour, error)
}

// Config contains the shared framing and search range for estimators
type Config struct {
	FrameLength int
	HopLength   int
	MinFreq     float64
	MaxFreq     float64

	// YIN dip threshold
	YINThreshold float64

	// Spectral peak search range and relative magnitude gate
	PeakMinFreq   float64
	PeakMaxFreq   float64
	PeakThreshold float64
}

// DefaultConfig returns a vocal range of C2 to C7 with 2048/512 framing
func DefaultConfig() Config {
	return Config{
		FrameLength:   2048,
		HopLength:     512,
		MinFreq:       65.41,
		MaxFreq:       2093.0,
		YINThreshold:  0.15,
		PeakMinFreq:   150.0,
		PeakMaxFreq:   4000.0,
		PeakThreshold: 0.1,
	}
}
