package pitch

import (
	"context"
	"errors"
	"fmt"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
)

// ErrAllEstimatorsFailed wraps the last estimator error when the chain is exhausted
var ErrAllEstimatorsFailed = errors.New("all pitch estimators failed")

// Tracker runs estimators in order and returns the first voiced contour
type Tracker struct {
	estimators []Estimator
	logger     logging.Logger
}

// NewTracker creates a tracker from a primary estimator and optional fallbacks
func NewTracker(primary Estimator, fallbacks ...Estimator) *Tracker {
	estimators := make([]Estimator, 0, len(fallbacks)+1)
	if primary != nil {
		estimators = append(estimators, primary)
	}
	for _, fb := range fallbacks {
		if fb != nil {
			estimators = append(estimators, fb)
		}
	}

	return &Tracker{
		estimators: estimators,
		logger: logging.WithFields(logging.Fields{
			"component": "pitch_tracker",
		}),
	}
}

// NewTrackerForMethod builds the chain for a configured method. "spectral"
// skips YIN entirely; anything else uses YIN with the spectral fallback.
func NewTrackerForMethod(method string, config Config) *Tracker {
	spectral := NewSpectralPeakEstimator(config)
	if method == MethodSpectral {
		return NewTracker(spectral)
	}
	return NewTracker(NewYINEstimator(config), spectral)
}

// Estimators returns the names of the estimators in chain order
func (t *Tracker) Estimators() []string {
	names := make([]string, len(t.estimators))
	for i, est := range t.estimators {
		names[i] = est.Name()
	}
	return names
}

// Contour returns the first voiced contour in the chain, or an error
// wrapping ErrAllEstimatorsFailed
func (t *Tracker) Contour(ctx context.Context, signal []float64, sampleRate int) (Contour, error) {
	lastErr := ErrNoVoicedFrames
	for _, est := range t.estimators {
		contour, err := est.Estimate(ctx, signal, sampleRate)
		if err == nil && contour.HasPitch() {
			return contour, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err == nil {
			err = ErrNoVoicedFrames
		}
		lastErr = err

		t.logger.Debug("Pitch estimator produced no contour, trying next", logging.Fields{
			"estimator": est.Name(),
			"error":     err.Error(),
		})
	}
	return nil, fmt.Errorf("%w: %v", ErrAllEstimatorsFailed, lastErr)
}

// Track never fails: an exhausted chain yields NoData
func (t *Tracker) Track(ctx context.Context, signal []float64, sampleRate int) Contour {
	contour, err := t.Contour(ctx, signal, sampleRate)
	if err != nil {
		return NoData()
	}
	return contour
}
