package pitch

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateTone(freq float64, sampleRate int, seconds float64) []float64 {
	n := int(seconds * float64(sampleRate))
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = 0.6 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return signal
}

type stubEstimator struct {
	name    string
	contour Contour
	err     error
	calls   int
}

func (s *stubEstimator) Name() string { return s.name }

func (s *stubEstimator) Estimate(ctx context.Context, signal []float64, sampleRate int) (Contour, error) {
	s.calls++
	return s.contour, s.err
}

func TestYINEstimatorSteadyTone(t *testing.T) {
	est := NewYINEstimator(DefaultConfig())

	contour, err := est.Estimate(context.Background(), generateTone(200, 16000, 1.0), 16000)
	require.NoError(t, err)
	require.NotEmpty(t, contour)

	assert.InDelta(t, 200.0, contour.Mean(), 10.0)
	assert.Less(t, contour.VariationCoefficient(), 0.1)
	for _, f := range contour {
		assert.Greater(t, f, 0.0)
	}
}

func TestYINEstimatorSilence(t *testing.T) {
	est := NewYINEstimator(DefaultConfig())

	_, err := est.Estimate(context.Background(), make([]float64, 16000), 16000)
	assert.ErrorIs(t, err, ErrNoVoicedFrames)

	_, err = est.Estimate(context.Background(), []float64{0.3}, 16000)
	assert.ErrorIs(t, err, ErrSignalTooShort)
}

func TestYINEstimatorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewYINEstimator(DefaultConfig()).Estimate(ctx, generateTone(200, 16000, 0.5), 16000)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSpectralPeakEstimatorSteadyTone(t *testing.T) {
	est := NewSpectralPeakEstimator(DefaultConfig())

	contour, err := est.Estimate(context.Background(), generateTone(200, 16000, 1.0), 16000)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, contour.Mean(), 10.0)
}

func TestSpectralPeakEstimatorIgnoresOutOfRange(t *testing.T) {
	est := NewSpectralPeakEstimator(DefaultConfig())

	// 5 kHz is above the peak search range
	_, err := est.Estimate(context.Background(), generateTone(5000, 16000, 1.0), 16000)
	assert.ErrorIs(t, err, ErrNoVoicedFrames)
}

func TestSpectralPeakEstimatorQuietPassage(t *testing.T) {
	const sampleRate = 16000
	signal := make([]float64, 2*sampleRate)
	for i := range signal {
		ts := float64(i) / sampleRate
		if i < sampleRate {
			signal[i] = math.Sin(2 * math.Pi * 300 * ts)
		} else {
			signal[i] = 0.05 * math.Sin(2*math.Pi*200*ts)
		}
	}

	contour, err := NewSpectralPeakEstimator(DefaultConfig()).Estimate(context.Background(), signal, sampleRate)
	require.NoError(t, err)

	near200, near300 := 0, 0
	for _, f := range contour {
		switch {
		case math.Abs(f-200) < 10:
			near200++
		case math.Abs(f-300) < 10:
			near300++
		}
	}
	assert.GreaterOrEqual(t, near200, 20, "quiet 200 Hz half should be tracked")
	assert.GreaterOrEqual(t, near300, 20)
}

func TestTrackerFallbackChain(t *testing.T) {
	tests := []struct {
		name          string
		primary       *stubEstimator
		fallback      *stubEstimator
		expected      Contour
		fallbackCalls int
	}{
		{
			name:          "primary succeeds",
			primary:       &stubEstimator{name: "primary", contour: Contour{210, 220}},
			fallback:      &stubEstimator{name: "fallback", contour: Contour{100}},
			expected:      Contour{210, 220},
			fallbackCalls: 0,
		},
		{
			name:          "primary errors",
			primary:       &stubEstimator{name: "primary", err: errors.New("boom")},
			fallback:      &stubEstimator{name: "fallback", contour: Contour{180}},
			expected:      Contour{180},
			fallbackCalls: 1,
		},
		{
			name:          "primary unvoiced",
			primary:       &stubEstimator{name: "primary", contour: Contour{0, 0}},
			fallback:      &stubEstimator{name: "fallback", contour: Contour{160}},
			expected:      Contour{160},
			fallbackCalls: 1,
		},
		{
			name:          "both fail",
			primary:       &stubEstimator{name: "primary", err: ErrNoVoicedFrames},
			fallback:      &stubEstimator{name: "fallback", err: ErrNoVoicedFrames},
			expected:      Contour{0},
			fallbackCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker(tt.primary, tt.fallback)
			contour := tracker.Track(context.Background(), []float64{0, 1, 0, -1}, 16000)

			assert.Equal(t, tt.expected, contour)
			assert.Equal(t, 1, tt.primary.calls)
			assert.Equal(t, tt.fallbackCalls, tt.fallback.calls)
		})
	}
}

func TestTrackerNeverEmpty(t *testing.T) {
	tracker := NewTrackerForMethod(MethodYIN, DefaultConfig())

	for _, signal := range [][]float64{nil, {0.1}, make([]float64, 4000)} {
		contour := tracker.Track(context.Background(), signal, 16000)
		assert.Equal(t, NoData(), contour)
		assert.False(t, contour.HasPitch())
	}

	_, err := tracker.Contour(context.Background(), nil, 16000)
	assert.ErrorIs(t, err, ErrAllEstimatorsFailed)
}

func TestTrackerForMethod(t *testing.T) {
	assert.Equal(t, []string{MethodYIN, MethodSpectral}, NewTrackerForMethod(MethodYIN, DefaultConfig()).Estimators())
	assert.Equal(t, []string{MethodSpectral}, NewTrackerForMethod(MethodSpectral, DefaultConfig()).Estimators())
}

func TestContourStatistics(t *testing.T) {
	c := Contour{100, 200, 300}

	assert.InDelta(t, 200.0, c.Mean(), 1e-12)
	assert.InDelta(t, math.Sqrt(20000.0/3), c.Std(), 1e-9)
	assert.InDelta(t, math.Sqrt(20000.0/3)/200, c.VariationCoefficient(), 1e-9)
	assert.Equal(t, 200.0, c.Range())

	empty := NoData()
	assert.Equal(t, 0.0, empty.Mean())
	assert.Equal(t, 0.0, empty.VariationCoefficient())
	assert.Equal(t, 0.0, empty.Range())
}
