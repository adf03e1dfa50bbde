package classify

import (
	"math"

	"github.com/RyanBlaney/prosody-profiler/pkg/audio/analyzers"
)

// Emotion is the coarse affect label of a segment
type Emotion string

const (
	Laughter   Emotion = "laughter"
	Excitement Emotion = "excitement"
	Neutral    Emotion = "neutral"
)

// Classification thresholds
const (
	LaughterThreshold   = 0.6
	ExcitementThreshold = 0.5
	NeutralIntensity    = 0.3

	// TimelineThreshold is the intensity a segment needs to appear in the
	// emotion timeline
	TimelineThreshold = 0.4
)

// LaughterScore combines pitch variation with spectral brightness.
// centroid is the mean per-frame spectral centroid in Hz.
func LaughterScore(contour []float64, centroid float64) float64 {
	if len(contour) < 3 {
		return 0
	}

	pvc := 0.0
	if mean := analyzers.Mean(contour); mean > 0 {
		pvc = analyzers.PopStd(contour) / mean
	}

	score := 0.5*pvc + 0.3*(centroid/2000)
	return analyzers.Finite(math.Min(1, score))
}

// ExcitementScore combines high average pitch, loudness and sudden pitch jumps
func ExcitementScore(contour []float64, rms []float64) float64 {
	pitchScore := 0.0
	if avg := analyzers.Mean(contour); avg > 150 {
		pitchScore = math.Min(1, (avg-150)/100)
	}

	energyScore := math.Min(1, analyzers.Mean(rms)*10)

	spikeScore := 0.0
	if len(contour) > 2 {
		spikeScore = math.Min(1, analyzers.MaxAbsDiff(contour)/50)
	}

	score := 0.3*pitchScore + 0.4*energyScore + 0.3*spikeScore
	return analyzers.Finite(math.Min(1, score))
}

// ClassifyEmotion picks a label and intensity from the two scores. Laughter
// wins over excitement when both pass their thresholds.
func ClassifyEmotion(laughter, excitement float64) (Emotion, float64) {
	switch {
	case laughter > LaughterThreshold:
		return Laughter, laughter
	case excitement > ExcitementThreshold:
		return Excitement, excitement
	default:
		return Neutral, NeutralIntensity
	}
}

// InTimeline reports whether a classification is strong enough to keep
func InTimeline(intensity float64) bool {
	return intensity > TimelineThreshold
}
