package timing

import (
	"github.com/RyanBlaney/prosody-profiler/pkg/audio/analyzers"
)

// Fallback pause statistics used when fewer than two onsets exist
const (
	FallbackAvgPause = 0.3
	FallbackMinPause = 0.1
	FallbackMaxPause = 1.0

	// DefaultRhythmRegularity applies when there are fewer than two pauses
	DefaultRhythmRegularity = 0.5

	// SilencePercentile marks RMS frames below this percentile as silent
	SilencePercentile = 20.0
)

// Analysis summarizes pauses, silences and rhythm
type Analysis struct {
	AvgPause         float64 `json:"average_pause_duration_seconds" yaml:"average_pause_duration_seconds"`
	MinPause         float64 `json:"min_pause_duration" yaml:"min_pause_duration"`
	MaxPause         float64 `json:"max_pause_duration" yaml:"max_pause_duration"`
	AvgSilence       float64 `json:"average_silence_duration" yaml:"average_silence_duration"`
	SegmentCount     int     `json:"segment_count" yaml:"segment_count"`
	TotalOnsets      int     `json:"total_onsets" yaml:"total_onsets"`
	RhythmRegularity float64 `json:"speech_rhythm_regularity" yaml:"speech_rhythm_regularity"`
}

// Fallback returns the record used when timing cannot be measured at all
func Fallback() Analysis {
	return Analysis{
		AvgPause:         FallbackAvgPause,
		MinPause:         FallbackMinPause,
		MaxPause:         FallbackMaxPause,
		AvgSilence:       FallbackAvgPause,
		RhythmRegularity: DefaultRhythmRegularity,
	}
}

// Analyze computes timing statistics from onset times (seconds) and an RMS
// envelope framed with hopLength. segmentCount is passed through.
func Analyze(onsets []float64, rms []float64, sampleRate, hopLength, segmentCount int) Analysis {
	result := Analysis{
		SegmentCount: segmentCount,
		TotalOnsets:  len(onsets),
	}

	pauses := analyzers.Diff(onsets)
	if len(pauses) == 0 {
		result.AvgPause = FallbackAvgPause
		result.MinPause = FallbackMinPause
		result.MaxPause = FallbackMaxPause
	} else {
		result.AvgPause = analyzers.Mean(pauses)
		result.MinPause = analyzers.Min(pauses)
		result.MaxPause = analyzers.Max(pauses)
	}

	silences := SilenceRuns(rms, sampleRate, hopLength)
	if len(silences) > 0 {
		result.AvgSilence = analyzers.Mean(silences)
	} else {
		result.AvgSilence = result.AvgPause
	}

	result.RhythmRegularity = RhythmRegularity(pauses)

	return result
}

// SilenceRuns returns the durations in seconds of contiguous runs of frames
// whose RMS is below the silence percentile. A run still open at the end of
// the envelope is not reported.
func SilenceRuns(rms []float64, sampleRate, hopLength int) []float64 {
	runs := make([]float64, 0)
	if len(rms) == 0 {
		return runs
	}

	threshold := analyzers.Percentile(rms, SilencePercentile)
	runStart := -1

	for i, v := range rms {
		silent := v < threshold
		switch {
		case silent && runStart < 0:
			runStart = i
		case !silent && runStart >= 0:
			start := analyzers.FramesToTime(runStart, sampleRate, hopLength)
			end := analyzers.FramesToTime(i, sampleRate, hopLength)
			runs = append(runs, end-start)
			runStart = -1
		}
	}

	return runs
}

// RhythmRegularity is 1 - std/mean of pause durations, or the default when
// fewer than two pauses exist
func RhythmRegularity(pauses []float64) float64 {
	if len(pauses) < 2 {
		return DefaultRhythmRegularity
	}
	mean := analyzers.Mean(pauses)
	if mean <= 0 {
		return DefaultRhythmRegularity
	}
	return analyzers.Finite(1 - analyzers.PopStd(pauses)/mean)
}
