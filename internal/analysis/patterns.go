package analysis

import (
	"context"
	"math"

	"github.com/RyanBlaney/prosody-profiler/pkg/audio/analyzers"
	"github.com/RyanBlaney/prosody-profiler/pkg/audio/classify"
	"github.com/RyanBlaney/prosody-profiler/pkg/voice"
)

// Script window sizing: the shorter of scriptWindowMaxSeconds and
// scriptWindowFraction of the recording
const (
	scriptWindowMaxSeconds = 2.0
	scriptWindowFraction   = 0.1
)

type scriptPatterns struct {
	opening ScriptOpening
	closing ScriptClosing
}

func fallbackScript() scriptPatterns {
	return scriptPatterns{
		opening: ScriptOpening{Trajectory: classify.Stable},
		closing: ScriptClosing{Trajectory: classify.Stable},
	}
}

// scriptPatterns measures pitch and energy over the opening and closing
// windows of the recording
func (e *Engine) scriptPatterns(ctx context.Context, buf analyzers.SampleBuffer) scriptPatterns {
	windowSeconds := math.Min(scriptWindowMaxSeconds, buf.Duration()*scriptWindowFraction)
	n := min(analyzers.TimeToSample(windowSeconds, buf.SampleRate), buf.Len())

	opening := buf.Slice(0, n)
	closing := buf.Slice(buf.Len()-n, buf.Len())

	openContour := e.tracker.Track(ctx, opening.Samples, buf.SampleRate)
	closeContour := e.tracker.Track(ctx, closing.Samples, buf.SampleRate)

	return scriptPatterns{
		opening: ScriptOpening{
			StartPitch:  analyzers.Finite(openContour.Mean()),
			Trajectory:  classify.ClassifyTrajectory(openContour),
			EnergyLevel: e.meanEnergy(opening),
			Duration:    windowSeconds,
		},
		closing: ScriptClosing{
			EndPitch:    analyzers.Finite(closeContour.Mean()),
			Trajectory:  classify.ClassifyTrajectory(closeContour),
			EnergyLevel: e.meanEnergy(closing),
			Duration:    windowSeconds,
		},
	}
}

func (e *Engine) meanEnergy(buf analyzers.SampleBuffer) float64 {
	return analyzers.Finite(analyzers.Mean(analyzers.FrameRMS(buf.Samples, e.config.FrameLength, e.config.HopLength)))
}

type dialogueSummary struct {
	patterns    DialoguePatterns
	perDialogue []DialoguePitch
	emotions    EmotionAnalysis
}

func fallbackPatterns() DialoguePatterns {
	return DialoguePatterns{CommonTrajectory: classify.Stable}
}

func fallbackDialogue() dialogueSummary {
	return dialogueSummary{
		patterns:    fallbackPatterns(),
		perDialogue: []DialoguePitch{},
		emotions:    EmotionAnalysis{Segments: []EmotionSegment{}},
	}
}

// summarizeSegments reduces per-segment results into pitch patterns, the
// emotion timeline and label counts
func summarizeSegments(segments []segmentResult) dialogueSummary {
	summary := fallbackDialogue()

	var starts, ends []float64
	var trajectories []classify.Trajectory

	for _, s := range segments {
		if !s.valid {
			continue
		}

		switch s.emotion {
		case classify.Laughter:
			summary.emotions.Distribution.Laughter++
		case classify.Excitement:
			summary.emotions.Distribution.Excitement++
		default:
			summary.emotions.Distribution.Neutral++
		}
		if classify.InTimeline(s.intensity) {
			summary.emotions.Segments = append(summary.emotions.Segments, EmotionSegment{
				Index:     s.index,
				Emotion:   s.emotion,
				Intensity: s.intensity,
				Duration:  s.duration,
			})
		}

		if !s.hasPitch {
			continue
		}
		starts = append(starts, s.startPitch)
		ends = append(ends, s.endPitch)
		trajectories = append(trajectories, s.trajectory)
		summary.perDialogue = append(summary.perDialogue, DialoguePitch{
			Index:      s.index,
			StartPitch: s.startPitch,
			EndPitch:   s.endPitch,
			Trajectory: s.trajectory,
			PitchRange: s.pitchRange,
			Duration:   s.duration,
		})
	}

	summary.emotions.HasLaughter = summary.emotions.Distribution.Laughter > 0
	summary.emotions.HasExcitement = summary.emotions.Distribution.Excitement > 0

	if len(starts) > 0 {
		all := append(append([]float64{}, starts...), ends...)
		summary.patterns = DialoguePatterns{
			AverageStartPitch:   analyzers.Mean(starts),
			AverageEndPitch:     analyzers.Mean(ends),
			CommonTrajectory:    classify.Mode(trajectories),
			PitchVariationRange: analyzers.Max(all) - analyzers.Min(all),
		}
	}

	return summary
}

// segmentSettings derives adjusted parameters for every segment with a pitch
// pattern. total is the number of onset-delimited segments.
func segmentSettings(report *Report, total int) []SegmentSetting {
	pa := report.PitchAnalysis
	opening := &voice.Window{Trajectory: pa.ScriptOpening.Trajectory, Pitch: pa.ScriptOpening.StartPitch}
	closing := &voice.Window{Trajectory: pa.ScriptClosing.Trajectory, Pitch: pa.ScriptClosing.EndPitch}

	emotions := make(map[int]EmotionSegment, len(report.EmotionAnalysis.Segments))
	for _, es := range report.EmotionAnalysis.Segments {
		emotions[es.Index] = es
	}

	settings := make([]SegmentSetting, 0, len(pa.PerDialogue))
	for _, d := range pa.PerDialogue {
		ctx := voice.SegmentContext{
			Index:   d.Index,
			Total:   total,
			Opening: opening,
			Closing: closing,
			Pitch: &voice.SegmentPitch{
				Trajectory: d.Trajectory,
				StartPitch: d.StartPitch,
				EndPitch:   d.EndPitch,
			},
		}

		setting := SegmentSetting{Index: d.Index, Trajectory: d.Trajectory}
		if es, ok := emotions[d.Index]; ok {
			ctx.Emotion = &voice.SegmentEmotion{Emotion: es.Emotion, Intensity: es.Intensity}
			setting.Emotion = es.Emotion
		}

		p := voice.SegmentSettings(report.RecommendedVoiceSettings, ctx)
		setting.Stability = p.Stability
		setting.SimilarityBoost = p.SimilarityBoost
		setting.Style = p.Style
		setting.UseSpeakerBoost = p.UseSpeakerBoost
		settings = append(settings, setting)
	}

	return settings
}
