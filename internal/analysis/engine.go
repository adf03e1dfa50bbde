package analysis

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/prosody-profiler/internal/observe"
	"github.com/RyanBlaney/prosody-profiler/pkg/audio/analyzers"
	"github.com/RyanBlaney/prosody-profiler/pkg/audio/onset"
	"github.com/RyanBlaney/prosody-profiler/pkg/audio/pitch"
	"github.com/RyanBlaney/prosody-profiler/pkg/audio/quality"
	"github.com/RyanBlaney/prosody-profiler/pkg/audio/timing"
	"github.com/RyanBlaney/prosody-profiler/pkg/voice"
)

// Formant search ranges in Hz
const (
	formantF1Min = 500.0
	formantF1Max = 800.0
	formantF2Min = 1000.0
	formantF2Max = 2500.0
)

// Config holds engine parameters
type Config struct {
	FrameLength int
	HopLength   int
	PitchMethod string
	Pitch       pitch.Config
	Onset       onset.Config
	Workers     int
	Timeout     time.Duration
	ModelID     string
}

// DefaultConfig returns the standard engine configuration
func DefaultConfig() Config {
	return Config{
		FrameLength: analyzers.DefaultFrameLength,
		HopLength:   analyzers.DefaultHopLength,
		PitchMethod: pitch.MethodYIN,
		Pitch:       pitch.DefaultConfig(),
		Onset:       onset.DefaultConfig(),
		Workers:     runtime.NumCPU(),
		Timeout:     5 * time.Minute,
		ModelID:     voice.DefaultModelID,
	}
}

// Engine runs every analysis stage over a buffer and assembles a Report
type Engine struct {
	config   Config
	tracker  *pitch.Tracker
	global   *pitch.Tracker
	detector *onset.Detector
	mapper   *voice.Mapper
	logger   logging.Logger
}

// NewEngine creates an analysis engine
func NewEngine(config Config) *Engine {
	if config.FrameLength <= 0 {
		config.FrameLength = analyzers.DefaultFrameLength
	}
	if config.HopLength <= 0 {
		config.HopLength = analyzers.DefaultHopLength
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}

	return &Engine{
		config:   config,
		tracker:  pitch.NewTrackerForMethod(config.PitchMethod, config.Pitch),
		global:   pitch.NewTrackerForMethod(pitch.MethodSpectral, config.Pitch),
		detector: onset.NewDetector(config.Onset),
		mapper:   voice.NewMapper(config.ModelID),
		logger: logging.WithFields(logging.Fields{
			"component": "analysis_engine",
		}),
	}
}

// Analyze runs the full pipeline. It fails only on invalid input or when ctx
// is cancelled; any other stage failure is reported in Report.Degradations.
func (e *Engine) Analyze(ctx context.Context, buf analyzers.SampleBuffer) (*Report, error) {
	if err := validate(buf); err != nil {
		e.logger.Error(err, "Rejected analysis input")
		return nil, err
	}

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	ctx, span := observe.StartSpan(ctx, "analysis.run")
	defer span.End()

	logger := e.logger.WithFields(logging.Fields{
		"function":    "Analyze",
		"run_id":      observe.RunID(ctx),
		"sample_rate": buf.SampleRate,
		"duration":    buf.Duration(),
	})
	r := &run{logger: logger}

	report, err := e.analyze(ctx, buf, r)
	if err != nil {
		observe.Fail(span, err)
		logger.Error(err, "Analysis aborted")
		return nil, err
	}

	report.Degradations = r.snapshot()

	logger.Info("Analysis completed", logging.Fields{
		"segments":     len(report.PitchAnalysis.PerDialogue),
		"onsets":       report.TimingAnalysis.TotalOnsets,
		"degradations": len(report.Degradations),
	})

	return report, nil
}

func (e *Engine) analyze(ctx context.Context, buf analyzers.SampleBuffer, r *run) (*Report, error) {
	report := &Report{
		AudioProperties: AudioProperties{
			SampleRate:  buf.SampleRate,
			Duration:    buf.Duration(),
			SampleCount: buf.Len(),
		},
		PitchAnalysis: PitchAnalysis{
			PerDialogue: []DialoguePitch{},
		},
		EmotionAnalysis: EmotionAnalysis{
			Segments: []EmotionSegment{},
		},
		SegmentSettings: []SegmentSetting{},
	}

	onsets, err := runStage(ctx, r, StageOnsets, onset.Result{Onsets: []float64{}, Major: []float64{}},
		func(ctx context.Context) (onset.Result, error) {
			return e.detector.Analyze(buf), nil
		})
	if err != nil {
		return nil, err
	}

	report.VoiceCharacteristics, err = runStage(ctx, r, StageVoice, VoiceProfile{},
		func(ctx context.Context) (VoiceProfile, error) {
			return e.voiceProfile(ctx, buf, onsets.PeakCount), nil
		})
	if err != nil {
		return nil, err
	}

	report.TimingAnalysis, err = runStage(ctx, r, StageTiming, timing.Fallback(),
		func(ctx context.Context) (timing.Analysis, error) {
			rms := analyzers.FrameRMS(buf.Samples, e.config.FrameLength, e.config.HopLength)
			return timing.Analyze(onsets.Onsets, rms, buf.SampleRate, e.config.HopLength, len(onsets.Major)), nil
		})
	if err != nil {
		return nil, err
	}

	report.AudioQuality, err = runStage(ctx, r, StageQuality, quality.Analysis{ClarityScore: quality.NeutralClarity},
		func(ctx context.Context) (quality.Analysis, error) {
			return quality.Analyze(buf, e.config.FrameLength, e.config.HopLength), nil
		})
	if err != nil {
		return nil, err
	}

	script, err := runStage(ctx, r, StageScriptPatterns, fallbackScript(),
		func(ctx context.Context) (scriptPatterns, error) {
			return e.scriptPatterns(ctx, buf), nil
		})
	if err != nil {
		return nil, err
	}
	report.PitchAnalysis.ScriptOpening = script.opening
	report.PitchAnalysis.ScriptClosing = script.closing

	segments, err := runStage(ctx, r, StageSegments, []segmentResult{},
		func(ctx context.Context) ([]segmentResult, error) {
			return e.analyzeSegments(ctx, buf, onsets.Onsets)
		})
	if err != nil {
		return nil, err
	}

	dialogue, err := runStage(ctx, r, StageDialogue, fallbackDialogue(),
		func(ctx context.Context) (dialogueSummary, error) {
			return summarizeSegments(segments), nil
		})
	if err != nil {
		return nil, err
	}
	report.PitchAnalysis.DialoguePatterns = dialogue.patterns
	report.PitchAnalysis.PerDialogue = dialogue.perDialogue
	report.EmotionAnalysis = dialogue.emotions

	report.RecommendedVoiceSettings, err = runStage(ctx, r, StageMapping, e.defaultParameters(),
		func(ctx context.Context) (voice.Parameters, error) {
			return e.mapper.Map(voice.Features{
				PitchVariationCoefficient: report.VoiceCharacteristics.PitchVariationCoefficient,
				Expressiveness:            report.VoiceCharacteristics.Expressiveness,
				Clarity:                   report.AudioQuality.ClarityScore,
				AveragePause:              report.TimingAnalysis.AvgPause,
				SampleRate:                buf.SampleRate,
			})
		})
	if err != nil {
		return nil, err
	}

	report.SegmentSettings, err = runStage(ctx, r, StageSegmentSettings, []SegmentSetting{},
		func(ctx context.Context) ([]SegmentSetting, error) {
			return segmentSettings(report, len(onsets.Onsets)), nil
		})
	if err != nil {
		return nil, err
	}

	return report, nil
}

func (e *Engine) defaultParameters() voice.Parameters {
	p := voice.DefaultParameters()
	if e.config.ModelID != "" {
		p.ModelID = e.config.ModelID
	}
	return p
}

// voiceProfile measures global pitch statistics with the spectral-peak
// tracker, speech rate from onset peaks, and formant peaks of the full
// spectrum
func (e *Engine) voiceProfile(ctx context.Context, buf analyzers.SampleBuffer, peakCount int) VoiceProfile {
	contour := e.global.Track(ctx, buf.Samples, buf.SampleRate)

	profile := VoiceProfile{}
	if contour.HasPitch() {
		profile.AveragePitch = analyzers.Finite(contour.Mean())
		profile.PitchStd = analyzers.Finite(contour.Std())
		profile.PitchRange = analyzers.Finite(contour.Range())
		profile.PitchVariationCoefficient = contour.VariationCoefficient()
	}

	if duration := buf.Duration(); duration > 0 {
		profile.SpeechRate = float64(peakCount) * 60 / duration
	}

	spectrum := analyzers.NewSpectralAnalyzer(buf.SampleRate).FullSpectrum(buf.Samples)
	profile.FormantF1 = spectrum.PeakFrequency(formantF1Min, formantF1Max)
	profile.FormantF2 = spectrum.PeakFrequency(formantF2Min, formantF2Max)
	profile.Expressiveness = math.Min(profile.PitchVariationCoefficient*2, 1)

	return profile
}

func validate(buf analyzers.SampleBuffer) error {
	if buf.Len() == 0 {
		return invalidInput("empty buffer")
	}
	if buf.SampleRate <= 0 {
		return invalidInput("sample rate must be positive, got %d", buf.SampleRate)
	}
	for i, s := range buf.Samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return invalidInput("sample %d is not finite", i)
		}
	}
	return nil
}

// Summary renders a one-line description of a report for logs
func Summary(r *Report) string {
	return fmt.Sprintf("%.1fs @ %dHz, pitch %.1fHz, %d segments, emotions %d/%d/%d, trajectory %s",
		r.AudioProperties.Duration,
		r.AudioProperties.SampleRate,
		r.VoiceCharacteristics.AveragePitch,
		len(r.PitchAnalysis.PerDialogue),
		r.EmotionAnalysis.Distribution.Laughter,
		r.EmotionAnalysis.Distribution.Excitement,
		r.EmotionAnalysis.Distribution.Neutral,
		r.PitchAnalysis.DialoguePatterns.CommonTrajectory,
	)
}
