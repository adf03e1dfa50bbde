package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/RyanBlaney/prosody-profiler/pkg/audio/analyzers"
	"github.com/RyanBlaney/prosody-profiler/pkg/audio/classify"
)

// EngineTestSuite runs the full pipeline over synthetic recordings
type EngineTestSuite struct {
	suite.Suite
	engine     *Engine
	sampleRate int

	tone     analyzers.SampleBuffer
	silence  analyzers.SampleBuffer
	dialogue analyzers.SampleBuffer
}

// SetupSuite runs once before all tests
func (suite *EngineTestSuite) SetupSuite() {
	suite.sampleRate = 16000

	config := DefaultConfig()
	config.Workers = 4
	suite.engine = NewEngine(config)

	suite.tone = generateTone(200, suite.sampleRate, 1.0)
	suite.silence = analyzers.SampleBuffer{Samples: make([]float64, 5*suite.sampleRate), SampleRate: suite.sampleRate}
	suite.dialogue = generateDialogue(suite.sampleRate, []float64{220, 180, 150}, 0.6, 0.3)
}

func generateTone(freq float64, sampleRate int, seconds float64) analyzers.SampleBuffer {
	samples := make([]float64, int(seconds*float64(sampleRate)))
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return analyzers.SampleBuffer{Samples: samples, SampleRate: sampleRate}
}

// generateDialogue alternates tone bursts at the given pitches with silent gaps
func generateDialogue(sampleRate int, pitches []float64, burstSeconds, gapSeconds float64) analyzers.SampleBuffer {
	var samples []float64
	for _, f := range pitches {
		samples = append(samples, make([]float64, int(gapSeconds*float64(sampleRate)))...)
		samples = append(samples, generateTone(f, sampleRate, burstSeconds).Samples...)
	}
	samples = append(samples, make([]float64, int(gapSeconds*float64(sampleRate)))...)
	return analyzers.SampleBuffer{Samples: samples, SampleRate: sampleRate}
}

func (suite *EngineTestSuite) TestSteadyTone() {
	report, err := suite.engine.Analyze(context.Background(), suite.tone)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), 16000, report.AudioProperties.SampleRate)
	assert.Equal(suite.T(), 16000, report.AudioProperties.SampleCount)
	assert.InDelta(suite.T(), 1.0, report.AudioProperties.Duration, 1e-9)

	assert.Equal(suite.T(), classify.Stable, report.PitchAnalysis.ScriptOpening.Trajectory)
	assert.InDelta(suite.T(), 0.1, report.PitchAnalysis.ScriptOpening.Duration, 1e-9)
	assert.False(suite.T(), report.EmotionAnalysis.HasLaughter)
	assert.Zero(suite.T(), report.EmotionAnalysis.Distribution.Laughter)

	assert.InDelta(suite.T(), 200, report.VoiceCharacteristics.AveragePitch, 20)
	assert.Greater(suite.T(), report.AudioQuality.LowFreqRatio, 0.9)
	assert.True(suite.T(), report.RecommendedVoiceSettings.InBounds())
	assert.Empty(suite.T(), report.Degradations)
}

func (suite *EngineTestSuite) TestSilence() {
	report, err := suite.engine.Analyze(context.Background(), suite.silence)
	require.NoError(suite.T(), err)

	timing := report.TimingAnalysis
	assert.Equal(suite.T(), 0.3, timing.AvgPause)
	assert.Equal(suite.T(), 0.1, timing.MinPause)
	assert.Equal(suite.T(), 1.0, timing.MaxPause)
	assert.Equal(suite.T(), 0, timing.TotalOnsets)

	assert.Zero(suite.T(), report.VoiceCharacteristics.AveragePitch)
	assert.Zero(suite.T(), report.VoiceCharacteristics.FormantF1)
	assert.Equal(suite.T(), 0.5, report.AudioQuality.ClarityScore)
	assert.Empty(suite.T(), report.PitchAnalysis.PerDialogue)
	assert.Empty(suite.T(), report.SegmentSettings)
	assert.Equal(suite.T(), classify.Stable, report.PitchAnalysis.DialoguePatterns.CommonTrajectory)
}

func (suite *EngineTestSuite) TestDialogueSegments() {
	report, err := suite.engine.Analyze(context.Background(), suite.dialogue)
	require.NoError(suite.T(), err)

	assert.GreaterOrEqual(suite.T(), report.TimingAnalysis.TotalOnsets, 2)
	require.Len(suite.T(), report.SegmentSettings, len(report.PitchAnalysis.PerDialogue))

	for i, d := range report.PitchAnalysis.PerDialogue {
		assert.Greater(suite.T(), d.StartPitch, 0.0)
		assert.Greater(suite.T(), d.EndPitch, 0.0)
		if i > 0 {
			assert.Greater(suite.T(), d.Index, report.PitchAnalysis.PerDialogue[i-1].Index)
		}

		setting := report.SegmentSettings[i]
		assert.Equal(suite.T(), d.Index, setting.Index)
		assert.GreaterOrEqual(suite.T(), setting.Style, 0.1)
		assert.LessOrEqual(suite.T(), setting.Style, 0.9)
		assert.GreaterOrEqual(suite.T(), setting.Stability, 0.1)
		assert.LessOrEqual(suite.T(), setting.Stability, 0.9)
	}

	dist := report.EmotionAnalysis.Distribution
	assert.Equal(suite.T(), report.TimingAnalysis.TotalOnsets, dist.Laughter+dist.Excitement+dist.Neutral)
	for _, es := range report.EmotionAnalysis.Segments {
		assert.Greater(suite.T(), es.Intensity, 0.4)
	}
}

func (suite *EngineTestSuite) TestReportJSONRoundTrip() {
	report, err := suite.engine.Analyze(context.Background(), suite.dialogue)
	require.NoError(suite.T(), err)

	// encoding/json rejects NaN and Inf, so a clean marshal proves every value is finite
	data, err := json.Marshal(report)
	require.NoError(suite.T(), err)

	var decoded Report
	require.NoError(suite.T(), json.Unmarshal(data, &decoded))
	assert.Equal(suite.T(), *report, decoded)

	var raw map[string]any
	require.NoError(suite.T(), json.Unmarshal(data, &raw))
	for _, key := range []string{
		"audio_properties", "voice_characteristics", "timing_analysis", "audio_quality",
		"pitch_analysis", "emotion_analysis", "recommended_voice_settings", "segment_settings",
	} {
		assert.Contains(suite.T(), raw, key)
	}
}

func (suite *EngineTestSuite) TestDeterministic() {
	first, err := suite.engine.Analyze(context.Background(), suite.dialogue)
	require.NoError(suite.T(), err)
	second, err := suite.engine.Analyze(context.Background(), suite.dialogue)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), first, second)
}

func (suite *EngineTestSuite) TestInvalidInput() {
	tests := []struct {
		name string
		buf  analyzers.SampleBuffer
	}{
		{"empty buffer", analyzers.SampleBuffer{SampleRate: 16000}},
		{"zero sample rate", analyzers.SampleBuffer{Samples: []float64{0.1, 0.2}}},
		{"non-finite sample", analyzers.SampleBuffer{Samples: []float64{0.1, math.NaN()}, SampleRate: 16000}},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			report, err := suite.engine.Analyze(context.Background(), tt.buf)
			assert.Nil(suite.T(), report)
			require.ErrorIs(suite.T(), err, ErrInvalidInput)

			var analysisErr *AnalysisError
			require.True(suite.T(), errors.As(err, &analysisErr))
			assert.Equal(suite.T(), ErrCodeInvalidInput, analysisErr.Code)
			assert.Equal(suite.T(), StageValidate, analysisErr.Stage)
		})
	}
}

func (suite *EngineTestSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := suite.engine.Analyze(ctx, suite.tone)
	assert.Nil(suite.T(), report)
	assert.ErrorIs(suite.T(), err, context.Canceled)
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func TestRunStageDegrades(t *testing.T) {
	r := &run{logger: logging.WithFields(logging.Fields{"component": "stage_test"})}

	got, err := runStage(context.Background(), r, "failing", 42, func(context.Context) (int, error) {
		return 0, errors.New("boom")
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	got, err = runStage(context.Background(), r, "panicking", 7, func(context.Context) (int, error) {
		panic("index out of range")
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	got, err = runStage(context.Background(), r, "ok", 0, func(context.Context) (int, error) {
		return 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	degradations := r.snapshot()
	require.Len(t, degradations, 2)
	assert.Equal(t, "failing", degradations[0].Stage)
	assert.Equal(t, ErrCodeStageFailed, degradations[0].Code)
	assert.Equal(t, "panicking", degradations[1].Stage)
	assert.Equal(t, ErrCodeStagePanic, degradations[1].Code)
}

func TestSegmentBounds(t *testing.T) {
	bounds := segmentBounds([]float64{0, 0.5, 1.5}, 100, 180)
	assert.Equal(t, [][2]int{{0, 50}, {50, 150}, {150, 180}}, bounds)

	bounds = segmentBounds([]float64{2.0}, 100, 180)
	assert.Equal(t, [][2]int{{180, 180}}, bounds)
}

func TestSummarizeSegments(t *testing.T) {
	segments := []segmentResult{
		{index: 0, valid: true, duration: 1, hasPitch: true, startPitch: 200, endPitch: 150,
			trajectory: classify.Falling, pitchRange: 60, emotion: classify.Neutral, intensity: 0.3},
		{index: 1, valid: false},
		{index: 2, valid: true, duration: 0.5, hasPitch: true, startPitch: 180, endPitch: 240,
			trajectory: classify.Rising, pitchRange: 70, emotion: classify.Laughter, intensity: 0.8},
		{index: 3, valid: true, duration: 0.4, emotion: classify.Excitement, intensity: 0.55},
	}

	summary := summarizeSegments(segments)

	require.Len(t, summary.perDialogue, 2)
	assert.Equal(t, 0, summary.perDialogue[0].Index)
	assert.Equal(t, 2, summary.perDialogue[1].Index)

	assert.Equal(t, 190.0, summary.patterns.AverageStartPitch)
	assert.Equal(t, 195.0, summary.patterns.AverageEndPitch)
	assert.Equal(t, 90.0, summary.patterns.PitchVariationRange)
	// one rising, one falling: rising wins the tie
	assert.Equal(t, classify.Rising, summary.patterns.CommonTrajectory)

	assert.Equal(t, EmotionDistribution{Laughter: 1, Excitement: 1, Neutral: 1}, summary.emotions.Distribution)
	require.Len(t, summary.emotions.Segments, 2)
	assert.Equal(t, 2, summary.emotions.Segments[0].Index)
	assert.Equal(t, 3, summary.emotions.Segments[1].Index)
	assert.True(t, summary.emotions.HasLaughter)
	assert.True(t, summary.emotions.HasExcitement)
}

func TestSegmentSettingsFromReport(t *testing.T) {
	report := &Report{
		PitchAnalysis: PitchAnalysis{
			ScriptOpening: ScriptOpening{StartPitch: 200, Trajectory: classify.Rising},
			ScriptClosing: ScriptClosing{EndPitch: 150, Trajectory: classify.Falling},
			PerDialogue: []DialoguePitch{
				{Index: 0, StartPitch: 200, EndPitch: 200, Trajectory: classify.Stable},
				{Index: 1, StartPitch: 220, EndPitch: 150, Trajectory: classify.Stable},
				{Index: 2, StartPitch: 200, EndPitch: 200, Trajectory: classify.Stable},
			},
		},
		EmotionAnalysis: EmotionAnalysis{
			Segments: []EmotionSegment{{Index: 1, Emotion: classify.Excitement, Intensity: 1.0}},
		},
	}
	report.RecommendedVoiceSettings.SetStability(0.35)
	report.RecommendedVoiceSettings.SetSimilarity(0.75)
	report.RecommendedVoiceSettings.SetStyle(0.55)

	settings := segmentSettings(report, 3)
	require.Len(t, settings, 3)

	// opening: rising +0.1 style, -0.05 stability, high start +0.05 style
	assert.InDelta(t, 0.70, settings[0].Style, 1e-9)
	assert.InDelta(t, 0.30, settings[0].Stability, 1e-9)

	// excitement overwrites the pitch-drop adjustment
	assert.Equal(t, classify.Excitement, settings[1].Emotion)
	assert.InDelta(t, 0.70, settings[1].Style, 1e-9)
	assert.InDelta(t, 0.30, settings[1].Stability, 1e-9)

	// closing: falling -0.1 style, +0.05 stability, low end pitch -0.05 style
	assert.InDelta(t, 0.40, settings[2].Style, 1e-9)
	assert.InDelta(t, 0.40, settings[2].Stability, 1e-9)
}
