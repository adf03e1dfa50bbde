package analysis

import (
	"github.com/RyanBlaney/prosody-profiler/pkg/audio/classify"
	"github.com/RyanBlaney/prosody-profiler/pkg/audio/quality"
	"github.com/RyanBlaney/prosody-profiler/pkg/audio/timing"
	"github.com/RyanBlaney/prosody-profiler/pkg/voice"
)

// Report is the complete result of analyzing one recording
type Report struct {
	AudioProperties          AudioProperties  `json:"audio_properties" yaml:"audio_properties"`
	VoiceCharacteristics     VoiceProfile     `json:"voice_characteristics" yaml:"voice_characteristics"`
	TimingAnalysis           timing.Analysis  `json:"timing_analysis" yaml:"timing_analysis"`
	AudioQuality             quality.Analysis `json:"audio_quality" yaml:"audio_quality"`
	PitchAnalysis            PitchAnalysis    `json:"pitch_analysis" yaml:"pitch_analysis"`
	EmotionAnalysis          EmotionAnalysis  `json:"emotion_analysis" yaml:"emotion_analysis"`
	RecommendedVoiceSettings voice.Parameters `json:"recommended_voice_settings" yaml:"recommended_voice_settings"`
	SegmentSettings          []SegmentSetting `json:"segment_settings" yaml:"segment_settings"`
	Degradations             []Degradation    `json:"degradations" yaml:"degradations"`
}

// AudioProperties describes the analyzed buffer
type AudioProperties struct {
	SampleRate  int     `json:"sample_rate" yaml:"sample_rate"`
	Duration    float64 `json:"duration_seconds" yaml:"duration_seconds"`
	SampleCount int     `json:"sample_count" yaml:"sample_count"`
}

// VoiceProfile holds global pitch, rate and timbre measurements
type VoiceProfile struct {
	AveragePitch              float64 `json:"average_pitch_hz" yaml:"average_pitch_hz"`
	PitchStd                  float64 `json:"pitch_std" yaml:"pitch_std"`
	PitchRange                float64 `json:"pitch_range" yaml:"pitch_range"`
	PitchVariationCoefficient float64 `json:"pitch_variation_coefficient" yaml:"pitch_variation_coefficient"`
	SpeechRate                float64 `json:"speech_rate_wpm" yaml:"speech_rate_wpm"`
	FormantF1                 float64 `json:"formant_f1_hz" yaml:"formant_f1_hz"`
	FormantF2                 float64 `json:"formant_f2_hz" yaml:"formant_f2_hz"`
	Expressiveness            float64 `json:"expressiveness_score" yaml:"expressiveness_score"`
}

// PitchAnalysis groups script-level and per-segment pitch patterns
type PitchAnalysis struct {
	ScriptOpening    ScriptOpening    `json:"script_opening" yaml:"script_opening"`
	ScriptClosing    ScriptClosing    `json:"script_closing" yaml:"script_closing"`
	DialoguePatterns DialoguePatterns `json:"dialogue_patterns" yaml:"dialogue_patterns"`
	PerDialogue      []DialoguePitch  `json:"per_dialogue" yaml:"per_dialogue"`
}

// ScriptOpening describes the first window of the recording
type ScriptOpening struct {
	StartPitch  float64             `json:"start_pitch_hz" yaml:"start_pitch_hz"`
	Trajectory  classify.Trajectory `json:"pitch_trajectory" yaml:"pitch_trajectory"`
	EnergyLevel float64             `json:"energy_level" yaml:"energy_level"`
	Duration    float64             `json:"duration_seconds" yaml:"duration_seconds"`
}

// ScriptClosing describes the last window of the recording
type ScriptClosing struct {
	EndPitch    float64             `json:"end_pitch_hz" yaml:"end_pitch_hz"`
	Trajectory  classify.Trajectory `json:"pitch_trajectory" yaml:"pitch_trajectory"`
	EnergyLevel float64             `json:"energy_level" yaml:"energy_level"`
	Duration    float64             `json:"duration_seconds" yaml:"duration_seconds"`
}

// DialoguePatterns summarizes all retained segment pitch patterns
type DialoguePatterns struct {
	AverageStartPitch   float64             `json:"average_start_pitch_hz" yaml:"average_start_pitch_hz"`
	AverageEndPitch     float64             `json:"average_end_pitch_hz" yaml:"average_end_pitch_hz"`
	CommonTrajectory    classify.Trajectory `json:"common_trajectory" yaml:"common_trajectory"`
	PitchVariationRange float64             `json:"pitch_variation_range" yaml:"pitch_variation_range"`
}

// DialoguePitch is the pitch pattern of one segment
type DialoguePitch struct {
	Index      int                 `json:"index" yaml:"index"`
	StartPitch float64             `json:"start_pitch_hz" yaml:"start_pitch_hz"`
	EndPitch   float64             `json:"end_pitch_hz" yaml:"end_pitch_hz"`
	Trajectory classify.Trajectory `json:"trajectory" yaml:"trajectory"`
	PitchRange float64             `json:"pitch_range" yaml:"pitch_range"`
	Duration   float64             `json:"duration_seconds" yaml:"duration_seconds"`
}

// EmotionAnalysis holds the emotion timeline and label counts
type EmotionAnalysis struct {
	Segments      []EmotionSegment    `json:"emotion_segments" yaml:"emotion_segments"`
	Distribution  EmotionDistribution `json:"emotion_distribution" yaml:"emotion_distribution"`
	HasLaughter   bool                `json:"has_laughter" yaml:"has_laughter"`
	HasExcitement bool                `json:"has_excitement" yaml:"has_excitement"`
}

// EmotionSegment is one entry of the emotion timeline
type EmotionSegment struct {
	Index     int              `json:"index" yaml:"index"`
	Emotion   classify.Emotion `json:"emotion_type" yaml:"emotion_type"`
	Intensity float64          `json:"intensity" yaml:"intensity"`
	Duration  float64          `json:"duration_seconds" yaml:"duration_seconds"`
}

// EmotionDistribution counts classified segments per label
type EmotionDistribution struct {
	Laughter   int `json:"laughter" yaml:"laughter"`
	Excitement int `json:"excitement" yaml:"excitement"`
	Neutral    int `json:"neutral" yaml:"neutral"`
}

// SegmentSetting is the adjusted parameter set for one segment
type SegmentSetting struct {
	Index           int                 `json:"index" yaml:"index"`
	Stability       float64             `json:"stability" yaml:"stability"`
	SimilarityBoost float64             `json:"similarity_boost" yaml:"similarity_boost"`
	Style           float64             `json:"style" yaml:"style"`
	UseSpeakerBoost bool                `json:"use_speaker_boost" yaml:"use_speaker_boost"`
	Trajectory      classify.Trajectory `json:"trajectory" yaml:"trajectory"`
	Emotion         classify.Emotion    `json:"emotion_type,omitempty" yaml:"emotion_type,omitempty"`
}

// Degradation records a stage that failed and fell back to defaults
type Degradation struct {
	Stage   string `json:"stage" yaml:"stage"`
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// Degraded reports whether any stage fell back
func (r *Report) Degraded() bool {
	return len(r.Degradations) > 0
}

// Setting returns the segment setting for index, if one was produced
func (r *Report) Setting(index int) (SegmentSetting, bool) {
	for _, s := range r.SegmentSettings {
		if s.Index == index {
			return s, true
		}
	}
	return SegmentSetting{}, false
}
