package voice

import (
	"math"

	"github.com/RyanBlaney/prosody-profiler/pkg/audio/analyzers"
)

// Parameter bounds
const (
	MinStability  = 0.1
	MaxStability  = 0.9
	MinSimilarity = 0.3
	MaxSimilarity = 0.9
	MinStyle      = 0.1
	MaxStyle      = 0.9
)

// Default output tags
const (
	DefaultModelID      = "eleven_multilingual_v2"
	DefaultOutputFormat = "mp3_44100_128"
	LowRateOutputFormat = "mp3_22050_128"
)

// Parameters is a set of synthesis settings. Numeric fields stay within
// their bounds as long as they are changed through the setters.
type Parameters struct {
	Stability       float64 `json:"stability" yaml:"stability"`
	SimilarityBoost float64 `json:"similarity_boost" yaml:"similarity_boost"`
	Style           float64 `json:"style" yaml:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost" yaml:"use_speaker_boost"`
	PauseDuration   float64 `json:"pause_duration_seconds" yaml:"pause_duration_seconds"`
	OutputFormat    string  `json:"output_format_tag" yaml:"output_format_tag"`
	ModelID         string  `json:"model_tag" yaml:"model_tag"`
	VoiceID         string  `json:"voice_id,omitempty" yaml:"voice_id,omitempty"`
}

// DefaultParameters returns the settings used when mapping fails
func DefaultParameters() Parameters {
	return Parameters{
		Stability:       0.35,
		SimilarityBoost: 0.75,
		Style:           0.55,
		UseSpeakerBoost: true,
		PauseDuration:   0.3,
		OutputFormat:    DefaultOutputFormat,
		ModelID:         DefaultModelID,
	}
}

// SetStability assigns stability within bounds
func (p *Parameters) SetStability(v float64) {
	p.Stability = analyzers.Clamp(v, MinStability, MaxStability)
}

// AdjustStability shifts stability by delta within bounds
func (p *Parameters) AdjustStability(delta float64) {
	p.SetStability(p.Stability + delta)
}

// SetSimilarity assigns similarity boost within bounds
func (p *Parameters) SetSimilarity(v float64) {
	p.SimilarityBoost = analyzers.Clamp(v, MinSimilarity, MaxSimilarity)
}

// SetStyle assigns style within bounds
func (p *Parameters) SetStyle(v float64) {
	p.Style = analyzers.Clamp(v, MinStyle, MaxStyle)
}

// AdjustStyle shifts style by delta within bounds
func (p *Parameters) AdjustStyle(delta float64) {
	p.SetStyle(p.Style + delta)
}

// Clamp forces every bounded field back into range
func (p *Parameters) Clamp() {
	p.SetStability(p.Stability)
	p.SetSimilarity(p.SimilarityBoost)
	p.SetStyle(p.Style)
	if p.PauseDuration < 0 || math.IsNaN(p.PauseDuration) || math.IsInf(p.PauseDuration, 0) {
		p.PauseDuration = 0
	}
}

// InBounds reports whether all bounded fields are within range
func (p Parameters) InBounds() bool {
	return p.Stability >= MinStability && p.Stability <= MaxStability &&
		p.SimilarityBoost >= MinSimilarity && p.SimilarityBoost <= MaxSimilarity &&
		p.Style >= MinStyle && p.Style <= MaxStyle
}

// OutputFormatFor picks the output format tag for a reference sample rate
func OutputFormatFor(sampleRate int) string {
	switch {
	case sampleRate >= 44100:
		return DefaultOutputFormat
	case sampleRate >= 22050:
		return LowRateOutputFormat
	default:
		return DefaultOutputFormat
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
