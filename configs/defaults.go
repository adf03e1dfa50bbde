package configs

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets default configuration values for all components
func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()

	// Analysis defaults
	if !v.IsSet("analysis.frame_length") {
		v.Set("analysis.frame_length", d.Analysis.FrameLength)
	}
	if !v.IsSet("analysis.hop_length") {
		v.Set("analysis.hop_length", d.Analysis.HopLength)
	}
	if !v.IsSet("analysis.mel_bands") {
		v.Set("analysis.mel_bands", d.Analysis.MelBands)
	}
	if !v.IsSet("analysis.pitch_method") {
		v.Set("analysis.pitch_method", d.Analysis.PitchMethod)
	}
	if !v.IsSet("analysis.min_frequency") {
		v.Set("analysis.min_frequency", d.Analysis.MinFrequency)
	}
	if !v.IsSet("analysis.max_frequency") {
		v.Set("analysis.max_frequency", d.Analysis.MaxFrequency)
	}
	if !v.IsSet("analysis.yin_threshold") {
		v.Set("analysis.yin_threshold", d.Analysis.YINThreshold)
	}
	if !v.IsSet("analysis.peak_threshold") {
		v.Set("analysis.peak_threshold", d.Analysis.PeakThreshold)
	}
	if !v.IsSet("analysis.onset_delta") {
		v.Set("analysis.onset_delta", d.Analysis.OnsetDelta)
	}
	if !v.IsSet("analysis.onset_wait") {
		v.Set("analysis.onset_wait", d.Analysis.OnsetWait)
	}
	if !v.IsSet("analysis.major_onset_delta") {
		v.Set("analysis.major_onset_delta", d.Analysis.MajorOnsetDelta)
	}
	if !v.IsSet("analysis.major_onset_wait_frames") {
		v.Set("analysis.major_onset_wait_frames", d.Analysis.MajorOnsetWaitFrames)
	}
	if !v.IsSet("analysis.workers") {
		v.Set("analysis.workers", d.Analysis.Workers)
	}
	if !v.IsSet("analysis.timeout") {
		v.Set("analysis.timeout", d.Analysis.Timeout)
	}

	// Voice defaults
	if !v.IsSet("voice.model_id") {
		v.Set("voice.model_id", d.Voice.ModelID)
	}
	if !v.IsSet("voice.voices") {
		v.Set("voice.voices", map[string]string{})
	}

	// Output defaults
	if !v.IsSet("output.precision") {
		v.Set("output.precision", d.Output.Precision)
	}
	if !v.IsSet("output.include_degradations") {
		v.Set("output.include_degradations", d.Output.IncludeDegradations)
	}

	// Metrics defaults
	if !v.IsSet("metrics.enabled") {
		v.Set("metrics.enabled", d.Metrics.Enabled)
	}
	if !v.IsSet("metrics.log_path") {
		v.Set("metrics.log_path", d.Metrics.LogPath)
	}
	if !v.IsSet("metrics.prefix") {
		v.Set("metrics.prefix", d.Metrics.Prefix)
	}

	// Application defaults
	if !v.IsSet("verbose") {
		v.Set("verbose", d.Verbose)
	}
	if !v.IsSet("log_level") {
		v.Set("log_level", d.LogLevel)
	}
	if !v.IsSet("output_format") {
		v.Set("output_format", d.OutputFormat)
	}
}

// GetDefaultConfig returns a Config struct with all default values set
func GetDefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Verbose:      false,
		LogLevel:     "info",
		OutputFormat: "json",
		ConfigDir:    filepath.Join(home, ".config", "prosody-profiler"),
		DataDir:      filepath.Join(home, ".local", "share", "prosody-profiler"),

		Analysis: GetDefaultAnalysisConfig(),
		Voice:    GetDefaultVoiceConfig(),
		Output:   GetDefaultOutputConfig(),
		Metrics:  GetDefaultMetricsConfig(),
	}
}

// GetDefaultAnalysisConfig returns default feature extraction settings
func GetDefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		FrameLength:          2048,
		HopLength:            512,
		MelBands:             128,
		PitchMethod:          "yin",
		MinFrequency:         65.41,
		MaxFrequency:         2093.0,
		YINThreshold:         0.15,
		PeakThreshold:        0.1,
		OnsetDelta:           0.07,
		OnsetWait:            0.03,
		MajorOnsetDelta:      0.1,
		MajorOnsetWaitFrames: 1,
		Workers:              4,
		Timeout:              5 * time.Minute,
	}
}

// GetDefaultVoiceConfig returns default voice mapping settings
func GetDefaultVoiceConfig() VoiceConfig {
	return VoiceConfig{
		ModelID: "eleven_multilingual_v2",
		Voices:  make(map[string]string),
	}
}

// GetDefaultOutputConfig returns default output formatting settings
func GetDefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Precision:           3,
		IncludeDegradations: true,
	}
}

// GetDefaultMetricsConfig returns default metric emission settings
func GetDefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled: false,
		LogPath: "/tmp/prosody-profiler.log",
		Prefix:  "prosody.profiler",
	}
}
