package configs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose" yaml:"verbose"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`
	ConfigDir    string `mapstructure:"config_dir" yaml:"config_dir"`
	DataDir      string `mapstructure:"data_dir" yaml:"data_dir"`

	// Feature extraction settings
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`

	// Voice parameter mapping
	Voice VoiceConfig `mapstructure:"voice" yaml:"voice"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output"`

	// Process metrics
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// AnalysisConfig contains feature extraction settings
type AnalysisConfig struct {
	FrameLength int `mapstructure:"frame_length" yaml:"frame_length"`
	HopLength   int `mapstructure:"hop_length" yaml:"hop_length"`
	MelBands    int `mapstructure:"mel_bands" yaml:"mel_bands"`

	PitchMethod   string  `mapstructure:"pitch_method" yaml:"pitch_method"`
	MinFrequency  float64 `mapstructure:"min_frequency" yaml:"min_frequency"`
	MaxFrequency  float64 `mapstructure:"max_frequency" yaml:"max_frequency"`
	YINThreshold  float64 `mapstructure:"yin_threshold" yaml:"yin_threshold"`
	PeakThreshold float64 `mapstructure:"peak_threshold" yaml:"peak_threshold"`

	OnsetDelta           float64 `mapstructure:"onset_delta" yaml:"onset_delta"`
	OnsetWait            float64 `mapstructure:"onset_wait" yaml:"onset_wait"`
	MajorOnsetDelta      float64 `mapstructure:"major_onset_delta" yaml:"major_onset_delta"`
	MajorOnsetWaitFrames int     `mapstructure:"major_onset_wait_frames" yaml:"major_onset_wait_frames"`

	Workers int           `mapstructure:"workers" yaml:"workers"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// VoiceConfig contains synthesis parameter settings
type VoiceConfig struct {
	ModelID string            `mapstructure:"model_id" yaml:"model_id"`
	Voices  map[string]string `mapstructure:"voices" yaml:"voices"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Precision           int  `mapstructure:"precision" yaml:"precision"`
	IncludeDegradations bool `mapstructure:"include_degradations" yaml:"include_degradations"`
}

// MetricsConfig contains metric emission settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	LogPath string `mapstructure:"log_path" yaml:"log_path"`
	Prefix  string `mapstructure:"prefix" yaml:"prefix"`
}

// LoadConfig loads configuration from the global viper instance
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(viper.GetViper())
}

// LoadConfigFrom fills unset keys with defaults and decodes v into a Config
func LoadConfigFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	a := config.Analysis

	if a.FrameLength <= 0 {
		return fmt.Errorf("analysis frame length must be positive")
	}

	if a.HopLength <= 0 || a.HopLength > a.FrameLength {
		return fmt.Errorf("analysis hop length must be in (0, frame_length]")
	}

	if a.MelBands <= 0 {
		return fmt.Errorf("analysis mel bands must be positive")
	}

	switch a.PitchMethod {
	case "yin", "spectral":
	default:
		return fmt.Errorf("unknown pitch method %q (expected yin or spectral)", a.PitchMethod)
	}

	if a.MinFrequency <= 0 || a.MaxFrequency <= a.MinFrequency {
		return fmt.Errorf("pitch frequency range must satisfy 0 < min < max")
	}

	if a.PeakThreshold <= 0 || a.PeakThreshold >= 1 {
		return fmt.Errorf("peak threshold must be between 0 and 1")
	}

	if a.OnsetWait < 0 || a.MajorOnsetWaitFrames < 0 {
		return fmt.Errorf("onset wait cannot be negative")
	}

	if a.Workers < 0 {
		return fmt.Errorf("workers cannot be negative")
	}

	if a.Timeout <= 0 {
		return fmt.Errorf("analysis timeout must be positive")
	}

	if config.Voice.ModelID == "" {
		return fmt.Errorf("voice model id is required")
	}

	if config.Output.Precision < 0 {
		return fmt.Errorf("output precision cannot be negative")
	}

	if config.Metrics.Enabled && config.Metrics.LogPath == "" {
		return fmt.Errorf("metrics log path is required when metrics are enabled")
	}

	return nil
}
