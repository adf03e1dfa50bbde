package configs

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfigFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 2048, config.Analysis.FrameLength)
	assert.Equal(t, 512, config.Analysis.HopLength)
	assert.Equal(t, "yin", config.Analysis.PitchMethod)
	assert.Equal(t, 1, config.Analysis.MajorOnsetWaitFrames)
	assert.Equal(t, 5*time.Minute, config.Analysis.Timeout)
	assert.Equal(t, "eleven_multilingual_v2", config.Voice.ModelID)
	assert.Equal(t, "json", config.OutputFormat)
	assert.False(t, config.Metrics.Enabled)

	require.NoError(t, ValidateConfig(config))
}

func TestLoadConfigFromYAML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
analysis:
  pitch_method: spectral
  workers: 8
  timeout: 30s
voice:
  voices:
    Rahul: voice-r
    Anjali: voice-a
metrics:
  enabled: true
`)))

	config, err := LoadConfigFrom(v)
	require.NoError(t, err)

	assert.Equal(t, "spectral", config.Analysis.PitchMethod)
	assert.Equal(t, 8, config.Analysis.Workers)
	assert.Equal(t, 30*time.Second, config.Analysis.Timeout)
	assert.Equal(t, 2048, config.Analysis.FrameLength)
	assert.Len(t, config.Voice.Voices, 2)
	assert.True(t, config.Metrics.Enabled)
	assert.NotEmpty(t, config.Metrics.LogPath)

	require.NoError(t, ValidateConfig(config))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"zero frame", func(c *Config) { c.Analysis.FrameLength = 0 }, "frame length"},
		{"hop larger than frame", func(c *Config) { c.Analysis.HopLength = 4096 }, "hop length"},
		{"no mel bands", func(c *Config) { c.Analysis.MelBands = 0 }, "mel bands"},
		{"unknown pitch method", func(c *Config) { c.Analysis.PitchMethod = "crepe" }, "pitch method"},
		{"inverted range", func(c *Config) { c.Analysis.MaxFrequency = 50 }, "frequency range"},
		{"bad peak threshold", func(c *Config) { c.Analysis.PeakThreshold = 1.5 }, "peak threshold"},
		{"negative wait", func(c *Config) { c.Analysis.OnsetWait = -1 }, "onset wait"},
		{"negative workers", func(c *Config) { c.Analysis.Workers = -2 }, "workers"},
		{"zero timeout", func(c *Config) { c.Analysis.Timeout = 0 }, "timeout"},
		{"missing model", func(c *Config) { c.Voice.ModelID = "" }, "model id"},
		{"negative precision", func(c *Config) { c.Output.Precision = -1 }, "precision"},
		{"metrics without path", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.LogPath = ""
		}, "log path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GetDefaultConfig()
			tt.mutate(config)

			err := ValidateConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
