package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/prosody-profiler/configs"
	"github.com/RyanBlaney/prosody-profiler/internal/analysis"
)

// LoadReport reads a previously written analysis report (JSON or YAML)
func LoadReport(filePath string) (*analysis.Report, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("report file does not exist: %s", filePath)
	}

	ext := filepath.Ext(filePath)
	switch ext {
	case ".yaml", ".yml":
		return loadReportFromYAML(filePath)
	case ".json":
		return loadReportFromJSON(filePath)
	default:
		// Try YAML first, then JSON
		if report, err := loadReportFromYAML(filePath); err == nil {
			return report, nil
		}
		return loadReportFromJSON(filePath)
	}
}

func readAll(filePath string) ([]byte, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open report file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}
	return data, nil
}

// loadReportFromYAML loads a report from a YAML file
func loadReportFromYAML(filePath string) (*analysis.Report, error) {
	data, err := readAll(filePath)
	if err != nil {
		return nil, err
	}

	var report analysis.Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse YAML report: %w", err)
	}

	return &report, nil
}

// loadReportFromJSON loads a report from a JSON file
func loadReportFromJSON(filePath string) (*analysis.Report, error) {
	data, err := readAll(filePath)
	if err != nil {
		return nil, err
	}

	var report analysis.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse JSON report: %w", err)
	}

	return &report, nil
}

// GenerateExampleConfig writes the default configuration as YAML
func GenerateExampleConfig(outputFile string) error {
	exampleConfig := configs.GetDefaultConfig()
	exampleConfig.Voice.Voices = map[string]string{
		"narrator": "21m00Tcm4TlvDq8ikWAM",
	}

	data, err := yaml.Marshal(exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	dir := filepath.Dir(outputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("✅ Example configuration written to: %s\n", outputFile)
	return nil
}

// ValidateConfigFile loads a configuration file on its own and validates it
func ValidateConfigFile(configFile string) (*configs.Config, error) {
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file does not exist: %s", configFile)
	}

	v := viper.New()
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config, err := configs.LoadConfigFrom(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
