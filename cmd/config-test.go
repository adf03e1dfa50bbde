package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/prosody-profiler/configs"
	"github.com/RyanBlaney/prosody-profiler/internal/app"
)

var configInitFile string

// configTestCmd represents the config test command
var configTestCmd = &cobra.Command{
	Use:   "config-test",
	Short: "Test and display all configuration values",
	Long: `Test configuration loading and display all values to verify proper parsing.

Examples:
  # Test with default config file
  prosody-profiler config-test

  # Test with specific config file
  prosody-profiler --config /path/to/config.yaml config-test`,
	RunE: runConfigTest,
}

// configInitCmd writes an example configuration
var configInitCmd = &cobra.Command{
	Use:   "config-init",
	Short: "Write an example configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.GenerateExampleConfig(configInitFile)
	},
}

func init() {
	rootCmd.AddCommand(configTestCmd)
	rootCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().StringVar(&configInitFile, "file", "./configs/prosody-profiler.yaml",
		"where to write the example configuration")
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	fmt.Println("PROSODY PROFILER CONFIGURATION TEST")
	fmt.Println(strings.Repeat("=", 80))

	var (
		config *configs.Config
		err    error
	)
	if used := viper.ConfigFileUsed(); used != "" {
		config, err = app.ValidateConfigFile(used)
	} else {
		config, err = configs.LoadConfig()
		if err == nil {
			err = configs.ValidateConfig(config)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	printSection("APPLICATION SETTINGS")
	printKeyValue("Config File", viper.ConfigFileUsed())
	printKeyValue("Verbose", fmt.Sprintf("%t", config.Verbose))
	printKeyValue("Log Level", config.LogLevel)
	printKeyValue("Output Format", config.OutputFormat)
	printKeyValue("Config Directory", config.ConfigDir)
	printKeyValue("Data Directory", config.DataDir)

	a := config.Analysis
	printSection("ANALYSIS CONFIGURATION")
	printKeyValue("Frame Length", fmt.Sprintf("%d", a.FrameLength))
	printKeyValue("Hop Length", fmt.Sprintf("%d", a.HopLength))
	printKeyValue("Mel Bands", fmt.Sprintf("%d", a.MelBands))
	printKeyValue("Pitch Method", a.PitchMethod)
	printKeyValue("Frequency Range", fmt.Sprintf("%.2f - %.2f Hz", a.MinFrequency, a.MaxFrequency))
	printKeyValue("YIN Threshold", fmt.Sprintf("%.3f", a.YINThreshold))
	printKeyValue("Peak Threshold", fmt.Sprintf("%.3f", a.PeakThreshold))
	printKeyValue("Onset Delta / Wait", fmt.Sprintf("%.3f / %.3fs", a.OnsetDelta, a.OnsetWait))
	printKeyValue("Major Onset Delta / Wait", fmt.Sprintf("%.3f / %d frames", a.MajorOnsetDelta, a.MajorOnsetWaitFrames))
	printKeyValue("Workers", fmt.Sprintf("%d", a.Workers))
	printKeyValue("Timeout", a.Timeout.String())

	printSection("VOICE CONFIGURATION")
	printKeyValue("Model ID", config.Voice.ModelID)
	printKeyValue("Voices", fmt.Sprintf("%d", len(config.Voice.Voices)))

	printSection("OUTPUT CONFIGURATION")
	printKeyValue("Precision", fmt.Sprintf("%d", config.Output.Precision))
	printKeyValue("Include Degradations", fmt.Sprintf("%t", config.Output.IncludeDegradations))

	printSection("METRICS CONFIGURATION")
	printKeyValue("Enabled", fmt.Sprintf("%t", config.Metrics.Enabled))
	printKeyValue("Log Path", config.Metrics.LogPath)
	printKeyValue("Prefix", config.Metrics.Prefix)

	fmt.Println()
	printSuccess("Configuration is valid")
	return nil
}
