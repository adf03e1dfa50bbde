package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/prosody-profiler/internal/app"
)

var (
	analyzeOutputFile  string
	analyzeContentType string
	analyzeCapture     time.Duration
	analyzeTimeout     time.Duration
	analyzeWorkers     int
	analyzePitchMethod string
	analyzeVoice       string
	analyzeQuiet       bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <audio-file|stream-url>",
	Short: "Analyze a recording and recommend voice settings",
	Long: `Analyze a speech recording and write a report with voice characteristics,
timing, quality, pitch patterns, emotions and recommended voice settings.

WAV files are read directly. Other formats (mp3, aac, ...) are decoded with the
normalizing decoder; use --content-type to hint the source. HLS and ICEcast
URLs are recorded for --capture and the clip is analyzed as a file would be.

Examples:
  # Analyze a WAV file and print JSON to stdout
  prosody-profiler analyze speech.wav

  # Write a YAML report using the spectral pitch tracker
  prosody-profiler analyze --pitch-method spectral -f yaml --output-file report.yaml speech.wav

  # Tag the settings with a configured voice
  prosody-profiler analyze --voice narrator speech.mp3

  # Analyze 45 seconds of a live stream
  prosody-profiler analyze --capture 45s https://stream.example.com/live.m3u8`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeOutputFile, "output-file", "",
		"write the report to a file instead of stdout")
	analyzeCmd.Flags().StringVar(&analyzeContentType, "content-type", "",
		"decoder hint for non-WAV input")
	analyzeCmd.Flags().DurationVar(&analyzeCapture, "capture", 30*time.Second,
		"clip length to record when the input is an HLS or ICEcast URL")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 0,
		"analysis timeout (default from config)")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0,
		"concurrent segment workers (default from config)")
	analyzeCmd.Flags().StringVar(&analyzePitchMethod, "pitch-method", "",
		"primary pitch tracker: yin or spectral (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeVoice, "voice", "",
		"voice table entry to attach to the recommended settings")
	analyzeCmd.Flags().BoolVarP(&analyzeQuiet, "quiet", "q", false,
		"suppress the summary log line")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	appCtx := &app.Context{
		ConfigFile:   viper.ConfigFileUsed(),
		InputFile:    args[0],
		ContentType:  analyzeContentType,
		Capture:      analyzeCapture,
		OutputFile:   analyzeOutputFile,
		OutputFormat: viper.GetString("output_format"),
		Timeout:      analyzeTimeout,
		Workers:      analyzeWorkers,
		PitchMethod:  analyzePitchMethod,
		Voice:        analyzeVoice,
		Verbose:      viper.GetBool("verbose"),
		Quiet:        analyzeQuiet,
	}

	analyzer, err := app.NewAnalyzerApp(appCtx)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return analyzer.Run(ctx)
}
