package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/prosody-profiler/configs"
	"github.com/RyanBlaney/prosody-profiler/internal/app"
)

var segmentsIndex int

// segmentsCmd prints per-segment voice settings from a saved report
var segmentsCmd = &cobra.Command{
	Use:   "segments [flags] <report-file>",
	Short: "Show per-segment voice settings from a report",
	Long: `Load a report written by "analyze" (JSON or YAML) and print the voice
settings for each segment next to the recording-wide recommendation.

Examples:
  # List every segment
  prosody-profiler segments report.json

  # Show one segment
  prosody-profiler segments --index 3 report.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runSegments,
}

func init() {
	rootCmd.AddCommand(segmentsCmd)

	segmentsCmd.Flags().IntVar(&segmentsIndex, "index", -1,
		"only show the segment with this index (negative shows all)")
}

func runSegments(cmd *cobra.Command, args []string) error {
	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	report, err := app.LoadReport(args[0])
	if err != nil {
		return err
	}

	prec := config.Output.Precision
	base := report.RecommendedVoiceSettings

	printHeader("SEGMENT VOICE SETTINGS")
	printKeyValue("Model", base.ModelID)
	if base.VoiceID != "" {
		printKeyValue("Voice", base.VoiceID)
	}
	printKeyValue("Output Format", base.OutputFormat)
	printKeyValue("Base Stability", fmt.Sprintf("%.*f", prec, base.Stability))
	printKeyValue("Base Similarity Boost", fmt.Sprintf("%.*f", prec, base.SimilarityBoost))
	printKeyValue("Base Style", fmt.Sprintf("%.*f", prec, base.Style))
	printKeyValue("Common Trajectory", label(string(report.PitchAnalysis.DialoguePatterns.CommonTrajectory)))

	if len(report.Degradations) > 0 {
		printSection("DEGRADED STAGES")
		for _, d := range report.Degradations {
			printWarning("%s (%s): %s", d.Stage, d.Code, d.Message)
		}
	}

	if segmentsIndex >= 0 {
		s, ok := report.Setting(segmentsIndex)
		if !ok {
			return fmt.Errorf("segment %d not found in report", segmentsIndex)
		}

		printSection(fmt.Sprintf("SEGMENT %d", s.Index))
		printKeyValue("Trajectory", label(string(s.Trajectory)))
		printKeyValue("Emotion", label(string(s.Emotion)))
		printKeyValue("Stability", fmt.Sprintf("%.*f", prec, s.Stability))
		printKeyValue("Similarity Boost", fmt.Sprintf("%.*f", prec, s.SimilarityBoost))
		printKeyValue("Style", fmt.Sprintf("%.*f", prec, s.Style))
		printKeyValue("Speaker Boost", fmt.Sprintf("%t", s.UseSpeakerBoost))
		return nil
	}

	printSection(fmt.Sprintf("SEGMENTS (%d)", len(report.SegmentSettings)))
	if len(report.SegmentSettings) == 0 {
		printInfo("No segments with a pitch pattern")
		return nil
	}

	fmt.Printf("%-6s %-10s %-11s %10s %10s %10s\n", "Index", "Trajectory", "Emotion", "Stability", "Similarity", "Style")
	for _, s := range report.SegmentSettings {
		fmt.Printf("%-6d %-10s %-11s %10.*f %10.*f %10.*f\n",
			s.Index,
			label(string(s.Trajectory)),
			label(string(s.Emotion)),
			prec, s.Stability,
			prec, s.SimilarityBoost,
			prec, s.Style,
		)
	}

	return nil
}
