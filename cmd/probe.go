package cmd

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/prosody-profiler/internal/app"
	"github.com/RyanBlaney/prosody-profiler/pkg/audio/analyzers"
)

var probeContentType string

// probeCmd decodes a file and prints its properties without analyzing it
var probeCmd = &cobra.Command{
	Use:   "probe [flags] <audio-file>",
	Short: "Decode an audio file and show its properties",
	Long: `Decode an audio file the same way "analyze" does and print the mono
buffer properties with basic level statistics. Useful to check that a file
decodes before running a full analysis.`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().StringVar(&probeContentType, "content-type", "",
		"decoder hint for non-WAV input")
}

func runProbe(cmd *cobra.Command, args []string) error {
	start := time.Now()

	buf, err := app.LoadAudio(args[0], probeContentType)
	if err != nil {
		return err
	}

	printHeader("AUDIO PROBE")
	printKeyValue("File", args[0])
	printKeyValue("Decode Time", time.Since(start).Round(time.Millisecond).String())

	printSection("DECODED AUDIO PROPERTIES")
	printKeyValue("Samples", fmt.Sprintf("%d", buf.Len()))
	printKeyValue("Sample Rate", fmt.Sprintf("%d Hz", buf.SampleRate))
	printKeyValue("Duration", fmt.Sprintf("%.3f seconds", buf.Duration()))

	if buf.Len() == 0 {
		printWarning("No samples decoded")
		return nil
	}

	peak := math.Max(analyzers.Max(buf.Samples), -analyzers.Min(buf.Samples))
	rms := analyzers.FrameRMS(buf.Samples, analyzers.DefaultFrameLength, analyzers.DefaultHopLength)

	printSection("AUDIO STATISTICS")
	printKeyValue("Average Amplitude", fmt.Sprintf("%.6f", analyzers.Mean(buf.Samples)))
	printKeyValue("Peak Amplitude", fmt.Sprintf("%.6f", peak))
	printKeyValue("Mean Frame RMS", fmt.Sprintf("%.6f", analyzers.Mean(rms)))

	if peak > 0.99 {
		printWarning("Potential clipping detected (peak > 0.99)")
	}
	if peak < 0.001 {
		printWarning("Very low signal level detected")
	}

	return nil
}
