package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/prosody-profiler/configs"
	"github.com/RyanBlaney/prosody-profiler/pkg/voice"
)

// voicesCmd lists the configured voice table
var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List configured voices",
	Long: `List the speaker names and voice identifiers from the voice.voices
configuration section. Names are matched case-insensitively by "analyze --voice".`,
	Args: cobra.NoArgs,
	RunE: runVoices,
}

func init() {
	rootCmd.AddCommand(voicesCmd)
}

func runVoices(cmd *cobra.Command, args []string) error {
	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	table := voice.NewVoiceTable(config.Voice.Voices)

	printHeader("VOICES")
	printKeyValue("Model", config.Voice.ModelID)

	names := table.Names()
	if len(names) == 0 {
		printInfo("No voices configured")
		return nil
	}

	printSection(fmt.Sprintf("TABLE (%d)", len(names)))
	for _, name := range names {
		id, _ := table.Lookup(name)
		printKeyValue(label(name), id)
	}

	return nil
}
