package cmd

import (
	"fmt"

	"github.com/jsphweid/midiscribe/midi"
	"github.com/jsphweid/midiscribe/normalize"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Prints the normalized notes of a MIDI file",
	Long:  `Prints every track of a MIDI file as paired notes, with anything the normalizer had to fix.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(args[0])
	},
}

func inspect(path string) error {
	score, err := midi.ReadMidiFile(path)
	if err != nil {
		return err
	}
	fmt.Printf("division: %d ticks per quarter\n", score.Division)
	for _, t := range score.Tracks {
		fmt.Println(midi.Describe(t))
		events, diag := normalize.Track(t)
		for _, e := range events {
			fmt.Printf("  ch %2d pitch %3d onset %8d duration %6d velocity %3d\n", e.Channel, e.Pitch, e.Onset, e.Duration, e.Velocity)
		}
		if stats := normalize.Stats(events); stats.Count > 0 {
			fmt.Printf("  %d notes, pitches %d..%d, mean %.1f\n", stats.Count, stats.Min, stats.Max, stats.Mean)
		}
		for _, m := range diag.Messages() {
			fmt.Printf("  ! %s\n", m)
		}
	}
	return nil
}
