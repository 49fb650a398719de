package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jsphweid/midiscribe/chord"
	"github.com/jsphweid/midiscribe/midi"
	"github.com/jsphweid/midiscribe/model"
	"github.com/jsphweid/midiscribe/transcribe"
	"github.com/jsphweid/midiscribe/util"
	"github.com/spf13/cobra"
)

// number of most common chords listed per track
const topChords = 5

var reportOps *opsFlags

func init() {
	rootCmd.AddCommand(reportCmd)
	reportOps = addOpsFlags(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Summarizes a transcription",
	Long:  `Transcribes a MIDI file and prints what was decided per track: grid, swing, voices, tuplets and anything dropped.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ops, err := reportOps.ops()
		if err != nil {
			return err
		}
		score, err := midi.ReadMidiFile(args[0])
		if err != nil {
			return err
		}
		res, err := transcribe.Run(context.Background(), score, ops)
		if err != nil {
			return err
		}
		report(os.Stdout, res)
		return nil
	},
}

func report(w io.Writer, res *model.Result) {
	fmt.Fprintf(w, "meter: %s\n", res.Meter)
	for _, tr := range res.Tracks {
		fmt.Fprintf(w, "track %d %q\n", tr.ID, tr.Name)
		if len(tr.Voices) == 0 {
			fmt.Fprintf(w, "  no notes\n")
			continue
		}
		q := tr.Quantization
		fmt.Fprintf(w, "  grid: %d ticks, swing: %s, human: %t, simplified: %t\n", q.Grid, q.Swing, q.Human, q.Simplified)
		fmt.Fprintf(w, "  staves: %d %v", len(tr.Staff.Clefs), tr.Staff.Clefs)
		if tr.Staff.Split {
			fmt.Fprintf(w, ", split at %d", tr.Staff.SplitPitch)
		}
		fmt.Fprintln(w)
		for _, c := range tr.ClefChanges {
			fmt.Fprintf(w, "  clef change: measure %d staff %d to %s\n", c.Measure, c.Staff, c.Clef)
		}
		for _, v := range tr.Voices {
			fmt.Fprintf(w, "  staff %d voice %d: %d notes, %d records, %d tuplets\n", v.Staff, v.Index, len(v.Notes), len(v.Records), len(v.Tuplets))
		}
		census := chord.Census(trackNotes(tr))
		keys := util.GetKeys(census)
		if len(keys) > 0 {
			fmt.Fprintf(w, "  chords: %d, %d distinct\n", util.Sum(util.GetValues(census)), len(keys))
		}
		sort.SliceStable(keys, func(i, j int) bool {
			if census[keys[i]] != census[keys[j]] {
				return census[keys[i]] > census[keys[j]]
			}
			return keys[i] < keys[j]
		})
		for i, k := range keys {
			if i == topChords {
				break
			}
			fmt.Fprintf(w, "  chord %s: %d times\n", k, census[k])
		}
		for _, m := range tr.Diagnostics.Messages() {
			fmt.Fprintf(w, "  ! %s\n", m)
		}
	}
}

// trackNotes merges the voices of a track back into onset order.
func trackNotes(tr model.TrackResult) []model.QuantizedNote {
	var notes []model.QuantizedNote
	for _, v := range tr.Voices {
		notes = append(notes, v.Notes...)
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Onset < notes[j].Onset
	})
	return notes
}
