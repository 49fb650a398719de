package cmd

import (
	"github.com/jsphweid/midiscribe/operations"
	"github.com/spf13/cobra"
)

// opsFlags binds the import operations to command line flags.
type opsFlags struct {
	set     operations.Set
	tuplets string
	swing   string
	human   string
}

func addOpsFlags(cmd *cobra.Command) *opsFlags {
	f := &opsFlags{set: operations.Default()}
	flags := cmd.Flags()
	flags.IntVar(&f.set.MaxQuantization, "max-quant", f.set.MaxQuantization, "finest grid as a note value (4 = quarter .. 128)")
	flags.IntVar(&f.set.MaxVoices, "voices", f.set.MaxVoices, "maximum voices per staff (1-4)")
	flags.StringVar(&f.tuplets, "tuplets", "2,3,4,5,7,9", "tuplets to search for, empty for none")
	flags.StringVar(&f.swing, "swing", string(f.set.Swing), "swing mode: none, swing, shuffle or detect")
	flags.StringVar(&f.human, "human", string(f.set.HumanPerformance), "treat input as a human performance: auto, yes or no")
	flags.BoolVar(&f.set.SplitStaff, "split-staff", f.set.SplitStaff, "split wide tracks onto two staves")
	flags.BoolVar(&f.set.ClefChanges, "clef-changes", f.set.ClefChanges, "allow clef changes within a track")
	flags.BoolVar(&f.set.SimplifyDurations, "simplify", f.set.SimplifyDurations, "round durations to plain or dotted values")
	flags.BoolVar(&f.set.PickupMeasure, "pickup", f.set.PickupMeasure, "recognize a pickup measure")
	flags.BoolVar(&f.set.MergeMeters, "merge-meters", f.set.MergeMeters, "use the most common meter when tracks disagree")
	flags.StringVar(&f.set.Meter, "meter", "", "force a meter such as 3/4")
	flags.BoolVar(&f.set.ShowStaccato, "staccato", f.set.ShowStaccato, "rendering hint: show staccato")
	flags.BoolVar(&f.set.DottedNotes, "dotted", f.set.DottedNotes, "rendering hint: dotted notes")
	flags.BoolVar(&f.set.ShowTempoText, "tempo-text", f.set.ShowTempoText, "rendering hint: show tempo text")
	flags.BoolVar(&f.set.ShowChordSymbols, "chord-symbols", f.set.ShowChordSymbols, "rendering hint: show chord symbols")
	return f
}

func (f *opsFlags) ops() (operations.Set, error) {
	s := f.set.Clone()
	tuplets, err := operations.ParseTuplets(f.tuplets)
	if err != nil {
		return s, err
	}
	s.Tuplets = tuplets
	s.Swing = operations.SwingMode(f.swing)
	s.HumanPerformance = operations.Override(f.human)
	return s, s.Validate()
}
