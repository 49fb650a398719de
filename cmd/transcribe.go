package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/jsphweid/midiscribe/constants"
	"github.com/jsphweid/midiscribe/db"
	"github.com/jsphweid/midiscribe/midi"
	"github.com/jsphweid/midiscribe/model"
	"github.com/jsphweid/midiscribe/operations"
	"github.com/jsphweid/midiscribe/transcribe"
	"github.com/jsphweid/midiscribe/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	transcribeOps   *opsFlags
	outputPath      string
	maxFiles        int
	withMetadata    bool
	metadataAddress string
	midiOutDir      string
)

func init() {
	rootCmd.AddCommand(transcribeCmd)
	transcribeOps = addOpsFlags(transcribeCmd)
	transcribeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write JSON here instead of stdout")
	transcribeCmd.Flags().IntVar(&maxFiles, "max-files", 0, "limit the number of files read from a directory")
	transcribeCmd.Flags().BoolVar(&withMetadata, "metadata", false, "attach title and artist from the metadata table")
	transcribeCmd.Flags().StringVar(&midiOutDir, "midi-out", "", "also write each quantized result as a MIDI file into this directory")
	transcribeCmd.Flags().StringVar(&metadataAddress, "metadata-endpoint", constants.GetMetadataEndpoint(), "DynamoDB endpoint for metadata lookups")
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <file|dir>",
	Short: "Transcribes MIDI files",
	Long:  `Transcribes a MIDI file, or every MIDI file below a directory, and prints the score skeleton as JSON.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ops, err := transcribeOps.ops()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		results, err := TranscribeFiles(ctx, args[0], maxFiles, ops)
		if err != nil {
			return err
		}
		if withMetadata {
			if err := attachMetadata(ctx, results); err != nil {
				logrus.WithError(err).Warn("metadata lookup failed")
			}
		}

		if midiOutDir != "" {
			if err := writeMidiFiles(midiOutDir, results); err != nil {
				return err
			}
		}

		var out any = results
		if len(results) == 1 {
			for _, r := range results {
				out = r
			}
		}
		if outputPath != "" {
			return util.WriteJSON(outputPath, out)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

// TranscribeFiles transcribes every MIDI file at path, keyed by file name.
// A file that fails to read or transcribe fails the whole call.
func TranscribeFiles(ctx context.Context, path string, maxNum int, ops operations.Set) (map[string]*model.Result, error) {
	paths, err := util.GatherAllMidiPaths(path, maxNum)
	if err != nil {
		return nil, err
	}
	res := make(map[string]*model.Result)
	for _, p := range paths {
		score, err := midi.ReadMidiFile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", p)
		}
		r, err := transcribe.Run(ctx, score, ops)
		if err != nil {
			return nil, errors.Wrapf(err, "transcribing %s", p)
		}
		logrus.WithFields(logrus.Fields{"run": r.RunID, "file": p, "meter": r.Meter.String()}).Info("transcribed")
		res[filepath.Base(p)] = r
	}
	return res, nil
}

func attachMetadata(ctx context.Context, results map[string]*model.Result) error {
	meta, err := db.GetMidiMetadatas(ctx, metadataAddress, constants.GetMetadataTable(), util.GetKeys(results))
	if err != nil {
		return err
	}
	for name, m := range meta {
		if r, ok := results[name]; ok {
			m := m
			r.Metadata = &m
		}
	}
	return nil
}

func writeMidiFiles(dir string, results map[string]*model.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "could not create midi output dir")
	}
	for name, r := range results {
		s, err := midi.Export(r)
		if err != nil {
			return errors.Wrapf(err, "exporting %s", name)
		}
		base := strings.TrimSuffix(name, filepath.Ext(name))
		f, err := os.Create(filepath.Join(dir, base+".quantized.mid"))
		if err != nil {
			return errors.Wrapf(err, "creating output for %s", name)
		}
		_, err = s.WriteTo(f)
		f.Close()
		if err != nil {
			return errors.Wrapf(err, "writing %s", name)
		}
	}
	return nil
}
