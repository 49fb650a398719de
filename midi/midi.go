package midi

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/jsphweid/midiscribe/model"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

var ErrUnsupportedTimeFormat = errors.New("only metric time formats are supported")

func ReadMidiFile(filepath string) (*model.Score, error) {
	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "error reading midi file")
	}
	return ReadScore(bytes.NewReader(dat))
}

func ReadScore(r io.Reader) (s *model.Score, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s, e = nil, errors.Errorf("error parsing midi file... %v", r)
		}
	}()

	res, err := smf.ReadFrom(r)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing midi file")
	}
	return FromSMF(res)
}

// FromSMF flattens every track to absolute-tick note messages. Tracks without
// any notes are kept so track ids match the file.
func FromSMF(s *smf.SMF) (*model.Score, error) {
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedTimeFormat, "got %v", s.TimeFormat)
	}

	score := &model.Score{Division: int64(ticks)}
	for i, events := range s.Tracks {
		track := model.Track{ID: i}
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			var channel, key, velocity uint8
			var num, denom, cpt, dsqpq uint8
			var name string
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				track.Messages = append(track.Messages, model.NoteMessage{
					Tick:     absTicks,
					Channel:  channel,
					Pitch:    key,
					Velocity: velocity,
					On:       velocity > 0,
				})
			case event.Message.GetNoteOff(&channel, &key, &velocity):
				track.Messages = append(track.Messages, model.NoteMessage{
					Tick:    absTicks,
					Channel: channel,
					Pitch:   key,
				})
			case event.Message.GetMetaTimeSig(&num, &denom, &cpt, &dsqpq):
				// NOTE: later signature changes are not modelled, first one wins
				if track.TimeSignature == nil {
					track.TimeSignature = &model.TimeSignature{Numerator: int(num), Denominator: int(denom)}
				}
			case event.Message.GetMetaTrackName(&name):
				track.Name = name
			}
		}
		score.Tracks = append(score.Tracks, track)
	}
	return score, nil
}

// Describe is a one-line summary used by the inspect command.
func Describe(t model.Track) string {
	sig := "-"
	if t.TimeSignature != nil {
		sig = fmt.Sprintf("%d/%d", t.TimeSignature.Numerator, t.TimeSignature.Denominator)
	}
	return fmt.Sprintf("track %d %q: %d messages, time signature %s", t.ID, t.Name, len(t.Messages), sig)
}
