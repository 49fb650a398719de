package midi

import (
	"math"
	"sort"

	"github.com/jsphweid/midiscribe/model"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type noteEvent struct {
	tick int64
	on   bool
	note model.QuantizedNote
}

// Export writes a transcription back out as a Standard MIDI File, one track
// per transcribed track, every note at its notated position.
func Export(res *model.Result) (*smf.SMF, error) {
	if res.Division <= 0 || res.Division > math.MaxUint16 {
		return nil, errors.Errorf("division %d does not fit a MIDI file", res.Division)
	}
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(uint16(res.Division))

	for i, tr := range res.Tracks {
		var track smf.Track
		if i == 0 {
			track.Add(0, meterMessage(res.Meter.Signature()))
		}
		if tr.Name != "" {
			track.Add(0, smf.MetaTrackSequenceName(tr.Name))
		}

		var events []noteEvent
		for _, v := range tr.Voices {
			for _, n := range v.Notes {
				events = append(events, noteEvent{tick: n.Onset, on: true, note: n}, noteEvent{tick: n.End(), note: n})
			}
		}
		// note-offs first so repeated pitches are re-attacked
		sort.SliceStable(events, func(a, b int) bool {
			if events[a].tick != events[b].tick {
				return events[a].tick < events[b].tick
			}
			return !events[a].on && events[b].on
		})

		var last int64
		for _, e := range events {
			delta := uint32(e.tick - last)
			last = e.tick
			n := e.note
			if e.on {
				vel := n.Velocity
				if vel == 0 {
					vel = 1
				}
				track.Add(delta, midi.NoteOn(n.Channel, n.Pitch, vel))
			} else {
				track.Add(delta, midi.NoteOff(n.Channel, n.Pitch))
			}
		}
		track.Close(0)
		if err := s.Add(track); err != nil {
			return nil, errors.Wrapf(err, "adding track %d", tr.ID)
		}
	}
	return s, nil
}

func meterMessage(ts model.TimeSignature) smf.Message {
	return smf.MetaMeter(uint8(ts.Numerator), uint8(ts.Denominator))
}
