// Package voice splits a staff's notes into non-overlapping notation voices.
package voice

import (
	"github.com/jsphweid/midiscribe/chord"
	"github.com/jsphweid/midiscribe/model"
	"github.com/jsphweid/midiscribe/util"
	"github.com/pkg/errors"
)

var ErrOverlap = errors.New("notes overlap within a voice")

type Result struct {
	// Voices[i] holds the notes of voice i in onset order
	Voices  [][]model.QuantizedNote
	Dropped []model.QuantizedNote
}

type state struct {
	lastEnd   int64
	lastPitch uint8
}

// Separate assigns each note to the voice whose last note has ended and whose
// last pitch is closest, opening voices up to maxVoices. Notes that fit
// nowhere are dropped. notes must be ordered by onset.
func Separate(notes []model.QuantizedNote, maxVoices int) Result {
	var res Result
	var voices []state
	for _, c := range chord.Group(notes) {
		for _, i := range c.Notes {
			n := notes[i]
			v := pick(voices, n)
			if v < 0 {
				if len(voices) >= maxVoices {
					res.Dropped = append(res.Dropped, n)
					continue
				}
				v = len(voices)
				voices = append(voices, state{})
				res.Voices = append(res.Voices, nil)
			}
			n.Voice = v
			voices[v] = state{lastEnd: n.End(), lastPitch: n.Pitch}
			res.Voices[v] = append(res.Voices[v], n)
		}
	}
	return res
}

func pick(voices []state, n model.QuantizedNote) int {
	best := -1
	var bestDist int
	for i, s := range voices {
		if s.lastEnd > n.Onset {
			continue
		}
		dist := util.Abs(int(s.lastPitch) - int(n.Pitch))
		if best < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

// Verify checks that no two notes of a voice overlap.
func Verify(voices [][]model.QuantizedNote) error {
	for v, notes := range voices {
		for i := 1; i < len(notes); i++ {
			prev, n := notes[i-1], notes[i]
			if n.Onset < prev.Onset || model.Overlaps(prev, n) {
				return errors.Wrapf(ErrOverlap, "voice %d: note %d [%d,%d) and note %d [%d,%d)",
					v, i-1, prev.Onset, prev.End(), i, n.Onset, n.End())
			}
		}
	}
	return nil
}
