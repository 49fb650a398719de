package chord

import (
	"fmt"
	"sort"

	"github.com/jsphweid/midiscribe/model"
)

// Chord is a set of notes sharing one quantized onset. Notes holds indexes
// into the slice passed to Group.
type Chord struct {
	Onset int64
	Notes []int
}

func CreateChordKey(notes []uint8) string {
	sorted := make([]uint8, len(notes))
	copy(sorted, notes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	var res string
	for i, note := range sorted {
		res += fmt.Sprintf("%v", note)
		if i < len(sorted)-1 {
			res += "-"
		}
	}
	return res
}

// Group splits time-ordered notes into chords. Within a chord, longer notes
// come first, then higher ones.
func Group(notes []model.QuantizedNote) []Chord {
	var chords []Chord
	for i, n := range notes {
		if len(chords) == 0 || chords[len(chords)-1].Onset != n.Onset {
			chords = append(chords, Chord{Onset: n.Onset})
		}
		c := &chords[len(chords)-1]
		c.Notes = append(c.Notes, i)
	}
	for _, c := range chords {
		idx := c.Notes
		sort.SliceStable(idx, func(a, b int) bool {
			na, nb := notes[idx[a]], notes[idx[b]]
			if na.Duration != nb.Duration {
				return na.Duration > nb.Duration
			}
			return na.Pitch > nb.Pitch
		})
	}
	return chords
}

func (c Chord) Key(notes []model.QuantizedNote) string {
	pitches := make([]uint8, 0, len(c.Notes))
	for _, i := range c.Notes {
		pitches = append(pitches, notes[i].Pitch)
	}
	return CreateChordKey(pitches)
}

// Census counts how often each chord of two or more notes occurs.
func Census(notes []model.QuantizedNote) map[string]int {
	res := make(map[string]int)
	for _, c := range Group(notes) {
		if len(c.Notes) < 2 {
			continue
		}
		res[c.Key(notes)]++
	}
	return res
}
