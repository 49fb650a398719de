package staff

import (
	"github.com/jsphweid/midiscribe/model"
	"github.com/jsphweid/midiscribe/normalize"
	"github.com/jsphweid/midiscribe/util"
)

const (
	MiddleC uint8 = 60

	// split points are searched in this range, C3 to C5
	SplitLow  uint8 = 48
	SplitHigh uint8 = 72

	// a clef only changes once a measure's mean pitch has clearly moved
	// to the other side of middle C
	toBass   = 55
	toTreble = 65
)

func ClefFor(mean float64) model.Clef {
	if mean >= float64(MiddleC) {
		return model.ClefTreble
	}
	return model.ClefBass
}

// SplitPoint picks the least populated pitch between SplitLow and SplitHigh,
// preferring the one nearest middle C. Notes at or above it go to the upper staff.
func SplitPoint(stats normalize.PitchStats) uint8 {
	best := MiddleC
	for p := SplitLow; p <= SplitHigh; p++ {
		n, b := stats.Histogram[p], stats.Histogram[best]
		if n < b || n == b && distance(p) < distance(best) {
			best = p
		}
	}
	return best
}

func distance(p uint8) int {
	return util.Abs(int(p) - int(MiddleC))
}

// Assign decides the staves of a track. A split only happens when pitches
// fall on both sides of the split point.
func Assign(stats normalize.PitchStats, split bool) model.StaffAssignment {
	if stats.Count == 0 {
		return model.StaffAssignment{Clefs: []model.Clef{model.ClefTreble}}
	}
	if split {
		p := SplitPoint(stats)
		if stats.Min < p && stats.Max >= p {
			return model.StaffAssignment{
				Split:      true,
				SplitPitch: p,
				Clefs:      []model.Clef{model.ClefTreble, model.ClefBass},
			}
		}
	}
	return model.StaffAssignment{Clefs: []model.Clef{ClefFor(stats.Mean)}}
}

// Partition returns the notes of each staff, keeping their order.
func Partition(notes []model.QuantizedNote, a model.StaffAssignment) [][]model.QuantizedNote {
	if !a.Split {
		return [][]model.QuantizedNote{notes}
	}
	res := make([][]model.QuantizedNote, 2)
	for _, n := range notes {
		if n.Pitch >= a.SplitPitch {
			res[0] = append(res[0], n)
		} else {
			res[1] = append(res[1], n)
		}
	}
	return res
}

// ClefChanges walks the measures of one staff and reports where the clef
// should switch, starting from initial. Tied continuations are ignored.
func ClefChanges(staff int, initial model.Clef, voices [][]model.Record) []model.ClefChange {
	sums := make(map[int]int)
	counts := make(map[int]int)
	for _, records := range voices {
		for _, r := range records {
			if r.TiedFromPrev {
				continue
			}
			sums[r.Measure] += int(r.Pitch)
			counts[r.Measure]++
		}
	}
	measures := util.GetKeys(counts)

	var res []model.ClefChange
	current := initial
	for _, m := range measures {
		mean := float64(sums[m]) / float64(counts[m])
		next := current
		if current == model.ClefTreble && mean < toBass {
			next = model.ClefBass
		} else if current == model.ClefBass && mean > toTreble {
			next = model.ClefTreble
		}
		if next != current {
			res = append(res, model.ClefChange{Measure: m, Staff: staff, Clef: next})
			current = next
		}
	}
	return res
}
