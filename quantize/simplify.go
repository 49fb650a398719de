package quantize

import (
	"sort"

	"github.com/jsphweid/midiscribe/model"
	"github.com/jsphweid/midiscribe/util"
)

// Simplify rounds each duration to the nearest plain or dotted note value,
// without running into the next attack of the same pitch.
func Simplify(notes []model.QuantizedNote, division int64) {
	type key struct{ channel, pitch uint8 }
	next := make([]int64, len(notes))
	seen := make(map[key]int64)
	order := make([]int, len(notes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return notes[order[a]].Onset < notes[order[b]].Onset
	})
	// walk backwards in onset order to find each note's next same-pitch attack
	for k := len(order) - 1; k >= 0; k-- {
		i := order[k]
		kk := key{notes[i].Channel, notes[i].Pitch}
		if o, ok := seen[kk]; ok {
			next[i] = o
		} else {
			next[i] = -1
		}
		seen[kk] = notes[i].Onset
	}

	for i := range notes {
		n := &notes[i]
		limit := int64(-1)
		if next[i] > n.Onset {
			limit = next[i] - n.Onset
		}
		n.Duration = nearestValue(n.Duration, n.Grid, division, limit)
	}
}

// Values lists the plain and dotted note values that are multiples of grid,
// up to a double whole note.
func Values(grid, division int64) []int64 {
	var res []int64
	for v := grid; v <= division*8; v *= 2 {
		res = append(res, v)
		if dotted := v + v/2; v/2 >= grid && v%2 == 0 && dotted <= division*8 {
			res = append(res, dotted)
		}
	}
	return res
}

func nearestValue(d, grid, division, limit int64) int64 {
	best := grid
	bestDist := util.Abs(d - grid)
	for _, v := range Values(grid, division) {
		if limit > 0 && v > limit {
			continue
		}
		if dist := util.Abs(d - v); dist < bestDist {
			best, bestDist = v, dist
		}
	}
	return best
}
