// Package quantize snaps performed notes onto the rhythmic grid that best
// explains them.
package quantize

import (
	"sort"

	"github.com/jsphweid/midiscribe/human"
	"github.com/jsphweid/midiscribe/model"
	"github.com/jsphweid/midiscribe/operations"
	"github.com/jsphweid/midiscribe/util"
)

type Result struct {
	Notes []model.QuantizedNote
	Grid  int64
	// long:short ratio of the applied swing, 0 for a straight grid
	SwingRatio int
	// total onset error per straight candidate grid
	Errors     map[int64]int64
	Simplified bool
	Fallback   bool
	Human      bool
	Stats      human.Stats
}

func (r Result) SwingName() string {
	switch r.SwingRatio {
	case 2:
		return string(operations.SwingSwing)
	case 3:
		return string(operations.SwingShuffle)
	}
	return string(operations.SwingNone)
}

// Candidates lists the grids from quarter down to the finest allowed one,
// skipping any that do not divide the division exactly.
func Candidates(division int64, maxQuantization int) []int64 {
	var res []int64
	for den := int64(4); den <= int64(maxQuantization); den *= 2 {
		if (division*4)%den != 0 {
			continue
		}
		res = append(res, division*4/den)
	}
	return res
}

// GridError is the total distance of all onsets from their nearest grid point.
func GridError(events []model.RawEvent, grid int64) int64 {
	var total int64
	for _, e := range events {
		total += util.Abs(e.Onset - util.RoundTo(e.Onset, grid))
	}
	return total
}

// Quantize chooses a grid and snaps every event to it. events must not be
// modified afterwards, the notes keep pointers into it.
func Quantize(events []model.RawEvent, division int64, ops operations.Set) Result {
	res := Result{Errors: make(map[int64]int64)}
	res.Stats = human.Measure(events, human.ReferenceGrid(division))
	res.Human = human.IsHuman(res.Stats, ops)

	candidates := Candidates(division, ops.MaxQuantization)
	if len(candidates) == 0 {
		candidates = []int64{division}
	}
	for _, g := range candidates {
		res.Errors[g] = GridError(events, g)
	}

	res.Grid, res.SwingRatio = choose(events, division, candidates, res.Errors, res.Human, ops)

	finest := candidates[len(candidates)-1]
	if len(events) > 0 {
		mean := float64(res.Errors[finest]) / float64(len(events))
		res.Fallback = mean/float64(division) > ops.SanityThreshold
	}

	res.Notes = make([]model.QuantizedNote, len(events))
	for i := range events {
		res.Notes[i] = snap(&events[i], res.Grid, division, res.SwingRatio)
	}
	if res.Fallback || ops.SimplifyDurations {
		Simplify(res.Notes, division)
		res.Simplified = true
	}
	sort.SliceStable(res.Notes, func(i, j int) bool {
		if res.Notes[i].Onset != res.Notes[j].Onset {
			return res.Notes[i].Onset < res.Notes[j].Onset
		}
		return res.Notes[i].Pitch < res.Notes[j].Pitch
	})
	return res
}

// choose walks from the coarsest grid to finer ones and stops as soon as a
// finer grid stops paying for itself.
func choose(events []model.RawEvent, division int64, candidates []int64, errs map[int64]int64, isHuman bool, ops operations.Set) (int64, int) {
	threshold := human.Threshold(isHuman, ops)
	eligible := human.SwingEligible(isHuman, ops)

	chosen := candidates[0]
	chosenErr := errs[chosen]
	for _, g := range candidates[1:] {
		if chosenErr == 0 {
			break
		}
		e := errs[g]
		ratio := 0
		if eligible && g == division/2 {
			ratio, e = swingHypothesis(events, division, e, ops)
		}
		improvement := float64(chosenErr-e) / float64(chosenErr)
		if improvement < threshold {
			break
		}
		chosen, chosenErr = g, e
		if ratio > 0 {
			// swing is an eighth-level phenomenon
			return chosen, ratio
		}
	}
	return chosen, 0
}

// swingHypothesis returns the swing ratio to use at the eighth level and its
// error, or 0 and the straight error if straight eighths explain the input.
func swingHypothesis(events []model.RawEvent, division int64, straight int64, ops operations.Set) (int, int64) {
	if r := ops.Swing.Ratio(); r > 0 {
		return r, SwingError(events, division, r)
	}
	best, bestErr := 0, straight
	limit := float64(straight) * (1 - ops.SwingMargin)
	for _, r := range []int{2, 3} {
		e := SwingError(events, division, r)
		if float64(e) <= limit && e < bestErr {
			best, bestErr = r, e
		}
	}
	return best, bestErr
}

// SwingError is the total onset error against an eighth grid whose off-beats
// are delayed to ratio/(ratio+1) of the beat.
func SwingError(events []model.RawEvent, division int64, ratio int) int64 {
	var total int64
	for _, e := range events {
		_, _, err := snapSwing(e.Onset, division, ratio)
		total += err
	}
	return total
}

func snapSwing(t, division int64, ratio int) (notated int64, shifted bool, err int64) {
	off := ((t % division) + division) % division
	beat := t - off
	split := division * int64(ratio) / int64(ratio+1)

	notated, err = beat, off
	if d := util.Abs(off - split); d < err {
		notated, shifted, err = beat+division/2, true, d
	}
	if d := division - off; d < err {
		notated, shifted, err = beat+division, false, d
	}
	return notated, shifted, err
}

func snap(e *model.RawEvent, grid, division int64, swing int) model.QuantizedNote {
	n := model.QuantizedNote{
		Pitch:    e.Pitch,
		Velocity: e.Velocity,
		Channel:  e.Channel,
		Grid:     grid,
		Tuplet:   -1,
		Raw:      e,
	}
	var end int64
	if swing > 0 {
		n.Onset, n.SwingShifted, _ = snapSwing(e.Onset, division, swing)
		end, _, _ = snapSwing(e.End(), division, swing)
	} else {
		n.Onset = util.RoundTo(e.Onset, grid)
		end = util.RoundTo(e.End(), grid)
	}
	n.Duration = util.Max(grid, end-n.Onset)
	return n
}
