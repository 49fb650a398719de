// Package human classifies a track as a human performance or mechanically
// quantized input from its onset error statistics.
package human

import (
	"github.com/jsphweid/midiscribe/model"
	"github.com/jsphweid/midiscribe/operations"
	"github.com/jsphweid/midiscribe/util"
)

// Stats is the pre-quantization error snapshot against the reference grid.
type Stats struct {
	Notes   int
	OffGrid int
	Grid    int64
	// deviations as a fraction of the grid unit
	MeanDeviation float64
}

func (s Stats) OffGridRatio() float64 {
	if s.Notes == 0 {
		return 0
	}
	return float64(s.OffGrid) / float64(s.Notes)
}

// ReferenceGrid is the finest exact grid down to a 128th note. It does not
// depend on the allowed quantization, so the classification of a track stays
// the same whatever grid resolution is allowed.
func ReferenceGrid(division int64) int64 {
	grid := division
	for den := int64(8); den <= 128 && (division*4)%den == 0; den *= 2 {
		grid = division * 4 / den
	}
	return grid
}

// Measure computes onset deviations from the nearest grid point.
func Measure(events []model.RawEvent, grid int64) Stats {
	s := Stats{Notes: len(events), Grid: grid}
	if len(events) == 0 || grid <= 0 {
		return s
	}
	// a tick or two of jitter is still mechanical
	tolerance := util.Max(1, grid/20)
	var sum float64
	for _, e := range events {
		dev := util.Abs(e.Onset - util.RoundTo(e.Onset, grid))
		if dev > tolerance {
			s.OffGrid++
		}
		sum += float64(dev) / float64(grid)
	}
	s.MeanDeviation = sum / float64(len(events))
	return s
}

// IsHuman is a pure function of the statistics and the operations set.
func IsHuman(s Stats, ops operations.Set) bool {
	switch ops.HumanPerformance {
	case operations.Yes:
		return true
	case operations.No:
		return false
	}
	if s.Notes == 0 {
		return false
	}
	return s.OffGridRatio() > ops.HumanOffGridRatio && s.MeanDeviation > ops.HumanDeviation
}

// Threshold biases the quantizer's diminishing-returns threshold. A human
// performance needs a larger improvement before a finer grid is accepted.
func Threshold(isHuman bool, ops operations.Set) float64 {
	if isHuman {
		return util.Min(0.95, ops.DiminishingReturns*ops.HumanReturnsBias)
	}
	return ops.DiminishingReturns
}

// SwingEligible reports whether swing detection may run for this track.
func SwingEligible(isHuman bool, ops operations.Set) bool {
	switch ops.Swing {
	case operations.SwingSwing, operations.SwingShuffle:
		return true
	case operations.SwingDetect:
		return isHuman
	}
	return false
}
