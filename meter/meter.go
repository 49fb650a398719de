// Package meter decides the time signature and pickup of an import and cuts
// voices into measures.
package meter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jsphweid/midiscribe/model"
	"github.com/jsphweid/midiscribe/operations"
	"github.com/jsphweid/midiscribe/util"
	"github.com/pkg/errors"
)

var ErrConflict = errors.New("tracks declare conflicting meters")

var CommonTime = model.TimeSignature{Numerator: 4, Denominator: 4}

// ConflictError lists the meter each track declared. It requires a single
// shared meter to be chosen upstream, see operations.Set.Meter and MergeMeters.
type ConflictError struct {
	Meters map[int]model.TimeSignature
}

func (e *ConflictError) Error() string {
	var parts []string
	for _, id := range util.GetKeys(e.Meters) {
		ts := e.Meters[id]
		parts = append(parts, fmt.Sprintf("track %d: %d/%d", id, ts.Numerator, ts.Denominator))
	}
	return ErrConflict.Error() + " (" + strings.Join(parts, ", ") + ")"
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// Resolve picks the one time signature shared by all tracks.
func Resolve(tracks []model.Track, ops operations.Set) (model.TimeSignature, error) {
	if ops.Meter != "" {
		num, den, err := operations.ParseMeter(ops.Meter)
		if err != nil {
			return model.TimeSignature{}, err
		}
		return model.TimeSignature{Numerator: num, Denominator: den}, nil
	}

	declared := make(map[int]model.TimeSignature)
	counts := make(map[model.TimeSignature]int)
	var order []model.TimeSignature
	for _, t := range tracks {
		if t.TimeSignature == nil || t.TimeSignature.IsZero() {
			continue
		}
		ts := *t.TimeSignature
		declared[t.ID] = ts
		if counts[ts] == 0 {
			order = append(order, ts)
		}
		counts[ts]++
	}

	switch {
	case len(order) == 0:
		return CommonTime, nil
	case len(order) == 1:
		return order[0], nil
	case !ops.MergeMeters:
		return model.TimeSignature{}, &ConflictError{Meters: declared}
	}
	// most common wins, earliest declared on ties
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	return order[0], nil
}

// DetectPickup compares the content of the first measure with a full
// measure. firstOnset is the earliest note of the whole import.
func DetectPickup(ts model.TimeSignature, firstOnset, division, grid int64, enabled bool) model.MeterDecision {
	d := model.MeterDecision{Numerator: ts.Numerator, Denominator: ts.Denominator}
	if !enabled || firstOnset < 0 {
		return d
	}
	measure := d.MeasureLength(division)
	first := util.RoundTo(firstOnset, grid)
	if first <= 0 || first >= measure {
		return d
	}
	content := measure - first
	halfBeat := util.Max(1, d.BeatLength(division)/2)
	if content%halfBeat != 0 {
		return d
	}
	d.Pickup = true
	d.PickupLength = content
	return d
}

// Decide resolves the shared meter and pickup once for a whole import.
func Decide(tracks []model.Track, events [][]model.RawEvent, division int64, ops operations.Set) (model.MeterDecision, error) {
	ts, err := Resolve(tracks, ops)
	if err != nil {
		return model.MeterDecision{}, err
	}
	first := int64(-1)
	for _, track := range events {
		if len(track) > 0 && (first < 0 || track[0].Onset < first) {
			first = track[0].Onset
		}
	}
	return DetectPickup(ts, first, division, ops.Grid(division), ops.PickupMeasure), nil
}
