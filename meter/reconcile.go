package meter

import (
	"github.com/jsphweid/midiscribe/model"
	"github.com/pkg/errors"
)

var ErrDurationMismatch = errors.New("barline split changed a note's duration")

type Result struct {
	Records []model.Record
	// notes crossing a barline
	Splits int
	// notes rounded ahead of the pickup and shortened to start at it
	Clamped int
}

// placement is where a note lands once it is kept inside the first measure.
func placement(n model.QuantizedNote, origin int64) (start, duration int64, clamped bool) {
	if n.Onset >= origin {
		return n.Onset, n.Duration, false
	}
	duration = n.Duration - (origin - n.Onset)
	if duration <= 0 {
		duration = n.Grid
	}
	return origin, duration, true
}

// Reconcile cuts a voice into measure records. Notes crossing a barline are
// split into tied parts.
func Reconcile(notes []model.QuantizedNote, bars Bars) Result {
	var res Result
	for i, n := range notes {
		start, remaining, clamped := placement(n, bars.Origin)
		if clamped {
			res.Clamped++
		}
		tied := false
		for remaining > 0 {
			idx := bars.Index(start)
			part := remaining
			if end := bars.End(idx); start+part > end {
				part = end - start
			}
			r := model.Record{
				Note:         i,
				Measure:      idx,
				Number:       bars.Number(idx),
				Onset:        start - bars.Start(idx),
				Duration:     part,
				Pitch:        n.Pitch,
				Velocity:     n.Velocity,
				Tuplet:       n.Tuplet,
				TiedFromPrev: tied,
			}
			remaining -= part
			start += part
			if remaining > 0 {
				r.TiedToNext = true
				res.Splits++
			}
			tied = true
			res.Records = append(res.Records, r)
		}
	}
	return res
}

// Verify checks that the tied parts of every note add up to its duration,
// as shortened for notes clamped to the pickup.
func Verify(notes []model.QuantizedNote, records []model.Record, bars Bars) error {
	sums := make([]int64, len(notes))
	for _, r := range records {
		if r.Note < 0 || r.Note >= len(notes) {
			return errors.Errorf("record refers to missing note %d", r.Note)
		}
		sums[r.Note] += r.Duration
	}
	for i, n := range notes {
		_, want, _ := placement(n, bars.Origin)
		if sums[i] != want {
			return errors.Wrapf(ErrDurationMismatch, "note %d: %d != %d", i, sums[i], want)
		}
	}
	return nil
}
