package tuplet

import (
	"github.com/jsphweid/midiscribe/model"
	"github.com/pkg/errors"
)

var (
	ErrSpanDuration = errors.New("tuplet notes do not fill their nominal duration")
	ErrNesting      = errors.New("tuplet nesting is malformed")
)

// Verify checks conservation and containment of every span.
func Verify(notes []model.QuantizedNote, spans []model.TupletSpan) error {
	for i, s := range spans {
		if s.Count <= 0 || s.Start < 0 || s.End() > len(notes) {
			return errors.Wrapf(ErrNesting, "span %d covers [%d,%d) of %d notes", i, s.Start, s.End(), len(notes))
		}
		if notes[s.Start].Onset != s.Onset {
			return errors.Wrapf(ErrSpanDuration, "span %d starts at %d, first note at %d", i, s.Onset, notes[s.Start].Onset)
		}
		var total int64
		at := s.Onset
		for k := s.Start; k < s.End(); k++ {
			if notes[k].Onset != at {
				return errors.Wrapf(ErrSpanDuration, "span %d: note %d at %d, expected %d", i, k, notes[k].Onset, at)
			}
			total += notes[k].Duration
			at = notes[k].End()
		}
		if total != s.Span {
			return errors.Wrapf(ErrSpanDuration, "span %d: %d != %d", i, total, s.Span)
		}

		if s.Parent < 0 {
			continue
		}
		if s.Parent >= i {
			return errors.Wrapf(ErrNesting, "span %d has parent %d declared after it", i, s.Parent)
		}
		parent := spans[s.Parent]
		if parent.Parent >= 0 {
			return errors.Wrapf(ErrNesting, "span %d nests deeper than %d levels", i, MaxDepth)
		}
		if s.Start < parent.Start || s.End() > parent.End() {
			return errors.Wrapf(ErrNesting, "span %d is not contained in span %d", i, s.Parent)
		}
	}
	return nil
}
