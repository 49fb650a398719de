package tuplet

import (
	"testing"

	"github.com/jsphweid/midiscribe/meter"
	"github.com/jsphweid/midiscribe/model"
	"github.com/jsphweid/midiscribe/operations"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const division = 480

var fourFour = meter.NewBars(model.MeterDecision{Numerator: 4, Denominator: 4}, division)

// performed builds voice notes from performed [onset, end) pairs and their
// quantized positions on a grid.
func performed(grid int64, spans ...[2]int64) []model.QuantizedNote {
	var res []model.QuantizedNote
	for i, s := range spans {
		raw := &model.RawEvent{Pitch: uint8(60 + i), Onset: s[0], Duration: s[1] - s[0]}
		onset := roundTo(s[0], grid)
		res = append(res, model.QuantizedNote{
			Pitch:    raw.Pitch,
			Onset:    onset,
			Duration: roundTo(s[1], grid) - onset,
			Grid:     grid,
			Tuplet:   -1,
			Raw:      raw,
		})
	}
	return res
}

func roundTo(v, step int64) int64 {
	return (v + step/2) / step * step
}

func TestTripletDetection(t *testing.T) {
	notes := performed(120, [2]int64{0, 160}, [2]int64{160, 320}, [2]int64{320, 480})
	require.Equal(t, []int64{0, 120, 360}, []int64{notes[0].Onset, notes[1].Onset, notes[2].Onset})

	res := Detect(notes, division, fourFour, operations.Default().TupletSearch())

	require.Len(t, res.Spans, 1)
	assert.Equal(t, model.TupletSpan{
		Start: 0, Count: 3,
		Ratio:  model.Ratio{Actual: 3, Nominal: 2},
		Parent: -1, Onset: 0, Span: 480,
	}, res.Spans[0])
	for i, n := range res.Notes {
		assert.Equal(t, int64(i)*160, n.Onset)
		assert.Equal(t, int64(160), n.Duration)
		assert.Equal(t, 0, n.Tuplet)
	}
	assert.NoError(t, Verify(res.Notes, res.Spans))
	// input is untouched
	assert.Equal(t, int64(120), notes[1].Onset)
}

func TestSimplerRatioWinsTies(t *testing.T) {
	// 9:8 32nds place these onsets just as well as 3:2 eighths
	notes := performed(120, [2]int64{0, 160}, [2]int64{160, 320}, [2]int64{320, 480})

	res := Detect(notes, division, fourFour, []int{9, 3})
	require.Len(t, res.Spans, 1)
	assert.Equal(t, 3, res.Spans[0].Ratio.Actual)
}

func TestStraightNotesStayPlain(t *testing.T) {
	notes := performed(120, [2]int64{0, 240}, [2]int64{240, 480}, [2]int64{480, 720}, [2]int64{720, 960})
	res := Detect(notes, division, fourFour, operations.AllTuplets)
	assert.Empty(t, res.Spans)
	assert.Equal(t, notes, res.Notes)
}

func TestNoTupletsWhenSearchSetIsEmpty(t *testing.T) {
	notes := performed(120, [2]int64{0, 160}, [2]int64{160, 320}, [2]int64{320, 480})
	res := Detect(notes, division, fourFour, nil)
	assert.Empty(t, res.Spans)
}

func TestNestedTriplet(t *testing.T) {
	// quarter-note triplet whose middle quarter holds an eighth-note triplet
	notes := performed(60,
		[2]int64{0, 320},
		[2]int64{320, 427}, [2]int64{427, 533}, [2]int64{533, 640},
		[2]int64{640, 960})

	res := Detect(notes, division, fourFour, []int{3})

	require.Len(t, res.Spans, 2)
	assert.Equal(t, model.TupletSpan{Start: 0, Count: 5, Ratio: model.Ratio{Actual: 3, Nominal: 2}, Parent: -1, Onset: 0, Span: 960}, res.Spans[0])
	assert.Equal(t, model.TupletSpan{Start: 1, Count: 3, Ratio: model.Ratio{Actual: 3, Nominal: 2}, Parent: 0, Onset: 320, Span: 320}, res.Spans[1])
	assert.Equal(t, []int{0, 1, 1, 1, 0}, tupletsOf(res.Notes))
	assert.NoError(t, Verify(res.Notes, res.Spans))
}

func TestTupletsStayInsideMeasures(t *testing.T) {
	bars := meter.NewBars(model.MeterDecision{Numerator: 3, Denominator: 8}, division)
	notes := performed(120, [2]int64{480, 640}, [2]int64{640, 800}, [2]int64{800, 960}, [2]int64{960, 1200})

	res := Detect(notes, division, bars, operations.AllTuplets)
	for _, s := range res.Spans {
		assert.True(t, bars.Contains(s.Onset, s.Onset+s.Span), "%+v", s)
	}
	assert.NoError(t, Verify(res.Notes, res.Spans))
}

func TestVerify(t *testing.T) {
	notes := []model.QuantizedNote{
		{Onset: 0, Duration: 160}, {Onset: 160, Duration: 160}, {Onset: 320, Duration: 150},
	}
	err := Verify(notes, []model.TupletSpan{{Start: 0, Count: 3, Parent: -1, Span: 480}})
	assert.True(t, errors.Is(err, ErrSpanDuration))

	notes[2].Duration = 160
	assert.NoError(t, Verify(notes, []model.TupletSpan{{Start: 0, Count: 3, Parent: -1, Span: 480}}))

	err = Verify(notes, []model.TupletSpan{
		{Start: 1, Count: 1, Parent: 1, Onset: 160, Span: 160},
		{Start: 0, Count: 3, Parent: -1, Span: 480},
	})
	assert.True(t, errors.Is(err, ErrNesting))

	err = Verify(notes, []model.TupletSpan{
		{Start: 0, Count: 2, Parent: -1, Span: 320},
		{Start: 1, Count: 2, Parent: 0, Onset: 160, Span: 320},
	})
	assert.True(t, errors.Is(err, ErrNesting))

	err = Verify(notes, []model.TupletSpan{
		{Start: 0, Count: 3, Parent: -1, Span: 480},
		{Start: 0, Count: 2, Parent: 0, Span: 320},
		{Start: 0, Count: 1, Parent: 1, Span: 160},
	})
	assert.True(t, errors.Is(err, ErrNesting))
}

func TestFragments(t *testing.T) {
	tests := []struct {
		d    int64
		want int
	}{
		{0, 0},
		{480, 1},
		{720, 1},
		{600, 2},
		{300, 2},
		{150, 2},
		{7, 1},
		{1920 + 480, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fragments(tt.d, division), "Fragments(%d)", tt.d)
	}
}

func tupletsOf(notes []model.QuantizedNote) []int {
	var res []int
	for _, n := range notes {
		res = append(res, n.Tuplet)
	}
	return res
}
