package meter

import "github.com/jsphweid/midiscribe/model"

// Bars maps ticks to measures. Barlines fall on multiples of Length; with a
// pickup the first measure starts late, at Origin.
type Bars struct {
	Origin int64
	Length int64
	Pickup bool
}

func NewBars(d model.MeterDecision, division int64) Bars {
	return Bars{
		Origin: d.Origin(division),
		Length: d.MeasureLength(division),
		Pickup: d.Pickup,
	}
}

func (b Bars) Index(tick int64) int {
	if tick < b.Length {
		return 0
	}
	return int(tick / b.Length)
}

func (b Bars) Start(index int) int64 {
	if index == 0 {
		return b.Origin
	}
	return int64(index) * b.Length
}

func (b Bars) End(index int) int64 {
	return int64(index+1) * b.Length
}

// Number is the printed measure number; a pickup measure is number 0.
func (b Bars) Number(index int) int {
	if b.Pickup {
		return index
	}
	return index + 1
}

// Contains reports whether [start, end) lies inside a single measure.
func (b Bars) Contains(start, end int64) bool {
	return end <= b.End(b.Index(start))
}
