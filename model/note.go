package model

// QuantizedNote is a note snapped to the rhythmic grid. Onset and Duration
// are in ticks; outside tuplets both are multiples of Grid.
type QuantizedNote struct {
	Pitch        uint8     `json:"pitch"`
	Velocity     uint8     `json:"velocity"`
	Channel      uint8     `json:"channel"`
	Onset        int64     `json:"onset"`
	Duration     int64     `json:"duration"`
	Grid         int64     `json:"grid"`
	SwingShifted bool      `json:"swing_shifted,omitempty"`
	Voice        int       `json:"voice"`
	Tuplet       int       `json:"tuplet"`
	Raw          *RawEvent `json:"-"`
}

func (n QuantizedNote) End() int64 {
	return n.Onset + n.Duration
}

// RawOnset is the performed onset, falling back to the quantized one for
// notes that were not produced from a performance.
func (n QuantizedNote) RawOnset() int64 {
	if n.Raw == nil {
		return n.Onset
	}
	return n.Raw.Onset
}

func Overlaps(a, b QuantizedNote) bool {
	return a.Onset < b.End() && b.Onset < a.End()
}

type Ratio struct {
	Actual  int `json:"actual"`
	Nominal int `json:"nominal"`
}

// TupletSpan covers Count consecutive notes of one voice starting at Start.
// Span is the nominal duration in ticks the group replaces.
type TupletSpan struct {
	Start  int   `json:"start"`
	Count  int   `json:"count"`
	Ratio  Ratio `json:"ratio"`
	Parent int   `json:"parent"`
	Onset  int64 `json:"onset"`
	Span   int64 `json:"span"`
}

func (s TupletSpan) End() int {
	return s.Start + s.Count
}

// Voice is the ordered content of one notation voice on one staff.
type Voice struct {
	Staff   int             `json:"staff"`
	Index   int             `json:"voice"`
	Notes   []QuantizedNote `json:"-"`
	Tuplets []TupletSpan    `json:"tuplets,omitempty"`
	Records []Record        `json:"records"`
}
