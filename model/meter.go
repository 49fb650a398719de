package model

import "fmt"

// MeterDecision is made once per import and frozen. PickupLength is in ticks.
type MeterDecision struct {
	Numerator    int   `json:"numerator"`
	Denominator  int   `json:"denominator"`
	Pickup       bool  `json:"pickup"`
	PickupLength int64 `json:"pickup_length"`
}

func (m MeterDecision) Signature() TimeSignature {
	return TimeSignature{Numerator: m.Numerator, Denominator: m.Denominator}
}

func (m MeterDecision) MeasureLength(division int64) int64 {
	return division * 4 * int64(m.Numerator) / int64(m.Denominator)
}

func (m MeterDecision) BeatLength(division int64) int64 {
	return division * 4 / int64(m.Denominator)
}

// Origin is the tick at which the first notated measure begins.
func (m MeterDecision) Origin(division int64) int64 {
	if !m.Pickup {
		return 0
	}
	return m.MeasureLength(division) - m.PickupLength
}

func (m MeterDecision) String() string {
	s := fmt.Sprintf("%d/%d", m.Numerator, m.Denominator)
	if m.Pickup {
		s += fmt.Sprintf(" pickup=%d", m.PickupLength)
	}
	return s
}
