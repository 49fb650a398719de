package normalize

import "github.com/jsphweid/midiscribe/model"

// PitchStats summarises the pitches of a track for staff assignment.
type PitchStats struct {
	Count     int
	Min       uint8
	Max       uint8
	Mean      float64
	Histogram [128]int
}

func Stats(events []model.RawEvent) PitchStats {
	var s PitchStats
	if len(events) == 0 {
		return s
	}
	s.Min = 127
	var total int
	for _, e := range events {
		p := e.Pitch & 0x7f
		s.Histogram[p]++
		total += int(p)
		if p < s.Min {
			s.Min = p
		}
		if p > s.Max {
			s.Max = p
		}
	}
	s.Count = len(events)
	s.Mean = float64(total) / float64(s.Count)
	return s
}
