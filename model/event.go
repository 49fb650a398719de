package model

// NoteMessage is a single note-on or note-off as read from a file, at an
// absolute tick position within its track.
type NoteMessage struct {
	Tick     int64 `json:"tick"`
	Channel  uint8 `json:"channel"`
	Pitch    uint8 `json:"pitch"`
	Velocity uint8 `json:"velocity"`
	On       bool  `json:"on"`
}

// RawEvent is a paired note. Produced by the normalizer and never modified after.
type RawEvent struct {
	Track    int   `json:"track"`
	Channel  uint8 `json:"channel"`
	Pitch    uint8 `json:"pitch"`
	Onset    int64 `json:"onset"`
	Duration int64 `json:"duration"`
	Velocity uint8 `json:"velocity"`
}

func (e RawEvent) End() int64 {
	return e.Onset + e.Duration
}

type TimeSignature struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

func (ts TimeSignature) IsZero() bool {
	return ts.Numerator == 0 || ts.Denominator == 0
}

// Track carries either unpaired Messages (from a file reader) or already
// paired Events. When both are present they are merged.
type Track struct {
	ID            int            `json:"id"`
	Name          string         `json:"name,omitempty"`
	Messages      []NoteMessage  `json:"messages,omitempty"`
	Events        []RawEvent     `json:"events,omitempty"`
	TimeSignature *TimeSignature `json:"time_signature,omitempty"`
}

type Score struct {
	// ticks per quarter note
	Division int64   `json:"division"`
	Tracks   []Track `json:"tracks"`
}
