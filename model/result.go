package model

type Clef string

const (
	ClefTreble Clef = "treble"
	ClefBass   Clef = "bass"
)

// Record is one note of the score skeleton, positioned within its measure.
type Record struct {
	// index of the source note within its voice
	Note         int   `json:"note"`
	Measure      int   `json:"measure"`
	Number       int   `json:"number"`
	Onset        int64 `json:"onset"`
	Duration     int64 `json:"duration"`
	Pitch        uint8 `json:"pitch"`
	Velocity     uint8 `json:"velocity"`
	Tuplet       int   `json:"tuplet"`
	TiedToNext   bool  `json:"tied_to_next,omitempty"`
	TiedFromPrev bool  `json:"tied_from_prev,omitempty"`
}

type StaffAssignment struct {
	Split      bool   `json:"split"`
	SplitPitch uint8  `json:"split_pitch,omitempty"`
	Clefs      []Clef `json:"clefs"`
}

type ClefChange struct {
	Measure int  `json:"measure"`
	Staff   int  `json:"staff"`
	Clef    Clef `json:"clef"`
}

type Quantization struct {
	Grid       int64           `json:"grid"`
	Swing      string          `json:"swing"`
	Human      bool            `json:"human"`
	Errors     map[int64]int64 `json:"errors"`
	Simplified bool            `json:"simplified"`
}

type TrackResult struct {
	ID           int             `json:"id"`
	Name         string          `json:"name,omitempty"`
	Staff        StaffAssignment `json:"staff"`
	ClefChanges  []ClefChange    `json:"clef_changes,omitempty"`
	Quantization Quantization    `json:"quantization"`
	Voices       []Voice         `json:"voices"`
	Diagnostics  Diagnostics     `json:"diagnostics"`
}

type Metadata struct {
	Title   string `json:"title,omitempty"`
	Artist  string `json:"artist,omitempty"`
	Release string `json:"release,omitempty"`
	Year    uint   `json:"year,omitempty"`
}

type Result struct {
	RunID    string        `json:"run_id"`
	Division int64         `json:"division"`
	Meter    MeterDecision `json:"meter"`
	Tracks   []TrackResult `json:"tracks"`
	Metadata *Metadata     `json:"metadata,omitempty"`
	// rendering hints, passed through unchanged
	Hints map[string]bool `json:"hints,omitempty"`
}
