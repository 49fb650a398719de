package model

import "fmt"

// Diagnostics accumulate per track and are reported to the caller.
type Diagnostics struct {
	ZeroDuration      int  `json:"zero_duration"`
	OverlapsTruncated int  `json:"overlaps_truncated"`
	UnmatchedNoteOffs int  `json:"unmatched_note_offs"`
	Unterminated      int  `json:"unterminated"`
	DroppedVoiceLimit int  `json:"dropped_voice_limit"`
	SimplifyFallback  bool `json:"simplify_fallback"`
	Tuplets           int  `json:"tuplets"`
	BarlineSplits     int  `json:"barline_splits"`
	ClampedToPickup   int  `json:"clamped_to_pickup"`
}

func (d *Diagnostics) Add(o Diagnostics) {
	d.ZeroDuration += o.ZeroDuration
	d.OverlapsTruncated += o.OverlapsTruncated
	d.UnmatchedNoteOffs += o.UnmatchedNoteOffs
	d.Unterminated += o.Unterminated
	d.DroppedVoiceLimit += o.DroppedVoiceLimit
	d.SimplifyFallback = d.SimplifyFallback || o.SimplifyFallback
	d.Tuplets += o.Tuplets
	d.BarlineSplits += o.BarlineSplits
	d.ClampedToPickup += o.ClampedToPickup
}

// Messages renders the non-zero counters for display.
func (d Diagnostics) Messages() []string {
	var res []string
	if d.ZeroDuration > 0 {
		res = append(res, fmt.Sprintf("%d zero-length notes dropped", d.ZeroDuration))
	}
	if d.OverlapsTruncated > 0 {
		res = append(res, fmt.Sprintf("%d overlapping notes truncated", d.OverlapsTruncated))
	}
	if d.UnmatchedNoteOffs > 0 {
		res = append(res, fmt.Sprintf("%d note-offs without a note-on ignored", d.UnmatchedNoteOffs))
	}
	if d.Unterminated > 0 {
		res = append(res, fmt.Sprintf("%d notes closed at end of track", d.Unterminated))
	}
	if d.DroppedVoiceLimit > 0 {
		res = append(res, fmt.Sprintf("%d notes dropped due to voice limit", d.DroppedVoiceLimit))
	}
	if d.ClampedToPickup > 0 {
		res = append(res, fmt.Sprintf("%d notes before the pickup shortened to start at it", d.ClampedToPickup))
	}
	if d.SimplifyFallback {
		res = append(res, "quantization error too high, durations simplified")
	}
	return res
}
