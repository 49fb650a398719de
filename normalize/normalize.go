// Package normalize pairs raw note messages into ordered RawEvents.
package normalize

import (
	"sort"

	"github.com/jsphweid/midiscribe/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrNoNotes = errors.New("no track contains any notes")

type key uint16

func keyOf(channel, pitch uint8) key {
	return key(channel)<<8 | key(pitch)
}

// Track pairs the track's messages and merges any pre-paired events. The
// result is ordered by onset, then pitch.
func Track(t model.Track) ([]model.RawEvent, model.Diagnostics) {
	var diag model.Diagnostics
	paired := pair(t.ID, t.Messages, &diag)
	for _, e := range t.Events {
		e.Track = t.ID
		paired = append(paired, e)
	}
	return Events(paired, &diag), diag
}

func pair(track int, messages []model.NoteMessage, diag *model.Diagnostics) []model.RawEvent {
	msgs := make([]model.NoteMessage, len(messages))
	copy(msgs, messages)
	// note-offs first so a re-attack on the same tick starts a new note
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Tick != msgs[j].Tick {
			return msgs[i].Tick < msgs[j].Tick
		}
		return !isOn(msgs[i]) && isOn(msgs[j])
	})

	var res []model.RawEvent
	var lastTick int64
	active := make(map[key]int)
	// note-offs for silent keys, held until the tick is over in case the
	// matching note-on sorted after them
	orphans := make(map[key]model.NoteMessage)
	flush := func() {
		for k, m := range orphans {
			diag.UnmatchedNoteOffs++
			logrus.WithFields(logrus.Fields{"track": track, "pitch": m.Pitch, "channel": m.Channel}).
				Debug("note off for unpressed note")
			delete(orphans, k)
		}
	}
	for _, m := range msgs {
		if m.Tick > lastTick {
			flush()
			lastTick = m.Tick
		}
		k := keyOf(m.Channel, m.Pitch)
		idx, sounding := active[k]
		if !isOn(m) {
			if !sounding {
				orphans[k] = m
				continue
			}
			delete(active, k)
			res[idx].Duration = m.Tick - res[idx].Onset
			continue
		}
		e := model.RawEvent{
			Track:    track,
			Channel:  m.Channel,
			Pitch:    m.Pitch,
			Onset:    m.Tick,
			Velocity: m.Velocity,
		}
		if _, ok := orphans[k]; ok && !sounding {
			// on and off on the same tick: zero length, dropped with the rest
			delete(orphans, k)
			res = append(res, e)
			continue
		}
		if sounding {
			// last start wins: the new attack ends the previous sustain
			res[idx].Duration = m.Tick - res[idx].Onset
			diag.OverlapsTruncated++
		}
		active[k] = len(res)
		res = append(res, e)
	}
	flush()
	for _, idx := range active {
		res[idx].Duration = lastTick - res[idx].Onset
		diag.Unterminated++
	}
	return res
}

func isOn(m model.NoteMessage) bool {
	return m.On && m.Velocity > 0
}

// Events orders already paired events, drops degenerate ones and resolves
// same pitch/channel overlaps by truncating the earlier note.
func Events(events []model.RawEvent, diag *model.Diagnostics) []model.RawEvent {
	res := make([]model.RawEvent, 0, len(events))
	for _, e := range events {
		if e.Duration <= 0 {
			diag.ZeroDuration++
			continue
		}
		res = append(res, e)
	}
	sortEvents(res)

	last := make(map[key]int)
	for i := range res {
		k := keyOf(res[i].Channel, res[i].Pitch)
		if j, ok := last[k]; ok && res[j].End() > res[i].Onset {
			res[j].Duration = res[i].Onset - res[j].Onset
			diag.OverlapsTruncated++
		}
		last[k] = i
	}

	// truncation can leave zero-length notes behind
	kept := res[:0]
	for _, e := range res {
		if e.Duration <= 0 {
			diag.ZeroDuration++
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

func sortEvents(events []model.RawEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Onset != events[j].Onset {
			return events[i].Onset < events[j].Onset
		}
		return events[i].Pitch < events[j].Pitch
	})
}

// All normalizes every track. It fails only when no track has any notes left.
func All(tracks []model.Track) ([][]model.RawEvent, []model.Diagnostics, error) {
	events := make([][]model.RawEvent, len(tracks))
	diags := make([]model.Diagnostics, len(tracks))
	var total int
	for i, t := range tracks {
		events[i], diags[i] = Track(t)
		total += len(events[i])
	}
	if total == 0 {
		return events, diags, ErrNoNotes
	}
	return events, diags, nil
}
