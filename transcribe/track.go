package transcribe

import (
	"github.com/jsphweid/midiscribe/meter"
	"github.com/jsphweid/midiscribe/model"
	"github.com/jsphweid/midiscribe/normalize"
	"github.com/jsphweid/midiscribe/operations"
	"github.com/jsphweid/midiscribe/quantize"
	"github.com/jsphweid/midiscribe/staff"
	"github.com/jsphweid/midiscribe/tuplet"
	"github.com/jsphweid/midiscribe/voice"
	"github.com/sirupsen/logrus"
)

type pipeline struct {
	log      *logrus.Entry
	division int64
	bars     meter.Bars
	ops      operations.Set
}

func (p pipeline) track(t model.Track, events []model.RawEvent, diag model.Diagnostics) model.TrackResult {
	res := model.TrackResult{
		ID:          t.ID,
		Name:        t.Name,
		Staff:       staff.Assign(normalize.Stats(events), p.ops.SplitStaff),
		Voices:      []model.Voice{},
		Diagnostics: diag,
	}
	if len(events) == 0 {
		p.log.Debug("empty track")
		return res
	}

	q := quantize.Quantize(events, p.division, p.ops)
	res.Quantization = model.Quantization{
		Grid:       q.Grid,
		Swing:      q.SwingName(),
		Human:      q.Human,
		Errors:     q.Errors,
		Simplified: q.Simplified,
	}
	res.Diagnostics.SimplifyFallback = q.Fallback
	p.log.WithFields(logrus.Fields{
		"stage": "quantize",
		"grid":  q.Grid,
		"swing": q.SwingName(),
		"human": q.Human,
	}).Debug("grid chosen")
	if q.Fallback {
		p.log.WithField("stage", "quantize").Warn("quantization error too high, simplifying durations")
	}

	for s, notes := range staff.Partition(q.Notes, res.Staff) {
		res.Voices = append(res.Voices, p.voices(s, notes, &res.Diagnostics)...)
	}

	if p.ops.ClefChanges {
		for s, clef := range res.Staff.Clefs {
			var records [][]model.Record
			for _, v := range res.Voices {
				if v.Staff == s {
					records = append(records, v.Records)
				}
			}
			res.ClefChanges = append(res.ClefChanges, staff.ClefChanges(s, clef, records)...)
		}
	}
	return res
}

func (p pipeline) voices(s int, notes []model.QuantizedNote, diag *model.Diagnostics) []model.Voice {
	sep := voice.Separate(notes, p.ops.MaxVoices)
	mustHold(voice.Verify(sep.Voices))
	if len(sep.Dropped) > 0 {
		diag.DroppedVoiceLimit += len(sep.Dropped)
		p.log.WithFields(logrus.Fields{"stage": "voice", "staff": s}).
			Warnf("%d notes dropped due to voice limit", len(sep.Dropped))
	}

	ratios := p.ops.TupletSearch()
	var res []model.Voice
	for i, notes := range sep.Voices {
		tup := tuplet.Detect(notes, p.division, p.bars, ratios)
		mustHold(tuplet.Verify(tup.Notes, tup.Spans))
		mustHold(voice.Verify([][]model.QuantizedNote{tup.Notes}))
		diag.Tuplets += len(tup.Spans)

		rec := meter.Reconcile(tup.Notes, p.bars)
		mustHold(meter.Verify(tup.Notes, rec.Records, p.bars))
		diag.BarlineSplits += rec.Splits
		if rec.Clamped > 0 {
			diag.ClampedToPickup += rec.Clamped
			p.log.WithFields(logrus.Fields{"stage": "meter", "staff": s, "voice": i}).
				Warnf("%d notes moved forward to the start of the pickup", rec.Clamped)
		}

		res = append(res, model.Voice{
			Staff:   s,
			Index:   i,
			Notes:   tup.Notes,
			Tuplets: tup.Spans,
			Records: rec.Records,
		})
	}
	return res
}
