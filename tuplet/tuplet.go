// Package tuplet finds runs of notes in a voice that a tuplet explains better
// than the plain grid, and rewrites their durations.
package tuplet

import (
	"math"
	"sort"

	"github.com/jsphweid/midiscribe/meter"
	"github.com/jsphweid/midiscribe/model"
	"github.com/jsphweid/midiscribe/operations"
	"github.com/jsphweid/midiscribe/util"
)

// MaxDepth bounds nesting: a tuplet may contain tuplets, those may not.
const MaxDepth = 2

type Result struct {
	Notes []model.QuantizedNote
	Spans []model.TupletSpan
}

// window is one hypothesis: N notes in the time of M plain values of length
// value, starting at Onset.
type window struct {
	Onset int64
	N, M  int
	Value int64
}

func (w window) Span() int64 {
	return w.Value * int64(w.M)
}

func (w window) tick(pos int) int64 {
	return w.Onset + int64(pos)*w.Span()/int64(w.N)
}

func (w window) unit() float64 {
	return float64(w.Span()) / float64(w.N)
}

// position rounds a performed onset to the nearest tuplet slot.
func (w window) position(raw int64) int {
	p := int(math.Round(float64(raw-w.Onset) / w.unit()))
	if p < 0 {
		return 0
	}
	return p
}

type plan struct {
	win   window
	start int
	end   int
	pos   []int
	child *childPlan
	// onset error removed compared to the plain grid
	gain int64
	cost int
}

type childPlan struct {
	win   window
	slot  int
	start int
	end   int
	pos   []int
}

// Detect scans one voice. notes must be in onset order and non-overlapping;
// the input slice is not modified.
func Detect(notes []model.QuantizedNote, division int64, bars meter.Bars, ratios []int) Result {
	res := Result{Notes: make([]model.QuantizedNote, len(notes))}
	copy(res.Notes, notes)
	if len(ratios) == 0 {
		return res
	}
	sorted := make([]int, len(ratios))
	copy(sorted, ratios)
	sort.Ints(sorted)
	d := detector{notes: res.Notes, division: division, bars: bars, ratios: sorted}
	for i := 0; i < len(res.Notes); {
		p := d.best(i)
		if p == nil {
			i++
			continue
		}
		res.Spans = apply(res.Notes, p, res.Spans)
		i = p.end
	}
	return res
}

type detector struct {
	notes    []model.QuantizedNote
	division int64
	bars     meter.Bars
	ratios   []int
}

// values are the plain note lengths a tuplet slot may stand for, 32nd to half.
func (d detector) values() []int64 {
	var res []int64
	for v := d.division / 8; v <= d.division*2; v *= 2 {
		if v > 0 {
			res = append(res, v)
		}
	}
	return res
}

func (d detector) best(i int) *plan {
	s := d.notes[i].Onset
	var best *plan
	for _, n := range d.ratios {
		m := operations.TupletNominal(n)
		if m == 0 {
			continue
		}
		for _, v := range d.values() {
			w := window{Onset: s, N: n, M: m, Value: v}
			if !d.aligned(w) {
				continue
			}
			p := d.evaluate(i, w, true)
			if p == nil {
				continue
			}
			// ratios are tried simplest first, so only a strictly better fit replaces
			if best == nil || p.gain > best.gain {
				best = p
			}
		}
	}
	return best
}

// aligned reports whether the window starts on a multiple of its own length
// from the barline and stays inside one measure.
func (d detector) aligned(w window) bool {
	span := w.Span()
	if span <= 0 {
		return false
	}
	if ((w.Onset%d.bars.Length)+d.bars.Length)%d.bars.Length%span != 0 {
		return false
	}
	return d.bars.Contains(w.Onset, w.Onset+span)
}

func (d detector) evaluate(i int, w window, nest bool) *plan {
	span := w.Span()
	end := w.Onset + span
	half := int64(w.unit() / 2)

	j := i
	for j < len(d.notes) && d.notes[j].RawOnset() < end-half && d.notes[j].Onset < end {
		j++
	}
	if j-i < 2 || j < len(d.notes) && d.notes[j].Onset < end {
		return nil
	}
	if d.notes[i].RawOnset() < w.Onset-half {
		return nil
	}

	p := &plan{win: w, start: i, end: j, pos: make([]int, j-i)}
	for k := i; k < j; k++ {
		p.pos[k-i] = w.position(d.notes[k].RawOnset())
		if p.pos[k-i] >= w.N {
			return nil
		}
	}
	if p.pos[0] != 0 {
		return nil
	}
	for k := 1; k < len(p.pos); k++ {
		if p.pos[k] > p.pos[k-1] {
			continue
		}
		if !nest || p.child != nil || p.pos[k] != p.pos[k-1] || span%int64(w.N) != 0 {
			return nil
		}
		c := d.nested(p, k)
		if c == nil {
			return nil
		}
		p.child = c
		for q := c.start; q < c.end; q++ {
			p.pos[q-i] = c.slot
		}
		k = c.end - i - 1
	}

	onsets := p.onsets(d.notes)
	var plainErr, tupErr int64
	for k := i; k < j; k++ {
		raw := d.notes[k].RawOnset()
		plainErr += util.Abs(raw - d.notes[k].Onset)
		tupErr += util.Abs(raw - onsets[k-i])
	}
	if tupErr >= plainErr {
		return nil
	}
	p.gain = plainErr - tupErr

	tol := util.Max(1, int64(w.unit()/16))
	plainCost := d.plainCost(i, j, end, tol)
	p.cost = d.tupletCost(p, onsets, tol)
	if p.cost >= plainCost {
		return nil
	}
	return p
}

// nested tries to explain the notes colliding in one parent slot with a
// child tuplet filling exactly that slot. Members are picked by performed
// onset, so a late child note rounding into the next parent slot still
// belongs to the child.
func (d detector) nested(p *plan, k int) *childPlan {
	slot := p.pos[k]
	first := p.start + k - 1
	cs := p.win.tick(slot)
	clen := p.win.tick(slot+1) - cs

	var best *childPlan
	var bestErr int64
	for _, n := range d.ratios {
		m := operations.TupletNominal(n)
		if m == 0 || clen%int64(m) != 0 {
			continue
		}
		w := window{Onset: cs, N: n, M: m, Value: clen / int64(m)}
		half := int64(w.unit() / 2)
		last := first
		for last < p.end && d.notes[last].RawOnset() < cs+clen-half {
			last++
		}
		if last-first < 2 {
			continue
		}
		// the child must run up to the next parent note
		if last < p.end && p.pos[last-p.start] != slot+1 || last == p.end && slot != p.win.N-1 {
			continue
		}

		c := &childPlan{win: w, slot: slot, start: first, end: last, pos: make([]int, last-first)}
		var err int64
		ok := true
		for q := first; q < last; q++ {
			pos := w.position(d.notes[q].RawOnset())
			if pos >= n || q > first && pos <= c.pos[q-first-1] {
				ok = false
				break
			}
			c.pos[q-first] = pos
			err += util.Abs(d.notes[q].RawOnset() - w.tick(pos))
		}
		if !ok || c.pos[0] != 0 {
			continue
		}
		if best == nil || err < bestErr {
			best, bestErr = c, err
		}
	}
	return best
}

// onsets returns the tuplet onset of every note of the plan.
func (p *plan) onsets(notes []model.QuantizedNote) []int64 {
	res := make([]int64, p.end-p.start)
	for k := p.start; k < p.end; k++ {
		if c := p.child; c != nil && k >= c.start && k < c.end {
			res[k-p.start] = c.win.tick(c.pos[k-c.start])
			continue
		}
		res[k-p.start] = p.win.tick(p.pos[k-p.start])
	}
	return res
}

func (d detector) plainCost(i, j int, end, tol int64) int {
	var cost int
	for k := i; k < j; k++ {
		next := end
		if k+1 < j {
			next = d.notes[k+1].Onset
		}
		cost += Fragments(next-d.notes[k].Onset, d.division)
		if util.Abs(d.notes[k].RawOnset()-d.notes[k].Onset) > tol {
			cost++
		}
	}
	return cost
}

// tupletCost counts fragments in nominal note values.
func (d detector) tupletCost(p *plan, onsets []int64, tol int64) int {
	var cost int
	w := p.win
	for k := p.start; k < p.end; k++ {
		idx := k - p.start
		if util.Abs(d.notes[k].RawOnset()-onsets[idx]) > tol {
			cost++
		}
		if c := p.child; c != nil && k >= c.start && k < c.end {
			next := c.win.N
			if k+1 < c.end {
				next = c.pos[k+1-c.start]
			}
			nominal := int64(next-c.pos[k-c.start]) * w.Value / int64(c.win.M)
			cost += Fragments(nominal, d.division)
			continue
		}
		next := w.N
		if k+1 < p.end {
			next = p.pos[idx+1]
		}
		cost += Fragments(int64(next-p.pos[idx])*w.Value, d.division)
	}
	return cost
}

// apply rewrites onsets and durations of the plan's notes and appends its spans.
func apply(notes []model.QuantizedNote, p *plan, spans []model.TupletSpan) []model.TupletSpan {
	onsets := p.onsets(notes)
	end := p.win.Onset + p.win.Span()

	parent := len(spans)
	spans = append(spans, model.TupletSpan{
		Start:  p.start,
		Count:  p.end - p.start,
		Ratio:  model.Ratio{Actual: p.win.N, Nominal: p.win.M},
		Parent: -1,
		Onset:  p.win.Onset,
		Span:   p.win.Span(),
	})
	child := -1
	if c := p.child; c != nil {
		child = len(spans)
		spans = append(spans, model.TupletSpan{
			Start:  c.start,
			Count:  c.end - c.start,
			Ratio:  model.Ratio{Actual: c.win.N, Nominal: c.win.M},
			Parent: parent,
			Onset:  c.win.Onset,
			Span:   c.win.Span(),
		})
	}

	for k := p.start; k < p.end; k++ {
		next := end
		if k+1 < p.end {
			next = onsets[k+1-p.start]
		}
		n := &notes[k]
		n.Onset = onsets[k-p.start]
		n.Duration = next - n.Onset
		n.Tuplet = parent
		if c := p.child; c != nil && k >= c.start && k < c.end {
			n.Tuplet = child
		}
	}
	return spans
}
