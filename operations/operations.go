// Package operations holds the import configuration shared read-only by every
// transcription stage.
package operations

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jsphweid/midiscribe/util"
	"github.com/pkg/errors"
)

var ErrInvalidOptions = errors.New("invalid import operations")

type SwingMode string

const (
	SwingNone    SwingMode = "none"
	SwingSwing   SwingMode = "swing"   // 2:1
	SwingShuffle SwingMode = "shuffle" // 3:1
	SwingDetect  SwingMode = "detect"
)

// Ratio returns the long:short ratio of the off-beat shift, or 0.
func (m SwingMode) Ratio() int {
	switch m {
	case SwingSwing:
		return 2
	case SwingShuffle:
		return 3
	}
	return 0
}

type Override string

const (
	Auto Override = "auto"
	Yes  Override = "yes"
	No   Override = "no"
)

// Set is the ImportOperationSet. It is passed by value; stages never modify it.
type Set struct {
	// finest grid as a note value denominator: 4 (quarter) .. 128
	MaxQuantization   int       `json:"max_quantization"`
	MaxVoices         int       `json:"max_voices"`
	Tuplets           []int     `json:"tuplets"`
	Swing             SwingMode `json:"swing"`
	HumanPerformance  Override  `json:"human_performance"`
	SplitStaff        bool      `json:"split_staff"`
	ClefChanges       bool      `json:"clef_changes"`
	SimplifyDurations bool      `json:"simplify_durations"`
	PickupMeasure     bool      `json:"pickup_measure"`
	MergeMeters       bool      `json:"merge_meters"`
	// "n/d", empty means taken from the input
	Meter string `json:"meter,omitempty"`

	// rendering hints, not used by transcription
	ShowStaccato     bool `json:"show_staccato"`
	DottedNotes      bool `json:"dotted_notes"`
	ShowTempoText    bool `json:"show_tempo_text"`
	ShowChordSymbols bool `json:"show_chord_symbols"`

	// Tunables. Improvements are relative, e.g. 0.3 means 30% less error.
	DiminishingReturns float64 `json:"diminishing_returns"`
	HumanReturnsBias   float64 `json:"human_returns_bias"`
	SwingMargin        float64 `json:"swing_margin"`
	// mean onset error per note, as a fraction of a quarter note
	SanityThreshold   float64 `json:"sanity_threshold"`
	HumanOffGridRatio float64 `json:"human_off_grid_ratio"`
	HumanDeviation    float64 `json:"human_deviation"`
}

var AllTuplets = []int{2, 3, 4, 5, 7, 9}

func Default() Set {
	return Set{
		MaxQuantization:    16,
		MaxVoices:          4,
		Tuplets:            []int{2, 3, 4, 5, 7, 9},
		Swing:              SwingNone,
		HumanPerformance:   Auto,
		PickupMeasure:      true,
		DottedNotes:        true,
		ShowTempoText:      true,
		DiminishingReturns: 0.3,
		HumanReturnsBias:   1.5,
		SwingMargin:        0.25,
		SanityThreshold:    0.2,
		HumanOffGridRatio:  0.3,
		HumanDeviation:     0.04,
	}
}

// Clone copies the set so the copy shares no slices with s.
func (s Set) Clone() Set {
	c := s
	if s.Tuplets != nil {
		c.Tuplets = make([]int, len(s.Tuplets))
		copy(c.Tuplets, s.Tuplets)
	}
	return c
}

func (s Set) Validate() error {
	if s.MaxQuantization < 4 || s.MaxQuantization > 128 || !util.IsPowerOfTwo(s.MaxQuantization) {
		return errors.Wrapf(ErrInvalidOptions, "max quantization %d is not one of 4..128", s.MaxQuantization)
	}
	if s.MaxVoices < 1 || s.MaxVoices > 4 {
		return errors.Wrapf(ErrInvalidOptions, "max voices %d outside 1..4", s.MaxVoices)
	}
	for _, t := range s.Tuplets {
		if _, ok := tupletNominal[t]; !ok {
			return errors.Wrapf(ErrInvalidOptions, "unsupported tuplet %d", t)
		}
	}
	switch s.Swing {
	case SwingNone, SwingSwing, SwingShuffle, SwingDetect:
	default:
		return errors.Wrapf(ErrInvalidOptions, "unknown swing mode %q", s.Swing)
	}
	switch s.HumanPerformance {
	case Auto, Yes, No:
	default:
		return errors.Wrapf(ErrInvalidOptions, "unknown human performance override %q", s.HumanPerformance)
	}
	if s.Meter != "" {
		if _, _, err := ParseMeter(s.Meter); err != nil {
			return err
		}
	}
	if s.DiminishingReturns <= 0 || s.DiminishingReturns >= 1 {
		return errors.Wrapf(ErrInvalidOptions, "diminishing returns %v outside (0,1)", s.DiminishingReturns)
	}
	if s.SwingMargin < 0 || s.SwingMargin >= 1 {
		return errors.Wrapf(ErrInvalidOptions, "swing margin %v outside [0,1)", s.SwingMargin)
	}
	if s.HumanReturnsBias <= 0 || s.SanityThreshold <= 0 {
		return errors.Wrap(ErrInvalidOptions, "tunables must be positive")
	}
	return nil
}

// Hints returns the rendering hints for pass-through to the score builder.
func (s Set) Hints() map[string]bool {
	return map[string]bool{
		"show_staccato":      s.ShowStaccato,
		"dotted_notes":       s.DottedNotes,
		"show_tempo_text":    s.ShowTempoText,
		"show_chord_symbols": s.ShowChordSymbols,
	}
}

// Grid returns the tick length of the finest allowed grid.
func (s Set) Grid(division int64) int64 {
	return division * 4 / int64(s.MaxQuantization)
}

// TupletSearch returns the configured tuplets ordered from simplest to most complex.
func (s Set) TupletSearch() []int {
	res := make([]int, 0, len(s.Tuplets))
	seen := make(map[int]bool)
	for _, t := range s.Tuplets {
		if !seen[t] {
			seen[t] = true
			res = append(res, t)
		}
	}
	sort.Ints(res)
	return res
}

var tupletNominal = map[int]int{2: 3, 3: 2, 4: 3, 5: 4, 7: 4, 9: 8}

// TupletNominal is the number of plain notes an n-plet replaces.
func TupletNominal(n int) int {
	return tupletNominal[n]
}

func ParseMeter(v string) (int, int, error) {
	parts := strings.Split(v, "/")
	if len(parts) != 2 {
		return 0, 0, errors.Wrapf(ErrInvalidOptions, "meter %q is not n/d", v)
	}
	num, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || num <= 0 {
		return 0, 0, errors.Wrapf(ErrInvalidOptions, "meter %q has a bad numerator", v)
	}
	den, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || !util.IsPowerOfTwo(den) {
		return 0, 0, errors.Wrapf(ErrInvalidOptions, "meter %q has a bad denominator", v)
	}
	return num, den, nil
}

// ParseTuplets reads a comma separated list such as "3,5,7".
func ParseTuplets(v string) ([]int, error) {
	var res []int
	if strings.TrimSpace(v) == "" {
		return res, nil
	}
	for _, p := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidOptions, "tuplet %q", p)
		}
		res = append(res, n)
	}
	return res, nil
}

func (s Set) String() string {
	return fmt.Sprintf("quant=1/%d voices=%d tuplets=%v swing=%s human=%s split=%t pickup=%t",
		s.MaxQuantization, s.MaxVoices, s.TupletSearch(), s.Swing, s.HumanPerformance, s.SplitStaff, s.PickupMeasure)
}
