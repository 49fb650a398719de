package operations

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Set)
	}{
		{"quantization", func(s *Set) { s.MaxQuantization = 12 }},
		{"too many voices", func(s *Set) { s.MaxVoices = 5 }},
		{"no voices", func(s *Set) { s.MaxVoices = 0 }},
		{"tuplet", func(s *Set) { s.Tuplets = []int{3, 6} }},
		{"swing", func(s *Set) { s.Swing = "latin" }},
		{"override", func(s *Set) { s.HumanPerformance = "maybe" }},
		{"meter", func(s *Set) { s.Meter = "4/3" }},
		{"returns", func(s *Set) { s.DiminishingReturns = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			err := s.Validate()
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidOptions))
		})
	}
}

func TestTupletSearchOrdersBySimplicity(t *testing.T) {
	s := Default()
	s.Tuplets = []int{7, 3, 5, 3}
	assert.Equal(t, []int{3, 5, 7}, s.TupletSearch())
}

func TestParseMeter(t *testing.T) {
	num, den, err := ParseMeter("6/8")
	assert.NoError(t, err)
	assert.Equal(t, 6, num)
	assert.Equal(t, 8, den)

	_, _, err = ParseMeter("six/8")
	assert.Error(t, err)
}

func TestSwingRatio(t *testing.T) {
	assert.Equal(t, 2, SwingSwing.Ratio())
	assert.Equal(t, 3, SwingShuffle.Ratio())
	assert.Equal(t, 0, SwingDetect.Ratio())
}

func TestGrid(t *testing.T) {
	s := Default()
	s.MaxQuantization = 32
	assert.Equal(t, int64(60), s.Grid(480))
}

func TestCloneSharesNothing(t *testing.T) {
	s := Default()
	c := s.Clone()
	c.Tuplets[0] = 7
	assert.Equal(t, 2, s.Tuplets[0])
}
