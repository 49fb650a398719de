package human

import (
	"testing"

	"github.com/jsphweid/midiscribe/model"
	"github.com/jsphweid/midiscribe/operations"
	"github.com/stretchr/testify/assert"
)

func events(onsets ...int64) []model.RawEvent {
	var res []model.RawEvent
	for _, o := range onsets {
		res = append(res, model.RawEvent{Onset: o, Duration: 100})
	}
	return res
}

func TestMechanicalInput(t *testing.T) {
	s := Measure(events(0, 120, 240, 361), 120)
	assert.Equal(t, 0, s.OffGrid)
	assert.False(t, IsHuman(s, operations.Default()))
}

func TestHumanInput(t *testing.T) {
	s := Measure(events(13, 110, 252, 347, 489, 590), 120)
	assert.Equal(t, 6, s.OffGrid)
	assert.Greater(t, s.MeanDeviation, 0.04)
	assert.True(t, IsHuman(s, operations.Default()))
}

func TestOverride(t *testing.T) {
	ops := operations.Default()
	s := Measure(events(0, 120), 120)

	ops.HumanPerformance = operations.Yes
	assert.True(t, IsHuman(s, ops))

	ops.HumanPerformance = operations.No
	assert.False(t, IsHuman(Measure(events(13, 110, 252), 120), ops))
}

func TestReferenceGrid(t *testing.T) {
	assert.Equal(t, int64(15), ReferenceGrid(480))
	assert.Equal(t, int64(30), ReferenceGrid(960))
	assert.Equal(t, int64(3), ReferenceGrid(96))
	assert.Equal(t, int64(25), ReferenceGrid(100))
	assert.Equal(t, int64(1), ReferenceGrid(1))
}

func TestEmpty(t *testing.T) {
	s := Measure(nil, 120)
	assert.Equal(t, 0.0, s.OffGridRatio())
	assert.False(t, IsHuman(s, operations.Default()))
}

func TestThresholdAndSwing(t *testing.T) {
	ops := operations.Default()
	assert.Equal(t, ops.DiminishingReturns, Threshold(false, ops))
	assert.Greater(t, Threshold(true, ops), ops.DiminishingReturns)

	ops.Swing = operations.SwingDetect
	assert.True(t, SwingEligible(true, ops))
	assert.False(t, SwingEligible(false, ops))

	ops.Swing = operations.SwingShuffle
	assert.True(t, SwingEligible(false, ops))

	ops.Swing = operations.SwingNone
	assert.False(t, SwingEligible(true, ops))
}
