package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jsphweid/midiscribe/meter"
	"github.com/jsphweid/midiscribe/model"
	"github.com/jsphweid/midiscribe/normalize"
	"github.com/jsphweid/midiscribe/operations"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpsFromQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/transcribe/midi?max_quantization=32&tuplets=3,5&split_staff=true&swing=detect&meter=3/4", nil)
	ops, err := opsFromQuery(r)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(32, ops.MaxQuantization)
	assert.Equal([]int{3, 5}, ops.Tuplets)
	assert.True(ops.SplitStaff)
	assert.Equal(operations.SwingDetect, ops.Swing)
	assert.Equal("3/4", ops.Meter)
	assert.Equal(4, ops.MaxVoices)

	r = httptest.NewRequest(http.MethodPost, "/transcribe/midi?max_voices=two", nil)
	_, err = opsFromQuery(r)
	assert.True(errors.Is(err, operations.ErrInvalidOptions))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(errors.Wrap(operations.ErrInvalidOptions, "x")))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(normalize.ErrNoNotes))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(&meter.ConflictError{}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

func TestHandleTranscribeKeepsDefaultsForMissingOptions(t *testing.T) {
	body := `{"score": {"division": 480, "tracks": [{"id": 0, "events": [
		{"pitch": 60, "onset": 0, "duration": 480},
		{"pitch": 62, "onset": 480, "duration": 480}
	]}]}, "options": {"max_voices": 1}}`
	req := httptest.NewRequest(http.MethodPost, "/transcribe", strings.NewReader(body))
	w := httptest.NewRecorder()
	HandleTranscribe(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var res model.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Hints["dotted_notes"])
	require.Len(t, res.Tracks, 1)
	assert.Len(t, res.Tracks[0].Voices[0].Records, 2)
}

func TestHandleTranscribeRejectsBadInput(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/transcribe", strings.NewReader("{"))
	w := httptest.NewRecorder()
	HandleTranscribe(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/transcribe", strings.NewReader(`{"score": {"tracks": [{"id": 0}]}}`))
	w = httptest.NewRecorder()
	HandleTranscribe(w, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var e model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	assert.Contains(t, e.Error, "no track contains any notes")
}

func TestReport(t *testing.T) {
	res := &model.Result{
		Meter: model.MeterDecision{Numerator: 3, Denominator: 4},
		Tracks: []model.TrackResult{
			{ID: 0, Name: "empty"},
			{
				ID:           1,
				Name:         "piano",
				Staff:        model.StaffAssignment{Clefs: []model.Clef{model.ClefTreble}},
				Quantization: model.Quantization{Grid: 120, Swing: "none"},
				Voices: []model.Voice{
					{Index: 0, Notes: []model.QuantizedNote{{Pitch: 67, Onset: 0}, {Pitch: 67, Onset: 480}}},
					{Index: 1, Notes: []model.QuantizedNote{{Pitch: 60, Onset: 0}, {Pitch: 60, Onset: 480}}},
				},
				Diagnostics: model.Diagnostics{DroppedVoiceLimit: 3},
			},
		},
	}
	var buf bytes.Buffer
	report(&buf, res)

	out := buf.String()
	assert.Contains(t, out, "meter: 3/4")
	assert.Contains(t, out, "no notes")
	assert.Contains(t, out, "grid: 120 ticks, swing: none")
	assert.Contains(t, out, "chord 60-67: 2 times")
	assert.Contains(t, out, "3 notes dropped due to voice limit")
}
