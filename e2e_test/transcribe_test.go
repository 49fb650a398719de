//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jsphweid/midiscribe/cmd"
	"github.com/jsphweid/midiscribe/model"
	"github.com/jsphweid/midiscribe/operations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func createTranscribeReqBody(events []model.RawEvent, ops operations.Set) io.Reader {
	body := model.TranscribeRequestBody{
		Score:   model.Score{Division: 480, Tracks: []model.Track{{ID: 0, Events: events}}},
		Options: &ops,
	}
	data, err := json.Marshal(body)
	if err != nil {
		panic(err.Error())
	}
	return bytes.NewReader(data)
}

func decodeResult(t *testing.T, resp *http.Response) model.Result {
	respBody, _ := io.ReadAll(resp.Body)
	require.Equal(t, 200, resp.StatusCode, string(respBody))
	var res model.Result
	require.NoError(t, json.Unmarshal(respBody, &res))
	return res
}

func TestTripletE2E(t *testing.T) {
	body := createTranscribeReqBody([]model.RawEvent{
		{Pitch: 60, Onset: 0, Duration: 160},
		{Pitch: 62, Onset: 160, Duration: 160},
		{Pitch: 64, Onset: 320, Duration: 160},
	}, operations.Default())
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	w := httptest.NewRecorder()
	cmd.HandleTranscribe(w, req)

	res := decodeResult(t, w.Result())
	assert := assert.New(t)
	require.Len(t, res.Tracks, 1)
	v := res.Tracks[0].Voices[0]
	assert.Equal([]model.TupletSpan{{
		Start: 0, Count: 3,
		Ratio:  model.Ratio{Actual: 3, Nominal: 2},
		Parent: -1, Onset: 0, Span: 480,
	}}, v.Tuplets)
	assert.Len(v.Records, 3)
}

func TestPickupFromMidiFileE2E(t *testing.T) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	var track smf.Track
	track.Add(0, smf.MetaMeter(3, 4))
	track.Add(1200, midi.NoteOn(0, 67, 90))
	track.Add(240, midi.NoteOff(0, 67))
	track.Add(0, midi.NoteOn(0, 72, 90))
	track.Add(1440, midi.NoteOff(0, 72))
	track.Close(0)
	require.NoError(t, s.Add(track))
	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)

	router := cmd.NewRouter()
	req := httptest.NewRequest(http.MethodPost, "/transcribe/midi?split_staff=false", &buf)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	res := decodeResult(t, w.Result())
	assert := assert.New(t)
	assert.Equal(model.MeterDecision{Numerator: 3, Denominator: 4, Pickup: true, PickupLength: 240}, res.Meter)
	records := res.Tracks[0].Voices[0].Records
	require.Len(t, records, 2)
	assert.Equal(0, records[0].Number)
	assert.Equal(1, records[1].Number)
	assert.Equal(int64(1440), records[1].Duration)
}

func TestHealthE2E(t *testing.T) {
	w := httptest.NewRecorder()
	cmd.NewRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, 200, w.Code)
}
