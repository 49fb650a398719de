package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jsphweid/midiscribe/model"
	"github.com/jsphweid/midiscribe/preview"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tripletScore = `{"score": {"division": 480, "tracks": [{"id": 0, "events": [
	{"pitch": 60, "onset": 0, "duration": 160},
	{"pitch": 62, "onset": 160, "duration": 160},
	{"pitch": 64, "onset": 320, "duration": 160}
]}]}}`

func call(t *testing.T, router http.Handler, method, path, body string, out any) int {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if out != nil && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

func openSession(t *testing.T, router http.Handler) model.SessionResponse {
	var sess model.SessionResponse
	require.Equal(t, http.StatusCreated, call(t, router, http.MethodPost, "/sessions", tripletScore, &sess))
	require.NotEmpty(t, sess.ID)
	return sess
}

func TestSessionProposeAndApply(t *testing.T) {
	router := NewRouter()
	sess := openSession(t, router)
	require.Len(t, sess.Result.Tracks[0].Voices[0].Tuplets, 1)
	assert.Nil(t, sess.Pending)

	var p model.ProposalResponse
	code := call(t, router, http.MethodPost, "/sessions/"+sess.ID+"/proposals", `{"tuplets": []}`, &p)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, p.Error)
	assert.Empty(t, p.Result.Tracks[0].Voices[0].Tuplets)
	// untouched options keep their live values
	assert.Equal(t, sess.Options.MaxVoices, p.Options.MaxVoices)

	var got model.SessionResponse
	require.Equal(t, http.StatusOK, call(t, router, http.MethodGet, "/sessions/"+sess.ID, "", &got))
	require.NotNil(t, got.Pending)
	assert.Equal(t, p.ID, got.Pending.ID)
	assert.Len(t, got.Result.Tracks[0].Voices[0].Tuplets, 1)

	code = call(t, router, http.MethodPost, "/sessions/"+sess.ID+"/proposals/"+p.ID+"/apply", "", &got)
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, got.Pending)
	assert.Empty(t, got.Result.Tracks[0].Voices[0].Tuplets)

	var e model.ErrorResponse
	code = call(t, router, http.MethodPost, "/sessions/"+sess.ID+"/proposals/"+p.ID+"/apply", "", &e)
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, e.Error, "no pending proposal")
}

func TestSessionFailedProposalCannotBeApplied(t *testing.T) {
	router := NewRouter()
	sess := openSession(t, router)

	var p model.ProposalResponse
	code := call(t, router, http.MethodPost, "/sessions/"+sess.ID+"/proposals", `{"max_voices": 9}`, &p)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, p.Error)
	require.NotEmpty(t, p.ID)

	code = call(t, router, http.MethodPost, "/sessions/"+sess.ID+"/proposals/"+p.ID+"/apply", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	assert.Equal(t, http.StatusNoContent, call(t, router, http.MethodDelete, "/sessions/"+sess.ID+"/proposals", "", nil))
	var got model.SessionResponse
	require.Equal(t, http.StatusOK, call(t, router, http.MethodGet, "/sessions/"+sess.ID, "", &got))
	assert.Nil(t, got.Pending)
}

func TestSessionDebouncedProposal(t *testing.T) {
	router := NewRouter()
	sess := openSession(t, router)

	path := "/sessions/" + sess.ID + "/proposals?debounce=true"
	assert.Equal(t, http.StatusAccepted, call(t, router, http.MethodPost, path, `{"max_voices": 1}`, nil))
	assert.Equal(t, http.StatusAccepted, call(t, router, http.MethodPost, path, `{"max_voices": 2}`, nil))

	var got model.SessionResponse
	assert.Eventually(t, func() bool {
		call(t, router, http.MethodGet, "/sessions/"+sess.ID, "", &got)
		return got.Pending != nil
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, 2, got.Pending.Options.MaxVoices)
}

func TestSessionNotFound(t *testing.T) {
	router := NewRouter()
	sess := openSession(t, router)

	assert.Equal(t, http.StatusNoContent, call(t, router, http.MethodDelete, "/sessions/"+sess.ID, "", nil))
	assert.Equal(t, http.StatusNotFound, call(t, router, http.MethodGet, "/sessions/"+sess.ID, "", nil))
	assert.Equal(t, http.StatusNotFound, call(t, router, http.MethodDelete, "/sessions/"+sess.ID, "", nil))
	assert.Equal(t, http.StatusNotFound, call(t, router, http.MethodPost, "/sessions/nope/proposals", "{}", nil))

	assert.Equal(t, http.StatusUnprocessableEntity,
		call(t, router, http.MethodPost, "/sessions", `{"score": {"tracks": [{"id": 0}]}}`, nil))
}

func TestSessionStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(errors.Wrap(ErrNoSession, "x")))
	assert.Equal(t, http.StatusConflict, statusFor(preview.ErrNoProposal))
	assert.Equal(t, http.StatusConflict, statusFor(errors.Wrap(preview.ErrStaleProposal, "x")))
}
