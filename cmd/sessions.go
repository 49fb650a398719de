package cmd

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/midiscribe/constants"
	"github.com/jsphweid/midiscribe/model"
	"github.com/jsphweid/midiscribe/operations"
	"github.com/jsphweid/midiscribe/preview"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrNoSession = errors.New("no such session")

// sessionStore holds the preview sessions opened through the API.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*preview.Session
}

var sessions = &sessionStore{sessions: make(map[string]*preview.Session)}

func (s *sessionStore) add(sess *preview.Session) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
	return id
}

func (s *sessionStore) get(id string) (*preview.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.Wrap(ErrNoSession, id)
	}
	return sess, nil
}

func (s *sessionStore) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if ok {
		sess.Cancel()
		delete(s.sessions, id)
	}
	return ok
}

func registerSessionRoutes(router *mux.Router) {
	router.HandleFunc("/sessions", HandleOpenSession).Methods("POST")
	router.HandleFunc("/sessions/{id}", handleGetSession).Methods("GET")
	router.HandleFunc("/sessions/{id}", handleCloseSession).Methods("DELETE")
	router.HandleFunc("/sessions/{id}/proposals", handlePropose).Methods("POST")
	router.HandleFunc("/sessions/{id}/proposals", handleCancelProposal).Methods("DELETE")
	router.HandleFunc("/sessions/{id}/proposals/{proposal}/apply", handleApply).Methods("POST")
}

// HandleOpenSession transcribes the posted score like POST /transcribe and
// keeps it open so option changes can be previewed against it.
func HandleOpenSession(w http.ResponseWriter, r *http.Request) {
	ops := operations.Default()
	body := model.TranscribeRequestBody{Options: &ops}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "could not decode request body"))
		return
	}
	if body.Score.Division == 0 {
		body.Score.Division = constants.GetDivision()
	}
	sess, err := preview.New(r.Context(), &body.Score, ops, preview.DefaultWait)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	id := sessions.add(sess)
	logrus.WithField("session", id).Info("preview session opened")
	writeJSON(w, http.StatusCreated, sessionResponse(id, sess))
}

func handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	sess, err := sessions.get(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(id, sess))
}

func handleCloseSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !sessions.remove(id) {
		writeError(w, http.StatusNotFound, errors.Wrap(ErrNoSession, id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePropose re-runs the session with the posted options, which override
// the live ones. With ?debounce=true the run is coalesced with other quick
// edits and the request returns 202 before it finishes.
func handlePropose(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	sess, err := sessions.get(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	ops := sess.Live().Ops.Clone()
	err = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&ops)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "could not decode options"))
		return
	}

	if r.URL.Query().Get("debounce") == "true" {
		// the request is gone by the time the run starts
		sess.ProposeDebounced(context.Background(), ops, nil)
		w.WriteHeader(http.StatusAccepted)
		return
	}
	p, err := sess.Propose(r.Context(), ops)
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
	}
	writeJSON(w, status, proposalResponse(p))
}

func handleCancelProposal(w http.ResponseWriter, r *http.Request) {
	sess, err := sessions.get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	sess.Cancel()
	w.WriteHeader(http.StatusNoContent)
}

func handleApply(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sess, err := sessions.get(vars["id"])
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if _, err := sess.Apply(vars["proposal"]); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(vars["id"], sess))
}

func sessionResponse(id string, sess *preview.Session) model.SessionResponse {
	live := sess.Live()
	res := model.SessionResponse{ID: id, Options: live.Ops, Result: live.Result}
	if p, ok := sess.Pending(); ok {
		pr := proposalResponse(p)
		res.Pending = &pr
	}
	return res
}

func proposalResponse(p preview.Proposal) model.ProposalResponse {
	res := model.ProposalResponse{ID: p.ID, Options: p.Ops, Result: p.Result}
	if p.Err != nil {
		res.Error = p.Err.Error()
	}
	return res
}
