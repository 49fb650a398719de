package cmd

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/jsphweid/midiscribe/constants"
	"github.com/jsphweid/midiscribe/meter"
	"github.com/jsphweid/midiscribe/midi"
	"github.com/jsphweid/midiscribe/model"
	"github.com/jsphweid/midiscribe/normalize"
	"github.com/jsphweid/midiscribe/operations"
	"github.com/jsphweid/midiscribe/preview"
	"github.com/jsphweid/midiscribe/transcribe"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// largest request body accepted, JSON or SMF
const maxBody = 32 << 20

var port string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&port, "port", constants.GetPort(), "port to listen on")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the transcription API",
	Long: `Serves POST /transcribe (JSON score), POST /transcribe/midi (raw SMF body) and GET /health.

Preview sessions live under /sessions: open one with a score, post option
changes to /sessions/{id}/proposals and apply one with
/sessions/{id}/proposals/{proposal}/apply.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logrus.WithField("port", port).Info("listening")
		return http.ListenAndServe(":"+port, NewRouter())
	},
}

func NewRouter() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/transcribe", HandleTranscribe).Methods("POST")
	router.HandleFunc("/transcribe/midi", HandleTranscribeMidi).Methods("POST")
	router.HandleFunc("/health", handleHealth).Methods("GET")
	registerSessionRoutes(router)
	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	}).Handler(router)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func HandleTranscribe(w http.ResponseWriter, r *http.Request) {
	ops := operations.Default()
	body := model.TranscribeRequestBody{Options: &ops}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "could not decode request body"))
		return
	}
	if body.Score.Division == 0 {
		body.Score.Division = constants.GetDivision()
	}
	respond(w, r, &body.Score, ops)
}

// HandleTranscribeMidi reads a Standard MIDI File from the body. Options come
// from query parameters named like the JSON options.
func HandleTranscribeMidi(w http.ResponseWriter, r *http.Request) {
	ops, err := opsFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	score, err := midi.ReadScore(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	respond(w, r, score, ops)
}

func opsFromQuery(r *http.Request) (operations.Set, error) {
	ops := operations.Default()
	q := r.URL.Query()
	ints := map[string]*int{"max_quantization": &ops.MaxQuantization, "max_voices": &ops.MaxVoices}
	for name, dst := range ints {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return ops, errors.Wrapf(operations.ErrInvalidOptions, "%s=%q", name, v)
			}
			*dst = n
		}
	}
	bools := map[string]*bool{
		"split_staff":        &ops.SplitStaff,
		"clef_changes":       &ops.ClefChanges,
		"simplify_durations": &ops.SimplifyDurations,
		"pickup_measure":     &ops.PickupMeasure,
		"merge_meters":       &ops.MergeMeters,
	}
	for name, dst := range bools {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return ops, errors.Wrapf(operations.ErrInvalidOptions, "%s=%q", name, v)
			}
			*dst = b
		}
	}
	if q.Has("tuplets") {
		tuplets, err := operations.ParseTuplets(q.Get("tuplets"))
		if err != nil {
			return ops, err
		}
		ops.Tuplets = tuplets
	}
	if v := q.Get("swing"); v != "" {
		ops.Swing = operations.SwingMode(v)
	}
	if v := q.Get("human_performance"); v != "" {
		ops.HumanPerformance = operations.Override(v)
	}
	ops.Meter = q.Get("meter")
	return ops, nil
}

func respond(w http.ResponseWriter, r *http.Request, score *model.Score, ops operations.Set) {
	res, err := transcribe.Run(r.Context(), score, ops)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	var conflict *meter.ConflictError
	switch {
	case errors.Is(err, operations.ErrInvalidOptions),
		errors.Is(err, transcribe.ErrInvalidScore):
		return http.StatusBadRequest
	case errors.Is(err, normalize.ErrNoNotes), errors.As(err, &conflict):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNoSession):
		return http.StatusNotFound
	case errors.Is(err, preview.ErrNoProposal), errors.Is(err, preview.ErrStaleProposal):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, err error) {
	logrus.WithError(err).WithField("status", status).Debug("request failed")
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}
