package model

import "github.com/jsphweid/midiscribe/operations"

// TranscribeRequestBody is the JSON body of POST /transcribe. Options left
// out keep their defaults.
type TranscribeRequestBody struct {
	Score   Score           `json:"score"`
	Options *operations.Set `json:"options,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionResponse describes a preview session: the applied transcription and
// the proposal waiting to be applied, if any.
type SessionResponse struct {
	ID      string            `json:"id"`
	Options operations.Set    `json:"options"`
	Result  *Result           `json:"result"`
	Pending *ProposalResponse `json:"pending,omitempty"`
}

type ProposalResponse struct {
	ID      string         `json:"id"`
	Options operations.Set `json:"options"`
	Result  *Result        `json:"result,omitempty"`
	Error   string         `json:"error,omitempty"`
}
