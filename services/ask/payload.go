package ask

import (
	"errors"

	"assistkit/session"
)

// Request is the JSON body sent to the answering service. History keys are
// fixed by the service contract (utente/ai/timestamp).
type Request struct {
	Question  string         `json:"question"`
	History   []session.Turn `json:"history"`
	SessionId string         `json:"session_id"`
}

// ReplyPayload is the answering service response. It is validated on receipt
// and fails closed: a reply that does not satisfy the schema is treated the
// same as a transport failure.
type ReplyPayload struct {
	Risposta      string   `json:"risposta"`
	Intent        string   `json:"intent,omitempty"`
	Suggerimenti  []string `json:"suggerimenti,omitempty"`
	TempoRisposta float64  `json:"tempo_risposta,omitempty"`
	Cached        bool     `json:"cached,omitempty"`
}

var ErrMalformedReply = errors.New("ask: malformed reply payload")

// Validate checks the schema constraints the rest of the pipeline relies on.
func (p *ReplyPayload) Validate() error {
	if p.Risposta == "" {
		return ErrMalformedReply
	}
	if p.TempoRisposta < 0 {
		return ErrMalformedReply
	}
	return nil
}
