package server

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ppiankov/flow/internal/session"
)

// maxNoteLength bounds a single annotation note, in characters
const maxNoteLength = 2000

// SuggestRequest is the body of POST /api/suggest
type SuggestRequest struct {
	ContextText string `json:"contextText"`
}

// SuggestResponse carries the sanitized continuation, or null when there is none
type SuggestResponse struct {
	Suggestion *string `json:"suggestion"`
}

// DocumentRequest is the body of PUT /api/document
type DocumentRequest struct {
	Text string `json:"text"`
}

// AcceptResponse is the document after an accept attempt
type AcceptResponse struct {
	session.Snapshot
	Accepted bool `json:"accepted"`
}

// AnnotationRequest is the body of POST /api/document/annotations
type AnnotationRequest struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Note  string `json:"note"`
}

// Validate checks offsets and note size
func (r AnnotationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Start, validation.Min(0)),
		validation.Field(&r.End, validation.Min(0)),
		validation.Field(&r.Note, validation.RuneLength(0, maxNoteLength)),
	)
}
