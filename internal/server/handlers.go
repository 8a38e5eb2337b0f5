package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ppiankov/flow/internal/annotate"
	"github.com/ppiankov/flow/internal/session"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

// Handler holds API route handlers
type Handler struct {
	suggester session.Suggester
	doc       *session.Controller
	logger    zerolog.Logger
}

// NewHandler creates a Handler. doc may be nil, in which case only the
// stateless suggestion endpoint is served.
func NewHandler(suggester session.Suggester, doc *session.Controller, logger zerolog.Logger) *Handler {
	return &Handler{suggester: suggester, doc: doc, logger: logger}
}

// Suggest handles POST /api/suggest. It answers 200 with a null suggestion
// for every failure, including a malformed body.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug().Err(err).Msg("suggest body rejected")
		writeJSON(w, http.StatusOK, SuggestResponse{})
		return
	}

	if h.suggester == nil {
		writeJSON(w, http.StatusOK, SuggestResponse{})
		return
	}

	suggestion, ok := h.suggester.Suggest(r.Context(), req.ContextText)
	if !ok {
		writeJSON(w, http.StatusOK, SuggestResponse{})
		return
	}
	writeJSON(w, http.StatusOK, SuggestResponse{Suggestion: &suggestion})
}

// GetDocument handles GET /api/document
func (h *Handler) GetDocument(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.doc.Snapshot())
}

// PutDocument handles PUT /api/document
func (h *Handler) PutDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	writeJSON(w, http.StatusOK, h.doc.SetText(req.Text))
}

// Accept handles POST /api/document/accept
func (h *Handler) Accept(w http.ResponseWriter, _ *http.Request) {
	snap, accepted := h.doc.Accept()
	writeJSON(w, http.StatusOK, AcceptResponse{Snapshot: snap, Accepted: accepted})
}

// Dismiss handles POST /api/document/dismiss
func (h *Handler) Dismiss(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.doc.Dismiss())
}

// CreateAnnotation handles POST /api/document/annotations.
// An empty selection or blank note creates nothing and answers 204.
func (h *Handler) CreateAnnotation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req AnnotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	a, err := h.doc.Annotate(req.Start, req.End, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, annotate.ErrOverlap):
			writeJSON(w, http.StatusConflict, errorBody(err.Error()))
		case errors.Is(err, annotate.ErrOutOfRange), errors.Is(err, annotate.ErrEmptyRange), errors.Is(err, annotate.ErrEmptyNote):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			h.logger.Error().Err(err).Msg("create annotation failed")
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	if a == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// DeleteAnnotation handles DELETE /api/document/annotations/{id}
func (h *Handler) DeleteAnnotation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.doc.RemoveAnnotation(id); err != nil {
		if errors.Is(err, annotate.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		h.logger.Error().Err(err).Str("id", id).Msg("delete annotation failed")
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/document/export. With comments=1 the notes
// appendix is included.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	withNotes, _ := strconv.ParseBool(r.URL.Query().Get("comments"))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(h.doc.Export(withNotes)))
}
