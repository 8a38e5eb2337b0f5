package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// NewAPIRouter mounts the suggestion and document routes.
// Document routes are only present when the handler has a controller.
func NewAPIRouter(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/suggest", h.Suggest)

	if h.doc != nil {
		r.Route("/document", func(r chi.Router) {
			r.Get("/", h.GetDocument)
			r.Put("/", h.PutDocument)
			r.Post("/accept", h.Accept)
			r.Post("/dismiss", h.Dismiss)
			r.Post("/annotations", h.CreateAnnotation)
			r.Delete("/annotations/{id}", h.DeleteAnnotation)
			r.Get("/export", h.Export)
		})
	}

	return r
}

// NewRouter builds the full HTTP handler with middleware, health checks and /api
func NewRouter(h *Handler, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Mount("/api", NewAPIRouter(h))
	return r
}
