package analysis

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers analysis routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analysis", h.Analyze)
		r.Post("/report/export", h.ExportReport)
	})

	r.Get("/artifacts/{id}", h.ServeArtifact)
}
