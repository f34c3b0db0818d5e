package backlog

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers backlog routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/v1/backlog/jobs", func(r chi.Router) {
		r.Post("/", h.SubmitJob)
		r.Get("/{id}", h.GetJob)
		r.Get("/{id}/items", h.GetWorkItems)
		r.Get("/{id}/export", h.ExportBacklog)
		r.Post("/{id}/sync", h.SyncJob)
	})
}
