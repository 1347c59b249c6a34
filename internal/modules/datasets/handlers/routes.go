package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers dataset service routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/datasets", func(r chi.Router) {
		r.Post("/query", h.HandleQuery)
	})
}
