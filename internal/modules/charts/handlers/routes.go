package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all chart routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/charts", func(r chi.Router) {
		r.Get("/presets", h.HandleGetPresets)
		r.Get("/presets/{key}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetPreset(w, r, chi.URLParam(r, "key"))
		})

		r.Post("/query", h.HandleBuildQuery)
		r.Post("/render", h.HandleRender)
		r.Get("/renderer", h.HandleResolveRenderer)
		r.Get("/renders", h.HandleRecentRenders)

		// Saved charts
		r.Route("/saved", func(r chi.Router) {
			r.Get("/", h.HandleListSaved)
			r.Post("/", h.HandleCreateSaved)
			r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetSaved(w, r, chi.URLParam(r, "id"))
			})
			r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
				h.HandleUpdateSaved(w, r, chi.URLParam(r, "id"))
			})
			r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
				h.HandleDeleteSaved(w, r, chi.URLParam(r, "id"))
			})
			r.Get("/{id}/render", func(w http.ResponseWriter, r *http.Request) {
				h.HandleRenderSaved(w, r, chi.URLParam(r, "id"))
			})
		})

		// Live instances
		r.Route("/instances/{id}", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetInstance(w, r, chi.URLParam(r, "id"))
			})
			r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
				h.HandleDeleteInstance(w, r, chi.URLParam(r, "id"))
			})
			r.Get("/image.png", func(w http.ResponseWriter, r *http.Request) {
				h.HandleInstanceImage(w, r, chi.URLParam(r, "id"))
			})
		})
	})
}

// RegisterStreamRoutes registers the chart websocket stream. It is kept apart
// from RegisterRoutes so request timeouts never apply to it.
func (h *Handler) RegisterStreamRoutes(r chi.Router) {
	r.Get("/charts/ws", h.HandleStream)
}
