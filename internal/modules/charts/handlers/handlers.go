// Package handlers provides HTTP handlers for chart presets, renders and saved charts.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/chartpresets/internal/modules/charts"
	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
	"github.com/aristath/chartpresets/internal/modules/charts/domain"
	"github.com/aristath/chartpresets/internal/modules/charts/pipeline"
	"github.com/aristath/chartpresets/internal/modules/charts/renderer"
	"github.com/rs/zerolog"
)

const maxRequestBytes = 1 << 20

// Handler handles chart HTTP requests
type Handler struct {
	service        *charts.Service
	originPatterns []string
	log            zerolog.Logger
}

// NewHandler creates a new charts handler
func NewHandler(service *charts.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "charts").Logger(),
	}
}

// RenderResponse is the JSON form of a pipeline outcome.
type RenderResponse struct {
	Status pipeline.Status          `json:"status"`
	Config domain.ChartConfig       `json:"config"`
	Kind   domain.VisualizationKind `json:"kind"`
	Tag    renderer.Tag             `json:"tag"`
	Query  *dataset.Query           `json:"query,omitempty"`
	Output renderer.Output          `json:"output"`
	Error  string                   `json:"error,omitempty"`
}

func newRenderResponse(out pipeline.Outcome) RenderResponse {
	resp := RenderResponse{
		Status: out.Status,
		Config: out.Config,
		Kind:   out.Kind,
		Tag:    out.Tag,
		Query:  out.Query,
		Output: out.Output,
	}
	if out.Err != nil {
		resp.Error = out.Err.Error()
	}
	return resp
}

// HandleGetPresets handles GET /api/charts/presets
func (h *Handler) HandleGetPresets(w http.ResponseWriter, r *http.Request) {
	infos, err := h.service.Presets()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to describe presets")
		h.writeError(w, http.StatusInternalServerError, "Failed to describe presets")
		return
	}
	h.writeData(w, http.StatusOK, infos)
}

// HandleGetPreset handles GET /api/charts/presets/{key}
func (h *Handler) HandleGetPreset(w http.ResponseWriter, r *http.Request, key string) {
	info, err := h.service.Preset(key)
	if err != nil {
		h.writeServiceError(w, err, "Failed to describe preset")
		return
	}
	h.writeData(w, http.StatusOK, info)
}

// HandleBuildQuery handles POST /api/charts/query
func (h *Handler) HandleBuildQuery(w http.ResponseWriter, r *http.Request) {
	var cfg domain.ChartConfig
	if !h.decode(w, r, &cfg) {
		return
	}
	built, err := h.service.BuildQuery(cfg)
	if err != nil {
		h.writeServiceError(w, err, "Failed to build query")
		return
	}
	h.writeData(w, http.StatusOK, built)
}

// HandleRender handles POST /api/charts/render
// Failed renders still answer 200; the outcome status carries the failure.
func (h *Handler) HandleRender(w http.ResponseWriter, r *http.Request) {
	var req charts.RenderRequest
	if !h.decode(w, r, &req) {
		return
	}
	out := h.service.Render(r.Context(), req)
	h.writeData(w, http.StatusOK, newRenderResponse(out))
}

// HandleResolveRenderer handles GET /api/charts/renderer?preset=&kind=
func (h *Handler) HandleResolveRenderer(w http.ResponseWriter, r *http.Request) {
	key, err := domain.ParsePresetKey(r.URL.Query().Get("preset"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	kind := domain.VisualizationKind(r.URL.Query().Get("kind"))
	tag := renderer.Resolve(key, kind)
	h.writeData(w, http.StatusOK, map[string]interface{}{
		"preset":   key,
		"kind":     kind,
		"tag":      tag,
		"fallback": tag.IsFallback(),
	})
}

// HandleListSaved handles GET /api/charts/saved
func (h *Handler) HandleListSaved(w http.ResponseWriter, r *http.Request) {
	saved, err := h.service.ListSavedCharts()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list saved charts")
		h.writeError(w, http.StatusInternalServerError, "Failed to list saved charts")
		return
	}
	h.writeData(w, http.StatusOK, saved)
}

// HandleCreateSaved handles POST /api/charts/saved
func (h *Handler) HandleCreateSaved(w http.ResponseWriter, r *http.Request) {
	var c charts.SavedChart
	if !h.decode(w, r, &c) {
		return
	}
	created, err := h.service.SaveChart(c)
	if err != nil {
		h.writeServiceError(w, err, "Failed to save chart")
		return
	}
	h.writeData(w, http.StatusCreated, created)
}

// HandleGetSaved handles GET /api/charts/saved/{id}
func (h *Handler) HandleGetSaved(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.service.GetSavedChart(id)
	if err != nil {
		h.writeServiceError(w, err, "Failed to get saved chart")
		return
	}
	h.writeData(w, http.StatusOK, c)
}

// HandleUpdateSaved handles PUT /api/charts/saved/{id}
func (h *Handler) HandleUpdateSaved(w http.ResponseWriter, r *http.Request, id string) {
	var c charts.SavedChart
	if !h.decode(w, r, &c) {
		return
	}
	c.ID = id
	updated, err := h.service.UpdateSavedChart(c)
	if err != nil {
		h.writeServiceError(w, err, "Failed to update saved chart")
		return
	}
	h.writeData(w, http.StatusOK, updated)
}

// HandleDeleteSaved handles DELETE /api/charts/saved/{id}
func (h *Handler) HandleDeleteSaved(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.DeleteSavedChart(id); err != nil {
		h.writeServiceError(w, err, "Failed to delete saved chart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRenderSaved handles GET /api/charts/saved/{id}/render?kind=
func (h *Handler) HandleRenderSaved(w http.ResponseWriter, r *http.Request, id string) {
	kind := domain.VisualizationKind(r.URL.Query().Get("kind"))
	out, err := h.service.RenderSaved(r.Context(), id, kind)
	if err != nil {
		h.writeServiceError(w, err, "Failed to render saved chart")
		return
	}
	h.writeData(w, http.StatusOK, newRenderResponse(out))
}

// HandleRecentRenders handles GET /api/charts/renders?limit=
func (h *Handler) HandleRecentRenders(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := h.service.RecentRenders(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list renders")
		h.writeError(w, http.StatusInternalServerError, "Failed to list renders")
		return
	}
	stats, err := h.service.RenderStats()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to count renders")
		h.writeError(w, http.StatusInternalServerError, "Failed to list renders")
		return
	}

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"renders":  entries,
		"count":    len(entries),
		"byStatus": stats,
	})
}

// HandleGetInstance handles GET /api/charts/instances/{id}
func (h *Handler) HandleGetInstance(w http.ResponseWriter, r *http.Request, id string) {
	c, ok := h.service.Manager().Get(id)
	if !ok {
		h.writeError(w, http.StatusNotFound, "Chart instance not found")
		return
	}
	h.writeData(w, http.StatusOK, c.State())
}

// HandleInstanceImage handles GET /api/charts/instances/{id}/image.png
func (h *Handler) HandleInstanceImage(w http.ResponseWriter, r *http.Request, id string) {
	c, ok := h.service.Manager().Get(id)
	if !ok {
		h.writeError(w, http.StatusNotFound, "Chart instance not found")
		return
	}
	if c.State().Generation == 0 {
		h.writeError(w, http.StatusConflict, "Chart has nothing rendered")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := c.DownloadAsImage(r.Context(), w); err != nil {
		h.log.Error().Err(err).Str("chart_id", id).Msg("Failed to write chart image")
	}
}

// HandleDeleteInstance handles DELETE /api/charts/instances/{id}
func (h *Handler) HandleDeleteInstance(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := h.service.Manager().Get(id); !ok {
		h.writeError(w, http.StatusNotFound, "Chart instance not found")
		return
	}
	h.service.Manager().Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, charts.ErrSavedChartNotFound):
		h.writeError(w, http.StatusNotFound, "Saved chart not found")
	case domain.IsConfigurationError(err), errors.Is(err, charts.ErrInvalidSavedChart):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg(message)
		h.writeError(w, http.StatusInternalServerError, message)
	}
}

func (h *Handler) writeData(w http.ResponseWriter, status int, data interface{}) {
	h.writeJSON(w, status, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
