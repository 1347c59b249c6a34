// Package handlers exposes the reference dataset service over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aristath/chartpresets/internal/clients/datasetapi"
	"github.com/aristath/chartpresets/internal/modules/datasets"
	"github.com/rs/zerolog"
)

const maxRequestBytes = 1 << 20

// Handler handles dataset query requests
type Handler struct {
	service *datasets.Service
	log     zerolog.Logger
}

// NewHandler creates a new dataset handler
func NewHandler(service *datasets.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "datasets").Logger(),
	}
}

// HandleQuery handles POST /api/datasets/query
// Body and response are both {"payload": "<sealed>"}.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var req datasetapi.Envelope
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	payload, err := h.service.Query(r.Context(), req.Payload)
	if err != nil {
		switch {
		case errors.Is(err, datasetapi.ErrMalformedPayload), errors.Is(err, datasets.ErrInvalidQuery):
			h.log.Warn().Err(err).Msg("Rejected dataset query")
			h.writeError(w, http.StatusBadRequest, "Invalid dataset query")
		default:
			h.log.Error().Err(err).Msg("Dataset query failed")
			h.writeError(w, http.StatusInternalServerError, "Dataset query failed")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, datasetapi.Envelope{Payload: payload})
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
