// Package handlers provides HTTP handlers for the market health board.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/domain"
	"github.com/vmi/dashboard/internal/modules/gauge"
	"github.com/vmi/dashboard/internal/modules/metrics"
)

// Handler handles metric HTTP requests
type Handler struct {
	service *metrics.Service
	log     zerolog.Logger
}

// NewHandler creates a new metrics handler
func NewHandler(service *metrics.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "metrics").Logger(),
	}
}

// RegisterRoutes registers metric routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/metrics", h.HandleGetMetrics)
	r.Put("/metrics/shiller", h.HandleSetShiller)
	r.Get("/gauges", h.HandleGetGauges)
}

// HandleGetMetrics returns the readings and their tiles. success is false
// when any fetched metric could not be computed.
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build metrics snapshot")
		h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Failed to load metrics.",
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": snap.Complete,
		"metrics": snap.Metrics,
		"tiles":   snap.Tiles,
		"errors":  snap.Errors,
	})
}

// HandleSetShiller stores the hand-entered CAPE value and returns its tile
func (h *Handler) HandleSetShiller(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value *float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Request body must be {\"value\": number}",
		})
		return
	}

	reading, err := h.service.SetShiller(r.Context(), *req.Value)
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": ve.Reason})
		return
	case err != nil:
		h.log.Error().Err(err).Msg("Failed to store Shiller CAPE")
		h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "Failed to save value."})
		return
	}

	resp := map[string]interface{}{"success": true, "metric": reading}
	for _, cfg := range h.service.Catalog() {
		if cfg.Key == metrics.ShillerKey {
			v := reading.Value
			resp["tile"] = gauge.BuildTile(cfg, &v, reading.AsOf)
		}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// HandleGetGauges returns the band configuration for every metric
func (h *Handler) HandleGetGauges(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"gauges":  h.service.Catalog(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
