// Package handlers provides HTTP handlers for contribution schedules.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/modules/contributions"
)

// Handler handles contribution schedule HTTP requests
type Handler struct {
	repo   *contributions.Repository
	userID int64
	log    zerolog.Logger
}

// NewHandler creates a new contribution schedule handler
func NewHandler(repo *contributions.Repository, userID int64, log zerolog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		userID: userID,
		log:    log.With().Str("handler", "contributions").Logger(),
	}
}

// RegisterRoutes registers contribution schedule routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/contribution-schedules", h.HandleList)
}

// HandleList returns every schedule with its next due date
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.repo.List(r.Context(), h.userID)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list contribution schedules")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "Failed to load contribution schedules.",
		})
		return
	}

	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"schedules": schedules,
	}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
