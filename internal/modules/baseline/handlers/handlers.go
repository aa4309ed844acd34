// Package handlers provides the HTTP handler for baseline onboarding.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/domain"
	"github.com/vmi/dashboard/internal/modules/baseline"
)

// Handler handles baseline onboarding requests
type Handler struct {
	service *baseline.Service
	userID  int64
	log     zerolog.Logger
}

// NewHandler creates a new baseline handler acting for userID
func NewHandler(service *baseline.Service, userID int64, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		userID:  userID,
		log:     log.With().Str("handler", "baseline").Logger(),
	}
}

// RegisterRoutes registers the onboarding route
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/baseline", h.HandleCreate)
}

// createRequest accepts the nested contribution object or the flat
// hasContrib/contribAmount/contribFrequency fields of the onboarding form
type createRequest struct {
	baseline.Input
	ContribAmount    *float64 `json:"contribAmount"`
	ContribFrequency string   `json:"contribFrequency"`
	HasContrib       bool     `json:"hasContrib"`
}

func (req createRequest) input() baseline.Input {
	in := req.Input
	if in.Contribution == nil && req.HasContrib && req.ContribAmount != nil {
		in.Contribution = &baseline.ContributionInput{
			Amount:    *req.ContribAmount,
			Frequency: req.ContribFrequency,
		}
	}
	return in
}

// HandleCreate onboards an account from a value snapshot
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	result, err := h.service.Create(r.Context(), h.userID, req.input())
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": ve.Error()})
		return
	case err != nil:
		h.log.Error().Err(err).Msg("Baseline onboarding failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"accountId":     result.AccountID,
		"holdingId":     result.HoldingID,
		"transactionId": result.TransactionID,
		"derivation":    result.Derivation,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
