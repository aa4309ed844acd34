// Package handlers provides HTTP handlers for the transaction ledger.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/domain"
	"github.com/vmi/dashboard/internal/modules/transactions"
)

// Handler handles transaction HTTP requests
type Handler struct {
	service *transactions.Service
	userID  int64
	log     zerolog.Logger
}

// NewHandler creates a new transactions handler acting for userID
func NewHandler(service *transactions.Service, userID int64, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		userID:  userID,
		log:     log.With().Str("handler", "transactions").Logger(),
	}
}

// HandlePost records a ledger posting
func (h *Handler) HandlePost(w http.ResponseWriter, r *http.Request) {
	var req transactions.PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	t, err := h.service.Post(r.Context(), h.userID, req)
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		h.writeError(w, http.StatusBadRequest, ve.Error())
		return
	case err != nil:
		h.log.Error().Err(err).Msg("Failed to post transaction")
		h.writeError(w, http.StatusInternalServerError, "Failed to save transaction.")
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":       true,
		"transactionId": t.ID,
		"uuid":          t.UUID,
	})
}

// HandleList returns the ledger, optionally filtered by accountId and symbol
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := transactions.Filter{Symbol: r.URL.Query().Get("symbol")}
	if raw := r.URL.Query().Get("accountId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid accountId")
			return
		}
		filter.AccountID = id
	}

	list, err := h.service.List(r.Context(), h.userID, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		h.writeError(w, http.StatusInternalServerError, "Failed to load transactions.")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "transactions": list})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]interface{}{"success": false, "message": message})
}
