// Package handlers provides HTTP handlers for holdings.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/domain"
	"github.com/vmi/dashboard/internal/modules/holdings"
)

// Handler handles holdings HTTP requests
type Handler struct {
	service *holdings.Service
	userID  int64
	log     zerolog.Logger
}

// NewHandler creates a new holdings handler acting for userID
func NewHandler(service *holdings.Service, userID int64, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		userID:  userID,
		log:     log.With().Str("handler", "holdings").Logger(),
	}
}

// HandleList returns every holding
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), h.userID)
	if err != nil {
		h.writeServiceError(w, err, "Failed to load holdings from database.")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "holdings": list})
}

// HandleGetByTicker returns one holding by ticker
func (h *Handler) HandleGetByTicker(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	holding, err := h.service.GetByTicker(r.Context(), h.userID, ticker)
	if errors.Is(err, domain.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "Holding with ticker "+ticker+" not found.")
		return
	}
	if err != nil {
		h.writeServiceError(w, err, "Failed to fetch holding details.")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "holding": holding})
}

// HandleSave upserts the posted holdings rows
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Holdings []holdings.Row `json:"holdings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	n, err := h.service.SaveRows(r.Context(), h.userID, req.Holdings)
	if err != nil {
		h.writeServiceError(w, err, "Failed to save holdings.")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "count": n})
}

// HandleUpdateNotes replaces a holding's notes
func (h *Handler) HandleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid holding id")
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.service.UpdateNotes(r.Context(), h.userID, id, req.Notes); err != nil {
		h.writeServiceError(w, err, "Failed to update notes.")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// HandleClearAll deletes every holding
func (h *Handler) HandleClearAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.ClearAll(r.Context(), h.userID)
	if err != nil {
		h.writeServiceError(w, err, "Failed to clear holdings.")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "deleted": n})
}

// HandleSummary values all holdings against live prices
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), h.userID)
	if err != nil {
		h.writeServiceError(w, err, "Failed to build holdings summary.")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "summary": summary})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		h.writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, domain.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Msg(fallback)
		h.writeError(w, http.StatusInternalServerError, fallback)
	}
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
