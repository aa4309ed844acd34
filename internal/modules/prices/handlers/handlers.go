// Package handlers provides HTTP handlers for live price lookups.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/modules/prices"
)

// Handler handles price HTTP requests
type Handler struct {
	service *prices.Service
	log     zerolog.Logger
}

// NewHandler creates a new prices handler
func NewHandler(service *prices.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "prices").Logger(),
	}
}

type priceEntry struct {
	AsOf  *string `json:"asOf"`
	Price float64 `json:"price"`
	Stale bool    `json:"stale"`
}

// HandleGetPrices returns quotes for ?tickers=A,B,C
func (h *Handler) HandleGetPrices(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("tickers")
	symbols := prices.ParseTickers(raw)
	if len(symbols) == 0 {
		msg := "No tickers parameter provided."
		if raw != "" {
			msg = "No valid tickers found."
		}
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"prices":  map[string]priceEntry{},
			"errors":  map[string]string{"_global": msg},
		})
		return
	}

	quotes, errs := h.service.Lookup(r.Context(), symbols)

	out := make(map[string]priceEntry, len(quotes))
	for sym, q := range quotes {
		e := priceEntry{Price: q.Price, Stale: q.Stale}
		if q.AsOf != "" {
			asOf := q.AsOf
			e.AsOf = &asOf
		}
		out[sym] = e
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": len(out) > 0,
		"prices":  out,
		"errors":  errs,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
