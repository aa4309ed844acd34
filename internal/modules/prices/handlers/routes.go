package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers price routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/prices", h.HandleGetPrices) // ?tickers=A,B,C
}
