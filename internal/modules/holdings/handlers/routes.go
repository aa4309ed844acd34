package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all holdings routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/holdings", func(r chi.Router) {
		r.Get("/", h.HandleList)                  // All holdings
		r.Post("/", h.HandleSave)                 // Bulk upsert table rows
		r.Delete("/", h.HandleClearAll)           // Clear all
		r.Get("/summary", h.HandleSummary)        // Valued holdings, cards and totals
		r.Get("/{ticker}", h.HandleGetByTicker)   // Single holding by ticker
		r.Put("/{id}/notes", h.HandleUpdateNotes) // Edit notes
	})
}
