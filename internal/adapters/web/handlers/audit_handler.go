package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/nfvsec/nmtd/internal/core/ports"
)

// AuditHandler handles activity trail queries
type AuditHandler struct {
	Repo ports.EventRepository
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(repo ports.EventRepository) *AuditHandler {
	return &AuditHandler{Repo: repo}
}

// HandleGetEvents returns recent activity events, newest first.
func (h *AuditHandler) HandleGetEvents(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	events, err := h.Repo.ListEvents(limit)
	if err != nil {
		log.Printf("Failed to fetch events: %v", err)
		http.Error(w, "Failed to fetch events", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}
