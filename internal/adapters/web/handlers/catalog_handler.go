package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/nfvsec/nmtd/internal/core/domain"
	"github.com/nfvsec/nmtd/internal/core/ports"
	"github.com/nfvsec/nmtd/internal/core/services/scheduler"
)

// CatalogHandler exposes read-only views of the Catalog inventory and the
// live mutation schedule table.
type CatalogHandler struct {
	Client    ports.CatalogClient
	Scheduler *scheduler.Scheduler
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(client ports.CatalogClient, sched *scheduler.Scheduler) *CatalogHandler {
	return &CatalogHandler{Client: client, Scheduler: sched}
}

type serviceSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	State          string `json:"state"`
	ServiceOrderID string `json:"service_order_id,omitempty"`
	CPE            string `json:"cpe,omitempty"`
	MutationRules  int    `json:"mutation_rules"`
}

// HandleListServices returns a summary of every instance in the Catalog.
func (h *CatalogHandler) HandleListServices(w http.ResponseWriter, r *http.Request) {
	instances, err := h.Client.ListServiceInstances(r.Context())
	if err != nil {
		log.Printf("Failed to list service instances: %v", err)
		respondError(w, err)
		return
	}

	summaries := make([]serviceSummary, 0, len(instances))
	for _, inst := range instances {
		summaries = append(summaries, summarize(inst))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"services": summaries})
}

// HandleSchedules returns the armed mutation schedules.
func (h *CatalogHandler) HandleSchedules(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"schedules": h.Scheduler.Snapshot()})
}

func summarize(inst domain.ServiceInstance) serviceSummary {
	rules := 0
	for _, c := range inst.Characteristics {
		if strings.HasPrefix(c.Name, domain.MutationPrefix) {
			rules++
		}
	}
	return serviceSummary{
		ID:             inst.ID,
		Name:           inst.Name,
		State:          inst.State,
		ServiceOrderID: inst.ServiceOrderID,
		CPE:            inst.CPE(),
		MutationRules:  rules,
	}
}
