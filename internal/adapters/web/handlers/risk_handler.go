package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nfvsec/nmtd/internal/core/services/risk"
)

// RiskHandler handles risk specification submissions
type RiskHandler struct {
	Matcher *risk.Matcher
}

// NewRiskHandler creates a new RiskHandler
func NewRiskHandler(matcher *risk.Matcher) *RiskHandler {
	return &RiskHandler{Matcher: matcher}
}

type riskRequest struct {
	CPE          string  `json:"cpe"`
	PrivacyScore float64 `json:"privacy_score"`
	RiskScore    float64 `json:"risk_score"`
}

// HandleApplyRisk matches the submitted platform id against the Catalog and
// pushes privacy/risk scores to every matching instance.
func (h *RiskHandler) HandleApplyRisk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	var req riskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CPE == "" {
		http.Error(w, "Missing cpe", http.StatusBadRequest)
		return
	}

	report, err := h.Matcher.ApplyRisk(r.Context(), req.CPE, req.PrivacyScore, req.RiskScore)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}
