package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nfvsec/nmtd/internal/core/domain"
	"github.com/nfvsec/nmtd/internal/core/services/policy"
)

// PolicyHandler handles abstract security policy submissions scoped to a
// service order.
type PolicyHandler struct {
	Gateway *policy.Gateway
}

// NewPolicyHandler creates a new PolicyHandler
func NewPolicyHandler(gateway *policy.Gateway) *PolicyHandler {
	return &PolicyHandler{Gateway: gateway}
}

// HandleServiceOrderPolicy translates one policy document and pushes the
// resulting configuration to the order's service instances.
func (h *PolicyHandler) HandleServiceOrderPolicy(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["serviceOrderId"]
	if orderID == "" {
		http.Error(w, "Missing service order id", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1048576)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var doc domain.SecurityPolicyDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	doc.ServiceOrderID = orderID

	config, err := h.Gateway.Translate(r.Context(), doc, body)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, config)
}
