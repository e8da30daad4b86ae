package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/nfvsec/nmtd/internal/core/domain"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// statusForError maps the domain error taxonomy to HTTP status codes.
// Malformed input is the caller's fault, a missing match is a lookup miss,
// and Catalog trouble surfaces as a gateway failure.
func statusForError(err error) int {
	var decodeErr *domain.DecodeError
	var translationErr *domain.TranslationError
	var matchErr *domain.MatchError
	var syncErr *domain.SyncError

	switch {
	case errors.As(err, &decodeErr), errors.As(err, &translationErr):
		return http.StatusBadRequest
	case errors.As(err, &matchErr):
		return http.StatusNotFound
	case errors.As(err, &syncErr):
		if syncErr.Kind == domain.SyncUnreachable {
			return http.StatusBadGateway
		}
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, statusForError(err), map[string]string{"error": err.Error()})
}
