package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"mood-analytics-service/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeError maps domain errors to HTTP responses. Unknown errors are
// logged and masked as a 500.
func writeError(w http.ResponseWriter, err error) {
	var validation *models.ValidationError
	var unauthenticated *models.UnauthenticatedError
	var notFound *models.NotFoundError
	var rateLimited *models.RateLimitError

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validation.Message})
	case errors.As(err, &unauthenticated):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": unauthenticated.Message})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": notFound.Message})
	case errors.As(err, &rateLimited):
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": rateLimited.Error()})
	default:
		log.Printf("Internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}
