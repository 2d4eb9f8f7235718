package handlers

import (
	"context"
	"log"
	"net/http"

	"mood-analytics-service/analytics"
)

// TagInvalidator drops a cache tag and every key registered under it.
type TagInvalidator interface {
	InvalidateTag(ctx context.Context, tag string) error
}

// Revalidate handles POST /api/revalidate. Clears every cached analytics
// view. Guarded by a shared secret header.
func Revalidate(cache TagInvalidator, token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if token == "" || r.Header.Get("X-Revalidate-Token") != token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}

		if err := cache.InvalidateTag(r.Context(), analytics.TagAnalytics); err != nil {
			log.Printf("Error clearing analytics cache: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to clear analytics cache"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "Analytics cache cleared successfully"})
	}
}
