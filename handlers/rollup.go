package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"mood-analytics-service/analytics"
)

// RunAnalytics handles GET /api/cron/analytics, the external scheduler's
// trigger for the daily rollup. Guarded by a bearer secret.
func RunAnalytics(job *analytics.Rollup, cronSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if cronSecret == "" || r.Header.Get("Authorization") != "Bearer "+cronSecret {
			log.Println("Unauthorized rollup trigger: invalid cron secret")
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}

		result, err := job.Run(r.Context())
		if err != nil {
			if errors.Is(err, analytics.ErrRollupInProgress) {
				writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
				return
			}
			log.Printf("Rollup run failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"processed":  result.Processed,
			"checkpoint": result.Checkpoint.UTC().Format(time.RFC3339),
		})
	}
}
