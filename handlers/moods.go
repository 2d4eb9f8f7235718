package handlers

import (
	"encoding/json"
	"net/http"

	"mood-analytics-service/models"
	"mood-analytics-service/moods"
)

type SubmitMoodRequest struct {
	MoodID      string          `json:"mood_id"`
	MoodContent string          `json:"mood_content"`
	Location    models.Location `json:"location"`
}

type SubmitMoodResponse struct {
	Success          bool           `json:"success"`
	Log              models.MoodLog `json:"log"`
	Emoji            string         `json:"emoji"`
	RemainingUpdates int            `json:"remaining_updates"`
}

// SubmitMood handles POST /api/moods
func SubmitMood(guard *moods.Guard, user UserResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req SubmitMoodRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		result, err := guard.Submit(r.Context(), user(r), req.MoodID, req.MoodContent, req.Location)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, SubmitMoodResponse{
			Success:          true,
			Log:              result.Log,
			Emoji:            result.Emoji,
			RemainingUpdates: result.RemainingUpdates,
		})
	}
}

// LatestMood handles GET /api/moods/latest
func LatestMood(guard *moods.Guard, user UserResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		result, err := guard.Latest(r.Context(), user(r))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
