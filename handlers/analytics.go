package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"mood-analytics-service/analytics"
	"mood-analytics-service/models"
	"mood-analytics-service/utils"
)

// periodParam reads the ?period= query parameter, defaulting to "1hr".
func periodParam(r *http.Request) string {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "1hr"
	}
	return period
}

// lastPathSegment pulls the trailing element of a path like
// /api/analytics/country/{code}, tolerating the /api prefix.
func lastPathSegment(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// GlobalMoods handles GET /api/analytics/global?period=1hr|24hr|week|month|year
func GlobalMoods(query *analytics.Query) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		view, err := query.GlobalMoods(r.Context(), periodParam(r))
		if err != nil {
			var validation *models.ValidationError
			if errors.As(err, &validation) {
				writeError(w, err)
				return
			}
			// Degrade to a null view after retries are exhausted.
			log.Printf("Error fetching global moods: %v", err)
			writeJSON(w, http.StatusOK, nil)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

// CountryMoods handles GET /api/analytics/country/{code}?period=...
func CountryMoods(query *analytics.Query) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		code := strings.ToUpper(lastPathSegment(r.URL.Path))
		if !utils.IsCountryCode(code) {
			http.Error(w, "Valid country code required", http.StatusBadRequest)
			return
		}

		moods, err := query.CountryMoods(r.Context(), periodParam(r), code)
		if err != nil {
			var validation *models.ValidationError
			if errors.As(err, &validation) {
				writeError(w, err)
				return
			}
			log.Printf("Error fetching country moods: %v", err)
			writeJSON(w, http.StatusOK, nil)
			return
		}

		writeJSON(w, http.StatusOK, moods)
	}
}

// CountryLogs handles GET /api/analytics/logs/{code}?period=...&page=...&page_size=...
func CountryLogs(query *analytics.Query) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		code := strings.ToUpper(lastPathSegment(r.URL.Path))
		if !utils.IsCountryCode(code) {
			http.Error(w, "Valid country code required", http.StatusBadRequest)
			return
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

		result, err := query.UserMoodLogs(r.Context(), periodParam(r), code, page, pageSize)
		if err != nil {
			var validation *models.ValidationError
			if errors.As(err, &validation) {
				writeError(w, err)
				return
			}
			log.Printf("Error fetching country logs: %v", err)
			writeJSON(w, http.StatusOK, nil)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
