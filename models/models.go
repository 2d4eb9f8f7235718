package models

import (
	"fmt"
	"time"
)

// Location is the geolocation attached to a mood log. Country is an
// ISO-3166 alpha-2 code and may be empty when geolocation failed.
type Location struct {
	Country string `json:"country"`
	City    string `json:"city,omitempty"`
	Region  string `json:"region,omitempty"`
}

// MoodLog represents one user's mood observation
type MoodLog struct {
	ID          string    `json:"id"`
	MoodID      string    `json:"mood_id"`
	MoodContent string    `json:"mood_content,omitempty"`
	UserID      string    `json:"user_id"`
	SpamCount   int       `json:"spam_count"`
	Location    Location  `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
}

// CountryAggregate is the per-country mood tally for one time slice.
// Total always equals the sum of MoodCounts values.
type CountryAggregate struct {
	MoodCounts map[string]int64 `json:"moodCounts"`
	Total      int64            `json:"total"`
}

// AnalyticsSnapshot maps country code -> aggregate for one rollup interval.
// Immutable once persisted as an AnalyticsRow.
type AnalyticsSnapshot map[string]*CountryAggregate

// AnalyticsRow is one persisted rollup. Rows are append-only and never
// mutated; LastLogProcessedAt is the checkpoint for the next run.
type AnalyticsRow struct {
	TimeWindow         string            `json:"time_window"`
	Analytics          AnalyticsSnapshot `json:"analytics"`
	LogsCount          int64             `json:"logs_count"`
	LastLogProcessedAt time.Time         `json:"last_log_processed_at"`
	CreatedAt          time.Time         `json:"created_at"`
}

// GlobalMood is the most frequent mood for one country in a window.
type GlobalMood struct {
	MoodID string `json:"mood_id"`
	Emoji  string `json:"emoji"`
}

// GlobalMoodsView maps country code -> dominant mood. Derived, not persisted.
type GlobalMoodsView map[string]GlobalMood

// CountryMood is one entry of a country's mood distribution.
type CountryMood struct {
	MoodID string `json:"mood_id"`
	Emoji  string `json:"emoji"`
	Total  int64  `json:"total"`
}

// MoodLogPage is one page of raw logs for a country and window.
type MoodLogPage struct {
	Logs       []MoodLog `json:"logs"`
	HasMore    bool      `json:"has_more"`
	TotalCount int64     `json:"total_count"`
}

// Error types

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

type UnauthenticatedError struct {
	Message string
}

func (e *UnauthenticatedError) Error() string {
	return e.Message
}

// RateLimitError is returned when a user has exhausted their mood updates
// for the rolling 24h window. ResetAt is when the window opens again.
type RateLimitError struct {
	ResetAt time.Time
	Limit   int
}

func (e *RateLimitError) Error() string {
	remaining := time.Until(e.ResetAt)
	if remaining < 0 {
		remaining = 0
	}
	hours := int(remaining.Hours())
	minutes := int(remaining.Minutes()) % 60
	return fmt.Sprintf("You've reached the maximum number of mood updates for today (%d). You can log your mood again in %dh %dm.", e.Limit, hours, minutes)
}
