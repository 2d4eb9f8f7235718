package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"mood-analytics-service/models"
)

// stubStore backs the analytics and moods constructors in handler tests.
// Every read serves from memory; err fails all calls.
type stubStore struct {
	logs []models.MoodLog
	rows []models.AnalyticsRow

	err      error
	lockBusy bool
}

func (s *stubStore) MoodLogsBetween(context.Context, time.Time, time.Time, string) ([]models.MoodLog, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.logs, nil
}

func (s *stubStore) MoodLogPage(context.Context, string, time.Time, int, int) (*models.MoodLogPage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.MoodLogPage{Logs: s.logs, TotalCount: int64(len(s.logs))}, nil
}

func (s *stubStore) AcquireRollupLock(context.Context) (func(), bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	if s.lockBusy {
		return nil, false, nil
	}
	return func() {}, true, nil
}

func (s *stubStore) LastProcessedAt(context.Context) (time.Time, bool, error) {
	if s.err != nil {
		return time.Time{}, false, s.err
	}
	return time.Time{}, false, nil
}

func (s *stubStore) InsertAnalyticsRow(_ context.Context, row *models.AnalyticsRow) error {
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, *row)
	return nil
}

func (s *stubStore) LatestAnalyticsRow(context.Context, string, time.Time) (*models.AnalyticsRow, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.rows) == 0 {
		return nil, nil
	}
	return &s.rows[len(s.rows)-1], nil
}

func (s *stubStore) LatestAnalyticsRows(context.Context, int) ([]models.AnalyticsRow, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *stubStore) UserMoodLogsSince(_ context.Context, userID string, since time.Time) ([]models.MoodLog, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.MoodLog
	for _, l := range s.logs {
		if l.UserID == userID && !l.CreatedAt.Before(since) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *stubStore) SwapUserMoodLog(_ context.Context, _ string, _ time.Time, entry *models.MoodLog) error {
	if s.err != nil {
		return s.err
	}
	s.logs = append(s.logs, *entry)
	return nil
}

func (s *stubStore) LatestUserMoodLog(_ context.Context, userID string) (*models.MoodLog, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := len(s.logs) - 1; i >= 0; i-- {
		if s.logs[i].UserID == userID {
			return &s.logs[i], nil
		}
	}
	return nil, &models.NotFoundError{Message: "no mood log found"}
}

type stubEmoji map[string]string

func (e stubEmoji) Resolve(moodID string) (string, bool) {
	g, ok := e[moodID]
	return g, ok
}

type stubInvalidator struct {
	tags []string
	err  error
}

func (c *stubInvalidator) InvalidateTag(_ context.Context, tag string) error {
	if c.err != nil {
		return c.err
	}
	c.tags = append(c.tags, tag)
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}
