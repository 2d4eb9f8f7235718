package analytics

import (
	"context"
	"sort"
	"time"

	"mood-analytics-service/models"
)

// fakeStore is an in-memory LogStore + RollupStore + RollupReader with
// injectable failures.
type fakeStore struct {
	logs []models.MoodLog
	rows []models.AnalyticsRow

	lockBusy bool
	lockErr  error

	// failFetches makes the next N read calls fail.
	failFetches int
	fetchCalls  int
	insertErr   error
}

func (s *fakeStore) failNext(n int) { s.failFetches = n }

func (s *fakeStore) readErr() error {
	s.fetchCalls++
	if s.failFetches > 0 {
		s.failFetches--
		return errStoreDown
	}
	return nil
}

var errStoreDown = contextlessError("store down")

type contextlessError string

func (e contextlessError) Error() string { return string(e) }

func (s *fakeStore) MoodLogsBetween(_ context.Context, from, to time.Time, countryCode string) ([]models.MoodLog, error) {
	if err := s.readErr(); err != nil {
		return nil, err
	}
	var out []models.MoodLog
	for _, l := range s.logs {
		if !l.CreatedAt.After(from) || l.CreatedAt.After(to) {
			continue
		}
		if countryCode != "" && l.Location.Country != countryCode {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *fakeStore) MoodLogPage(_ context.Context, countryCode string, from time.Time, page, pageSize int) (*models.MoodLogPage, error) {
	if err := s.readErr(); err != nil {
		return nil, err
	}
	var matched []models.MoodLog
	for _, l := range s.logs {
		if l.Location.Country == countryCode && !l.CreatedAt.Before(from) {
			matched = append(matched, l)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	offset := (page - 1) * pageSize
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return &models.MoodLogPage{
		Logs:       matched[offset:end],
		HasMore:    int64(end) < total,
		TotalCount: total,
	}, nil
}

func (s *fakeStore) AcquireRollupLock(context.Context) (func(), bool, error) {
	if s.lockErr != nil {
		return nil, false, s.lockErr
	}
	if s.lockBusy {
		return nil, false, nil
	}
	return func() {}, true, nil
}

func (s *fakeStore) LastProcessedAt(context.Context) (time.Time, bool, error) {
	if err := s.readErr(); err != nil {
		return time.Time{}, false, err
	}
	var latest time.Time
	for _, r := range s.rows {
		if r.LastLogProcessedAt.After(latest) {
			latest = r.LastLogProcessedAt
		}
	}
	return latest, !latest.IsZero(), nil
}

func (s *fakeStore) InsertAnalyticsRow(_ context.Context, row *models.AnalyticsRow) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.rows = append(s.rows, *row)
	return nil
}

func (s *fakeStore) LatestAnalyticsRow(_ context.Context, timeWindow string, since time.Time) (*models.AnalyticsRow, error) {
	if err := s.readErr(); err != nil {
		return nil, err
	}
	var best *models.AnalyticsRow
	for i := range s.rows {
		r := &s.rows[i]
		if r.TimeWindow != timeWindow || !r.CreatedAt.After(since) {
			continue
		}
		if best == nil || r.CreatedAt.After(best.CreatedAt) {
			best = r
		}
	}
	return best, nil
}

func (s *fakeStore) LatestAnalyticsRows(_ context.Context, limit int) ([]models.AnalyticsRow, error) {
	if err := s.readErr(); err != nil {
		return nil, err
	}
	rows := append([]models.AnalyticsRow(nil), s.rows...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// fakeCache is an in-memory Cache that ignores TTLs and records tags.
type fakeCache struct {
	entries map[string]string
	tags    map[string][]string
	sets    int
	gets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]string{}, tags: map[string][]string{}}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	c.gets++
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration, tags ...string) error {
	c.sets++
	c.entries[key] = value
	for _, tag := range tags {
		c.tags[tag] = append(c.tags[tag], key)
	}
	return nil
}

func (c *fakeCache) taggedWith(tag, key string) bool {
	for _, k := range c.tags[tag] {
		if k == key {
			return true
		}
	}
	return false
}

// fakeEmoji resolves a small fixed table.
type fakeEmoji map[string]string

func (f fakeEmoji) Resolve(moodID string) (string, bool) {
	g, ok := f[moodID]
	return g, ok
}

func testEmoji() fakeEmoji {
	return fakeEmoji{"happy": "😀", "sad": "😢", "joy": "😂"}
}
