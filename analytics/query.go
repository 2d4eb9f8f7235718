package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"mood-analytics-service/models"
)

// RollupReader reads persisted analytics rows for the query layer.
type RollupReader interface {
	// LatestAnalyticsRow returns the newest row for a window created
	// after since, or nil when none qualifies.
	LatestAnalyticsRow(ctx context.Context, timeWindow string, since time.Time) (*models.AnalyticsRow, error)
	// LatestAnalyticsRows returns up to limit rows, newest first.
	LatestAnalyticsRows(ctx context.Context, limit int) ([]models.AnalyticsRow, error)
}

// Cache stores serialized query results under tagged keys.
type Cache interface {
	Get(ctx context.Context, key string) (value string, hit bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration, tags ...string) error
}

// EmojiResolver maps a mood id to its display glyph.
type EmojiResolver interface {
	Resolve(moodID string) (string, bool)
}

// Query serves the windowed mood views. Results are cached per
// window+scope with fixed TTLs; fetches retry up to three attempts on
// store errors before giving up.
type Query struct {
	logs    LogStore
	rollups RollupReader
	cache   Cache // nil disables caching
	emoji   EmojiResolver
	now     func() time.Time
}

func NewQuery(logs LogStore, rollups RollupReader, cache Cache, emoji EmojiResolver) *Query {
	return &Query{logs: logs, rollups: rollups, cache: cache, emoji: emoji, now: time.Now}
}

// GlobalMoods returns the dominant mood per country for a window. A window
// with no data yields an empty, non-nil view. After three failed attempts
// the last store error is returned; callers degrade to a null view.
func (q *Query) GlobalMoods(ctx context.Context, windowID string) (models.GlobalMoodsView, error) {
	window, ok := LookupWindow(windowID)
	if !ok {
		return nil, &models.ValidationError{Message: fmt.Sprintf("unknown time window %q", windowID)}
	}

	key := "analytics:global:" + window.ID

	var cached models.GlobalMoodsView
	if q.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	view, err := withRetry(maxAttempts, func() (models.GlobalMoodsView, error) {
		snapshot, err := q.windowSnapshot(ctx, window, "")
		if err != nil {
			return nil, err
		}

		view := models.GlobalMoodsView{}
		for country, agg := range snapshot {
			moodID := Dominant(agg)
			if moodID == "" {
				continue
			}
			glyph, _ := q.emoji.Resolve(moodID)
			view[country] = models.GlobalMood{MoodID: moodID, Emoji: glyph}
		}
		return view, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch global moods for %s: %w", window.ID, err)
	}

	tags := []string{TagAnalytics}
	if window.Source == SourceLive {
		tags = append(tags, TagGlobalMoodsHour)
	}
	q.cacheSet(ctx, key, view, window.CacheTTL, tags...)

	return view, nil
}

// CountryMoods returns one country's mood distribution for a window,
// ordered by count descending (mood id ascending on ties). A country with
// no data yields an empty, non-nil distribution.
func (q *Query) CountryMoods(ctx context.Context, windowID, countryCode string) ([]models.CountryMood, error) {
	window, ok := LookupWindow(windowID)
	if !ok {
		return nil, &models.ValidationError{Message: fmt.Sprintf("unknown time window %q", windowID)}
	}
	if countryCode == "" {
		return nil, &models.ValidationError{Message: "country code is required"}
	}

	key := fmt.Sprintf("analytics:country:%s:%s", window.ID, countryCode)

	var cached []models.CountryMood
	if q.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	moods, err := withRetry(maxAttempts, func() ([]models.CountryMood, error) {
		snapshot, err := q.windowSnapshot(ctx, window, countryCode)
		if err != nil {
			return nil, err
		}

		agg := snapshot[countryCode]
		moods := make([]models.CountryMood, 0)
		if agg != nil {
			for moodID, total := range agg.MoodCounts {
				glyph, _ := q.emoji.Resolve(moodID)
				moods = append(moods, models.CountryMood{MoodID: moodID, Emoji: glyph, Total: total})
			}
		}
		sort.Slice(moods, func(i, j int) bool {
			if moods[i].Total != moods[j].Total {
				return moods[i].Total > moods[j].Total
			}
			return moods[i].MoodID < moods[j].MoodID
		})
		return moods, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch country moods for %s/%s: %w", window.ID, countryCode, err)
	}

	q.cacheSet(ctx, key, moods, window.CacheTTL, TagAnalytics)

	return moods, nil
}

// UserMoodLogs returns one page of a country's raw logs for a window,
// newest first. Pages are offset-based and 1-indexed.
func (q *Query) UserMoodLogs(ctx context.Context, windowID, countryCode string, page, pageSize int) (*models.MoodLogPage, error) {
	window, ok := LookupWindow(windowID)
	if !ok {
		return nil, &models.ValidationError{Message: fmt.Sprintf("unknown time window %q", windowID)}
	}
	if countryCode == "" {
		return nil, &models.ValidationError{Message: "country code is required"}
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	key := fmt.Sprintf("analytics:logs:%s:%s:%d:%d", window.ID, countryCode, page, pageSize)

	var cached models.MoodLogPage
	if q.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	from := q.now().Add(-window.Span)
	result, err := withRetry(maxAttempts, func() (*models.MoodLogPage, error) {
		return q.logs.MoodLogPage(ctx, countryCode, from, page, pageSize)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mood logs for %s/%s: %w", window.ID, countryCode, err)
	}

	q.cacheSet(ctx, key, result, 5*time.Minute, TagAnalytics, "country-logs:"+countryCode)

	return result, nil
}

// windowSnapshot produces the aggregate snapshot backing a window: a live
// fold of raw logs for short windows, merged rollup rows otherwise.
// countryCode narrows live folds only; rollup rows are stored whole.
func (q *Query) windowSnapshot(ctx context.Context, window Window, countryCode string) (models.AnalyticsSnapshot, error) {
	now := q.now()

	if window.Source == SourceLive {
		logs, err := q.logs.MoodLogsBetween(ctx, now.Add(-window.Span), now, countryCode)
		if err != nil {
			return nil, err
		}
		return Fold(logs).Snapshot, nil
	}

	if window.RowLimit == 1 {
		// Only a row created within the window counts as fresh.
		row, err := q.rollups.LatestAnalyticsRow(ctx, RollupWindow, now.Add(-window.Span))
		if err != nil {
			return nil, err
		}
		if row == nil {
			return models.AnalyticsSnapshot{}, nil
		}
		return row.Analytics, nil
	}

	rows, err := q.rollups.LatestAnalyticsRows(ctx, window.RowLimit)
	if err != nil {
		return nil, err
	}
	snapshots := make([]models.AnalyticsSnapshot, 0, len(rows))
	for _, row := range rows {
		snapshots = append(snapshots, row.Analytics)
	}
	return Merge(snapshots), nil
}

func (q *Query) cacheGet(ctx context.Context, key string, out any) bool {
	if q.cache == nil {
		return false
	}
	value, hit, err := q.cache.Get(ctx, key)
	if err != nil {
		log.Printf("Warning: cache read failed for %s: %v", key, err)
		return false
	}
	if !hit {
		return false
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		log.Printf("Warning: discarding bad cache entry %s: %v", key, err)
		return false
	}
	return true
}

func (q *Query) cacheSet(ctx context.Context, key string, value any, ttl time.Duration, tags ...string) {
	if q.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("Warning: cache encode failed for %s: %v", key, err)
		return
	}
	if err := q.cache.Set(ctx, key, string(data), ttl, tags...); err != nil {
		log.Printf("Warning: cache write failed for %s: %v", key, err)
	}
}
