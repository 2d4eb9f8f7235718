package analytics

import "time"

// Source selects where a window's data comes from.
type Source int

const (
	// SourceLive folds raw mood logs on demand.
	SourceLive Source = iota
	// SourceRollup merges precomputed analytics rows.
	SourceRollup
)

// RollupWindow is the time_window label on persisted analytics rows.
const RollupWindow = "24h"

// Cache tags. Analytics covers every cached view; GlobalMoodsHour is the
// extra tag on the 1hr global view so the write path can invalidate just
// the short window.
const (
	TagAnalytics       = "analytics"
	TagGlobalMoodsHour = "global-moods-hour"
)

// Window describes one queryable time window: where its data comes from,
// how far back it reaches, and how long results may be cached.
type Window struct {
	ID       string
	Source   Source
	Span     time.Duration // lookback for live folds and raw-log queries
	RowLimit int           // rollup rows merged, rollup windows only
	CacheTTL time.Duration
}

var windows = []Window{
	{ID: "1hr", Source: SourceLive, Span: time.Hour, CacheTTL: 5 * time.Minute},
	{ID: "24hr", Source: SourceRollup, Span: 24 * time.Hour, RowLimit: 1, CacheTTL: 24 * time.Hour},
	{ID: "week", Source: SourceRollup, Span: 7 * 24 * time.Hour, RowLimit: 7, CacheTTL: 24 * time.Hour},
	{ID: "month", Source: SourceRollup, Span: 30 * 24 * time.Hour, RowLimit: 30, CacheTTL: 24 * time.Hour},
	{ID: "year", Source: SourceRollup, Span: 365 * 24 * time.Hour, RowLimit: 365, CacheTTL: 24 * time.Hour},
}

// LookupWindow returns the window definition for an identifier like "1hr" or "week".
func LookupWindow(id string) (Window, bool) {
	for _, w := range windows {
		if w.ID == id {
			return w, true
		}
	}
	return Window{}, false
}

// WindowIDs lists the valid window identifiers in display order.
func WindowIDs() []string {
	ids := make([]string, len(windows))
	for i, w := range windows {
		ids[i] = w.ID
	}
	return ids
}
