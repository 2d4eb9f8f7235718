package analytics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mood-analytics-service/models"
)

// LogStore reads raw mood log events.
type LogStore interface {
	// MoodLogsBetween returns logs with created_at in (from, to],
	// optionally filtered by country code.
	MoodLogsBetween(ctx context.Context, from, to time.Time, countryCode string) ([]models.MoodLog, error)
	// MoodLogPage returns one page of a country's logs since from,
	// ordered by created_at descending.
	MoodLogPage(ctx context.Context, countryCode string, from time.Time, page, pageSize int) (*models.MoodLogPage, error)
}

// RollupStore appends analytics rows and tracks the processing checkpoint.
type RollupStore interface {
	// AcquireRollupLock takes the run-level mutual exclusion lock.
	// ok is false when another run holds it. release must be called
	// when ok is true.
	AcquireRollupLock(ctx context.Context) (release func(), ok bool, err error)
	// LastProcessedAt returns the max checkpoint across all rows;
	// ok is false when no row exists yet.
	LastProcessedAt(ctx context.Context) (checkpoint time.Time, ok bool, err error)
	InsertAnalyticsRow(ctx context.Context, row *models.AnalyticsRow) error
}

// ErrRollupInProgress is returned when a rollup run is refused because
// another run holds the lock.
var ErrRollupInProgress = errors.New("rollup already in progress")

// RollupResult reports one completed rollup run.
type RollupResult struct {
	Processed  int64     `json:"processed"`
	Checkpoint time.Time `json:"checkpoint"`
}

// Rollup folds new mood logs into an appended analytics row. Intended to
// run once per external trigger interval (daily). Every run appends a row,
// even when no new logs exist; empty rollups still advance bookkeeping.
type Rollup struct {
	logs    LogStore
	rollups RollupStore
	now     func() time.Time
}

func NewRollup(logs LogStore, rollups RollupStore) *Rollup {
	return &Rollup{logs: logs, rollups: rollups, now: time.Now}
}

// Run executes one rollup: read checkpoint, fetch logs since it, fold,
// append a new row with the checkpoint advanced. The checkpoint is always
// recomputed from durable state, never carried in process memory. Fetch
// failures abort before any write; persist failures leave no partial row.
func (r *Rollup) Run(ctx context.Context) (*RollupResult, error) {
	release, ok, err := r.rollups.AcquireRollupLock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire rollup lock: %w", err)
	}
	if !ok {
		return nil, ErrRollupInProgress
	}
	defer release()

	now := r.now()

	checkpoint, found, err := r.rollups.LastProcessedAt(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	if !found {
		checkpoint = now.Add(-24 * time.Hour)
	}

	logs, err := r.logs.MoodLogsBetween(ctx, checkpoint, now, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mood logs: %w", err)
	}

	folded := Fold(logs)

	latest := folded.Latest
	if latest.IsZero() {
		// No new logs: carry the prior checkpoint forward.
		latest = checkpoint
	}

	row := &models.AnalyticsRow{
		TimeWindow:         RollupWindow,
		Analytics:          folded.Snapshot,
		LogsCount:          folded.Count,
		LastLogProcessedAt: latest,
		CreatedAt:          now,
	}
	if err := r.rollups.InsertAnalyticsRow(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to insert analytics row: %w", err)
	}

	log.Printf("Rollup complete: %d logs folded, checkpoint %s", folded.Count, latest.UTC().Format(time.RFC3339))

	return &RollupResult{Processed: folded.Count, Checkpoint: latest}, nil
}
