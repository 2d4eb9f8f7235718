package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"mood-analytics-service/models"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 10, 3, 0, 0, 0, time.UTC)
}

func newTestRollup(store *fakeStore) *Rollup {
	r := NewRollup(store, store)
	r.now = fixedNow
	return r
}

func TestRollupFirstRunDefaultsCheckpoint(t *testing.T) {
	now := fixedNow()
	store := &fakeStore{logs: []models.MoodLog{
		mkLog("US", "happy", now.Add(-2*time.Hour)),
		mkLog("FR", "sad", now.Add(-30*time.Hour)), // outside default window
	}}

	result, err := newTestRollup(store).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Processed != 1 {
		t.Fatalf("expected 1 processed, got %d", result.Processed)
	}
	if len(store.rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(store.rows))
	}
	row := store.rows[0]
	if row.TimeWindow != RollupWindow {
		t.Fatalf("unexpected window label %q", row.TimeWindow)
	}
	if !row.LastLogProcessedAt.Equal(now.Add(-2 * time.Hour)) {
		t.Fatalf("unexpected checkpoint: %s", row.LastLogProcessedAt)
	}
}

func TestRollupResumesFromCheckpoint(t *testing.T) {
	now := fixedNow()
	checkpoint := now.Add(-10 * time.Hour)
	store := &fakeStore{
		rows: []models.AnalyticsRow{{
			TimeWindow:         RollupWindow,
			Analytics:          models.AnalyticsSnapshot{},
			LastLogProcessedAt: checkpoint,
			CreatedAt:          now.Add(-24 * time.Hour),
		}},
		logs: []models.MoodLog{
			mkLog("US", "happy", checkpoint.Add(-time.Minute)), // already processed
			mkLog("US", "sad", checkpoint.Add(time.Hour)),
			mkLog("DE", "joy", checkpoint.Add(2*time.Hour)),
		},
	}

	result, err := newTestRollup(store).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Processed != 2 {
		t.Fatalf("expected 2 processed, got %d", result.Processed)
	}
	if !result.Checkpoint.Equal(checkpoint.Add(2 * time.Hour)) {
		t.Fatalf("unexpected checkpoint: %s", result.Checkpoint)
	}
	// Checkpoint must never move backwards.
	if result.Checkpoint.Before(checkpoint) {
		t.Fatal("checkpoint regressed")
	}
}

func TestRollupEmptyRunStillAppendsRow(t *testing.T) {
	now := fixedNow()
	checkpoint := now.Add(-5 * time.Hour)
	store := &fakeStore{
		rows: []models.AnalyticsRow{{
			TimeWindow:         RollupWindow,
			LastLogProcessedAt: checkpoint,
			CreatedAt:          now.Add(-24 * time.Hour),
		}},
	}

	result, err := newTestRollup(store).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.rows) != 2 {
		t.Fatalf("expected a new row, got %d rows", len(store.rows))
	}
	appended := store.rows[1]
	if appended.LogsCount != 0 {
		t.Fatalf("expected logs_count 0, got %d", appended.LogsCount)
	}
	if !appended.LastLogProcessedAt.Equal(checkpoint) {
		t.Fatalf("expected checkpoint carried forward, got %s", appended.LastLogProcessedAt)
	}
	if !result.Checkpoint.Equal(checkpoint) {
		t.Fatalf("unexpected result checkpoint: %s", result.Checkpoint)
	}
}

func TestRollupRefusedWhenLockBusy(t *testing.T) {
	store := &fakeStore{lockBusy: true}
	_, err := newTestRollup(store).Run(context.Background())
	if !errors.Is(err, ErrRollupInProgress) {
		t.Fatalf("expected ErrRollupInProgress, got %v", err)
	}
	if len(store.rows) != 0 {
		t.Fatal("no row may be written when the lock is busy")
	}
}

func TestRollupFetchFailureWritesNothing(t *testing.T) {
	store := &fakeStore{}
	store.failNext(2) // checkpoint read and log fetch both fail
	_, err := newTestRollup(store).Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(store.rows) != 0 {
		t.Fatal("fetch failure must abort before any write")
	}
}

func TestRollupPersistFailureSurfaced(t *testing.T) {
	store := &fakeStore{insertErr: errStoreDown}
	_, err := newTestRollup(store).Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(store.rows) != 0 {
		t.Fatal("no partial row may be persisted")
	}
}
