package analytics

import (
	"reflect"
	"testing"
	"time"

	"mood-analytics-service/models"
)

func mkLog(country, moodID string, createdAt time.Time) models.MoodLog {
	return models.MoodLog{
		ID:        country + "-" + moodID,
		MoodID:    moodID,
		UserID:    "user-" + moodID,
		Location:  models.Location{Country: country},
		CreatedAt: createdAt,
	}
}

func TestFoldScenario(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	logs := []models.MoodLog{
		mkLog("US", "happy", base),
		mkLog("US", "happy", base.Add(time.Minute)),
		mkLog("US", "sad", base.Add(2*time.Minute)),
		mkLog("FR", "sad", base.Add(3*time.Minute)),
	}

	res := Fold(logs)

	if res.Count != 4 {
		t.Fatalf("expected count 4, got %d", res.Count)
	}
	if !res.Latest.Equal(base.Add(3 * time.Minute)) {
		t.Fatalf("unexpected latest timestamp: %s", res.Latest)
	}

	us := res.Snapshot["US"]
	if us == nil || us.Total != 3 || us.MoodCounts["happy"] != 2 || us.MoodCounts["sad"] != 1 {
		t.Fatalf("unexpected US aggregate: %+v", us)
	}
	fr := res.Snapshot["FR"]
	if fr == nil || fr.Total != 1 || fr.MoodCounts["sad"] != 1 {
		t.Fatalf("unexpected FR aggregate: %+v", fr)
	}
}

func TestFoldTotalsMatchEventCount(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	logs := []models.MoodLog{
		mkLog("US", "happy", base),
		mkLog("DE", "angry", base),
		mkLog("DE", "cry", base),
		mkLog("", "sob", base),
		mkLog("JP", "joy", base),
	}

	res := Fold(logs)

	if res.Count != int64(len(logs)) {
		t.Fatalf("count %d != events %d", res.Count, len(logs))
	}
	var sum int64
	for _, agg := range res.Snapshot {
		sum += agg.Total
	}
	if sum != int64(len(logs)) {
		t.Fatalf("sum of totals %d != events %d", sum, len(logs))
	}
}

func TestFoldMissingCountryBucketsUnknown(t *testing.T) {
	res := Fold([]models.MoodLog{mkLog("", "pensive", time.Now())})
	if res.Snapshot[UnknownCountry] == nil || res.Snapshot[UnknownCountry].Total != 1 {
		t.Fatalf("expected UNKNOWN bucket, got %+v", res.Snapshot)
	}
}

func TestFoldEmptyInput(t *testing.T) {
	res := Fold(nil)
	if res.Count != 0 {
		t.Fatalf("expected count 0, got %d", res.Count)
	}
	if !res.Latest.IsZero() {
		t.Fatalf("expected zero latest timestamp, got %s", res.Latest)
	}
	if len(res.Snapshot) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", res.Snapshot)
	}
}

func snapshotA() models.AnalyticsSnapshot {
	return models.AnalyticsSnapshot{
		"US": {MoodCounts: map[string]int64{"happy": 2, "sad": 1}, Total: 3},
		"FR": {MoodCounts: map[string]int64{"sad": 1}, Total: 1},
	}
}

func snapshotB() models.AnalyticsSnapshot {
	return models.AnalyticsSnapshot{
		"US": {MoodCounts: map[string]int64{"sad": 4}, Total: 4},
		"JP": {MoodCounts: map[string]int64{"joy": 2}, Total: 2},
	}
}

func TestMergeCommutative(t *testing.T) {
	ab := Merge([]models.AnalyticsSnapshot{snapshotA(), snapshotB()})
	ba := Merge([]models.AnalyticsSnapshot{snapshotB(), snapshotA()})

	if !reflect.DeepEqual(ab, ba) {
		t.Fatalf("merge not commutative:\nab=%+v\nba=%+v", ab, ba)
	}

	us := ab["US"]
	if us.Total != 7 || us.MoodCounts["happy"] != 2 || us.MoodCounts["sad"] != 5 {
		t.Fatalf("unexpected merged US aggregate: %+v", us)
	}
}

func TestMergeSingleInputIsIdentity(t *testing.T) {
	merged := Merge([]models.AnalyticsSnapshot{snapshotA()})
	if !reflect.DeepEqual(merged, snapshotA()) {
		t.Fatalf("merge of single snapshot changed it: %+v", merged)
	}
}

func TestMergeSkipsNilAggregates(t *testing.T) {
	in := models.AnalyticsSnapshot{"US": nil}
	merged := Merge([]models.AnalyticsSnapshot{in, snapshotA()})
	if merged["US"].Total != 3 {
		t.Fatalf("unexpected total: %d", merged["US"].Total)
	}
}

func TestDominant(t *testing.T) {
	agg := &models.CountryAggregate{MoodCounts: map[string]int64{"happy": 2, "sad": 1}, Total: 3}
	if got := Dominant(agg); got != "happy" {
		t.Fatalf("expected happy, got %q", got)
	}
}

func TestDominantTieBreakIsStable(t *testing.T) {
	agg := &models.CountryAggregate{MoodCounts: map[string]int64{"happy": 1, "sad": 1}, Total: 2}
	for i := 0; i < 50; i++ {
		if got := Dominant(agg); got != "happy" {
			t.Fatalf("tie-break not stable: got %q on iteration %d", got, i)
		}
	}
}

func TestDominantEmpty(t *testing.T) {
	if got := Dominant(nil); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if got := Dominant(&models.CountryAggregate{MoodCounts: map[string]int64{}}); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
