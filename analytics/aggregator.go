package analytics

import (
	"time"

	"mood-analytics-service/models"
)

// UnknownCountry buckets logs whose geolocation carries no country code.
const UnknownCountry = "UNKNOWN"

// FoldResult is the outcome of folding a batch of mood logs.
type FoldResult struct {
	Snapshot models.AnalyticsSnapshot
	Count    int64
	// Latest is the max created_at among folded logs; zero when the
	// batch was empty (caller substitutes the prior checkpoint).
	Latest time.Time
}

// Fold groups a batch of mood logs by country and tallies mood counts.
func Fold(logs []models.MoodLog) FoldResult {
	res := FoldResult{Snapshot: models.AnalyticsSnapshot{}}

	for _, log := range logs {
		country := log.Location.Country
		if country == "" {
			country = UnknownCountry
		}

		agg := res.Snapshot[country]
		if agg == nil {
			agg = &models.CountryAggregate{MoodCounts: map[string]int64{}}
			res.Snapshot[country] = agg
		}

		agg.MoodCounts[log.MoodID]++
		agg.Total++
		res.Count++

		if log.CreatedAt.After(res.Latest) {
			res.Latest = log.CreatedAt
		}
	}

	return res
}

// Merge combines snapshots by summing per-country mood counts and totals.
// Input order does not affect the result.
func Merge(snapshots []models.AnalyticsSnapshot) models.AnalyticsSnapshot {
	merged := models.AnalyticsSnapshot{}

	for _, snapshot := range snapshots {
		for country, agg := range snapshot {
			if agg == nil {
				continue
			}

			target := merged[country]
			if target == nil {
				target = &models.CountryAggregate{MoodCounts: map[string]int64{}}
				merged[country] = target
			}

			for moodID, count := range agg.MoodCounts {
				target.MoodCounts[moodID] += count
			}
			target.Total += agg.Total
		}
	}

	return merged
}

// Dominant picks the mood with the highest count in a country aggregate.
// Ties break to the lexicographically smallest mood id so repeated calls
// are stable. Returns "" for an empty aggregate.
func Dominant(agg *models.CountryAggregate) string {
	if agg == nil {
		return ""
	}

	var best string
	var bestCount int64
	for moodID, count := range agg.MoodCounts {
		if count > bestCount || (count == bestCount && (best == "" || moodID < best)) {
			best = moodID
			bestCount = count
		}
	}
	return best
}
