package workers

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"mood-analytics-service/analytics"
)

// warmInterval matches the 1hr view's cache TTL so the hot window is
// re-populated as soon as it expires.
const warmInterval = 5 * time.Minute

// StartWorkers runs the background loops until ctx is canceled: a cache
// warmer for the live 1hr global view and, when interval > 0, an internal
// rollup scheduler. The external cron trigger remains the primary way to
// run rollups; the scheduler is for deployments without one.
func StartWorkers(ctx context.Context, job *analytics.Rollup, query *analytics.Query, rollupInterval time.Duration) {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		warmHourlyView(ctx, query)
	}()

	if rollupInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scheduleRollups(ctx, job, rollupInterval)
		}()
		log.Printf("Started internal rollup scheduler (every %s)", rollupInterval)
	}

	<-ctx.Done()
	log.Println("Stopping background workers...")
	wg.Wait()
	log.Println("All background workers stopped")
}

func warmHourlyView(ctx context.Context, query *analytics.Query) {
	ticker := time.NewTicker(warmInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// A read re-populates the cache when the TTL lapsed.
			if _, err := query.GlobalMoods(ctx, "1hr"); err != nil {
				log.Printf("Warning: hourly view warmup failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func scheduleRollups(ctx context.Context, job *analytics.Rollup, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			result, err := job.Run(ctx)
			if err != nil {
				if errors.Is(err, analytics.ErrRollupInProgress) {
					log.Println("Skipping scheduled rollup: another run in progress")
					continue
				}
				log.Printf("Scheduled rollup failed: %v", err)
				continue
			}
			log.Printf("Scheduled rollup processed %d logs", result.Processed)
		case <-ctx.Done():
			return
		}
	}
}
