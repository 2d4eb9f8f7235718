package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"mood-analytics-service/analytics"
	"mood-analytics-service/config"
	"mood-analytics-service/db"
	"mood-analytics-service/emoji"
	"mood-analytics-service/handlers"
	"mood-analytics-service/middleware"
	"mood-analytics-service/moods"
	"mood-analytics-service/workers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to PostgreSQL
	pgDB, err := db.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pgDB.Close()
	log.Println("Connected to PostgreSQL")

	// Connect to Redis
	redisDB, err := db.NewRedisDB(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisDB.Close()
	log.Println("Connected to Redis")

	// One-time emoji table setup, before any request needs it
	resolver := emoji.NewResolver()
	resolver.Init()

	guard := moods.NewGuard(pgDB, redisDB, resolver, cfg.MaxDailyUpdates)
	query := analytics.NewQuery(pgDB, pgDB, redisDB, resolver)
	rollup := analytics.NewRollup(pgDB, pgDB)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start background workers
	go workers.StartWorkers(ctx, rollup, query, cfg.RollupInterval)

	// Wrap API handlers with middleware chain
	submitMoodHandler := middleware.Chain(
		handlers.SubmitMood(guard, handlers.HeaderUserResolver),
		middleware.RateLimit(redisDB, 100, time.Minute),
		middleware.Logger,
	)
	latestMoodHandler := middleware.Chain(
		handlers.LatestMood(guard, handlers.HeaderUserResolver),
		middleware.RateLimit(redisDB, 100, time.Minute),
		middleware.Logger,
	)
	globalMoodsHandler := middleware.Chain(
		handlers.GlobalMoods(query),
		middleware.RateLimit(redisDB, 100, time.Minute),
		middleware.Logger,
	)
	countryMoodsHandler := middleware.Chain(
		handlers.CountryMoods(query),
		middleware.RateLimit(redisDB, 100, time.Minute),
		middleware.Logger,
	)
	countryLogsHandler := middleware.Chain(
		handlers.CountryLogs(query),
		middleware.RateLimit(redisDB, 100, time.Minute),
		middleware.Logger,
	)
	// Secret-guarded endpoints skip the per-IP limiter
	cronHandler := middleware.Chain(
		handlers.RunAnalytics(rollup, cfg.CronSecret),
		middleware.Logger,
	)
	revalidateHandler := middleware.Chain(
		handlers.Revalidate(redisDB, cfg.RevalidateToken),
		middleware.Logger,
	)

	// Manual API router: full control over path matching
	apiRouter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api")
		if path == "" {
			path = "/"
		}

		switch {
		case r.Method == http.MethodPost && path == "/moods":
			submitMoodHandler.ServeHTTP(w, r)
		case r.Method == http.MethodGet && path == "/moods/latest":
			latestMoodHandler.ServeHTTP(w, r)
		case r.Method == http.MethodGet && path == "/analytics/global":
			globalMoodsHandler.ServeHTTP(w, r)
		case r.Method == http.MethodGet && strings.HasPrefix(path, "/analytics/country/"):
			countryMoodsHandler.ServeHTTP(w, r)
		case r.Method == http.MethodGet && strings.HasPrefix(path, "/analytics/logs/"):
			countryLogsHandler.ServeHTTP(w, r)
		case r.Method == http.MethodGet && path == "/cron/analytics":
			cronHandler.ServeHTTP(w, r)
		case r.Method == http.MethodPost && path == "/revalidate":
			revalidateHandler.ServeHTTP(w, r)
		case r.Method == http.MethodOptions:
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", middleware.CORS(cfg.FrontendURL, apiRouter))
	mux.Handle("/health", handlers.Health())
	mux.Handle("/ready", handlers.Readiness(pgDB, redisDB))
	mux.Handle("/metrics", handlers.Metrics())

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path != "/health" && path != "/ready" && path != "/metrics" {
			handlers.IncrementRequestCount()
		}
		mux.ServeHTTP(w, r)
	})

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Stop background workers
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
