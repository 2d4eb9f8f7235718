package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"mood-analytics-service/db"
	"mood-analytics-service/utils"
)

// RateLimit middleware implements per-IP rate limiting using Redis.
// Distinct from the domain-level 24h mood-update limit; this one protects
// the HTTP surface itself.
func RateLimit(redisDB *db.RedisDB, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ExtractIP(r)

			key := fmt.Sprintf("ratelimit:%s:%s", ip, r.URL.Path)

			ctx := r.Context()
			count, err := redisDB.Incr(ctx, key, window)
			if err != nil {
				// If Redis fails, allow the request (fail open)
				log.Printf("Rate limit check failed: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			if count > int64(limit) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprintf(w, `{"error":"Rate limit exceeded"}`)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
