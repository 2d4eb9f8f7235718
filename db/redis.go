package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDB is the query-result cache and rate-limit counter store. Cached
// keys can carry tags; a tag is a Redis set of member keys so a write path
// can invalidate a whole group at once (push-based, on top of the TTLs).
type RedisDB struct {
	client *redis.Client
}

func NewRedisDB(redisURL string) (*RedisDB, error) {
	var opt *redis.Options

	// Try parsing as URL first
	if parsed, err := redis.ParseURL(fmt.Sprintf("redis://%s", redisURL)); err == nil {
		opt = parsed
	} else {
		// Try as simple host:port
		opt = &redis.Options{
			Addr: redisURL,
		}
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 5

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisDB{client: client}, nil
}

func (r *RedisDB) Close() error {
	return r.client.Close()
}

func (r *RedisDB) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get returns a cached value. hit is false on a miss.
func (r *RedisDB) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key: %w", err)
	}
	return val, true, nil
}

// Set stores a value with a TTL and registers the key under each tag.
func (r *RedisDB) Set(ctx context.Context, key, value string, ttl time.Duration, tags ...string) error {
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, value, ttl)
	for _, tag := range tags {
		pipe.SAdd(ctx, tagKey(tag), key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

// Delete removes a single key.
func (r *RedisDB) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// InvalidateTag drops every key registered under a tag, then the tag set
// itself. Members whose keys already expired are harmless no-ops.
func (r *RedisDB) InvalidateTag(ctx context.Context, tag string) error {
	members, err := r.client.SMembers(ctx, tagKey(tag)).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to read tag set: %w", err)
	}
	if len(members) > 0 {
		if err := r.client.Del(ctx, members...).Err(); err != nil {
			return fmt.Errorf("failed to delete tagged keys: %w", err)
		}
	}
	if err := r.client.Del(ctx, tagKey(tag)).Err(); err != nil {
		return fmt.Errorf("failed to delete tag set: %w", err)
	}
	return nil
}

// Incr increments a counter, setting the window TTL on first use.
// Used by the HTTP rate limiter.
func (r *RedisDB) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	val, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment key: %w", err)
	}
	if val == 1 {
		r.client.Expire(ctx, key, window)
	}
	return val, nil
}

func tagKey(tag string) string {
	return "tag:" + tag
}
