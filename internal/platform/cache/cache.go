// Package cache provides an optional Redis read-through cache for the hot
// list endpoints (categories, tests by category). When REDIS_URL is unset the
// Noop store is used and every read goes to Postgres.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/saifulla-23/lab-test-wizard/internal/platform/events"
)

// Store is the minimal cache surface the domain services depend on.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

// Cache keys. Taxonomy lists are small and read on every screen load.
const (
	KeyCategories  = "taxonomy:categories"
	KeyTestsPrefix = "taxonomy:tests:" // + category id
	KeyAllTests    = "taxonomy:tests:all"
)

func TestsKey(categoryID string) string { return KeyTestsPrefix + categoryID }

// Redis is a Store backed by a Redis server.
type Redis struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedis connects using a redis:// URL and verifies the connection.
func NewRedis(ctx context.Context, url string, log zerolog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Redis{rdb: rdb, log: log}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

func (r *Redis) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		r.log.Warn().Err(err).Strs("keys", keys).Msg("cache delete failed")
	}
}

func (r *Redis) Close() error { return r.rdb.Close() }

// Noop is the disabled cache: misses on every read, drops every write.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (Noop) Set(context.Context, string, []byte, time.Duration) {}
func (Noop) Delete(context.Context, ...string)                  {}

// Invalidator returns an event handler that drops taxonomy list keys whenever
// a taxonomy write is published on the bus.
func Invalidator(store Store) events.Handler {
	return func(e events.Event) {
		ctx := context.Background()
		keys := []string{KeyCategories, KeyAllTests}
		if e.ID != "" {
			keys = append(keys, TestsKey(e.ID))
		}
		store.Delete(ctx, keys...)
	}
}
