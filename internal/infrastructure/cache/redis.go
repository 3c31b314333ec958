package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dialTimeout = 5 * time.Second

// OpenRedis connects and pings; idempotency and world locks share the client.
func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db, DialTimeout: dialTimeout})
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("redis %s db %d: %w", addr, db, err)
	}
	return r, nil
}

// Check returns a ping for the health endpoint.
func Check(r *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error { return r.Ping(ctx).Err() }
}
