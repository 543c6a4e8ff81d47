package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is the Redis connection shared by the auth rate limiter and the
// readiness probe.
type Client struct {
	rdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
	// Timeout bounds dial, read and write. Zero means two seconds.
	Timeout time.Duration
}

// Connect dials and pings once so callers can fall back to per-instance
// limiting when Redis is down at startup.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   "journal-api",
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		PoolSize:     10,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
	}

	return &Client{rdb: rdb}, nil
}

// Ready is the readiness check.
func (c *Client) Ready(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Cmdable is what the rate limiter pipelines against.
func (c *Client) Cmdable() redis.Cmdable {
	return c.rdb
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
