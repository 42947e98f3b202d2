// Package redis dials the optional session-store backend. When no Redis URL
// is configured the server falls back to the in-memory session store, so New
// signals "not configured" with a nil client rather than an error.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"origen/internal/platform/config"
)

// Client wraps the go-redis client so callers get a ready, pinged connection.
type Client struct {
	*redis.Client
}

// New connects to Redis using the configured URL and pool settings. A nil,
// nil return means Redis is not configured and sessions stay in memory.
// Connectivity is verified with a ping before the client is handed out; a
// server that cannot reach its session store should fail at startup, not on
// the first applicant.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Health reports whether the session-store connection still answers.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.Client.Close()
}
