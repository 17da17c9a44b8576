package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	runLockKey    = "reconciler:run_lock"
	checkpointKey = "reconciler:checkpoint"
)

// Client wraps Redis operations for run coordination: a lock so overlapping
// scheduled runs never interleave, and a checkpoint of the last reconciled
// event time so subsequent runs fetch incrementally.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Health checks Redis connectivity.
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// AcquireRunLock attempts to take the run lock. Returns false when another
// run holds it. The TTL bounds how long a crashed run can block successors.
func (c *Client) AcquireRunLock(ctx context.Context, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, runLockKey, "locked", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx failed: %w", err)
	}
	return ok, nil
}

// ReleaseRunLock releases the run lock.
func (c *Client) ReleaseRunLock(ctx context.Context) error {
	return c.rdb.Del(ctx, runLockKey).Err()
}

// Checkpoint returns the last reconciled event time. A zero time means no
// checkpoint exists and the run should fetch from the beginning.
func (c *Client) Checkpoint(ctx context.Context) (time.Time, error) {
	val, err := c.rdb.Get(ctx, checkpointKey).Result()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get failed: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid checkpoint value: %w", err)
	}
	return t, nil
}

// SetCheckpoint stores the last reconciled event time.
func (c *Client) SetCheckpoint(ctx context.Context, t time.Time) error {
	return c.rdb.Set(ctx, checkpointKey, t.UTC().Format(time.RFC3339Nano), 0).Err()
}
