// Package rediscache implements the validity cache on top of Redis.
package rediscache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vertextoedge/validfiles/internal/domain"
	"github.com/vertextoedge/validfiles/internal/port"
)

// Config holds Redis connection settings
type Config struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns the default connection settings
func DefaultConfig() *Config {
	return &Config{
		URL:          "redis://localhost:6379/0",
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Cache implements port.ValidityCache using a Redis client
type Cache struct {
	client *redis.Client
}

// Ensure Cache implements port.ValidityCache
var _ port.ValidityCache = (*Cache)(nil)

// Open connects to Redis and verifies the connection
func Open(ctx context.Context, cfg *Config) (*Cache, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return New(client), nil
}

// New wraps an existing Redis client
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Scan runs one SCAN round
func (c *Cache) Scan(ctx context.Context, cursor uint64, match string, count int64) (uint64, []string, error) {
	keys, next, err := c.client.Scan(ctx, cursor, match, count).Result()
	if err != nil {
		return 0, nil, domain.NewCacheError("scan", err)
	}
	return next, keys, nil
}

// MGet fetches values for keys in order. Missing keys yield nil.
func (c *Cache) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return [][]byte{}, nil
	}

	raw, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, domain.NewCacheError("mget", err)
	}

	values := make([][]byte, len(raw))
	for i, v := range raw {
		switch val := v.(type) {
		case nil:
			values[i] = nil
		case string:
			values[i] = []byte(val)
		case []byte:
			values[i] = val
		default:
			return nil, domain.NewCacheError("mget", fmt.Errorf("unexpected value type %T for key %q", v, keys[i]))
		}
	}
	return values, nil
}

// Set stores value under key with no expiry
func (c *Cache) Set(ctx context.Context, key, value string) error {
	if err := c.client.Set(ctx, key, value, 0).Err(); err != nil {
		return domain.NewCacheError("set", err)
	}
	return nil
}

// Del removes keys
func (c *Cache) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, domain.NewCacheError("del", err)
	}
	return n, nil
}

// Ping checks if the Redis connection is healthy
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return domain.NewCacheError("ping", err)
	}
	return nil
}

// Close closes the Redis client connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client
func (c *Cache) Client() *redis.Client {
	return c.client
}
