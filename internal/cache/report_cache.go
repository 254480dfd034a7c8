package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Options configures the Redis connection
type Options struct {
	URL       string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisClient connects to Redis and verifies the connection.
// URL accepts a redis:// URL or a bare host:port address.
func NewRedisClient(ctx context.Context, opts Options, logger *zap.Logger) (*redis.Client, error) {
	clientOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		clientOpts = &redis.Options{Addr: opts.URL}
	}
	if opts.Password != "" {
		clientOpts.Password = opts.Password
	}
	if opts.DB != 0 {
		clientOpts.DB = opts.DB
	}

	client := redis.NewClient(clientOpts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", clientOpts.Addr, err)
	}

	logger.Info("Redis connection established", zap.String("addr", clientOpts.Addr), zap.Int("db", clientOpts.DB))
	return client, nil
}

// ReportCache stores rendered report payloads in Redis
type ReportCache struct {
	client *redis.Client
	prefix string
}

func NewReportCache(client *redis.Client, prefix string) *ReportCache {
	return &ReportCache{client: client, prefix: prefix}
}

// Get returns the payload stored under key. A missing key is not an error.
func (c *ReportCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	return payload, true, nil
}

// Set stores a payload that expires after ttl
func (c *ReportCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

// Ping checks that Redis answers
func (c *ReportCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
