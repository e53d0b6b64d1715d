// Package cache is the Redis-backed metrics cache. A fresh cache entry lets
// repeat scrapes of a profile short-circuit before touching the vendor.
package cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vadim/social-pulse/internal/domain/metrics/entity"
)

// Config holds Redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
}

// MetricsCache stores normalized profile metrics keyed by platform and
// username. Entries are gzip-compressed; synthetic snapshots carry a lot of
// repetitive series data.
type MetricsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// cacheEntry wraps the metrics with the bookkeeping fields the entity keeps
// out of its JSON form
type cacheEntry struct {
	Metrics *entity.ProfileMetrics `json:"metrics"`
	Source  entity.DataSource      `json:"source"`
}

// New creates a MetricsCache with the given TTL
func New(cfg Config, ttl time.Duration) *MetricsCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &MetricsCache{client: client, ttl: ttl}
}

// Ping verifies the Redis connection
func (c *MetricsCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool
func (c *MetricsCache) Close() error {
	return c.client.Close()
}

// Get returns the cached metrics for a profile, or nil on a miss
func (c *MetricsCache) Get(ctx context.Context, platform entity.Platform, username string) (*entity.ProfileMetrics, error) {
	val, err := c.client.Get(ctx, cacheKey(platform, username)).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	decompressed, err := decompress(val)
	if err != nil {
		return nil, fmt.Errorf("decompressing cache entry: %w", err)
	}

	var entry cacheEntry
	if err := json.Unmarshal(decompressed, &entry); err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}
	if entry.Metrics != nil {
		entry.Metrics.Source = entry.Source
	}

	return entry.Metrics, nil
}

// Set stores metrics for a profile under the configured TTL
func (c *MetricsCache) Set(ctx context.Context, m *entity.ProfileMetrics) error {
	val, err := json.Marshal(cacheEntry{Metrics: m, Source: m.Source})
	if err != nil {
		return err
	}

	compressed, err := compress(val)
	if err != nil {
		return fmt.Errorf("compressing cache entry: %w", err)
	}

	return c.client.Set(ctx, cacheKey(m.Platform, m.Username), compressed, c.ttl).Err()
}

func cacheKey(platform entity.Platform, username string) string {
	return fmt.Sprintf("metrics:%s:%s", platform, username)
}

func compress(data []byte) ([]byte, error) {
	var b bytes.Buffer
	w := gzip.NewWriter(&b)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
