package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"skipper/internal/logging"
	"skipper/internal/services"
	"skipper/internal/store"
)

const cacheKeyPrefix = "analysis_"

// Cache persists analysis results in a key-value store. Entries older than
// the retention window are treated as misses on read and removed by Sweep.
type Cache struct {
	kv        store.KeyValueStore
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewCache wraps kv with retentionDays of staleness handling.
func NewCache(kv store.KeyValueStore, retentionDays int, logger *slog.Logger) *Cache {
	return &Cache{
		kv:        kv,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logging.NewComponentLogger(logger, "analysis-cache"),
		now:       time.Now,
	}
}

func cacheKey(videoID string) string {
	return cacheKeyPrefix + videoID
}

// Put stores the result under the video's cache key.
func (c *Cache) Put(ctx context.Context, result *Result) error {
	if result == nil || strings.TrimSpace(result.VideoID) == "" {
		return services.Wrap(services.ErrValidation, "analysis-cache", "put", "result with video id required", nil)
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return services.Wrap(services.ErrStorage, "analysis-cache", "put", "encode result", err)
	}
	return c.kv.Set(ctx, cacheKey(result.VideoID), payload)
}

// Get returns the cached result for videoID. Stale or undecodable entries
// are removed and reported as misses so the caller re-analyzes.
func (c *Cache) Get(ctx context.Context, videoID string) (*Result, bool, error) {
	payload, ok, err := c.kv.Get(ctx, cacheKey(videoID))
	if err != nil || !ok {
		return nil, false, err
	}

	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		c.logger.Warn("dropping undecodable cache entry",
			logging.String(logging.FieldVideoID, videoID),
			logging.Error(err))
		_ = c.kv.Remove(ctx, cacheKey(videoID))
		return nil, false, nil
	}
	if c.stale(result.AnalyzedAt) {
		_ = c.kv.Remove(ctx, cacheKey(videoID))
		return nil, false, nil
	}
	return &result, true, nil
}

// Remove drops the cached analysis for videoID if present.
func (c *Cache) Remove(ctx context.Context, videoID string) error {
	return c.kv.Remove(ctx, cacheKey(videoID))
}

// List returns every cached result, including stale ones, for inspection.
func (c *Cache) List(ctx context.Context) ([]Result, error) {
	keys, err := c.kv.ListKeys(ctx, cacheKeyPrefix)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(keys))
	for _, key := range keys {
		payload, ok, err := c.kv.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		var result Result
		if err := json.Unmarshal(payload, &result); err != nil {
			c.logger.Warn("skipping undecodable cache entry", logging.String("key", key), logging.Error(err))
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

// Clear removes every cached analysis and returns the number removed.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	keys, err := c.kv.ListKeys(ctx, cacheKeyPrefix)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := c.kv.Remove(ctx, keys...); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Sweep removes entries past the retention window and returns the number
// removed. Undecodable entries are removed as well.
func (c *Cache) Sweep(ctx context.Context) (int, error) {
	keys, err := c.kv.ListKeys(ctx, cacheKeyPrefix)
	if err != nil {
		return 0, err
	}

	var expired []string
	for _, key := range keys {
		payload, ok, err := c.kv.Get(ctx, key)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		var result Result
		if err := json.Unmarshal(payload, &result); err != nil || c.stale(result.AnalyzedAt) {
			expired = append(expired, key)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}
	if err := c.kv.Remove(ctx, expired...); err != nil {
		return 0, fmt.Errorf("remove expired entries: %w", err)
	}
	c.logger.Info("cache sweep complete", logging.Int("removed", len(expired)))
	return len(expired), nil
}

func (c *Cache) stale(analyzedAt time.Time) bool {
	if analyzedAt.IsZero() {
		return true
	}
	return c.now().Sub(analyzedAt) > c.retention
}
