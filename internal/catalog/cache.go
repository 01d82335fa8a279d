package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "catalog:good:"

// CachedReader is a read-through Redis cache in front of another Reader.
// Redis failures degrade to the underlying reader.
type CachedReader struct {
	next   Reader
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedReader wraps next.
func NewCachedReader(next Reader, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedReader{next: next, client: client, ttl: ttl, logger: logger}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, id)
}

// Goods serves hits from Redis and loads all misses in one batch.
func (c *CachedReader) Goods(ctx context.Context, ids []int64) (map[int64]Good, error) {
	ids = uniqueIDs(ids)
	if c.client == nil || len(ids) == 0 {
		return c.next.Goods(ctx, ids)
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cacheKey(id)
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("catalog cache read", slog.Any("error", err))
		return c.next.Goods(ctx, ids)
	}

	result := make(map[int64]Good, len(ids))
	var misses []int64
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			misses = append(misses, ids[i])
			continue
		}
		var g Good
		if err := json.Unmarshal([]byte(raw), &g); err != nil {
			misses = append(misses, ids[i])
			continue
		}
		result[ids[i]] = g
	}
	if len(misses) == 0 {
		return result, nil
	}

	loaded, err := c.next.Goods(ctx, misses)
	if err != nil {
		return nil, err
	}
	pipe := c.client.Pipeline()
	for id, g := range loaded {
		result[id] = g
		payload, err := json.Marshal(g)
		if err != nil {
			continue
		}
		pipe.Set(ctx, cacheKey(id), payload, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("catalog cache write", slog.Any("error", err))
	}
	return result, nil
}

// Invalidate drops cached entries after master data changes.
func (c *CachedReader) Invalidate(ctx context.Context, ids ...int64) error {
	if c.client == nil || len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, cacheKey(id))
	}
	return c.client.Del(ctx, keys...).Err()
}
