// Package cache stores computed schedule previews in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/djlord-it/cronpreview/internal/circuitbreaker"
	"github.com/djlord-it/cronpreview/internal/domain"
)

const keyPrefix = "cp:v1:"

// Client is the subset of *redis.Client used by RedisCache.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisCache is a read-through cache for schedule previews. Calls are
// guarded by a circuit breaker keyed by the Redis address so a failing
// Redis degrades to computing every preview.
type RedisCache struct {
	client  Client
	breaker *circuitbreaker.CircuitBreaker
	addr    string
	ttl     time.Duration
}

func NewRedisCache(c Client, breaker *circuitbreaker.CircuitBreaker, addr string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: c, breaker: breaker, addr: addr, ttl: ttl}
}

// Get returns the cached preview for key. found is false on a miss.
// errors.Is(err, circuitbreaker.ErrCircuitOpen) reports a skipped lookup.
func (c *RedisCache) Get(ctx context.Context, key string) (domain.SchedulePreview, bool, error) {
	if err := c.breaker.Allow(c.addr); err != nil {
		return domain.SchedulePreview{}, false, err
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.breaker.RecordSuccess(c.addr)
		return domain.SchedulePreview{}, false, nil
	}
	if err != nil {
		c.breaker.RecordFailure(c.addr)
		return domain.SchedulePreview{}, false, fmt.Errorf("redis get: %w", err)
	}
	c.breaker.RecordSuccess(c.addr)

	var p domain.SchedulePreview
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.SchedulePreview{}, false, fmt.Errorf("decode cached preview: %w", err)
	}
	return p, true, nil
}

// Set stores p under key with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, p domain.SchedulePreview) error {
	if err := c.breaker.Allow(c.addr); err != nil {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.breaker.RecordFailure(c.addr)
		return fmt.Errorf("redis set: %w", err)
	}
	c.breaker.RecordSuccess(c.addr)
	return nil
}

// Ping checks connectivity, bypassing the breaker.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Key identifies a preview request. after is bucketed to the minute, the
// engine's resolution, so requests within the same minute share an entry.
func Key(expression, timezone string, count int, after time.Time) string {
	data := fmt.Sprintf("%s|%s|%d|%s", expression, timezone, count, after.UTC().Format("200601021504"))
	hash := sha256.Sum256([]byte(data))
	return keyPrefix + hex.EncodeToString(hash[:])
}
