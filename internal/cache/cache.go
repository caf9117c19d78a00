package cache

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache stores serialized results for a bounded time.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Generation changes every time Invalidate runs.
	Generation(ctx context.Context) (uint64, error)
	// SetIfGeneration stores value only while the cache is still at generation.
	// A newer generation makes it a no-op.
	SetIfGeneration(ctx context.Context, key string, value []byte, generation uint64) error
	// Invalidate drops every entry.
	Invalidate(ctx context.Context) error
}

// Observer is told about every GetOrCompute lookup.
type Observer func(key string, hit bool)

// GetOrCompute returns the cached value for key or computes, stores and returns
// it. Cache failures fall through to compute. A result is not stored when the
// cache was invalidated while it was being computed.
func GetOrCompute[T any](ctx context.Context, c Cache, key string, observe Observer, compute func() (T, error)) (T, error) {
	if c != nil {
		if raw, err := c.Get(ctx, key); err == nil {
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				if observe != nil {
					observe(key, true)
				}
				return v, nil
			}
		}
	}
	if observe != nil {
		observe(key, false)
	}

	var generation uint64
	cacheable := false
	if c != nil {
		gen, err := c.Generation(ctx)
		generation, cacheable = gen, err == nil
	}

	v, err := compute()
	if err != nil {
		return v, err
	}
	if cacheable {
		if raw, err := json.Marshal(v); err == nil {
			_ = c.SetIfGeneration(ctx, key, raw, generation)
		}
	}
	return v, nil
}
