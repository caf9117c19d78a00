package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix replaces an empty prefix, since Invalidate deletes every key
// matching prefix*.
const DefaultPrefix = "cash-insights:"

const generationKey = "__generation__"

// RedisCache keeps entries under a key prefix so Invalidate only touches its own keys.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultPrefix
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisCache) key(k string) string {
	return r.prefix + k
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Generation(ctx context.Context) (uint64, error) {
	gen, err := r.client.Get(ctx, r.key(generationKey)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation: %w", err)
	}
	return gen, nil
}

// SetIfGeneration watches the generation key so an Invalidate racing with the
// write aborts it.
func (r *RedisCache) SetIfGeneration(ctx context.Context, key string, value []byte, generation uint64) error {
	genKey := r.key(generationKey)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key(key), value, r.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Invalidate advances the generation, then deletes every entry under the prefix.
func (r *RedisCache) Invalidate(ctx context.Context) error {
	genKey := r.key(generationKey)
	if err := r.client.Incr(ctx, genKey).Err(); err != nil {
		return fmt.Errorf("redis incr generation: %w", err)
	}

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		keys = dropKey(keys, genKey)
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func dropKey(keys []string, drop string) []string {
	out := keys[:0]
	for _, k := range keys {
		if k != drop {
			out = append(out, k)
		}
	}
	return out
}
