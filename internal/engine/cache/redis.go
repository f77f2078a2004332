package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisEnvelope wraps a cached payload with its write timestamp so
// entries survive a round trip through Redis with their age intact.
type redisEnvelope struct {
	Value     json.RawMessage `json:"value"`
	CreatedAt time.Time       `json:"created_at"`
}

// RedisStore caches payloads in Redis with server-side TTL expiry.
// Entry-count capping is left to Redis itself; the insertion-order
// eviction guarantee applies to the memory backend only.
type RedisStore[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to Redis at redisURL and verifies the
// connection before returning.
func NewRedisStore[T any](redisURL, prefix string, ttl time.Duration) (*RedisStore[T], error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient[T](client, prefix, ttl), nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client.
func NewRedisStoreWithClient[T any](client *redis.Client, prefix string, ttl time.Duration) *RedisStore[T] {
	if ttl <= 0 {
		ttl = time.Duration(DefaultTTLSeconds) * time.Second
	}
	return &RedisStore[T]{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// redisKey namespaces a cache key under the store's prefix.
func (s *RedisStore[T]) redisKey(key string) string {
	return s.prefix + key
}

// Get retrieves the value stored under key.
// Returns ErrCacheNotFound when the key is absent or Redis has already
// expired it; there is no distinct expired state on this backend.
func (s *RedisStore[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T
	if key == "" {
		return zero, ErrInvalidCacheKey
	}

	raw, err := s.client.Get(ctx, s.redisKey(key)).Result()
	if err == redis.Nil {
		return zero, ErrCacheNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("redis get: %w", err)
	}

	var env redisEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return zero, fmt.Errorf("unmarshal cache envelope: %w", err)
	}

	var value T
	if err := json.Unmarshal(env.Value, &value); err != nil {
		return zero, fmt.Errorf("unmarshal cached value: %w", err)
	}
	return value, nil
}

// Put stores value under key with the store's TTL.
func (s *RedisStore[T]) Put(ctx context.Context, key string, value T) error {
	if key == "" {
		return ErrInvalidCacheKey
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cached value: %w", err)
	}
	data, err := json.Marshal(redisEnvelope{
		Value:     payload,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal cache envelope: %w", err)
	}

	if err := s.client.Set(ctx, s.redisKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Remove deletes the entry under key. Idempotent.
func (s *RedisStore[T]) Remove(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidCacheKey
	}

	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping checks if Redis is reachable.
func (s *RedisStore[T]) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore[T]) Close() error {
	return s.client.Close()
}
