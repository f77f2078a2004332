// Package fetch couples a cache store with de-duplication of identical
// in-flight requests. Any number of callers asking for the same key get
// one underlying network call; failed calls are evicted from the store
// immediately so the next attempt is never poisoned by a cached
// failure.
package fetch

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/droughtwatch/droughtwatch/internal/engine/cache"
)

// Loader performs the underlying remote call for one key.
type Loader[T any] func(ctx context.Context) (T, error)

// Coordinator serves reads for one resource type through its store.
// Thread-safe for concurrent access.
type Coordinator[T any] struct {
	store  cache.Store[T]
	group  singleflight.Group
	logger zerolog.Logger
}

// NewCoordinator creates a coordinator over store.
func NewCoordinator[T any](store cache.Store[T], logger zerolog.Logger) *Coordinator[T] {
	return &Coordinator[T]{
		store:  store,
		logger: logger.With().Str("component", "fetch").Logger(),
	}
}

// Fetch returns the value for key, from the store when it holds a live
// entry, otherwise via load. Concurrent callers for the same key await
// the same underlying call. On success the value is written back to the
// store; on failure the key is evicted and the error returned.
func (c *Coordinator[T]) Fetch(ctx context.Context, key string, load Loader[T]) (T, error) {
	if cached, err := c.store.Get(ctx, key); err == nil {
		c.logger.Debug().Str("key", key).Msg("cache hit")
		return cached, nil
	}

	for attempt := 0; ; attempt++ {
		v, err, shared := c.group.Do(key, func() (any, error) {
			// A racer may have filled the store while we queued for the
			// flight slot.
			if cached, getErr := c.store.Get(ctx, key); getErr == nil {
				return cached, nil
			}
			return c.load(ctx, key, load)
		})
		if err != nil {
			// A flight aborted by a superseded caller also fails every
			// joiner. A joiner whose own context is still live gets one
			// fresh flight instead of inheriting the stale abort.
			if attempt == 0 && shared && ctx.Err() == nil && errors.Is(err, context.Canceled) {
				c.group.Forget(key)
				continue
			}
			var zero T
			return zero, err
		}
		return v.(T), nil
	}
}

// load runs the remote call and settles the store accordingly.
func (c *Coordinator[T]) load(ctx context.Context, key string, load Loader[T]) (any, error) {
	c.logger.Debug().Str("key", key).Msg("fetching")

	value, err := load(ctx)
	if err != nil {
		if removeErr := c.store.Remove(ctx, key); removeErr != nil && !errors.Is(removeErr, cache.ErrCacheDisabled) {
			c.logger.Warn().Err(removeErr).Str("key", key).Msg("evicting failed entry")
		}
		var zero T
		return zero, err
	}

	if putErr := c.store.Put(ctx, key, value); putErr != nil && !errors.Is(putErr, cache.ErrCacheDisabled) {
		c.logger.Warn().Err(putErr).Str("key", key).Msg("writing cache entry")
	}
	return value, nil
}
