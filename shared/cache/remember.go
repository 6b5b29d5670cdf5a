package cache

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Remember returns the value cached under key, or calls load and caches its result for ttl
// seconds. Any read error counts as a miss and a failed write only logs. Errors from load are
// returned and never cached.
//
// The write completes before Remember returns, so a later invalidation always removes it. A
// reader that loaded before a concurrent write and saves after its invalidation can still leave
// the old value behind until ttl expires.
func Remember[T any](ctx context.Context, c RedisCache, key string, ttl int, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if err := c.Get(ctx, key, &cached); err == nil {
		log.Debug().Str("cacheKey", key).Msg("cache hit")

		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if err = c.Save(ctx, key, value, ttl); err != nil {
		log.Error().Err(err).Str("cacheKey", key).Msg("failed to save cache value")
	}

	return value, nil
}
