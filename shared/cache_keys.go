package shared

import (
	"context"

	"github.com/rs/zerolog/log"

	"libres/shared/cache"
	"libres/shared/dto"
)

// CacheKeys names the cache entries of one entity: <entity>:get:<id> for single reads,
// <entity>:gets:<hash> and <entity>:count:<hash> for list queries.
type CacheKeys string

func (k CacheKeys) One(id any) string {
	return BuildCacheKey(string(k)+":get", id)
}

func (k CacheKeys) List(params dto.QueryParams, filter dto.FilterGroup) string {
	return BuildCacheKeyWithQuery(string(k)+":gets", params, filter)
}

func (k CacheKeys) Count(params dto.QueryParams, filter dto.FilterGroup) string {
	return BuildCacheKeyWithQuery(string(k)+":count", params, filter)
}

// Evict drops the entries of ids along with every cached list and count. Run it after the
// write has committed; failures are logged.
func (k CacheKeys) Evict(ctx context.Context, redisCache cache.RedisCache, ids ...any) {
	for _, id := range ids {
		if err := redisCache.Delete(ctx, k.One(id)); err != nil {
			log.Error().Err(err).Str("entity", string(k)).Any("id", id).Msg("failed to delete cache entry")
		}
	}

	InvalidateCaches(ctx, redisCache, string(k)+":gets")
	InvalidateCaches(ctx, redisCache, string(k)+":count")
}
