package shared_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"libres/shared"
	"libres/shared/cache/mocks"
	"libres/shared/dto"
)

func TestCacheKeys(t *testing.T) {
	keys := shared.CacheKeys("room")
	params := dto.QueryParams{Page: 1, Limit: 10}

	assert.Equal(t, "room:get:3", keys.One(int64(3)))
	assert.Regexp(t, `^room:gets:[0-9a-f]{64}$`, keys.List(params, dto.FilterGroup{}))
	assert.Regexp(t, `^room:count:[0-9a-f]{64}$`, keys.Count(params, dto.FilterGroup{}))
	assert.NotEqual(t, keys.List(params, dto.FilterGroup{}), keys.List(dto.QueryParams{Page: 2, Limit: 10}, dto.FilterGroup{}))
}

func TestCacheKeys_Evict(t *testing.T) {
	ctrl := gomock.NewController(t)
	redisCache := mocks.NewMockRedisCache(ctrl)

	gomock.InOrder(
		redisCache.EXPECT().Delete(gomock.Any(), "equipment:get:4").Return(errors.New("redis down")),
		redisCache.EXPECT().Delete(gomock.Any(), "equipment:get:5").Return(nil),
		redisCache.EXPECT().Clear(gomock.Any(), "equipment:gets*").Return(nil),
		redisCache.EXPECT().Clear(gomock.Any(), "equipment:count*").Return(nil),
	)

	shared.CacheKeys("equipment").Evict(context.Background(), redisCache, int64(4), int64(5))
}
