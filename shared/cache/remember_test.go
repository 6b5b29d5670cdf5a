package cache_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"libres/shared/cache"
	"libres/shared/cache/mocks"
)

type slot struct {
	ID    int64  `json:"id"`
	Start string `json:"start"`
}

func TestRemember(t *testing.T) {
	t.Run("hit skips the loader", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		redisCache := mocks.NewMockRedisCache(ctrl)

		redisCache.EXPECT().Get(gomock.Any(), "timeslot:get:1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, value any) error {
				*value.(*slot) = slot{ID: 1, Start: "09:00"}

				return nil
			})

		got, err := cache.Remember(context.Background(), redisCache, "timeslot:get:1", 60, func(context.Context) (slot, error) {
			t.Fatal("loader must not run on a hit")

			return slot{}, nil
		})

		require.NoError(t, err)
		assert.Equal(t, slot{ID: 1, Start: "09:00"}, got)
	})

	t.Run("miss loads and saves before returning", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		redisCache := mocks.NewMockRedisCache(ctrl)

		gomock.InOrder(
			redisCache.EXPECT().Get(gomock.Any(), "timeslot:get:2", gomock.Any()).Return(cache.Nil),
			redisCache.EXPECT().Save(gomock.Any(), "timeslot:get:2", slot{ID: 2, Start: "10:00"}, 60).Return(nil),
		)

		got, err := cache.Remember(context.Background(), redisCache, "timeslot:get:2", 60, func(context.Context) (slot, error) {
			return slot{ID: 2, Start: "10:00"}, nil
		})

		require.NoError(t, err)
		assert.Equal(t, slot{ID: 2, Start: "10:00"}, got)
	})

	t.Run("save failure still returns the value", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		redisCache := mocks.NewMockRedisCache(ctrl)

		redisCache.EXPECT().Get(gomock.Any(), "timeslot:get:4", gomock.Any()).Return(cache.Nil)
		redisCache.EXPECT().Save(gomock.Any(), "timeslot:get:4", gomock.Any(), 60).Return(errors.New("redis down"))

		got, err := cache.Remember(context.Background(), redisCache, "timeslot:get:4", 60, func(context.Context) (slot, error) {
			return slot{ID: 4, Start: "12:00"}, nil
		})

		require.NoError(t, err)
		assert.Equal(t, int64(4), got.ID)
	})

	t.Run("loader error is not cached", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		redisCache := mocks.NewMockRedisCache(ctrl)
		loadErr := errors.New("connection reset")

		redisCache.EXPECT().Get(gomock.Any(), "timeslot:get:3", gomock.Any()).Return(errors.New("redis down"))

		_, err := cache.Remember(context.Background(), redisCache, "timeslot:get:3", 60, func(context.Context) (slot, error) {
			return slot{}, loadErr
		})

		assert.ErrorIs(t, err, loadErr)
	})
}
