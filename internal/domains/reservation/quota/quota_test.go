package quota_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"libres/infras/otel/mocks"
	reservationMocks "libres/internal/domains/reservation/mocks"
	"libres/internal/domains/reservation/quota"
	gDto "libres/shared/dto"
	"libres/shared/timezone"
)

func TestActiveFilter(t *testing.T) {
	asOf := timezone.ToAppTime(time.Date(2026, time.October, 15, 9, 30, 0, 0, timezone.GetLocation()))

	filter := quota.ActiveFilter(3, asOf)
	where, args := filter.GetWhereClause()

	assert.Contains(t, where, "reservations.user_id = :user_id")
	assert.Contains(t, where, "reservations.status IN (:status_0, :status_1)")
	assert.Contains(t, where, "reservations.reservation_date > :active_today")
	assert.Contains(t, where, "time_slots.end_time > :active_now")
	assert.Equal(t, int64(3), args["user_id"])
	assert.Equal(t, "pending", args["status_0"])
	assert.Equal(t, "confirmed", args["status_1"])
	assert.Equal(t, "2026-10-15", args["active_today"])
	assert.Equal(t, "09:30:00", args["active_now"])
}

func TestTracker_ActiveCount(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		repoErr error
		wantErr bool
	}{
		{name: "two active", count: 2},
		{name: "none", count: 0},
		{name: "repository error", repoErr: errors.New("database error"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := reservationMocks.NewMockReservation(ctrl)

			repo.EXPECT().Count(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ gDto.FilterGroup) (int, error) {
					return tt.count, tt.repoErr
				})

			got, err := quota.New(repo, mocks.NewOtel()).ActiveCount(context.Background(), 3, time.Now())

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.count, got)
		})
	}
}
