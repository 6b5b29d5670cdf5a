// Package quota counts the reservations a member currently holds against the active limit.
package quota

//go:generate go run go.uber.org/mock/mockgen -source=./quota.go -destination=./mocks/quota_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"libres/infras/otel"
	"libres/internal/domains/reservation/model"
	"libres/internal/domains/reservation/repository"
	"libres/shared/constant"
	gDto "libres/shared/dto"
	"libres/shared/timezone"
)

type Tracker interface {
	ActiveCount(ctx context.Context, userID int64, asOf time.Time) (int, error)
}

type trackerImpl struct {
	repo repository.Reservation
	otel otel.Otel
}

func New(repo repository.Reservation, otel otel.Otel) Tracker {
	return &trackerImpl{
		repo: repo,
		otel: otel,
	}
}

// ActiveFilter matches the user's pending or confirmed reservations whose slot has not ended
// at asOf. Elapsed reservations drop out of the count without any cleanup job.
func ActiveFilter(userID int64, asOf time.Time) gDto.FilterGroup {
	asOf = timezone.ToAppTime(asOf)

	filter := gDto.FilterGroup{}
	filter.And(
		gDto.Filter{Field: model.FieldUserID, Operator: gDto.FilterOperatorEq, Value: userID, Table: model.TableName},
		gDto.Filter{
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorIn,
			Value:    []string{constant.ReservationStatusPending, constant.ReservationStatusConfirmed},
			Table:    model.TableName,
		},
		gDto.Filter{
			Operator: gDto.FilterPlainQuery,
			Value: `reservations.reservation_date > :active_today OR ` +
				`(reservations.reservation_date = :active_today AND time_slots.end_time > :active_now)`,
			Args: map[string]any{
				"active_today": asOf.Format(constant.DateOnlyFormat),
				"active_now":   asOf.Format(constant.ClockFormat),
			},
		},
	)

	return filter
}

func (t *trackerImpl) ActiveCount(ctx context.Context, userID int64, asOf time.Time) (count int, err error) {
	ctx, scope := t.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".quota.ActiveCount")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	count, err = t.repo.Count(ctx, ActiveFilter(userID, asOf))
	if err != nil {
		return 0, fmt.Errorf("failed to count active reservations: %w", err)
	}

	return count, nil
}
