// Package availability answers whether a resource or a member is already booked for a date and slot.
package availability

//go:generate go run go.uber.org/mock/mockgen -source=./availability.go -destination=./mocks/availability_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"libres/infras/otel"
	"libres/internal/domains/reservation/model"
	"libres/internal/domains/reservation/repository"
	"libres/shared/constant"
	gDto "libres/shared/dto"
)

type ResourceKind string

const (
	KindRoom      ResourceKind = "room"
	KindEquipment ResourceKind = "equipment"
)

var ErrUnknownKind = errors.New("unknown resource kind")

type Checker interface {
	// HasConflict reports whether a confirmed reservation holds the resource on date and slot.
	// Pending reservations never block.
	HasConflict(ctx context.Context, kind ResourceKind, resourceID int64, date time.Time, slotID int64) (bool, error)
	// HasUserSlotConflict reports whether the user holds any non-cancelled reservation on
	// date and slot, whatever the resource.
	HasUserSlotConflict(ctx context.Context, userID int64, date time.Time, slotID int64) (bool, error)
}

type checkerImpl struct {
	repo repository.Reservation
	otel otel.Otel
}

func New(repo repository.Reservation, otel otel.Otel) Checker {
	return &checkerImpl{
		repo: repo,
		otel: otel,
	}
}

func (c *checkerImpl) HasConflict(ctx context.Context, kind ResourceKind, resourceID int64, date time.Time, slotID int64) (conflict bool, err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.HasConflict")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	field, err := resourceField(kind)
	if err != nil {
		return false, err
	}

	filter := slotFilter(date, slotID)
	filter.And(
		gDto.Filter{Field: field, Operator: gDto.FilterOperatorEq, Value: resourceID, Table: model.TableName},
		gDto.Filter{Field: model.FieldStatus, Operator: gDto.FilterOperatorEq, Value: constant.ReservationStatusConfirmed, Table: model.TableName},
	)

	conflict, err = c.repo.Exist(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check %s conflict: %w", kind, err)
	}

	return conflict, nil
}

func (c *checkerImpl) HasUserSlotConflict(ctx context.Context, userID int64, date time.Time, slotID int64) (conflict bool, err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.HasUserSlotConflict")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := slotFilter(date, slotID)
	filter.And(
		gDto.Filter{Field: model.FieldUserID, Operator: gDto.FilterOperatorEq, Value: userID, Table: model.TableName},
		gDto.Filter{Field: model.FieldStatus, Operator: gDto.FilterOperatorNotEq, Value: constant.ReservationStatusCancelled, Table: model.TableName},
	)

	conflict, err = c.repo.Exist(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check user slot conflict: %w", err)
	}

	return conflict, nil
}

func resourceField(kind ResourceKind) (string, error) {
	switch kind {
	case KindRoom:
		return model.FieldRoomID, nil
	case KindEquipment:
		return model.FieldEquipmentID, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func slotFilter(date time.Time, slotID int64) gDto.FilterGroup {
	filter := gDto.FilterGroup{}
	filter.And(
		gDto.Filter{Field: model.FieldReservationDate, Operator: gDto.FilterOperatorEq, Value: date.Format(constant.DateOnlyFormat), Table: model.TableName},
		gDto.Filter{Field: model.FieldTimeSlotID, Operator: gDto.FilterOperatorEq, Value: slotID, Table: model.TableName},
	)

	return filter
}
