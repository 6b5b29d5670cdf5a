package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"libres/infras/otel"
	equipmentDto "libres/internal/domains/equipment/model/dto"
	equipmentService "libres/internal/domains/equipment/service"
	"libres/internal/domains/projector/model"
	roomDto "libres/internal/domains/room/model/dto"
	roomService "libres/internal/domains/room/service"
	"libres/shared/constant"

	"github.com/rs/zerolog/log"
)

// Projector owns the display status of rooms and equipment. Statuses change only through
// the explicit setters; Observe is the single place reservation transitions reach it.
type Projector interface {
	SetRoomStatus(ctx context.Context, id int64, status string) error
	SetEquipmentStatus(ctx context.Context, id int64, status string) error
	Observe(ctx context.Context, transition model.Transition)
}

type serviceImpl struct {
	room      roomService.Room
	equipment equipmentService.Equipment
	otel      otel.Otel
}

func New(room roomService.Room, equipment equipmentService.Equipment, otel otel.Otel) Projector {
	return &serviceImpl{
		room:      room,
		equipment: equipment,
		otel:      otel,
	}
}

func (s *serviceImpl) SetRoomStatus(ctx context.Context, id int64, status string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".projector.SetRoomStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.room.UpdateStatus(ctx, roomDto.UpdateStatusRequest{Status: status}, id); err != nil {
		return fmt.Errorf("failed to set room status: %w", err)
	}

	return nil
}

func (s *serviceImpl) SetEquipmentStatus(ctx context.Context, id int64, status string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".projector.SetEquipmentStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.equipment.UpdateStatus(ctx, equipmentDto.UpdateStatusRequest{Status: status}, id); err != nil {
		return fmt.Errorf("failed to set equipment status: %w", err)
	}

	return nil
}

// Observe records the transition. Resource statuses are left untouched.
func (s *serviceImpl) Observe(ctx context.Context, transition model.Transition) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".projector.Observe")
	defer scope.End()

	scope.SetAttributes(map[string]any{
		"reservation.id":   transition.ReservationID,
		"reservation.from": transition.From,
		"reservation.to":   transition.To,
	})
	scope.AddEvent("reservation." + transition.To)

	event := log.Info().
		Int64("reservation_id", transition.ReservationID).
		Str("from", transition.From).
		Str("to", transition.To)

	if transition.RoomID != nil {
		event = event.Int64("room_id", *transition.RoomID)
	}

	if transition.EquipmentID != nil {
		event = event.Int64("equipment_id", *transition.EquipmentID)
	}

	event.Msg("reservation transition")
}
