package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"libres/config"
	"libres/infras/otel"
	"libres/internal/domains/dashboard/model/dto"
	equipmentModel "libres/internal/domains/equipment/model"
	equipmentRepo "libres/internal/domains/equipment/repository"
	reservationModel "libres/internal/domains/reservation/model"
	reservationRepo "libres/internal/domains/reservation/repository"
	roomModel "libres/internal/domains/room/model"
	roomRepo "libres/internal/domains/room/repository"
	timeslotRepo "libres/internal/domains/timeslot/repository"
	userModel "libres/internal/domains/user/model"
	userRepo "libres/internal/domains/user/repository"
	"libres/shared/cache"
	"libres/shared/constant"
	gDto "libres/shared/dto"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const cacheDashboardSummary = "dashboard:summary"

type Dashboard interface {
	Summary(ctx context.Context) (dto.SummaryResponse, error)
}

type counter interface {
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
}

type serviceImpl struct {
	userRepo        userRepo.User
	roomRepo        roomRepo.Room
	equipmentRepo   equipmentRepo.Equipment
	reservationRepo reservationRepo.Reservation
	timeslotRepo    timeslotRepo.TimeSlot
	cfg             *config.Config
	cache           cache.RedisCache
	otel            otel.Otel
}

func New(
	userRepo userRepo.User,
	roomRepo roomRepo.Room,
	equipmentRepo equipmentRepo.Equipment,
	reservationRepo reservationRepo.Reservation,
	timeslotRepo timeslotRepo.TimeSlot,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Dashboard {
	return &serviceImpl{
		userRepo:        userRepo,
		roomRepo:        roomRepo,
		equipmentRepo:   equipmentRepo,
		reservationRepo: reservationRepo,
		timeslotRepo:    timeslotRepo,
		cfg:             cfg,
		cache:           cache,
		otel:            otel,
	}
}

type countJob struct {
	name   string
	repo   counter
	filter gDto.FilterGroup
	into   *int
}

// Summary counts catalog and ledger rows. The snapshot is cached for the configured TTL, so
// the numbers may lag writes by that long.
func (s *serviceImpl) Summary(ctx context.Context) (res dto.SummaryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".dashboard.Summary")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Remember(ctx, s.cache, cacheDashboardSummary, s.cfg.Cache.TTL, s.count)
}

func (s *serviceImpl) count(ctx context.Context) (dto.SummaryResponse, error) {
	var res dto.SummaryResponse

	jobs := []countJob{
		{"users", s.userRepo, gDto.FilterGroup{}, &res.Users.Total},
		{"admins", s.userRepo, byField(userModel.FieldRole, userModel.TableName, constant.RoleAdmin), &res.Users.Admins},
		{"rooms", s.roomRepo, gDto.FilterGroup{}, &res.Rooms.Total},
		{"rooms empty", s.roomRepo, byField(roomModel.FieldStatus, roomModel.TableName, constant.RoomStatusEmpty), &res.Rooms.Empty},
		{"rooms occupied", s.roomRepo, byField(roomModel.FieldStatus, roomModel.TableName, constant.RoomStatusOccupied), &res.Rooms.Occupied},
		{"rooms maintenance", s.roomRepo, byField(roomModel.FieldStatus, roomModel.TableName, constant.RoomStatusMaintenance), &res.Rooms.Maintenance},
		{"equipment", s.equipmentRepo, gDto.FilterGroup{}, &res.Equipment.Total},
		{"equipment available", s.equipmentRepo, byField(equipmentModel.FieldStatus, equipmentModel.TableName, constant.EquipmentStatusAvailable), &res.Equipment.Available},
		{"equipment reserved", s.equipmentRepo, byField(equipmentModel.FieldStatus, equipmentModel.TableName, constant.EquipmentStatusReserved), &res.Equipment.Reserved},
		{"equipment maintenance", s.equipmentRepo, byField(equipmentModel.FieldStatus, equipmentModel.TableName, constant.EquipmentStatusMaintenance), &res.Equipment.Maintenance},
		{"reservations", s.reservationRepo, gDto.FilterGroup{}, &res.Reservations.Total},
		{"reservations pending", s.reservationRepo, byField(reservationModel.FieldStatus, reservationModel.TableName, constant.ReservationStatusPending), &res.Reservations.Pending},
		{"reservations confirmed", s.reservationRepo, byField(reservationModel.FieldStatus, reservationModel.TableName, constant.ReservationStatusConfirmed), &res.Reservations.Confirmed},
		{"reservations cancelled", s.reservationRepo, byField(reservationModel.FieldStatus, reservationModel.TableName, constant.ReservationStatusCancelled), &res.Reservations.Cancelled},
		{"time slots", s.timeslotRepo, gDto.FilterGroup{}, &res.TimeSlots},
	}

	group, groupCtx := errgroup.WithContext(ctx)

	for _, job := range jobs {
		group.Go(func() error {
			count, err := job.repo.Count(groupCtx, job.filter)
			if err != nil {
				return fmt.Errorf("failed to count %s: %w", job.name, err)
			}

			*job.into = count

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		log.Error().Err(err).Msg("failed to build dashboard summary")

		return dto.SummaryResponse{}, err
	}

	return res, nil
}

func byField(field, table string, value any) gDto.FilterGroup {
	filter := gDto.FilterGroup{}
	filter.And(gDto.Filter{Field: field, Operator: gDto.FilterOperatorEq, Value: value, Table: table})

	return filter
}
