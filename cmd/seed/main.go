package main

import (
	"context"
	"net/http"

	"libres/config"
	"libres/infras/otel"
	"libres/infras/postgres"
	"libres/infras/redis"
	"libres/infras/s3"
	equipmentDto "libres/internal/domains/equipment/model/dto"
	equipmentRepository "libres/internal/domains/equipment/repository"
	equipmentService "libres/internal/domains/equipment/service"
	roomDto "libres/internal/domains/room/model/dto"
	roomRepository "libres/internal/domains/room/repository"
	roomService "libres/internal/domains/room/service"
	timeslotDto "libres/internal/domains/timeslot/model/dto"
	timeslotRepository "libres/internal/domains/timeslot/repository"
	timeslotService "libres/internal/domains/timeslot/service"
	userDto "libres/internal/domains/user/model/dto"
	userRepository "libres/internal/domains/user/repository"
	userService "libres/internal/domains/user/service"
	"libres/shared/cache"
	"libres/shared/constant"
	gDto "libres/shared/dto"
	"libres/shared/failure"
	"libres/shared/logger"

	"github.com/rs/zerolog/log"
)

const rootAdminEmail = "root@libres.local"

type seeder struct {
	users     userService.User
	rooms     roomService.Room
	equipment equipmentService.Equipment
	slots     timeslotService.TimeSlot
}

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	db := postgres.New(cfg)
	tracer := otel.New(cfg)
	redisCache := cache.NewRedisCache(redis.New(cfg), tracer)

	s := seeder{
		users:     userService.New(userRepository.New(db, tracer), cfg, redisCache, tracer),
		rooms:     roomService.New(roomRepository.New(db, tracer), cfg, redisCache, tracer, s3.New(cfg, tracer)),
		equipment: equipmentService.New(equipmentRepository.New(db, tracer), cfg, redisCache, tracer),
		slots:     timeslotService.New(timeslotRepository.New(db, tracer), cfg, redisCache, tracer),
	}

	ctx := context.Background()
	err := s.run(ctx)

	if shutdownErr := tracer.Shutdown(ctx); shutdownErr != nil {
		log.Warn().Err(shutdownErr).Msg("failed to flush spans")
	}

	if closeErr := db.Close(); closeErr != nil {
		log.Warn().Err(closeErr).Msg("failed to close database")
	}

	if err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
}

// run always ensures the root admin exists. Sample data is only loaded into an otherwise empty
// user table.
func (s seeder) run(ctx context.Context) error {
	if err := s.createUser(ctx, userDto.CreateUserRequest{
		Name:     "Root Admin",
		Email:    rootAdminEmail,
		Password: "root12345",
	}, constant.RoleAdmin); err != nil {
		return err
	}

	count, err := s.users.Count(ctx, gDto.QueryParams{}, gDto.FilterGroup{})
	if err != nil {
		return err
	}

	if count > 1 {
		log.Warn().Int("users", count).Msg("database already has data, skipping sample records")

		return nil
	}

	for _, req := range []userDto.CreateUserRequest{
		{Name: "Ahmet Yilmaz", Email: "ahmet@student.libres.local", Password: "password123"},
		{Name: "Ayse Demir", Email: "ayse@student.libres.local", Password: "password123"},
		{Name: "Mehmet Kaya", Email: "mehmet@staff.libres.local", Password: "password123"},
	} {
		if err := s.createUser(ctx, req, constant.RoleMember); err != nil {
			return err
		}
	}

	for _, req := range []roomDto.CreateRoomRequest{
		{Name: "Study Room A1", Location: "Floor 1", Capacity: 4},
		{Name: "Study Room A2", Location: "Floor 1", Capacity: 6},
		{Name: "Study Room B1", Location: "Floor 2", Capacity: 2},
		{Name: "Meeting Room", Location: "Floor 2", Capacity: 10, Status: constant.RoomStatusMaintenance},
	} {
		if _, err := s.rooms.Create(ctx, req); err != nil {
			return err
		}
	}

	for _, req := range []equipmentDto.CreateEquipmentRequest{
		{Name: "Dell Laptop #001", Type: "laptop"},
		{Name: "HP Laptop #002", Type: "laptop"},
		{Name: "Projector #001", Type: "projector"},
		{Name: "iPad Pro #001", Type: "tablet", Status: constant.EquipmentStatusMaintenance},
	} {
		if _, err := s.equipment.Create(ctx, req); err != nil {
			return err
		}
	}

	for _, req := range []timeslotDto.CreateTimeSlotRequest{
		{StartTime: "09:00", EndTime: "10:00"},
		{StartTime: "10:00", EndTime: "11:30"},
		{StartTime: "11:30", EndTime: "13:00"},
		{StartTime: "13:00", EndTime: "14:30"},
		{StartTime: "14:30", EndTime: "16:00"},
		{StartTime: "16:00", EndTime: "17:30"},
	} {
		if _, err := s.slots.Create(ctx, req); err != nil && !failure.Is(err, http.StatusConflict) {
			return err
		}
	}

	log.Info().Str("admin", rootAdminEmail).Msg("sample data loaded")

	return nil
}

func (s seeder) createUser(ctx context.Context, req userDto.CreateUserRequest, role string) error {
	_, err := s.users.Create(ctx, req, role)

	switch {
	case err == nil:
		log.Info().Str("email", req.Email).Str("role", role).Msg("user created")
	case failure.Is(err, http.StatusConflict):
		log.Debug().Str("email", req.Email).Msg("user already exists")
	default:
		return err
	}

	return nil
}
