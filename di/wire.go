//go:build wireinject
// +build wireinject

package di

import (
	"libres/config"
	"libres/infras/jwt"
	"libres/infras/kafka"
	"libres/infras/otel"
	"libres/infras/postgres"
	"libres/infras/redis"
	"libres/infras/s3"
	"libres/permissions"
	"libres/shared/cache"
	gRepo "libres/shared/repository"
	"libres/shared/timezone"
	"libres/transport/http"
	"libres/transport/http/middleware"
	"libres/transport/http/router"

	authService "libres/internal/domains/auth/service"
	dashboardService "libres/internal/domains/dashboard/service"
	equipmentRepository "libres/internal/domains/equipment/repository"
	equipmentService "libres/internal/domains/equipment/service"
	projectorService "libres/internal/domains/projector/service"
	"libres/internal/domains/reservation/availability"
	"libres/internal/domains/reservation/quota"
	reservationRepository "libres/internal/domains/reservation/repository"
	reservationService "libres/internal/domains/reservation/service"
	roomRepository "libres/internal/domains/room/repository"
	roomService "libres/internal/domains/room/service"
	timeslotRepository "libres/internal/domains/timeslot/repository"
	timeslotService "libres/internal/domains/timeslot/service"
	userRepository "libres/internal/domains/user/repository"
	userService "libres/internal/domains/user/service"

	adminHandler "libres/internal/handlers/admin"
	authHandler "libres/internal/handlers/auth"
	equipmentHandler "libres/internal/handlers/equipment"
	reservationHandler "libres/internal/handlers/reservation"
	roomHandler "libres/internal/handlers/room"
	timeslotHandler "libres/internal/handlers/timeslot"
	userHandler "libres/internal/handlers/user"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	gRepo.NewTransactor,
	timezone.NewClock,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
)

var authDomain = wire.NewSet(
	authService.New,
)

var catalogDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
	equipmentRepository.New,
	equipmentService.New,
	timeslotRepository.New,
	timeslotService.New,
	projectorService.New,
)

var reservationDomain = wire.NewSet(
	reservationRepository.New,
	availability.New,
	quota.New,
	wire.Struct(new(reservationService.Deps), "*"),
	reservationService.New,
)

var dashboardDomain = wire.NewSet(
	dashboardService.New,
)

var domains = wire.NewSet(
	userDomain,
	authDomain,
	catalogDomain,
	reservationDomain,
	dashboardDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	roomHandler.New,
	equipmentHandler.New,
	timeslotHandler.New,
	reservationHandler.New,
	adminHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
