package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"libres/config"
	"libres/infras/otel"
	"libres/internal/domains/equipment/model"
	"libres/internal/domains/equipment/model/dto"
	"libres/internal/domains/equipment/repository"
	"libres/shared"
	"libres/shared/cache"
	"libres/shared/constant"
	gDto "libres/shared/dto"
	"libres/shared/failure"

	"github.com/rs/zerolog/log"
)

const cacheKeys = shared.CacheKeys(model.EntityName)

var errEquipmentNotFound = failure.NotFound("equipment not found")

type Equipment interface {
	Create(ctx context.Context, req dto.CreateEquipmentRequest) (int64, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetEquipmentResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id int64) (dto.EquipmentResponse, error)
	Update(ctx context.Context, req dto.UpdateEquipmentRequest, id int64) error
	UpdateStatus(ctx context.Context, req dto.UpdateStatusRequest, id int64) error
	Delete(ctx context.Context, id int64) error
}

type serviceImpl struct {
	repo  repository.Equipment
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Equipment, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Equipment {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

// AvailableFilter matches equipment that is available and not confirmed-booked on date and slot.
func AvailableFilter(date time.Time, slotID int64) gDto.FilterGroup {
	filter := gDto.FilterGroup{}
	filter.And(
		gDto.Filter{
			ArgName:  "available_status",
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    constant.EquipmentStatusAvailable,
			Table:    model.TableName,
		},
		gDto.Filter{
			Operator: gDto.FilterPlainQuery,
			Value: `NOT EXISTS (SELECT 1 FROM reservations WHERE reservations.equipment_id = equipment.id ` +
				`AND reservations.reservation_date = :available_date AND reservations.time_slot_id = :available_slot ` +
				`AND reservations.status = 'confirmed')`,
			Args: map[string]any{
				"available_date": date.Format(constant.DateOnlyFormat),
				"available_slot": slotID,
			},
		},
	)

	return filter
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateEquipmentRequest) (id int64, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".equipment.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	id, err = s.repo.Insert(ctx, req.ToModel(shared.Actor(ctx)))
	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("failed to create equipment")

		return 0, fmt.Errorf("failed to create equipment: %w", err)
	}

	s.invalidate(ctx)

	return id, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetEquipmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".equipment.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Remember(ctx, s.cache, cacheKeys.List(req, filter), s.cfg.Cache.TTL, func(ctx context.Context) (dto.GetEquipmentResponse, error) {
		var page dto.GetEquipmentResponse

		total, err := s.Count(ctx, req, filter)
		if err != nil {
			return page, err
		}

		items, err := s.repo.GetAll(ctx, req, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to list equipment")

			return page, fmt.Errorf("failed to list equipment: %w", err)
		}

		page.FromModels(items, total, req.Limit)

		return page, nil
	})
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (total int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".equipment.Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Remember(ctx, s.cache, cacheKeys.Count(req, filter), s.cfg.Cache.TTL, func(ctx context.Context) (int, error) {
		total, err := s.repo.Count(ctx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to count equipment")

			return 0, fmt.Errorf("failed to count equipment: %w", err)
		}

		return total, nil
	})
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (res dto.EquipmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".equipment.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Remember(ctx, s.cache, cacheKeys.One(id), s.cfg.Cache.TTL, func(ctx context.Context) (dto.EquipmentResponse, error) {
		var out dto.EquipmentResponse

		equipment, err := s.repo.Get(ctx, byID(id))
		if err != nil {
			log.Error().Err(err).Int64("equipment_id", id).Msg("failed to get equipment")

			return out, fmt.Errorf("failed to get equipment: %w", err)
		}

		if equipment.ID == 0 {
			return out, errEquipmentNotFound
		}

		out.FromModel(equipment)

		return out, nil
	})
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateEquipmentRequest, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".equipment.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req == (dto.UpdateEquipmentRequest{}) {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	return s.update(ctx, shared.ChangedColumns(req, shared.Actor(ctx)), id)
}

// UpdateStatus is the administrative status switch. Reservations never call it implicitly.
func (s *serviceImpl) UpdateStatus(ctx context.Context, req dto.UpdateStatusRequest, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".equipment.UpdateStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.update(ctx, shared.ChangedColumns(req, shared.Actor(ctx)), id); err != nil {
		return err
	}

	log.Info().Int64("equipment_id", id).Str("status", req.Status).Msg("equipment status changed")

	return nil
}

func (s *serviceImpl) update(ctx context.Context, fields map[string]any, id int64) error {
	if err := s.ensureExists(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, fields, byID(id)); err != nil {
		log.Error().Err(err).Int64("equipment_id", id).Msg("failed to update equipment")

		return fmt.Errorf("failed to update equipment: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

// Delete removes the equipment along with its reservations (foreign key cascade).
func (s *serviceImpl) Delete(ctx context.Context, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".equipment.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.ensureExists(ctx, id); err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, byID(id)); err != nil {
		log.Error().Err(err).Int64("equipment_id", id).Msg("failed to delete equipment")

		return fmt.Errorf("failed to delete equipment: %w", err)
	}

	s.invalidate(ctx, id)

	go shared.InvalidateCaches(context.WithoutCancel(ctx), s.cache, constant.CachePrefixReservation)

	return nil
}

func byID(id int64) gDto.FilterGroup {
	return shared.FilterByID(id, model.FieldID, model.TableName)
}

func (s *serviceImpl) ensureExists(ctx context.Context, id int64) error {
	exist, err := s.repo.Exist(ctx, byID(id))
	switch {
	case err != nil:
		log.Error().Err(err).Int64("equipment_id", id).Msg("failed to check equipment")

		return fmt.Errorf("failed to check equipment: %w", err)
	case !exist:
		return errEquipmentNotFound
	}

	return nil
}

func (s *serviceImpl) invalidate(ctx context.Context, ids ...any) {
	go cacheKeys.Evict(context.WithoutCancel(ctx), s.cache, ids...)
}
