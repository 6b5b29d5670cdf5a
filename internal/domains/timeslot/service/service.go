package service

import (
	"context"
	"fmt"

	"libres/config"
	"libres/infras/otel"
	"libres/internal/domains/timeslot/model"
	"libres/internal/domains/timeslot/model/dto"
	"libres/internal/domains/timeslot/repository"
	"libres/shared"
	"libres/shared/cache"
	"libres/shared/constant"
	gDto "libres/shared/dto"
	"libres/shared/failure"
	gRepo "libres/shared/repository"

	"github.com/rs/zerolog/log"
)

const cacheKeys = shared.CacheKeys("timeslot")

var (
	errSlotNotFound = failure.NotFound("time slot not found")
	errSlotExists   = failure.Conflict("time slot already exists")
)

type TimeSlot interface {
	Create(ctx context.Context, req dto.CreateTimeSlotRequest) (int64, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetTimeSlotsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id int64) (dto.TimeSlotResponse, error)
	Update(ctx context.Context, req dto.UpdateTimeSlotRequest, id int64) error
	Delete(ctx context.Context, id int64) error
}

type serviceImpl struct {
	repo  repository.TimeSlot
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.TimeSlot, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) TimeSlot {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateTimeSlotRequest) (id int64, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".timeslot.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	slot := req.ToModel(shared.Actor(ctx))

	if err = s.validate(ctx, slot, 0); err != nil {
		return 0, err
	}

	id, err = s.repo.Insert(ctx, slot)
	if err != nil {
		if gRepo.IsErrorCode(err, constant.PqErrorCodeUniqueViolation) {
			return 0, errSlotExists
		}

		log.Error().Err(err).Msg("failed to create time slot")

		return 0, fmt.Errorf("failed to create time slot: %w", err)
	}

	s.invalidate(ctx, id)

	return id, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetTimeSlotsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".timeslot.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Remember(ctx, s.cache, cacheKeys.List(req, filter), s.cfg.Cache.TTL, func(ctx context.Context) (dto.GetTimeSlotsResponse, error) {
		var page dto.GetTimeSlotsResponse

		total, err := s.Count(ctx, req, filter)
		if err != nil {
			return page, err
		}

		slots, err := s.repo.GetAll(ctx, req, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to list time slots")

			return page, fmt.Errorf("failed to list time slots: %w", err)
		}

		page.FromModels(slots, total, req.Limit)

		return page, nil
	})
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (total int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".timeslot.Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Remember(ctx, s.cache, cacheKeys.Count(req, filter), s.cfg.Cache.TTL, func(ctx context.Context) (int, error) {
		total, err := s.repo.Count(ctx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to count time slots")

			return 0, fmt.Errorf("failed to count time slots: %w", err)
		}

		return total, nil
	})
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (res dto.TimeSlotResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".timeslot.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Remember(ctx, s.cache, cacheKeys.One(id), s.cfg.Cache.TTL, func(ctx context.Context) (dto.TimeSlotResponse, error) {
		var out dto.TimeSlotResponse

		slot, err := s.find(ctx, id)
		if err != nil {
			return out, err
		}

		out.FromModel(slot)

		return out, nil
	})
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateTimeSlotRequest, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".timeslot.Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req == (dto.UpdateTimeSlotRequest{}) {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	req.Normalize()

	merged, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if req.StartTime != "" {
		merged.StartTime = req.StartTime
	}

	if req.EndTime != "" {
		merged.EndTime = req.EndTime
	}

	if err = s.validate(ctx, merged, id); err != nil {
		return err
	}

	if err = s.repo.Update(ctx, shared.ChangedColumns(req, shared.Actor(ctx)), byID(id)); err != nil {
		if gRepo.IsErrorCode(err, constant.PqErrorCodeUniqueViolation) {
			return errSlotExists
		}

		log.Error().Err(err).Int64("time_slot_id", id).Msg("failed to update time slot")

		return fmt.Errorf("failed to update time slot: %w", err)
	}

	s.invalidate(ctx, id)

	return nil
}

// Delete removes the slot. Reservations booked on it are removed by the foreign key cascade.
func (s *serviceImpl) Delete(ctx context.Context, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".timeslot.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	exist, err := s.repo.Exist(ctx, byID(id))
	switch {
	case err != nil:
		log.Error().Err(err).Int64("time_slot_id", id).Msg("failed to check time slot")

		return fmt.Errorf("failed to check time slot: %w", err)
	case !exist:
		return errSlotNotFound
	}

	if err = s.repo.Delete(ctx, byID(id)); err != nil {
		log.Error().Err(err).Int64("time_slot_id", id).Msg("failed to delete time slot")

		return fmt.Errorf("failed to delete time slot: %w", err)
	}

	s.invalidate(ctx, id)

	go shared.InvalidateCaches(context.WithoutCancel(ctx), s.cache, constant.CachePrefixReservation)

	return nil
}

// validate enforces start < end and that no other slot (other than exceptID) has the same bounds.
func (s *serviceImpl) validate(ctx context.Context, slot model.TimeSlot, exceptID int64) error {
	duration, err := slot.Duration()
	if err != nil {
		return failure.BadRequestFromString(err.Error()) // nolint:wrapcheck
	}

	if duration <= 0 {
		return failure.BadRequestFromString("start time must be before end time") // nolint:wrapcheck
	}

	filter := gDto.FilterGroup{}
	filter.And(
		gDto.Filter{Field: model.FieldStartTime, Operator: gDto.FilterOperatorEq, Value: slot.StartTime, Table: model.TableName},
		gDto.Filter{Field: model.FieldEndTime, Operator: gDto.FilterOperatorEq, Value: slot.EndTime, Table: model.TableName},
	)

	if exceptID != 0 {
		filter.And(gDto.Filter{Field: model.FieldID, Operator: gDto.FilterOperatorNotEq, Value: exceptID, Table: model.TableName})
	}

	exists, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check time slot uniqueness")

		return fmt.Errorf("failed to check time slot uniqueness: %w", err)
	}

	if exists {
		return errSlotExists
	}

	return nil
}

func byID(id int64) gDto.FilterGroup {
	return shared.FilterByID(id, model.FieldID, model.TableName)
}

func (s *serviceImpl) find(ctx context.Context, id int64) (model.TimeSlot, error) {
	slot, err := s.repo.Get(ctx, byID(id))
	if err != nil {
		log.Error().Err(err).Int64("time_slot_id", id).Msg("failed to get time slot")

		return slot, fmt.Errorf("failed to get time slot: %w", err)
	}

	if slot.ID == 0 {
		return slot, errSlotNotFound
	}

	return slot, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, ids ...any) {
	go cacheKeys.Evict(context.WithoutCancel(ctx), s.cache, ids...)
}
