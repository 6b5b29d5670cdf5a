package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"libres/config"
	"libres/infras/kafka"
	"libres/infras/otel"
	equipmentModel "libres/internal/domains/equipment/model"
	equipmentRepo "libres/internal/domains/equipment/repository"
	projectorModel "libres/internal/domains/projector/model"
	projectorService "libres/internal/domains/projector/service"
	"libres/internal/domains/reservation/availability"
	"libres/internal/domains/reservation/model"
	"libres/internal/domains/reservation/model/dto"
	"libres/internal/domains/reservation/quota"
	"libres/internal/domains/reservation/repository"
	roomModel "libres/internal/domains/room/model"
	roomRepo "libres/internal/domains/room/repository"
	timeslotModel "libres/internal/domains/timeslot/model"
	timeslotRepo "libres/internal/domains/timeslot/repository"
	userModel "libres/internal/domains/user/model"
	userRepo "libres/internal/domains/user/repository"
	"libres/shared"
	"libres/shared/cache"
	"libres/shared/constant"
	gDto "libres/shared/dto"
	"libres/shared/failure"
	gRepo "libres/shared/repository"
	"libres/shared/timezone"

	"github.com/rs/zerolog/log"
)

// Every reservation write clears the whole prefix: a status change moves rows between the
// cached status, date and user lists.
const cacheKeys = shared.CacheKeys(model.EntityName)

const pendingOrder = "reservations.reservation_date, time_slots.start_time"

type Reservation interface {
	Create(ctx context.Context, req dto.CreateReservationRequest) (dto.ReservationResponse, error)
	Confirm(ctx context.Context, id int64) (dto.ReservationResponse, error)
	Cancel(ctx context.Context, id int64) (dto.ReservationResponse, error)
	AdminCancel(ctx context.Context, id int64) (dto.ReservationResponse, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (dto.ReservationResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetReservationsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	GetByUser(ctx context.Context, userID int64, req gDto.QueryParams) (dto.GetReservationsResponse, error)
	GetActiveByUser(ctx context.Context, userID int64, req gDto.QueryParams) (dto.GetReservationsResponse, error)
	GetByDate(ctx context.Context, date time.Time, req gDto.QueryParams) (dto.GetReservationsResponse, error)
	GetByStatus(ctx context.Context, status string, req gDto.QueryParams) (dto.GetReservationsResponse, error)
	GetPending(ctx context.Context, req gDto.QueryParams) (dto.GetReservationsResponse, error)
}

type serviceImpl struct {
	repo          repository.Reservation
	userRepo      userRepo.User
	roomRepo      roomRepo.Room
	equipmentRepo equipmentRepo.Equipment
	timeslotRepo  timeslotRepo.TimeSlot
	availability  availability.Checker
	quota         quota.Tracker
	projector     projectorService.Projector
	transactor    gRepo.Transactor
	kafka         kafka.Client
	clock         timezone.Clock
	cfg           *config.Config
	rules         config.ReservationRules
	cache         cache.RedisCache
	otel          otel.Otel
}

// Deps groups the collaborators of the reservation engine.
type Deps struct {
	Repo          repository.Reservation
	UserRepo      userRepo.User
	RoomRepo      roomRepo.Room
	EquipmentRepo equipmentRepo.Equipment
	TimeSlotRepo  timeslotRepo.TimeSlot
	Availability  availability.Checker
	Quota         quota.Tracker
	Projector     projectorService.Projector
	Transactor    gRepo.Transactor
	Kafka         kafka.Client
	Clock         timezone.Clock
}

func New(deps Deps, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Reservation {
	return &serviceImpl{
		repo:          deps.Repo,
		userRepo:      deps.UserRepo,
		roomRepo:      deps.RoomRepo,
		equipmentRepo: deps.EquipmentRepo,
		timeslotRepo:  deps.TimeSlotRepo,
		availability:  deps.Availability,
		quota:         deps.Quota,
		projector:     deps.Projector,
		transactor:    deps.Transactor,
		kafka:         deps.Kafka,
		clock:         deps.Clock,
		cfg:           cfg,
		rules:         cfg.App.Reservation.WithDefaults(),
		cache:         cache,
		otel:          otel,
	}
}

// Create admits a reservation in pending state. Every check and the insert run in one
// transaction holding row locks on the user and the requested resources, so concurrent
// requests for the same user or resource are serialized.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateReservationRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	date, err := req.Date()
	if err != nil {
		return res, failure.BadRequestFromString("invalid reservation date") // nolint:wrapcheck
	}

	now := s.clock.Now()

	var reservation model.Reservation

	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		var txErr error

		reservation, txErr = s.admit(ctx, req, date, now)

		return txErr
	})
	if err != nil {
		return res, err
	}

	res.FromModel(reservation)

	log.Info().Int64("reservation_id", res.ID).Int64("user_id", res.UserID).Msg("reservation created")

	s.afterTransition(ctx, reservation, constant.Empty, constant.EventReservationCreated, res)

	return res, nil
}

func (s *serviceImpl) admit(ctx context.Context, req dto.CreateReservationRequest, date, now time.Time) (model.Reservation, error) {
	var reservation model.Reservation

	user, err := s.userRepo.GetForUpdate(ctx, shared.FilterByID(req.UserID, userModel.FieldID, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return reservation, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == 0 {
		return reservation, failure.NotFound("user not found") // nolint:wrapcheck
	}

	slot, err := s.timeslotRepo.Get(ctx, shared.FilterByID(req.TimeSlotID, timeslotModel.FieldID, timeslotModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get time slot")

		return reservation, fmt.Errorf("failed to get time slot: %w", err)
	}

	if slot.ID == 0 {
		return reservation, failure.NotFound("time slot not found") // nolint:wrapcheck
	}

	if req.RoomID == nil && req.EquipmentID == nil {
		return reservation, failure.BadRequestFromString("no resource selected") // nolint:wrapcheck
	}

	if req.RoomID != nil {
		if err = s.admitRoom(ctx, *req.RoomID, date, slot.ID); err != nil {
			return reservation, err
		}
	}

	if req.EquipmentID != nil {
		if err = s.admitEquipment(ctx, *req.EquipmentID, date, slot.ID); err != nil {
			return reservation, err
		}
	}

	if timezone.DateOf(date).Before(timezone.DateOf(now)) {
		return reservation, failure.BadRequestFromString("reservation date is in the past") // nolint:wrapcheck
	}

	taken, err := s.availability.HasUserSlotConflict(ctx, user.ID, date, slot.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to check user slot conflict")

		return reservation, fmt.Errorf("failed to check user slot conflict: %w", err)
	}

	if taken {
		return reservation, failure.Conflict("you already have a reservation for this date and time slot") // nolint:wrapcheck
	}

	active, err := s.quota.ActiveCount(ctx, user.ID, now)
	if err != nil {
		log.Error().Err(err).Msg("failed to count active reservations")

		return reservation, fmt.Errorf("failed to count active reservations: %w", err)
	}

	if active >= s.rules.MaxActivePerUser {
		log.Warn().Int64("user_id", user.ID).Int("active", active).Msg("reservation quota reached")

		return reservation, failure.QuotaExceeded(fmt.Sprintf("at most %d active reservations are allowed", s.rules.MaxActivePerUser)) // nolint:wrapcheck
	}

	duration, err := slot.Duration()
	if err != nil {
		log.Error().Err(err).Int64("time_slot_id", slot.ID).Msg("stored time slot is malformed")

		return reservation, fmt.Errorf("failed to read time slot duration: %w", err)
	}

	if duration < s.rules.MinDuration() {
		return reservation, failure.BadRequestFromString(fmt.Sprintf("reservation must last at least %d minutes", s.rules.MinDurationMinutes)) // nolint:wrapcheck
	}

	if duration > s.rules.MaxDuration() {
		return reservation, failure.BadRequestFromString(fmt.Sprintf("reservation may last at most %d hours", s.rules.MaxDurationHours)) // nolint:wrapcheck
	}

	reservation = req.ToModel(shared.Actor(ctx), date, now)
	reservation.UserID = user.ID
	reservation.SlotStartTime = slot.StartTime
	reservation.SlotEndTime = slot.EndTime

	reservation.ID, err = s.repo.Insert(ctx, reservation)
	if err != nil {
		if gRepo.IsErrorCode(err, constant.PqErrorCodeUniqueViolation) {
			return reservation, failure.Conflict("you already have a reservation for this date and time slot") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create reservation")

		return reservation, fmt.Errorf("failed to create reservation: %w", err)
	}

	return reservation, nil
}

func (s *serviceImpl) admitRoom(ctx context.Context, roomID int64, date time.Time, slotID int64) error {
	room, err := s.roomRepo.GetForUpdate(ctx, shared.FilterByID(roomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == 0 {
		return failure.NotFound("room not found") // nolint:wrapcheck
	}

	switch room.Status {
	case constant.RoomStatusMaintenance:
		return failure.BadRequestFromString("room is under maintenance") // nolint:wrapcheck
	case constant.RoomStatusOccupied:
		return failure.BadRequestFromString("room is occupied") // nolint:wrapcheck
	}

	return s.ensureFree(ctx, availability.KindRoom, room.ID, date, slotID)
}

func (s *serviceImpl) admitEquipment(ctx context.Context, equipmentID int64, date time.Time, slotID int64) error {
	equipment, err := s.equipmentRepo.GetForUpdate(ctx, shared.FilterByID(equipmentID, equipmentModel.FieldID, equipmentModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get equipment")

		return fmt.Errorf("failed to get equipment: %w", err)
	}

	if equipment.ID == 0 {
		return failure.NotFound("equipment not found") // nolint:wrapcheck
	}

	switch equipment.Status {
	case constant.EquipmentStatusMaintenance:
		return failure.BadRequestFromString("equipment is under maintenance") // nolint:wrapcheck
	case constant.EquipmentStatusReserved:
		return failure.BadRequestFromString("equipment is reserved") // nolint:wrapcheck
	}

	return s.ensureFree(ctx, availability.KindEquipment, equipment.ID, date, slotID)
}

func (s *serviceImpl) ensureFree(ctx context.Context, kind availability.ResourceKind, id int64, date time.Time, slotID int64) error {
	conflict, err := s.availability.HasConflict(ctx, kind, id, date, slotID)
	if err != nil {
		log.Error().Err(err).Str("kind", string(kind)).Msg("failed to check availability")

		return fmt.Errorf("failed to check availability: %w", err)
	}

	if conflict {
		return failure.Conflict(fmt.Sprintf("%s is already booked for this date and time slot", kind)) // nolint:wrapcheck
	}

	return nil
}

// Confirm promotes a pending reservation. The resources are locked and checked again so a
// slot never ends up with two confirmed reservations.
func (s *serviceImpl) Confirm(ctx context.Context, id int64) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Confirm")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	var reservation model.Reservation

	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		var txErr error

		reservation, txErr = s.lockOwned(ctx, id)
		if txErr != nil {
			return txErr
		}

		if reservation.Status != constant.ReservationStatusPending {
			return failure.BadRequestFromString("only pending reservations can be confirmed") // nolint:wrapcheck
		}

		if reservation.RoomID != nil {
			if _, txErr = s.roomRepo.GetForUpdate(ctx, shared.FilterByID(*reservation.RoomID, roomModel.FieldID, roomModel.TableName)); txErr != nil {
				return fmt.Errorf("failed to lock room: %w", txErr)
			}

			if txErr = s.ensureFree(ctx, availability.KindRoom, *reservation.RoomID, reservation.ReservationDate, reservation.TimeSlotID); txErr != nil {
				return txErr
			}
		}

		if reservation.EquipmentID != nil {
			if _, txErr = s.equipmentRepo.GetForUpdate(ctx, shared.FilterByID(*reservation.EquipmentID, equipmentModel.FieldID, equipmentModel.TableName)); txErr != nil {
				return fmt.Errorf("failed to lock equipment: %w", txErr)
			}

			if txErr = s.ensureFree(ctx, availability.KindEquipment, *reservation.EquipmentID, reservation.ReservationDate, reservation.TimeSlotID); txErr != nil {
				return txErr
			}
		}

		return s.setStatus(ctx, &reservation, constant.ReservationStatusConfirmed)
	})
	if err != nil {
		return res, err
	}

	res.FromModel(reservation)

	log.Info().Int64("reservation_id", id).Msg("reservation confirmed")

	s.afterTransition(ctx, reservation, constant.ReservationStatusPending, constant.EventReservationConfirmed, res)

	return res, nil
}

// Cancel is the self-service cancellation. It must happen at least the configured lead time
// before the slot starts.
func (s *serviceImpl) Cancel(ctx context.Context, id int64) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.cancel(ctx, id, true)
}

// AdminCancel cancels without the lead time check.
func (s *serviceImpl) AdminCancel(ctx context.Context, id int64) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.AdminCancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.cancel(ctx, id, false)
}

func (s *serviceImpl) cancel(ctx context.Context, id int64, selfService bool) (res dto.ReservationResponse, err error) {
	var (
		reservation model.Reservation
		from        string
	)

	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		var txErr error

		if selfService {
			reservation, txErr = s.lockOwned(ctx, id)
		} else {
			reservation, txErr = s.lock(ctx, id)
		}

		if txErr != nil {
			return txErr
		}

		if reservation.Status == constant.ReservationStatusCancelled {
			return failure.BadRequestFromString("reservation is already cancelled") // nolint:wrapcheck
		}

		if selfService {
			start, clockErr := timezone.Combine(reservation.ReservationDate, reservation.SlotStartTime)
			if clockErr != nil {
				return fmt.Errorf("failed to resolve reservation start: %w", clockErr)
			}

			if start.Sub(s.clock.Now()) < s.rules.MinCancellationLead() {
				return failure.BadRequestFromString(fmt.Sprintf("reservations must be cancelled at least %d hour(s) before the start", s.rules.MinCancellationHours)) // nolint:wrapcheck
			}
		}

		from = reservation.Status

		return s.setStatus(ctx, &reservation, constant.ReservationStatusCancelled)
	})
	if err != nil {
		return res, err
	}

	res.FromModel(reservation)

	log.Info().Int64("reservation_id", id).Bool("admin_override", !selfService).Msg("reservation cancelled")

	s.afterTransition(ctx, reservation, from, constant.EventReservationCancelled, res)

	return res, nil
}

// Delete removes the reservation from the ledger whatever its status.
func (s *serviceImpl) Delete(ctx context.Context, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	reservation, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation")

		return fmt.Errorf("failed to get reservation: %w", err)
	}

	if reservation.ID == 0 {
		return failure.NotFound("reservation not found") // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete reservation")

		return fmt.Errorf("failed to delete reservation: %w", err)
	}

	var res dto.ReservationResponse

	res.FromModel(reservation)

	s.publish(ctx, constant.EventReservationDeleted, res)
	s.invalidate(ctx)

	return nil
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Remember(ctx, s.cache, cacheKeys.One(id), s.cfg.Cache.TTL, func(ctx context.Context) (dto.ReservationResponse, error) {
		var out dto.ReservationResponse

		reservation, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
		if err != nil {
			log.Error().Err(err).Int64("reservation_id", id).Msg("failed to get reservation")

			return out, fmt.Errorf("failed to get reservation: %w", err)
		}

		if reservation.ID == 0 {
			return out, failure.NotFound("reservation not found") // nolint:wrapcheck
		}

		out.FromModel(reservation)

		return out, nil
	})
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Remember(ctx, s.cache, cacheKeys.List(req, filter), s.cfg.Cache.TTL, func(ctx context.Context) (dto.GetReservationsResponse, error) {
		var page dto.GetReservationsResponse

		total, err := s.Count(ctx, req, filter)
		if err != nil {
			return page, err
		}

		reservations, err := s.repo.GetAll(ctx, req, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to list reservations")

			return page, fmt.Errorf("failed to list reservations: %w", err)
		}

		page.FromModels(reservations, total, req.Limit)

		return page, nil
	})
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (total int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return cache.Remember(ctx, s.cache, cacheKeys.Count(req, filter), s.cfg.Cache.TTL, func(ctx context.Context) (int, error) {
		total, err := s.repo.Count(ctx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to count reservations")

			return 0, fmt.Errorf("failed to count reservations: %w", err)
		}

		return total, nil
	})
}

func (s *serviceImpl) GetByUser(ctx context.Context, userID int64, req gDto.QueryParams) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.GetByUser")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.ensureUser(ctx, userID); err != nil {
		return res, err
	}

	filter := gDto.FilterGroup{}
	filter.And(gDto.Filter{Field: model.FieldUserID, Operator: gDto.FilterOperatorEq, Value: userID, Table: model.TableName})

	return s.GetAll(ctx, req, filter)
}

// GetActiveByUser lists what counts against the user's quota right now. The filter depends on
// the clock, so the result is never cached.
func (s *serviceImpl) GetActiveByUser(ctx context.Context, userID int64, req gDto.QueryParams) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.GetActiveByUser")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.ensureUser(ctx, userID); err != nil {
		return res, err
	}

	filter := quota.ActiveFilter(userID, s.clock.Now())

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count active reservations")

		return res, fmt.Errorf("failed to count active reservations: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get active reservations")

		return res, fmt.Errorf("failed to get active reservations: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

func (s *serviceImpl) GetByDate(ctx context.Context, date time.Time, req gDto.QueryParams) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.GetByDate")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := gDto.FilterGroup{}
	filter.And(gDto.Filter{
		Field:    model.FieldReservationDate,
		Operator: gDto.FilterOperatorEq,
		Value:    date.Format(constant.DateOnlyFormat),
		Table:    model.TableName,
	})

	return s.GetAll(ctx, req, filter)
}

func (s *serviceImpl) GetByStatus(ctx context.Context, status string, req gDto.QueryParams) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.GetByStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := gDto.FilterGroup{}
	filter.And(gDto.Filter{Field: model.FieldStatus, Operator: gDto.FilterOperatorEq, Value: status, Table: model.TableName})

	return s.GetAll(ctx, req, filter)
}

// GetPending returns pending reservations, earliest date and slot first.
func (s *serviceImpl) GetPending(ctx context.Context, req gDto.QueryParams) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.GetPending")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	req.SortBy = pendingOrder
	req.SortDir = gDto.SortDirAsc

	return s.GetByStatus(ctx, constant.ReservationStatusPending, req)
}

func (s *serviceImpl) ensureUser(ctx context.Context, userID int64) error {
	exist, err := s.userRepo.Exist(ctx, shared.FilterByID(userID, userModel.FieldID, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if user exists")

		return fmt.Errorf("failed to check if user exists: %w", err)
	}

	if !exist {
		return failure.NotFound("user not found") // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) lock(ctx context.Context, id int64) (model.Reservation, error) {
	reservation, err := s.repo.GetForUpdate(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to lock reservation")

		return reservation, fmt.Errorf("failed to lock reservation: %w", err)
	}

	if reservation.ID == 0 {
		return reservation, failure.NotFound("reservation not found") // nolint:wrapcheck
	}

	return reservation, nil
}

// lockOwned is lock restricted to the reservation's owner. Admins and internal callers
// without a session pass.
func (s *serviceImpl) lockOwned(ctx context.Context, id int64) (model.Reservation, error) {
	reservation, err := s.lock(ctx, id)
	if err != nil {
		return reservation, err
	}

	if callerID, ok := shared.UserIDFromContext(ctx); ok && !shared.IsAdmin(ctx) && callerID != reservation.UserID {
		return reservation, failure.Forbidden("reservation belongs to another user") // nolint:wrapcheck
	}

	return reservation, nil
}

func (s *serviceImpl) setStatus(ctx context.Context, reservation *model.Reservation, status string) error {
	fields := shared.ChangedColumns(dto.UpdateStatusRequest{Status: status}, shared.Actor(ctx))

	err := s.repo.Update(ctx, fields, shared.FilterByID(reservation.ID, model.FieldID, model.TableName))
	if err != nil {
		if gRepo.IsErrorCode(err, constant.PqErrorCodeUniqueViolation) {
			return failure.Conflict("resource is already booked for this date and time slot") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to update reservation status")

		return fmt.Errorf("failed to update reservation status: %w", err)
	}

	reservation.Status = status

	if modifiedAt, ok := fields[constant.FieldModifiedAt].(time.Time); ok {
		reservation.ModifiedAt = modifiedAt
	}

	reservation.ModifiedBy = shared.Actor(ctx)

	return nil
}

func (s *serviceImpl) afterTransition(ctx context.Context, reservation model.Reservation, from, event string, res dto.ReservationResponse) {
	s.projector.Observe(ctx, projectorModel.Transition{
		ReservationID: reservation.ID,
		RoomID:        reservation.RoomID,
		EquipmentID:   reservation.EquipmentID,
		From:          from,
		To:            reservation.Status,
	})

	s.publish(ctx, event, res)
	s.invalidate(ctx)
}

func (s *serviceImpl) publish(ctx context.Context, eventType string, res dto.ReservationResponse) {
	if !s.cfg.Kafka.Enable {
		return
	}

	go func() {
		c := context.WithoutCancel(ctx)

		message := kafka.Message{
			Key:       strconv.FormatInt(res.ID, 10),
			EventType: eventType,
			Value:     res,
		}

		if err := s.kafka.SendMessages(c, s.cfg.Kafka.Topic.Reservation, message); err != nil {
			log.Error().Err(err).Str("event", eventType).Msg("failed to publish reservation event")
		}
	}()
}

func (s *serviceImpl) invalidate(ctx context.Context) {
	go shared.InvalidateCaches(context.WithoutCancel(ctx), s.cache, constant.CachePrefixReservation)
}
