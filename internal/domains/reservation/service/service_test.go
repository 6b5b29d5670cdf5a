package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"libres/config"
	"libres/infras/kafka"
	kafkaMocks "libres/infras/kafka/mocks"
	"libres/infras/otel/mocks"
	equipmentMocks "libres/internal/domains/equipment/mocks"
	equipmentModel "libres/internal/domains/equipment/model"
	projectorModel "libres/internal/domains/projector/model"
	projectorMocks "libres/internal/domains/projector/service/mocks"
	"libres/internal/domains/reservation/availability"
	availabilityMocks "libres/internal/domains/reservation/availability/mocks"
	reservationMocks "libres/internal/domains/reservation/mocks"
	"libres/internal/domains/reservation/model"
	"libres/internal/domains/reservation/model/dto"
	quotaMocks "libres/internal/domains/reservation/quota/mocks"
	"libres/internal/domains/reservation/service"
	roomMocks "libres/internal/domains/room/mocks"
	roomModel "libres/internal/domains/room/model"
	timeslotMocks "libres/internal/domains/timeslot/mocks"
	timeslotModel "libres/internal/domains/timeslot/model"
	userMocks "libres/internal/domains/user/mocks"
	userModel "libres/internal/domains/user/model"
	"libres/shared/cache/cachetest"
	cacheMocks "libres/shared/cache/mocks"
	"libres/shared/constant"
	gDto "libres/shared/dto"
	"libres/shared/failure"
	repoMocks "libres/shared/repository/mocks"
	"libres/shared/timezone"
)

const (
	today     = "2026-10-15"
	tomorrow  = "2026-10-16"
	yesterday = "2026-10-14"
)

type fixture struct {
	svc          service.Reservation
	cfg          *config.Config
	repo         *reservationMocks.MockReservation
	users        *userMocks.MockUser
	rooms        *roomMocks.MockRoom
	equipment    *equipmentMocks.MockEquipment
	slots        *timeslotMocks.MockTimeSlot
	availability *availabilityMocks.MockChecker
	quota        *quotaMocks.MockTracker
	projector    *projectorMocks.MockProjector
	kafka        *kafkaMocks.MockClient
	cache        *cacheMocks.MockRedisCache
	clears       *cachetest.Clears
}

func at(date, clock string) time.Time {
	parsed, err := timezone.Parse(constant.DateOnlyFormat, date)
	if err != nil {
		panic(err)
	}

	instant, err := timezone.Combine(parsed, clock)
	if err != nil {
		panic(err)
	}

	return instant
}

func newFixture(t *testing.T, now time.Time, opts ...func(*config.Config)) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		cfg:          &config.Config{},
		repo:         reservationMocks.NewMockReservation(ctrl),
		users:        userMocks.NewMockUser(ctrl),
		rooms:        roomMocks.NewMockRoom(ctrl),
		equipment:    equipmentMocks.NewMockEquipment(ctrl),
		slots:        timeslotMocks.NewMockTimeSlot(ctrl),
		availability: availabilityMocks.NewMockChecker(ctrl),
		quota:        quotaMocks.NewMockTracker(ctrl),
		projector:    projectorMocks.NewMockProjector(ctrl),
		kafka:        kafkaMocks.NewMockClient(ctrl),
		cache:        cacheMocks.NewMockRedisCache(ctrl),
		clears:       cachetest.NewClears(),
	}

	f.cfg.Cache.TTL = 3600

	for _, opt := range opts {
		opt(f.cfg)
	}

	transactor := repoMocks.NewMockTransactor(ctrl)
	transactor.EXPECT().WithinTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).AnyTimes()
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).DoAndReturn(f.clears.Clear).AnyTimes()
	f.projector.EXPECT().Observe(gomock.Any(), gomock.Any()).AnyTimes()

	f.svc = service.New(service.Deps{
		Repo:          f.repo,
		UserRepo:      f.users,
		RoomRepo:      f.rooms,
		EquipmentRepo: f.equipment,
		TimeSlotRepo:  f.slots,
		Availability:  f.availability,
		Quota:         f.quota,
		Projector:     f.projector,
		Transactor:    transactor,
		Kafka:         f.kafka,
		Clock:         timezone.FixedClock(now),
	}, f.cfg, f.cache, mocks.NewOtel())

	return f
}

func (f *fixture) user() {
	f.users.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(userModel.User{ID: 1, Role: constant.RoleMember}, nil)
}

func (f *fixture) slot(start, end string) {
	f.slots.EXPECT().Get(gomock.Any(), gomock.Any()).Return(timeslotModel.TimeSlot{ID: 4, StartTime: start, EndTime: end}, nil)
}

func (f *fixture) room(status string, booked bool) {
	f.rooms.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(roomModel.Room{ID: 7, Status: status}, nil)

	if status == constant.RoomStatusEmpty {
		f.availability.EXPECT().HasConflict(gomock.Any(), availability.KindRoom, int64(7), gomock.Any(), int64(4)).Return(booked, nil)
	}
}

func (f *fixture) equipmentItem(status string, booked bool) {
	f.equipment.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(equipmentModel.Equipment{ID: 8, Status: status}, nil)

	if status == constant.EquipmentStatusAvailable {
		f.availability.EXPECT().HasConflict(gomock.Any(), availability.KindEquipment, int64(8), gomock.Any(), int64(4)).Return(booked, nil)
	}
}

func (f *fixture) userSlot(taken bool) {
	f.availability.EXPECT().HasUserSlotConflict(gomock.Any(), int64(1), gomock.Any(), int64(4)).Return(taken, nil)
}

func (f *fixture) active(count int) {
	f.quota.EXPECT().ActiveCount(gomock.Any(), int64(1), gomock.Any()).Return(count, nil)
}

func (f *fixture) inserted() {
	f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(int64(42), nil)
}

// invalidated waits for the reservation caches to be dropped after a write.
func (f *fixture) invalidated(t *testing.T) {
	t.Helper()

	f.clears.Wait(t, constant.CachePrefixReservation+constant.Asterix)
}

func ptr(v int64) *int64 {
	return &v
}

func TestReservationService_Create(t *testing.T) {
	now := at(today, "08:00")

	roomRequest := func(date string) dto.CreateReservationRequest {
		return dto.CreateReservationRequest{UserID: 1, RoomID: ptr(7), TimeSlotID: 4, ReservationDate: date}
	}

	tests := []struct {
		name     string
		req      dto.CreateReservationRequest
		setup    func(f *fixture)
		wantCode int
		wantMsg  string
	}{
		{
			name:     "malformed date",
			req:      roomRequest("16-10-2026"),
			setup:    func(_ *fixture) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "user missing",
			req:  roomRequest(tomorrow),
			setup: func(f *fixture) {
				f.users.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
			},
			wantCode: http.StatusNotFound,
			wantMsg:  "user not found",
		},
		{
			name: "time slot missing",
			req:  roomRequest(tomorrow),
			setup: func(f *fixture) {
				f.user()
				f.slots.EXPECT().Get(gomock.Any(), gomock.Any()).Return(timeslotModel.TimeSlot{}, nil)
			},
			wantCode: http.StatusNotFound,
			wantMsg:  "time slot not found",
		},
		{
			name: "no resource selected",
			req:  dto.CreateReservationRequest{UserID: 1, TimeSlotID: 4, ReservationDate: tomorrow},
			setup: func(f *fixture) {
				f.user()
				f.slot("09:00:00", "10:00:00")
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  "no resource selected",
		},
		{
			name: "room missing",
			req:  roomRequest(tomorrow),
			setup: func(f *fixture) {
				f.user()
				f.slot("09:00:00", "10:00:00")
				f.rooms.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(roomModel.Room{}, nil)
			},
			wantCode: http.StatusNotFound,
			wantMsg:  "room not found",
		},
		{
			name: "room under maintenance",
			req:  roomRequest(tomorrow),
			setup: func(f *fixture) {
				f.user()
				f.slot("09:00:00", "10:00:00")
				f.room(constant.RoomStatusMaintenance, false)
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  "room is under maintenance",
		},
		{
			name: "room occupied",
			req:  roomRequest(tomorrow),
			setup: func(f *fixture) {
				f.user()
				f.slot("09:00:00", "10:00:00")
				f.room(constant.RoomStatusOccupied, false)
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  "room is occupied",
		},
		{
			name: "room already confirmed for slot",
			req:  roomRequest(tomorrow),
			setup: func(f *fixture) {
				f.user()
				f.slot("09:00:00", "10:00:00")
				f.room(constant.RoomStatusEmpty, true)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "equipment missing",
			req:  dto.CreateReservationRequest{UserID: 1, RoomID: ptr(7), EquipmentID: ptr(8), TimeSlotID: 4, ReservationDate: tomorrow},
			setup: func(f *fixture) {
				f.user()
				f.slot("09:00:00", "10:00:00")
				f.room(constant.RoomStatusEmpty, false)
				f.equipment.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(equipmentModel.Equipment{}, nil)
			},
			wantCode: http.StatusNotFound,
			wantMsg:  "equipment not found",
		},
		{
			name: "equipment reserved",
			req:  dto.CreateReservationRequest{UserID: 1, EquipmentID: ptr(8), TimeSlotID: 4, ReservationDate: tomorrow},
			setup: func(f *fixture) {
				f.user()
				f.slot("09:00:00", "10:00:00")
				f.equipmentItem(constant.EquipmentStatusReserved, false)
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  "equipment is reserved",
		},
		{
			name: "equipment under maintenance",
			req:  dto.CreateReservationRequest{UserID: 1, EquipmentID: ptr(8), TimeSlotID: 4, ReservationDate: tomorrow},
			setup: func(f *fixture) {
				f.user()
				f.slot("09:00:00", "10:00:00")
				f.equipmentItem(constant.EquipmentStatusMaintenance, false)
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  "equipment is under maintenance",
		},
		{
			name: "equipment already confirmed for slot",
			req:  dto.CreateReservationRequest{UserID: 1, EquipmentID: ptr(8), TimeSlotID: 4, ReservationDate: tomorrow},
			setup: func(f *fixture) {
				f.user()
				f.slot("09:00:00", "10:00:00")
				f.equipmentItem(constant.EquipmentStatusAvailable, true)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "past date",
			req:  roomRequest(yesterday),
			setup: func(f *fixture) {
				f.user()
				f.slot("09:00:00", "10:00:00")
				f.room(constant.RoomStatusEmpty, false)
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  "reservation date is in the past",
		},
		{
			name: "user already booked the slot",
			req:  roomRequest(tomorrow),
			setup: func(f *fixture) {
				f.user()
				f.slot("09:00:00", "10:00:00")
				f.room(constant.RoomStatusEmpty, false)
				f.userSlot(true)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "quota reached",
			req:  roomRequest(tomorrow),
			setup: func(f *fixture) {
				f.user()
				f.slot("09:00:00", "10:00:00")
				f.room(constant.RoomStatusEmpty, false)
				f.userSlot(false)
				f.active(2)
			},
			wantCode: http.StatusUnprocessableEntity,
			wantMsg:  "at most 2 active reservations are allowed",
		},
		{
			name: "slot too short",
			req:  roomRequest(tomorrow),
			setup: func(f *fixture) {
				f.user()
				f.slot("09:00:00", "09:20:00")
				f.room(constant.RoomStatusEmpty, false)
				f.userSlot(false)
				f.active(0)
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  "reservation must last at least 30 minutes",
		},
		{
			name: "slot too long",
			req:  roomRequest(tomorrow),
			setup: func(f *fixture) {
				f.user()
				f.slot("09:00:00", "12:01:00")
				f.room(constant.RoomStatusEmpty, false)
				f.userSlot(false)
				f.active(0)
			},
			wantCode: http.StatusBadRequest,
			wantMsg:  "reservation may last at most 3 hours",
		},
		{
			name: "one below quota with a three hour slot",
			req:  roomRequest(tomorrow),
			setup: func(f *fixture) {
				f.user()
				f.slot("09:00:00", "12:00:00")
				f.room(constant.RoomStatusEmpty, false)
				f.userSlot(false)
				f.active(1)
				f.inserted()
			},
		},
		{
			name: "today is not in the past",
			req:  roomRequest(today),
			setup: func(f *fixture) {
				f.user()
				f.slot("09:00:00", "09:30:00")
				f.room(constant.RoomStatusEmpty, false)
				f.userSlot(false)
				f.active(0)
				f.inserted()
			},
		},
		{
			name: "concurrent insert hits unique index",
			req:  roomRequest(tomorrow),
			setup: func(f *fixture) {
				f.user()
				f.slot("09:00:00", "10:00:00")
				f.room(constant.RoomStatusEmpty, false)
				f.userSlot(false)
				f.active(0)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(int64(0), &pq.Error{Code: constant.PqErrorCodeUniqueViolation})
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "insert error",
			req:  roomRequest(tomorrow),
			setup: func(f *fixture) {
				f.user()
				f.slot("09:00:00", "10:00:00")
				f.room(constant.RoomStatusEmpty, false)
				f.userSlot(false)
				f.active(0)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("database error"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, now)
			tt.setup(f)

			res, err := f.svc.Create(context.Background(), tt.req)

			if tt.wantCode != 0 {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				if tt.wantMsg != "" {
					assert.Equal(t, tt.wantMsg, err.Error())
				}

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, int64(42), res.ID)
			assert.Equal(t, constant.ReservationStatusPending, res.Status)
			f.invalidated(t)
		})
	}
}

func TestReservationService_Create_PersistsPendingWithBothResources(t *testing.T) {
	f := newFixture(t, at(today, "08:00"))

	f.user()
	f.slot("09:00:00", "10:00:00")
	f.room(constant.RoomStatusEmpty, false)
	f.equipmentItem(constant.EquipmentStatusAvailable, false)
	f.userSlot(false)
	f.active(0)
	f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, reservation model.Reservation) (int64, error) {
			assert.Equal(t, int64(1), reservation.UserID)
			assert.Equal(t, int64(7), *reservation.RoomID)
			assert.Equal(t, int64(8), *reservation.EquipmentID)
			assert.Equal(t, int64(4), reservation.TimeSlotID)
			assert.Equal(t, tomorrow, reservation.ReservationDate.Format(constant.DateOnlyFormat))
			assert.Equal(t, constant.ReservationStatusPending, reservation.Status)

			return 42, nil
		})

	res, err := f.svc.Create(context.Background(), dto.CreateReservationRequest{
		UserID: 1, RoomID: ptr(7), EquipmentID: ptr(8), TimeSlotID: 4, ReservationDate: tomorrow,
	})

	assert.NoError(t, err)
	f.invalidated(t)
	assert.Equal(t, "09:00", res.StartTime)
	assert.Equal(t, "10:00", res.EndTime)
	assert.Equal(t, tomorrow, res.ReservationDate)
}

func TestReservationService_Create_PublishesEvent(t *testing.T) {
	f := newFixture(t, at(today, "08:00"), func(cfg *config.Config) {
		cfg.Kafka.Enable = true
		cfg.Kafka.Topic.Reservation = "libres.reservations"
	})

	f.user()
	f.slot("09:00:00", "10:00:00")
	f.room(constant.RoomStatusEmpty, false)
	f.userSlot(false)
	f.active(0)
	f.inserted()

	published := make(chan string, 1)

	f.kafka.EXPECT().SendMessages(gomock.Any(), "libres.reservations", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
			assert.Equal(t, constant.EventReservationCreated, messages[0].EventType)
			assert.Equal(t, "42", messages[0].Key)

			published <- messages[0].EventType

			return nil
		})

	_, err := f.svc.Create(context.Background(), dto.CreateReservationRequest{UserID: 1, RoomID: ptr(7), TimeSlotID: 4, ReservationDate: tomorrow})
	assert.NoError(t, err)

	select {
	case <-published:
	case <-time.After(time.Second):
		t.Fatal("reservation event was not published")
	}

	f.invalidated(t)
}

func stored(status string) model.Reservation {
	date, _ := timezone.Parse(constant.DateOnlyFormat, tomorrow)

	return model.Reservation{
		ID:              42,
		UserID:          1,
		RoomID:          ptr(7),
		TimeSlotID:      4,
		ReservationDate: date,
		Status:          status,
		SlotStartTime:   "09:00:00",
		SlotEndTime:     "10:00:00",
	}
}

func memberContext(id string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, id)

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleMember)
}

func TestReservationService_Confirm(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		setup    func(f *fixture)
		wantCode int
	}{
		{
			name: "pending becomes confirmed",
			ctx:  context.Background(),
			setup: func(f *fixture) {
				f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(stored(constant.ReservationStatusPending), nil)
				f.rooms.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(roomModel.Room{ID: 7}, nil)
				f.availability.EXPECT().HasConflict(gomock.Any(), availability.KindRoom, int64(7), gomock.Any(), int64(4)).Return(false, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, constant.ReservationStatusConfirmed, fields[model.FieldStatus])

						return nil
					})
			},
		},
		{
			name: "missing",
			ctx:  context.Background(),
			setup: func(f *fixture) {
				f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(model.Reservation{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "already confirmed",
			ctx:  context.Background(),
			setup: func(f *fixture) {
				f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(stored(constant.ReservationStatusConfirmed), nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "cancelled stays cancelled",
			ctx:  context.Background(),
			setup: func(f *fixture) {
				f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(stored(constant.ReservationStatusCancelled), nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "slot confirmed for someone else in the meantime",
			ctx:  context.Background(),
			setup: func(f *fixture) {
				f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(stored(constant.ReservationStatusPending), nil)
				f.rooms.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(roomModel.Room{ID: 7}, nil)
				f.availability.EXPECT().HasConflict(gomock.Any(), availability.KindRoom, int64(7), gomock.Any(), int64(4)).Return(true, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "unique index rejects the update",
			ctx:  context.Background(),
			setup: func(f *fixture) {
				f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(stored(constant.ReservationStatusPending), nil)
				f.rooms.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(roomModel.Room{ID: 7}, nil)
				f.availability.EXPECT().HasConflict(gomock.Any(), availability.KindRoom, int64(7), gomock.Any(), int64(4)).Return(false, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(&pq.Error{Code: constant.PqErrorCodeUniqueViolation})
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "other member",
			ctx:  memberContext("2"),
			setup: func(f *fixture) {
				f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(stored(constant.ReservationStatusPending), nil)
			},
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, at(today, "08:00"))
			tt.setup(f)

			res, err := f.svc.Confirm(tt.ctx, 42)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, constant.ReservationStatusConfirmed, res.Status)
			f.invalidated(t)
		})
	}
}

func TestReservationService_Confirm_ObservesTransition(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t, at(today, "08:00"))

	projector := projectorMocks.NewMockProjector(ctrl)
	projector.EXPECT().Observe(gomock.Any(), projectorModel.Transition{
		ReservationID: 42,
		RoomID:        ptr(7),
		From:          constant.ReservationStatusPending,
		To:            constant.ReservationStatusConfirmed,
	})

	transactor := repoMocks.NewMockTransactor(ctrl)
	transactor.EXPECT().WithinTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})

	svc := service.New(service.Deps{
		Repo:          f.repo,
		RoomRepo:      f.rooms,
		EquipmentRepo: f.equipment,
		Availability:  f.availability,
		Projector:     projector,
		Transactor:    transactor,
		Clock:         timezone.FixedClock(at(today, "08:00")),
	}, f.cfg, f.cache, mocks.NewOtel())

	f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(stored(constant.ReservationStatusPending), nil)
	f.rooms.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(roomModel.Room{ID: 7}, nil)
	f.availability.EXPECT().HasConflict(gomock.Any(), availability.KindRoom, int64(7), gomock.Any(), int64(4)).Return(false, nil)
	f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	_, err := svc.Confirm(context.Background(), 42)

	assert.NoError(t, err)
	f.invalidated(t)
}

func TestReservationService_Cancel_LeadTime(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		wantCode int
	}{
		{name: "61 minutes before start", now: at(tomorrow, "07:59")},
		{name: "exactly one hour before start", now: at(tomorrow, "08:00")},
		{name: "59 minutes before start", now: at(tomorrow, "08:01"), wantCode: http.StatusBadRequest},
		{name: "after start", now: at(tomorrow, "09:30"), wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.now)

			f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(stored(constant.ReservationStatusConfirmed), nil)

			if tt.wantCode == 0 {
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			}

			res, err := f.svc.Cancel(context.Background(), 42)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, constant.ReservationStatusCancelled, res.Status)
			f.invalidated(t)
		})
	}
}

func TestReservationService_Cancel_Twice(t *testing.T) {
	f := newFixture(t, at(today, "08:00"))

	gomock.InOrder(
		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(stored(constant.ReservationStatusPending), nil),
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
		f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(stored(constant.ReservationStatusCancelled), nil),
	)

	_, err := f.svc.Cancel(context.Background(), 42)
	assert.NoError(t, err)
	f.invalidated(t)

	_, err = f.svc.Cancel(context.Background(), 42)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	assert.Equal(t, "reservation is already cancelled", err.Error())
}

func TestReservationService_Cancel_OtherMember(t *testing.T) {
	f := newFixture(t, at(today, "08:00"))

	f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(stored(constant.ReservationStatusPending), nil)

	_, err := f.svc.Cancel(memberContext("2"), 42)

	assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
}

func TestReservationService_AdminCancel(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		wantCode int
	}{
		{name: "inside lead time", status: constant.ReservationStatusConfirmed},
		{name: "pending", status: constant.ReservationStatusPending},
		{name: "already cancelled", status: constant.ReservationStatusCancelled, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, at(tomorrow, "08:55"))

			f.repo.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).Return(stored(tt.status), nil)

			if tt.wantCode == 0 {
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			}

			res, err := f.svc.AdminCancel(context.Background(), 42)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, constant.ReservationStatusCancelled, res.Status)
			f.invalidated(t)
		})
	}
}

func TestReservationService_Delete(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *fixture)
		wantCode int
	}{
		{
			name: "cancelled reservation removed",
			setup: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(constant.ReservationStatusCancelled), nil)
				f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "missing",
			setup: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Reservation{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "delete error",
			setup: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(constant.ReservationStatusPending), nil)
				f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, at(today, "08:00"))
			tt.setup(f)

			err := f.svc.Delete(context.Background(), 42)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
			f.invalidated(t)
		})
	}
}

func TestReservationService_Queries(t *testing.T) {
	t.Run("pending ordered by date then slot start", func(t *testing.T) {
		f := newFixture(t, at(today, "08:00"))

		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
		f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Reservation, error) {
				where, args := filter.GetWhereClause()

				assert.Equal(t, "ORDER BY reservations.reservation_date ASC, time_slots.start_time ASC", params.OrderBy())
				assert.Contains(t, where, "reservations.status = :status")
				assert.Equal(t, constant.ReservationStatusPending, args["status"])

				return []model.Reservation{stored(constant.ReservationStatusPending)}, nil
			})

		res, err := f.svc.GetPending(context.Background(), gDto.QueryParams{Page: 1, Limit: 10})

		assert.NoError(t, err)
		assert.Len(t, res.Reservations, 1)
		assert.Equal(t, 1, res.TotalData)
	})

	t.Run("by user requires the user", func(t *testing.T) {
		f := newFixture(t, at(today, "08:00"))

		f.users.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		_, err := f.svc.GetByUser(context.Background(), 9, gDto.QueryParams{})

		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("active by user uses the clock", func(t *testing.T) {
		f := newFixture(t, at(today, "10:15"))

		f.users.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil)
		f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Reservation, error) {
				_, args := filter.GetWhereClause()

				assert.Equal(t, today, args["active_today"])
				assert.Equal(t, "10:15:00", args["active_now"])

				return []model.Reservation{}, nil
			})

		res, err := f.svc.GetActiveByUser(context.Background(), 1, gDto.QueryParams{})

		assert.NoError(t, err)
		assert.Empty(t, res.Reservations)
	})

	t.Run("by date", func(t *testing.T) {
		f := newFixture(t, at(today, "08:00"))

		date, _ := timezone.Parse(constant.DateOnlyFormat, tomorrow)

		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil)
		f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Reservation, error) {
				_, args := filter.GetWhereClause()

				assert.Equal(t, tomorrow, args["reservation_date"])

				return []model.Reservation{}, nil
			})

		_, err := f.svc.GetByDate(context.Background(), date, gDto.QueryParams{})

		assert.NoError(t, err)
	})

	t.Run("get missing", func(t *testing.T) {
		f := newFixture(t, at(today, "08:00"))

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Reservation{}, nil)

		_, err := f.svc.Get(context.Background(), 42)

		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}
