package service_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"libres/config"
	kafkaMocks "libres/infras/kafka/mocks"
	"libres/infras/otel/mocks"
	equipmentMocks "libres/internal/domains/equipment/mocks"
	projectorMocks "libres/internal/domains/projector/service/mocks"
	"libres/internal/domains/reservation/availability"
	"libres/internal/domains/reservation/model"
	"libres/internal/domains/reservation/model/dto"
	"libres/internal/domains/reservation/quota"
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

// ledger keeps reservations in memory. Lookups understand the id filter only.
type ledger struct {
	mu   sync.Mutex
	rows map[int64]model.Reservation
	next int64
}

func newLedger() *ledger {
	return &ledger{rows: map[int64]model.Reservation{}}
}

func idOf(filter gDto.FilterGroup) int64 {
	_, args := filter.GetWhereClause()
	id, _ := args[model.FieldID].(int64)

	return id
}

func (l *ledger) Insert(_ context.Context, reservation model.Reservation) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.next++
	reservation.ID = l.next
	l.rows[reservation.ID] = reservation

	return reservation.ID, nil
}

func (l *ledger) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Reservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.rows[idOf(filter)], nil
}

func (l *ledger) GetForUpdate(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Reservation, error) {
	return l.Get(ctx, filter, columns...)
}

func (l *ledger) GetAll(_ context.Context, _ gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Reservation, error) {
	return nil, nil
}

func (l *ledger) Exist(_ context.Context, _ gDto.FilterGroup) (bool, error) {
	return false, nil
}

// Count answers the active count query used by the quota tracker: pending or confirmed rows
// whose slot ends after the instant the filter was built for.
func (l *ledger) Count(_ context.Context, filter gDto.FilterGroup) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, args := filter.GetWhereClause()
	userID, _ := args[model.FieldUserID].(int64)
	today, _ := args["active_today"].(string)
	now, _ := args["active_now"].(string)

	count := 0

	for _, row := range l.rows {
		if row.UserID != userID || row.Status == constant.ReservationStatusCancelled {
			continue
		}

		date := row.ReservationDate.Format(constant.DateOnlyFormat)
		if date > today || (date == today && row.SlotEndTime > now) {
			count++
		}
	}

	return count, nil
}

func (l *ledger) Update(_ context.Context, fields map[string]any, filter gDto.FilterGroup) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	row := l.rows[idOf(filter)]
	row.Status, _ = fields[model.FieldStatus].(string)
	l.rows[row.ID] = row

	return nil
}

func (l *ledger) Delete(_ context.Context, filter gDto.FilterGroup) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.rows, idOf(filter))

	return nil
}

// checker answers availability questions straight from the ledger.
type checker struct {
	ledger *ledger
}

func (c checker) HasConflict(_ context.Context, kind availability.ResourceKind, resourceID int64, date time.Time, slotID int64) (bool, error) {
	c.ledger.mu.Lock()
	defer c.ledger.mu.Unlock()

	for _, row := range c.ledger.rows {
		resource := row.RoomID
		if kind == availability.KindEquipment {
			resource = row.EquipmentID
		}

		if resource != nil && *resource == resourceID && row.TimeSlotID == slotID &&
			row.ReservationDate.Equal(date) && row.Status == constant.ReservationStatusConfirmed {
			return true, nil
		}
	}

	return false, nil
}

func (c checker) HasUserSlotConflict(_ context.Context, userID int64, date time.Time, slotID int64) (bool, error) {
	c.ledger.mu.Lock()
	defer c.ledger.mu.Unlock()

	for _, row := range c.ledger.rows {
		if row.UserID == userID && row.TimeSlotID == slotID &&
			row.ReservationDate.Equal(date) && row.Status != constant.ReservationStatusCancelled {
			return true, nil
		}
	}

	return false, nil
}

// handClock is moved by the scenario itself.
type handClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *handClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *handClock) set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now
}

var scenarioSlots = map[int64]timeslotModel.TimeSlot{
	4: {ID: 4, StartTime: "09:00:00", EndTime: "10:00:00"},
	5: {ID: 5, StartTime: "10:00:00", EndTime: "11:00:00"},
	6: {ID: 6, StartTime: "11:00:00", EndTime: "12:00:00"},
}

type scenario struct {
	svc    service.Reservation
	book   *ledger
	probe  checker
	clears *cachetest.Clears
}

func newScenario(t *testing.T, clock timezone.Clock) *scenario {
	t.Helper()

	ctrl := gomock.NewController(t)

	book := newLedger()
	probe := checker{ledger: book}
	clears := cachetest.NewClears()

	users := userMocks.NewMockUser(ctrl)
	users.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter gDto.FilterGroup, _ ...string) (userModel.User, error) {
			_, args := filter.GetWhereClause()
			id, _ := args[userModel.FieldID].(int64)

			return userModel.User{ID: id, Role: constant.RoleMember}, nil
		}).AnyTimes()

	rooms := roomMocks.NewMockRoom(ctrl)
	rooms.EXPECT().GetForUpdate(gomock.Any(), gomock.Any()).
		Return(roomModel.Room{ID: 7, Status: constant.RoomStatusEmpty}, nil).AnyTimes()

	slots := timeslotMocks.NewMockTimeSlot(ctrl)
	slots.EXPECT().Get(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter gDto.FilterGroup, _ ...string) (timeslotModel.TimeSlot, error) {
			_, args := filter.GetWhereClause()
			id, _ := args[timeslotModel.FieldID].(int64)

			return scenarioSlots[id], nil
		}).AnyTimes()

	transactor := repoMocks.NewMockTransactor(ctrl)
	transactor.EXPECT().WithinTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()

	projector := projectorMocks.NewMockProjector(ctrl)
	projector.EXPECT().Observe(gomock.Any(), gomock.Any()).AnyTimes()

	redis := cacheMocks.NewMockRedisCache(ctrl)
	redis.EXPECT().Clear(gomock.Any(), gomock.Any()).DoAndReturn(clears.Clear).AnyTimes()

	svc := service.New(service.Deps{
		Repo:          book,
		UserRepo:      users,
		RoomRepo:      rooms,
		EquipmentRepo: equipmentMocks.NewMockEquipment(ctrl),
		TimeSlotRepo:  slots,
		Availability:  probe,
		Quota:         quota.New(book, mocks.NewOtel()),
		Projector:     projector,
		Transactor:    transactor,
		Kafka:         kafkaMocks.NewMockClient(ctrl),
		Clock:         clock,
	}, &config.Config{}, redis, mocks.NewOtel())

	return &scenario{svc: svc, book: book, probe: probe, clears: clears}
}

// settle waits until each of writes successful writes has dropped the reservation caches.
func (s *scenario) settle(t *testing.T, writes int) {
	t.Helper()

	patterns := make([]string, writes)
	for i := range patterns {
		patterns[i] = constant.CachePrefixReservation + constant.Asterix
	}

	s.clears.Wait(t, patterns...)
}

func TestReservationScenario_FirstConfirmedWins(t *testing.T) {
	s := newScenario(t, timezone.FixedClock(at(today, "08:00")))

	ctx := context.Background()
	room := ptr(7)

	first, err := s.svc.Create(ctx, dto.CreateReservationRequest{UserID: 1, RoomID: room, TimeSlotID: 4, ReservationDate: tomorrow})
	require.NoError(t, err)
	assert.Equal(t, constant.ReservationStatusPending, first.Status)

	second, err := s.svc.Create(ctx, dto.CreateReservationRequest{UserID: 2, RoomID: room, TimeSlotID: 4, ReservationDate: tomorrow})
	require.NoError(t, err, "a pending reservation must not block the slot")
	assert.Equal(t, constant.ReservationStatusPending, second.Status)

	confirmed, err := s.svc.Confirm(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, constant.ReservationStatusConfirmed, confirmed.Status)

	date, _ := timezone.Parse(constant.DateOnlyFormat, tomorrow)

	taken, err := s.probe.HasConflict(ctx, availability.KindRoom, 7, date, 4)
	require.NoError(t, err)
	assert.True(t, taken)

	_, err = s.svc.Confirm(ctx, second.ID)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))

	_, err = s.svc.Create(ctx, dto.CreateReservationRequest{UserID: 3, RoomID: room, TimeSlotID: 4, ReservationDate: tomorrow})
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))

	s.settle(t, 3)
}

func TestReservationScenario_ElapsedSlotFreesQuota(t *testing.T) {
	clock := &handClock{now: at(today, "08:00")}
	s := newScenario(t, clock)

	ctx := context.Background()
	book := func(slotID int64) error {
		_, err := s.svc.Create(ctx, dto.CreateReservationRequest{UserID: 1, RoomID: ptr(7), TimeSlotID: slotID, ReservationDate: today})

		return err
	}

	require.NoError(t, book(4))
	require.NoError(t, book(5))

	err := book(6)
	assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err), "two live reservations fill the default quota")

	clock.set(at(today, "09:59"))

	err = book(6)
	assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err), "the 09:00 slot has not ended yet")

	clock.set(at(today, "10:00"))

	require.NoError(t, book(6), "the 09:00 slot ended at 10:00 and no longer counts")

	active, err := quota.New(s.book, mocks.NewOtel()).ActiveCount(ctx, 1, clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, active)

	s.settle(t, 3)
}
