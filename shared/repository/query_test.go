package repository

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"libres/shared/dto"
	"libres/shared/model"
)

type slotBooking struct {
	ID        int64     `db:"id"`
	RoomID    *int64    `db:"room_id"`
	Status    string    `db:"status"`
	Date      time.Time `db:"reservation_date"`
	StartTime string    `db:"slot_start_time" table:"time_slots" column:"start_time"`
	Ignored   string    `db:"-"`
	Scratch   string
	model.Metadata
}

func newQueries() queries {
	q := queries{table: "reservations", key: "id", join: "JOIN time_slots ON time_slots.id = reservations.time_slot_id"}
	q.columns, q.writable = columnsOf(q.table, reflect.TypeOf(slotBooking{}))

	return q
}

func TestColumnsOf(t *testing.T) {
	q := newQueries()

	assert.Equal(t, []string{
		"id", "room_id", "status", "reservation_date",
		"created_at", "modified_at", "created_by", "modified_by",
	}, q.writable)

	assert.Contains(t, q.columns, column{name: "start_time", table: "time_slots", alias: "slot_start_time"})
	assert.Len(t, q.columns, 9)
}

func TestQueries(t *testing.T) {
	q := newQueries()
	q.writable = q.writable[1:]

	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "insert skips key and joined columns",
			got:  q.insert(),
			want: "INSERT INTO reservations (room_id, status, reservation_date, created_at, modified_at, created_by, modified_by) " +
				"VALUES (:room_id, :status, :reservation_date, :created_at, :modified_at, :created_by, :modified_by) RETURNING id",
		},
		{
			name: "select one with narrowed columns",
			got:  q.selectOne("WHERE reservations.id = :id", false, []string{"id", "slot_start_time"}),
			want: "SELECT reservations.id, time_slots.start_time AS slot_start_time FROM reservations " +
				"JOIN time_slots ON time_slots.id = reservations.time_slot_id WHERE reservations.id = :id LIMIT 1",
		},
		{
			name: "select one locked",
			got:  q.selectOne("WHERE reservations.id = :id", true, []string{"status"}),
			want: "SELECT reservations.status FROM reservations " +
				"JOIN time_slots ON time_slots.id = reservations.time_slot_id WHERE reservations.id = :id LIMIT 1 FOR UPDATE OF reservations",
		},
		{
			name: "select many paged and ordered",
			got:  q.selectMany("", dto.QueryParams{Page: 2, Limit: 10, SortBy: "reservations.reservation_date", SortDir: dto.SortDirAsc}, []string{"id"}),
			want: "SELECT reservations.id FROM reservations JOIN time_slots ON time_slots.id = reservations.time_slot_id " +
				"ORDER BY reservations.reservation_date ASC LIMIT :limit OFFSET :offset",
		},
		{
			name: "select many unbounded",
			got:  q.selectMany("WHERE reservations.status = :status", dto.QueryParams{}, []string{"id"}),
			want: "SELECT reservations.id FROM reservations JOIN time_slots ON time_slots.id = reservations.time_slot_id " +
				"WHERE reservations.status = :status",
		},
		{
			name: "update",
			got:  q.update([]string{"modified_by", "status"}, "WHERE reservations.id = :id"),
			want: "UPDATE reservations SET modified_by = :modified_by, status = :status WHERE reservations.id = :id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestWhereOf(t *testing.T) {
	where, args := whereOf(dto.FilterGroup{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = whereOf(dto.FilterGroup{Filters: []any{
		dto.Filter{Field: "status", Value: "pending", Operator: dto.FilterOperatorEq, Table: "reservations"},
	}})
	assert.Equal(t, "WHERE (reservations.status = :status)", where)
	assert.Equal(t, map[string]any{"status": "pending"}, args)
}
