package model

import (
	"libres/shared/model"
	"time"
)

const (
	TableName  = "reservations"
	EntityName = "reservation"

	FieldID              = "id"
	FieldUserID          = "user_id"
	FieldRoomID          = "room_id"
	FieldEquipmentID     = "equipment_id"
	FieldTimeSlotID      = "time_slot_id"
	FieldReservationDate = "reservation_date"
	FieldStatus          = "status"
)

// Reservation is one ledger row. At least one of RoomID and EquipmentID is set.
// Slot bounds are read through the time_slots join and never written.
type Reservation struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	RoomID          *int64    `db:"room_id"`
	EquipmentID     *int64    `db:"equipment_id"`
	TimeSlotID      int64     `db:"time_slot_id"`
	ReservationDate time.Time `db:"reservation_date"`
	Status          string    `db:"status"`
	SlotStartTime   string    `db:"slot_start_time" table:"time_slots" column:"start_time"`
	SlotEndTime     string    `db:"slot_end_time"   table:"time_slots" column:"end_time"`
	model.Metadata
}

func (Reservation) GetJoinQuery() string {
	return "JOIN time_slots ON time_slots.id = reservations.time_slot_id"
}
