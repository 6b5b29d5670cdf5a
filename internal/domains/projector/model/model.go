package model

// Transition describes a reservation status change. RoomID and EquipmentID are nil when the
// reservation does not hold that resource.
type Transition struct {
	ReservationID int64
	RoomID        *int64
	EquipmentID   *int64
	From          string
	To            string
}
