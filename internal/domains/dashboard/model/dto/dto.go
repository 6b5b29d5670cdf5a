package dto

type UserCounts struct {
	Total  int `json:"total"`
	Admins int `json:"admins"`
}

type RoomCounts struct {
	Total       int `json:"total"`
	Empty       int `json:"empty"`
	Occupied    int `json:"occupied"`
	Maintenance int `json:"maintenance"`
}

type EquipmentCounts struct {
	Total       int `json:"total"`
	Available   int `json:"available"`
	Reserved    int `json:"reserved"`
	Maintenance int `json:"maintenance"`
}

type ReservationCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
}

// SummaryResponse is the admin dashboard snapshot.
type SummaryResponse struct {
	Users        UserCounts        `json:"users"`
	Rooms        RoomCounts        `json:"rooms"`
	Equipment    EquipmentCounts   `json:"equipment"`
	Reservations ReservationCounts `json:"reservations"`
	TimeSlots    int               `json:"time_slots"`
}
