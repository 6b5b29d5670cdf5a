package dto

import (
	"time"

	"libres/internal/domains/reservation/model"
	"libres/shared"
	"libres/shared/constant"
	gDto "libres/shared/dto"
	gModel "libres/shared/model"
	"libres/shared/timezone"
)

// CreateReservationRequest books a slot on a date for a room, a piece of equipment or both.
// UserID is taken from the session, or from the body when an admin books on behalf of a member.
type CreateReservationRequest struct {
	UserID          int64  `json:"user_id,omitempty"  validate:"omitempty,gt=0"`
	RoomID          *int64 `json:"room_id"            validate:"omitempty,gt=0"`
	EquipmentID     *int64 `json:"equipment_id"       validate:"omitempty,gt=0"`
	TimeSlotID      int64  `json:"time_slot_id"       validate:"required,gt=0"`
	ReservationDate string `json:"reservation_date"   validate:"required,datetime=2006-01-02" example:"2026-10-16"`
}

// Date parses ReservationDate in the application timezone.
func (c *CreateReservationRequest) Date() (time.Time, error) {
	return timezone.Parse(constant.DateOnlyFormat, c.ReservationDate)
}

func (c *CreateReservationRequest) ToModel(actor string, date time.Time, now time.Time) model.Reservation {
	return model.Reservation{
		UserID:          c.UserID,
		RoomID:          c.RoomID,
		EquipmentID:     c.EquipmentID,
		TimeSlotID:      c.TimeSlotID,
		ReservationDate: timezone.DateOf(date),
		Status:          constant.ReservationStatusPending,
		Metadata:        gModel.NewMetadata(actor, now),
	}
}

type UpdateStatusRequest struct {
	Status string `db:"status"`
}

type ReservationResponse struct {
	ID              int64  `json:"id"`
	UserID          int64  `json:"user_id"`
	RoomID          *int64 `json:"room_id,omitempty"`
	EquipmentID     *int64 `json:"equipment_id,omitempty"`
	TimeSlotID      int64  `json:"time_slot_id"`
	ReservationDate string `json:"reservation_date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Status          string `json:"status"`
	gDto.Metadata
}

func (r *ReservationResponse) FromModel(reservation model.Reservation) {
	r.ID = reservation.ID
	r.UserID = reservation.UserID
	r.RoomID = reservation.RoomID
	r.EquipmentID = reservation.EquipmentID
	r.TimeSlotID = reservation.TimeSlotID
	r.ReservationDate = reservation.ReservationDate.Format(constant.DateOnlyFormat)
	r.StartTime = shortClock(reservation.SlotStartTime)
	r.EndTime = shortClock(reservation.SlotEndTime)
	r.Status = reservation.Status
	r.Metadata = gDto.MetadataFrom(reservation.Metadata)
}

type GetReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetReservationsResponse) FromModels(models []model.Reservation, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.TotalPages(totalData, limit)

	r.Reservations = make([]ReservationResponse, len(models))
	for i, mod := range models {
		r.Reservations[i].FromModel(mod)
	}
}

func shortClock(clock string) string {
	parsed, err := timezone.ParseClock(clock)
	if err != nil {
		return clock
	}

	return parsed.Format(constant.ShortClock)
}
