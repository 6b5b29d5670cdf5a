package dto

import (
	"libres/internal/domains/timeslot/model"
	"libres/shared"
	"libres/shared/constant"
	gDto "libres/shared/dto"
	gModel "libres/shared/model"
	"libres/shared/timezone"
)

type CreateTimeSlotRequest struct {
	StartTime string `json:"start_time" validate:"required,datetime=15:04" example:"09:00"`
	EndTime   string `json:"end_time"   validate:"required,datetime=15:04" example:"10:00"`
}

func (c *CreateTimeSlotRequest) ToModel(actor string) model.TimeSlot {
	return model.TimeSlot{
		StartTime: normalizeClock(c.StartTime),
		EndTime:   normalizeClock(c.EndTime),
		Metadata:  gModel.NewMetadata(actor, timezone.Now()),
	}
}

type UpdateTimeSlotRequest struct {
	StartTime string `db:"start_time" json:"start_time" validate:"omitempty,datetime=15:04" example:"09:00"`
	EndTime   string `db:"end_time"   json:"end_time"   validate:"omitempty,datetime=15:04" example:"10:30"`
}

// Normalize rewrites both clocks to the column format so they compare with stored values.
func (u *UpdateTimeSlotRequest) Normalize() {
	u.StartTime = normalizeClock(u.StartTime)
	u.EndTime = normalizeClock(u.EndTime)
}

type TimeSlotResponse struct {
	ID              int64  `json:"id"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
	gDto.Metadata
}

func (r *TimeSlotResponse) FromModel(slot model.TimeSlot) {
	r.ID = slot.ID
	r.StartTime = shortClock(slot.StartTime)
	r.EndTime = shortClock(slot.EndTime)

	if duration, err := slot.Duration(); err == nil {
		r.DurationMinutes = int(duration.Minutes())
	}

	r.Metadata = gDto.MetadataFrom(slot.Metadata)
}

type GetTimeSlotsResponse struct {
	TimeSlots []TimeSlotResponse `json:"time_slots"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetTimeSlotsResponse) FromModels(models []model.TimeSlot, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.TotalPages(totalData, limit)

	r.TimeSlots = make([]TimeSlotResponse, len(models))
	for i, mod := range models {
		r.TimeSlots[i].FromModel(mod)
	}
}

func normalizeClock(clock string) string {
	if clock == "" {
		return clock
	}

	parsed, err := timezone.ParseClock(clock)
	if err != nil {
		return clock
	}

	return parsed.Format(constant.ClockFormat)
}

func shortClock(clock string) string {
	parsed, err := timezone.ParseClock(clock)
	if err != nil {
		return clock
	}

	return parsed.Format(constant.ShortClock)
}
