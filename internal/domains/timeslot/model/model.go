package model

import (
	"fmt"
	"libres/shared/model"
	"libres/shared/timezone"
	"time"
)

const (
	TableName  = "time_slots"
	EntityName = "time_slot"

	FieldID        = "id"
	FieldStartTime = "start_time"
	FieldEndTime   = "end_time"
)

// TimeSlot is a catalog interval reused on every calendar date. Times are "15:04:05" strings
// as returned by Postgres TIME columns.
type TimeSlot struct {
	ID        int64  `db:"id"`
	StartTime string `db:"start_time"`
	EndTime   string `db:"end_time"`
	model.Metadata
}

func (t TimeSlot) Duration() (time.Duration, error) {
	start, err := timezone.ParseClock(t.StartTime)
	if err != nil {
		return 0, fmt.Errorf("invalid slot start: %w", err)
	}

	end, err := timezone.ParseClock(t.EndTime)
	if err != nil {
		return 0, fmt.Errorf("invalid slot end: %w", err)
	}

	return end.Sub(start), nil
}
