package model

import "libres/shared/model"

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID       = "id"
	FieldName     = "name"
	FieldLocation = "location"
	FieldCapacity = "capacity"
	FieldStatus   = "status"
	FieldImage    = "image"
)

type Room struct {
	ID       int64  `db:"id"`
	Name     string `db:"name"`
	Location string `db:"location"`
	Capacity int    `db:"capacity"`
	Status   string `db:"status"`
	Image    string `db:"image"`
	model.Metadata
}
