package model

import "libres/shared/model"

const (
	TableName  = "equipment"
	EntityName = "equipment"

	FieldID     = "id"
	FieldName   = "name"
	FieldType   = "type"
	FieldStatus = "status"
)

type Equipment struct {
	ID     int64  `db:"id"`
	Name   string `db:"name"`
	Type   string `db:"type"`
	Status string `db:"status"`
	model.Metadata
}
