package dto

type Created struct {
	ID int64 `json:"id"`
}
