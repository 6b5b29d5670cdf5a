package dto

import (
	"libres/shared/constant"
	"libres/shared/model"
	"libres/shared/timezone"
)

// Metadata is the audit block embedded in every response body.
type Metadata struct {
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
	CreatedBy  string `json:"created_by"`
	ModifiedBy string `json:"modified_by"`
}

// MetadataFrom renders audit timestamps in the application timezone.
func MetadataFrom(src model.Metadata) Metadata {
	return Metadata{
		CreatedAt:  timezone.Format(src.CreatedAt, constant.DateFormat),
		ModifiedAt: timezone.Format(src.ModifiedAt, constant.DateFormat),
		CreatedBy:  src.CreatedBy,
		ModifiedBy: src.ModifiedBy,
	}
}
