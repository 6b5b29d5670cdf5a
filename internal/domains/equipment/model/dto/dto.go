package dto

import (
	"strings"

	"libres/internal/domains/equipment/model"
	"libres/shared"
	"libres/shared/constant"
	gDto "libres/shared/dto"
	gModel "libres/shared/model"
	"libres/shared/timezone"
)

type CreateEquipmentRequest struct {
	Name   string `json:"name"   validate:"required,max=100"`
	Type   string `json:"type"   validate:"required,max=50"`
	Status string `json:"status" validate:"omitempty,oneof=available reserved maintenance"`
}

func (c *CreateEquipmentRequest) ToModel(actor string) model.Equipment {
	status := c.Status
	if status == "" {
		status = constant.EquipmentStatusAvailable
	}

	return model.Equipment{
		Name:     strings.TrimSpace(c.Name),
		Type:     strings.TrimSpace(c.Type),
		Status:   status,
		Metadata: gModel.NewMetadata(actor, timezone.Now()),
	}
}

type UpdateEquipmentRequest struct {
	Name string `db:"name" json:"name" validate:"omitempty,max=100"`
	Type string `db:"type" json:"type" validate:"omitempty,max=50"`
}

type UpdateStatusRequest struct {
	Status string `db:"status" json:"status" validate:"required,oneof=available reserved maintenance"`
}

type EquipmentResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
	gDto.Metadata
}

func (r *EquipmentResponse) FromModel(model model.Equipment) {
	r.ID = model.ID
	r.Name = model.Name
	r.Type = model.Type
	r.Status = model.Status
	r.Metadata = gDto.MetadataFrom(model.Metadata)
}

type GetEquipmentResponse struct {
	Equipment []EquipmentResponse `json:"equipment"`
	TotalPage int                 `json:"total_page"`
	TotalData int                 `json:"total_data"`
}

func (r *GetEquipmentResponse) FromModels(models []model.Equipment, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.TotalPages(totalData, limit)

	r.Equipment = make([]EquipmentResponse, len(models))
	for i, mod := range models {
		r.Equipment[i].FromModel(mod)
	}
}
