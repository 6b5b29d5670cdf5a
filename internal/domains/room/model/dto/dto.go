package dto

import (
	"mime/multipart"
	"strings"

	"libres/internal/domains/room/model"
	"libres/shared"
	"libres/shared/constant"
	gDto "libres/shared/dto"
	gModel "libres/shared/model"
	"libres/shared/timezone"
)

type CreateRoomRequest struct {
	Name      string                `json:"name"     validate:"required,max=100"`
	Location  string                `json:"location" validate:"omitempty,max=100"`
	Capacity  int                   `json:"capacity" validate:"required,gt=0"`
	Status    string                `json:"status"   validate:"omitempty,oneof=empty occupied maintenance"`
	Image     *multipart.FileHeader `json:"image"    validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile multipart.File        `json:"-"`
}

func (c *CreateRoomRequest) ToModel(actor string, imageURL string) model.Room {
	status := c.Status
	if status == "" {
		status = constant.RoomStatusEmpty
	}

	return model.Room{
		Name:     strings.TrimSpace(c.Name),
		Location: strings.TrimSpace(c.Location),
		Capacity: c.Capacity,
		Status:   status,
		Image:    imageURL,
		Metadata: gModel.NewMetadata(actor, timezone.Now()),
	}
}

type UpdateRoomRequest struct {
	Name      string                `db:"name"     json:"name"     validate:"omitempty,max=100"`
	Location  string                `db:"location" json:"location" validate:"omitempty,max=100"`
	Capacity  *int                  `db:"capacity" json:"capacity" validate:"omitempty,gt=0"`
	Image     *multipart.FileHeader `json:"image"                  validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile multipart.File        `json:"-"`
}

func (u *UpdateRoomRequest) IsEmpty() bool {
	return u.Name == "" && u.Location == "" && u.Capacity == nil && u.Image == nil
}

type UpdateStatusRequest struct {
	Status string `db:"status" json:"status" validate:"required,oneof=empty occupied maintenance"`
}

type RoomResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
	Status   string `json:"status"`
	Image    string `json:"image,omitempty"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Name = model.Name
	r.Location = model.Location
	r.Capacity = model.Capacity
	r.Status = model.Status
	r.Image = model.Image
	r.Metadata = gDto.MetadataFrom(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.TotalPages(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
