package room

import (
	"errors"
	"mime/multipart"
	"net/http"

	"libres/infras/otel"
	"libres/internal/domains/room/model"
	"libres/internal/domains/room/model/dto"
	"libres/internal/domains/room/service"
	"libres/shared"
	"libres/shared/constant"
	gDto "libres/shared/dto"
	"libres/shared/failure"
	"libres/shared/timezone"
	"libres/shared/validator"
	"libres/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const requestParamMinCapacity = "min_capacity"

var sortColumns = map[string]string{
	model.FieldName:         model.TableName + "." + model.FieldName,
	model.FieldCapacity:     model.TableName + "." + model.FieldCapacity,
	constant.FieldCreatedAt: model.TableName + "." + constant.FieldCreatedAt,
}

type Handler struct {
	service service.Room
	otel    otel.Otel
}

func New(service service.Room, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/rooms", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateRoom)
		routerGroup.Get("/", handler.GetRooms)
		routerGroup.Get("/{id}", handler.GetRoomByID)
		routerGroup.Patch("/{id}", handler.UpdateRoom)
		routerGroup.Delete("/{id}", handler.DeleteRoom)
	})
}

// CreateRoom handles the creation of a new room.
// @Summary Create a new room
// @Description Create a new room with the provided details. The image is stored in object storage.
// @Tags Room
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Room name"
// @Param location formData string false "Room location"
// @Param capacity formData integer true "Room capacity"
// @Param status formData string false "Initial status (empty, occupied, maintenance)"
// @Param image formData file false "Room image"
// @Success 201 {object} response.Data[gDto.Created] "Room created successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms [post]
// @Security BearerAuth
func (handler *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateRoom")
	defer scope.End()

	form, err := readRoomForm(r)
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Msg("rejected room form")
		response.WithError(w, err)

		return
	}
	defer form.close()

	req := dto.CreateRoomRequest{
		Name:      form.name,
		Location:  form.location,
		Status:    form.status,
		Image:     form.image,
		ImageFile: form.file,
	}

	if form.capacity != nil {
		req.Capacity = *form.capacity
	}

	if err = validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	id, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("name", req.Name).Msg("room not created")
		response.WithError(w, err)

		return
	}

	scope.AddEvent("room created by " + shared.Actor(ctx))

	response.WithJSON(w, http.StatusCreated, gDto.Created{ID: id})
}

// GetRooms retrieves rooms based on query parameters.
// @Summary Get all rooms
// @Description Retrieve rooms with optional filtering and pagination. Passing both date and
// @Description time_slot_id narrows the list to rooms that can still be booked for that slot.
// @Tags Room
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Param location query string false "Filter by location"
// @Param status query string false "Filter by status"
// @Param min_capacity query integer false "Minimum capacity"
// @Param date query string false "Available on date (YYYY-MM-DD)"
// @Param time_slot_id query integer false "Available in time slot"
// @Success 200 {object} response.Data[dto.GetRoomsResponse] "List of rooms"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms [get]
func (handler *Handler) GetRooms(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRooms")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.Sanitize(sortColumns, model.TableName+"."+constant.FieldCreatedAt)

	query := r.URL.Query()
	filterGroup := gDto.FilterGroup{}

	if name := query.Get(model.FieldName); name != "" {
		filterGroup.And(gDto.Filter{Field: model.FieldName, Operator: gDto.FilterOperatorLike, Value: name, Table: model.TableName})
	}

	if location := query.Get(model.FieldLocation); location != "" {
		filterGroup.And(gDto.Filter{Field: model.FieldLocation, Operator: gDto.FilterOperatorLike, Value: location, Table: model.TableName})
	}

	if status := query.Get(model.FieldStatus); status != "" {
		filterGroup.And(gDto.Filter{Field: model.FieldStatus, Operator: gDto.FilterOperatorEq, Value: status, Table: model.TableName})
	}

	if minCapacity := query.Get(requestParamMinCapacity); minCapacity != "" {
		capacity, err := shared.ParseInt(minCapacity)
		if err != nil {
			response.WithError(w, failure.BadRequestFromString("invalid min_capacity"))

			return
		}

		filterGroup.And(gDto.Filter{Field: model.FieldCapacity, Operator: gDto.FilterOperatorGreaterEq, Value: capacity, Table: model.TableName})
	}

	if rawDate, rawSlot := query.Get(constant.RequestParamDate), query.Get(constant.RequestParamTimeSlotID); rawDate != "" && rawSlot != "" {
		date, err := timezone.Parse(constant.DateOnlyFormat, rawDate)
		if err != nil {
			response.WithError(w, failure.BadRequestFromString("invalid date"))

			return
		}

		slotID, err := shared.ParseID(rawSlot)
		if err != nil {
			response.WithError(w, err)

			return
		}

		filterGroup.And(service.AvailableFilter(date, slotID))
	}

	rooms, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get rooms")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Rooms retrieved successfully")

	response.WithJSON(w, http.StatusOK, rooms)
}

// GetRoomByID retrieves a room by its ID.
// @Summary Get a room by ID
// @Tags Room
// @Produce json
// @Param id path integer true "Room ID"
// @Success 200 {object} response.Data[dto.RoomResponse] "Room details"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [get]
func (handler *Handler) GetRoomByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoomByID")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	room, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get room by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, room)
}

// UpdateRoom updates an existing room by its ID.
// @Summary Update a room by ID
// @Description Update the details of an existing room. Status changes go through the admin API.
// @Tags Room
// @Accept multipart/form-data
// @Produce json
// @Param id path integer true "Room ID"
// @Param name formData string false "Room name"
// @Param location formData string false "Room location"
// @Param capacity formData integer false "Room capacity"
// @Param image formData file false "Room image"
// @Success 200 {object} response.Message "Room updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateRoom")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	form, err := readRoomForm(r)
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Int64("room_id", id).Msg("rejected room form")
		response.WithError(w, err)

		return
	}
	defer form.close()

	req := dto.UpdateRoomRequest{
		Name:      form.name,
		Location:  form.location,
		Capacity:  form.capacity,
		Image:     form.image,
		ImageFile: form.file,
	}

	if err = validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	if err = handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int64("room_id", id).Msg("room not updated")
		response.WithError(w, err)

		return
	}

	scope.AddEvent("room updated by " + shared.Actor(ctx))

	response.WithMessage(w, http.StatusOK, "Room updated successfully")
}

// DeleteRoom deletes a room and its reservations.
// @Summary Delete a room by ID
// @Tags Room
// @Produce json
// @Param id path integer true "Room ID"
// @Success 200 {object} response.Message "Room deleted successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rooms/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteRoom")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete room")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Room deleted successfully by " + shared.Actor(ctx))

	response.WithMessage(w, http.StatusOK, "Room deleted successfully")
}

// roomForm is the multipart body shared by create and update. An absent capacity stays nil
// so updates can tell "unchanged" from a value.
type roomForm struct {
	name     string
	location string
	status   string
	capacity *int
	image    *multipart.FileHeader
	file     multipart.File
}

func readRoomForm(r *http.Request) (roomForm, error) {
	var form roomForm

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		return form, failure.BadRequest(err) //nolint:wrapcheck
	}

	form.name = r.FormValue(model.FieldName)
	form.location = r.FormValue(model.FieldLocation)
	form.status = r.FormValue(model.FieldStatus)

	if raw := r.FormValue(model.FieldCapacity); raw != "" {
		capacity, err := shared.ParseInt(raw)
		if err != nil {
			return form, failure.BadRequestFromString("invalid capacity") //nolint:wrapcheck
		}

		form.capacity = &capacity
	}

	file, header, err := r.FormFile(model.FieldImage)

	switch {
	case err == nil:
		form.image, form.file = header, file
	case !errors.Is(err, http.ErrMissingFile):
		return form, failure.BadRequest(err) //nolint:wrapcheck
	}

	return form, nil
}

func (f roomForm) close() {
	if f.file != nil {
		_ = f.file.Close()
	}
}
