package timeslot

import (
	"net/http"

	"libres/infras/otel"
	"libres/internal/domains/timeslot/model"
	"libres/internal/domains/timeslot/model/dto"
	"libres/internal/domains/timeslot/service"
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

const (
	requestParamFrom = "from"
	requestParamTo   = "to"
)

var sortColumns = map[string]string{
	model.FieldStartTime: model.TableName + "." + model.FieldStartTime,
	model.FieldEndTime:   model.TableName + "." + model.FieldEndTime,
}

type Handler struct {
	service service.TimeSlot
	otel    otel.Otel
}

func New(service service.TimeSlot, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/timeslots", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateTimeSlot)
		routerGroup.Get("/", handler.GetTimeSlots)
		routerGroup.Get("/{id}", handler.GetTimeSlotByID)
		routerGroup.Patch("/{id}", handler.UpdateTimeSlot)
		routerGroup.Delete("/{id}", handler.DeleteTimeSlot)
	})
}

// CreateTimeSlot adds a bookable interval to the catalog.
// @Summary Create a time slot
// @Tags TimeSlot
// @Accept json
// @Produce json
// @Param request body dto.CreateTimeSlotRequest true "Create Time Slot Request"
// @Success 201 {object} response.Data[gDto.Created]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/timeslots [post]
// @Security BearerAuth
func (handler *Handler) CreateTimeSlot(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateTimeSlot")
	defer scope.End()

	req := dto.CreateTimeSlotRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	id, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create time slot")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusCreated, gDto.Created{ID: id})
}

// GetTimeSlots lists time slots, earliest first unless sort_by says otherwise.
// @Summary Get all time slots
// @Tags TimeSlot
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param from query string false "Slots starting at or after (HH:MM)"
// @Param to query string false "Slots ending at or before (HH:MM)"
// @Success 200 {object} response.Data[dto.GetTimeSlotsResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/timeslots [get]
func (handler *Handler) GetTimeSlots(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetTimeSlots")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	if queryParams.SortDir == "" {
		queryParams.SortDir = gDto.SortDirAsc
	}

	queryParams.Sanitize(sortColumns, model.TableName+"."+model.FieldStartTime)

	query := r.URL.Query()
	filterGroup := gDto.FilterGroup{}

	if from := query.Get(requestParamFrom); from != "" {
		clock, err := timezone.ParseClock(from)
		if err != nil {
			response.WithError(w, failure.BadRequestFromString("invalid from time"))

			return
		}

		filterGroup.And(gDto.Filter{
			ArgName:  requestParamFrom,
			Field:    model.FieldStartTime,
			Operator: gDto.FilterOperatorGreaterEq,
			Value:    clock.Format(constant.ClockFormat),
			Table:    model.TableName,
		})
	}

	if to := query.Get(requestParamTo); to != "" {
		clock, err := timezone.ParseClock(to)
		if err != nil {
			response.WithError(w, failure.BadRequestFromString("invalid to time"))

			return
		}

		filterGroup.And(gDto.Filter{
			ArgName:  requestParamTo,
			Field:    model.FieldEndTime,
			Operator: gDto.FilterOperatorLessEq,
			Value:    clock.Format(constant.ClockFormat),
			Table:    model.TableName,
		})
	}

	slots, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get time slots")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, slots)
}

// GetTimeSlotByID retrieves a time slot.
// @Summary Get a time slot by ID
// @Tags TimeSlot
// @Produce json
// @Param id path integer true "Time Slot ID"
// @Success 200 {object} response.Data[dto.TimeSlotResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/timeslots/{id} [get]
func (handler *Handler) GetTimeSlotByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetTimeSlotByID")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	slot, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get time slot by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, slot)
}

// UpdateTimeSlot moves a slot's start or end.
// @Summary Update a time slot
// @Tags TimeSlot
// @Accept json
// @Produce json
// @Param id path integer true "Time Slot ID"
// @Param request body dto.UpdateTimeSlotRequest true "Update Time Slot Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/timeslots/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateTimeSlot(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateTimeSlot")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	req := dto.UpdateTimeSlotRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update time slot")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Time slot updated successfully")
}

// DeleteTimeSlot removes a slot and every reservation made for it.
// @Summary Delete a time slot
// @Tags TimeSlot
// @Produce json
// @Param id path integer true "Time Slot ID"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/timeslots/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteTimeSlot(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteTimeSlot")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete time slot")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Time slot deleted successfully by " + shared.Actor(ctx))

	response.WithMessage(w, http.StatusOK, "Time slot deleted successfully")
}
