package equipment

import (
	"net/http"

	"libres/infras/otel"
	"libres/internal/domains/equipment/model"
	"libres/internal/domains/equipment/model/dto"
	"libres/internal/domains/equipment/service"
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

const requestParamSearch = "q"

var sortColumns = map[string]string{
	model.FieldName:         model.TableName + "." + model.FieldName,
	model.FieldType:         model.TableName + "." + model.FieldType,
	constant.FieldCreatedAt: model.TableName + "." + constant.FieldCreatedAt,
}

type Handler struct {
	service service.Equipment
	otel    otel.Otel
}

func New(service service.Equipment, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/equipment", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateEquipment)
		routerGroup.Get("/", handler.GetEquipment)
		routerGroup.Get("/{id}", handler.GetEquipmentByID)
		routerGroup.Patch("/{id}", handler.UpdateEquipment)
		routerGroup.Delete("/{id}", handler.DeleteEquipment)
	})
}

// CreateEquipment handles the creation of a new piece of equipment.
// @Summary Create equipment
// @Tags Equipment
// @Accept json
// @Produce json
// @Param request body dto.CreateEquipmentRequest true "Create Equipment Request"
// @Success 201 {object} response.Data[gDto.Created] "Equipment created successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/equipment [post]
// @Security BearerAuth
func (handler *Handler) CreateEquipment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateEquipment")
	defer scope.End()

	req := dto.CreateEquipmentRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	id, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create equipment")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Equipment created successfully")

	response.WithJSON(w, http.StatusCreated, gDto.Created{ID: id})
}

// GetEquipment lists equipment.
// @Summary Get all equipment
// @Description Passing both date and time_slot_id narrows the list to equipment still bookable for that slot.
// @Tags Equipment
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param q query string false "Search by name"
// @Param type query string false "Filter by type"
// @Param status query string false "Filter by status"
// @Param date query string false "Available on date (YYYY-MM-DD)"
// @Param time_slot_id query integer false "Available in time slot"
// @Success 200 {object} response.Data[dto.GetEquipmentResponse] "List of equipment"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/equipment [get]
func (handler *Handler) GetEquipment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetEquipment")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.Sanitize(sortColumns, model.TableName+"."+constant.FieldCreatedAt)

	query := r.URL.Query()
	filterGroup := gDto.FilterGroup{}

	if search := query.Get(requestParamSearch); search != "" {
		filterGroup.And(gDto.Filter{Field: model.FieldName, Operator: gDto.FilterOperatorLike, Value: search, Table: model.TableName})
	}

	if kind := query.Get(model.FieldType); kind != "" {
		filterGroup.And(gDto.Filter{ArgName: "equipment_type", Field: model.FieldType, Operator: gDto.FilterOperatorEq, Value: kind, Table: model.TableName})
	}

	if status := query.Get(model.FieldStatus); status != "" {
		filterGroup.And(gDto.Filter{Field: model.FieldStatus, Operator: gDto.FilterOperatorEq, Value: status, Table: model.TableName})
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

	equipment, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get equipment")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, equipment)
}

// GetEquipmentByID retrieves a piece of equipment.
// @Summary Get equipment by ID
// @Tags Equipment
// @Produce json
// @Param id path integer true "Equipment ID"
// @Success 200 {object} response.Data[dto.EquipmentResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/equipment/{id} [get]
func (handler *Handler) GetEquipmentByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetEquipmentByID")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	equipment, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get equipment by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, equipment)
}

// UpdateEquipment changes name or type.
// @Summary Update equipment
// @Tags Equipment
// @Accept json
// @Produce json
// @Param id path integer true "Equipment ID"
// @Param request body dto.UpdateEquipmentRequest true "Update Equipment Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/equipment/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateEquipment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateEquipment")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	req := dto.UpdateEquipmentRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update equipment")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Equipment updated successfully")
}

// DeleteEquipment deletes equipment and its reservations.
// @Summary Delete equipment
// @Tags Equipment
// @Produce json
// @Param id path integer true "Equipment ID"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/equipment/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteEquipment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteEquipment")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete equipment")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Equipment deleted successfully by " + shared.Actor(ctx))

	response.WithMessage(w, http.StatusOK, "Equipment deleted successfully")
}
