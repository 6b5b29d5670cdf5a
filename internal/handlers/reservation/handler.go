package reservation

import (
	"net/http"

	"libres/infras/otel"
	"libres/internal/domains/reservation/model"
	"libres/internal/domains/reservation/model/dto"
	"libres/internal/domains/reservation/service"
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
	requestParamRoomID      = "room_id"
	requestParamEquipmentID = "equipment_id"
)

var sortColumns = map[string]string{
	model.FieldReservationDate: model.TableName + "." + model.FieldReservationDate,
	model.FieldStatus:          model.TableName + "." + model.FieldStatus,
	constant.FieldCreatedAt:    model.TableName + "." + constant.FieldCreatedAt,
}

var fallbackSort = model.TableName + "." + constant.FieldCreatedAt

type Handler struct {
	service service.Reservation
	otel    otel.Otel
}

func New(service service.Reservation, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/reservations", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateReservation)
		routerGroup.Get("/", handler.GetReservations)
		routerGroup.Get("/me", handler.GetMyReservations)
		routerGroup.Get("/me/active", handler.GetMyActiveReservations)
		routerGroup.Get("/pending", handler.GetPendingReservations)
		routerGroup.Get("/date/{date}", handler.GetReservationsByDate)
		routerGroup.Get("/status/{status}", handler.GetReservationsByStatus)
		routerGroup.Get("/user/{id}", handler.GetReservationsByUser)
		routerGroup.Get("/{id}", handler.GetReservationByID)
		routerGroup.Patch("/{id}/confirm", handler.ConfirmReservation)
		routerGroup.Patch("/{id}/cancel", handler.CancelReservation)
		routerGroup.Delete("/{id}", handler.DeleteReservation)
	})
}

// CreateReservation books a slot.
// @Summary Create a reservation
// @Description Books a room, a piece of equipment or both for a time slot on a date. The
// @Description reservation starts pending. Members always book for themselves; admins may
// @Description pass user_id to book on behalf of someone else.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param request body dto.CreateReservationRequest true "Create Reservation Request"
// @Success 201 {object} response.Data[dto.ReservationResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations [post]
// @Security BearerAuth
func (handler *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateReservation")
	defer scope.End()

	callerID, ok := shared.UserIDFromContext(ctx)
	if !ok {
		response.WithError(w, failure.Unauthorized("missing session"))

		return
	}

	req := dto.CreateReservationRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if !shared.IsAdmin(ctx) || req.UserID == 0 {
		req.UserID = callerID
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Int64("user_id", req.UserID).Msg("reservation rejected")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Reservation created")

	response.WithJSON(w, http.StatusCreated, res)
}

// GetReservations lists reservations for administrators.
// @Summary Get all reservations
// @Tags Reservation
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param user_id query integer false "Filter by user"
// @Param room_id query integer false "Filter by room"
// @Param equipment_id query integer false "Filter by equipment"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Data[dto.GetReservationsResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations [get]
// @Security BearerAuth
func (handler *Handler) GetReservations(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReservations")
	defer scope.End()

	queryParams := pageParams(r)
	query := r.URL.Query()
	filterGroup := gDto.FilterGroup{}

	for param, field := range map[string]string{
		constant.RequestParamUserID: model.FieldUserID,
		requestParamRoomID:          model.FieldRoomID,
		requestParamEquipmentID:     model.FieldEquipmentID,
	} {
		raw := query.Get(param)
		if raw == "" {
			continue
		}

		id, err := shared.ParseID(raw)
		if err != nil {
			response.WithError(w, failure.BadRequestFromString("invalid "+param))

			return
		}

		filterGroup.And(gDto.Filter{Field: field, Operator: gDto.FilterOperatorEq, Value: id, Table: model.TableName})
	}

	if status := query.Get(constant.RequestParamStatus); status != "" {
		filterGroup.And(gDto.Filter{Field: model.FieldStatus, Operator: gDto.FilterOperatorEq, Value: status, Table: model.TableName})
	}

	res, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get reservations")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetMyReservations lists the caller's reservations.
// @Summary Get my reservations
// @Tags Reservation
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetReservationsResponse]
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/me [get]
// @Security BearerAuth
func (handler *Handler) GetMyReservations(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyReservations")
	defer scope.End()

	callerID, ok := shared.UserIDFromContext(ctx)
	if !ok {
		response.WithError(w, failure.Unauthorized("missing session"))

		return
	}

	res, err := handler.service.GetByUser(ctx, callerID, pageParams(r))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get user reservations")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetMyActiveReservations lists the caller's reservations that count against the quota.
// @Summary Get my active reservations
// @Tags Reservation
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetReservationsResponse]
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/me/active [get]
// @Security BearerAuth
func (handler *Handler) GetMyActiveReservations(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyActiveReservations")
	defer scope.End()

	callerID, ok := shared.UserIDFromContext(ctx)
	if !ok {
		response.WithError(w, failure.Unauthorized("missing session"))

		return
	}

	res, err := handler.service.GetActiveByUser(ctx, callerID, pageParams(r))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get active reservations")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetPendingReservations lists reservations awaiting confirmation, earliest first.
// @Summary Get pending reservations
// @Tags Reservation
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetReservationsResponse]
// @Failure 500 {object} response.Error
// @Router /v1/reservations/pending [get]
// @Security BearerAuth
func (handler *Handler) GetPendingReservations(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPendingReservations")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	res, err := handler.service.GetPending(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get pending reservations")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetReservationsByDate lists reservations on a calendar date.
// @Summary Get reservations by date
// @Tags Reservation
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetReservationsResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/date/{date} [get]
// @Security BearerAuth
func (handler *Handler) GetReservationsByDate(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReservationsByDate")
	defer scope.End()

	date, err := timezone.Parse(constant.DateOnlyFormat, chi.URLParam(r, constant.RequestParamDate))
	if err != nil {
		response.WithError(w, failure.BadRequestFromString("invalid date"))

		return
	}

	res, err := handler.service.GetByDate(ctx, date, pageParams(r))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get reservations by date")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetReservationsByStatus lists reservations in one status.
// @Summary Get reservations by status
// @Tags Reservation
// @Produce json
// @Param status path string true "pending, confirmed or cancelled"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetReservationsResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/status/{status} [get]
// @Security BearerAuth
func (handler *Handler) GetReservationsByStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReservationsByStatus")
	defer scope.End()

	status := chi.URLParam(r, constant.RequestParamStatus)

	if err := validator.ValidateVar(status, "oneof=pending confirmed cancelled"); err != nil {
		response.WithError(w, err)

		return
	}

	res, err := handler.service.GetByStatus(ctx, status, pageParams(r))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get reservations by status")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetReservationsByUser lists one user's reservations.
// @Summary Get reservations of a user
// @Tags Reservation
// @Produce json
// @Param id path integer true "User ID"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetReservationsResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/user/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetReservationsByUser(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReservationsByUser")
	defer scope.End()

	userID, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	res, err := handler.service.GetByUser(ctx, userID, pageParams(r))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get user reservations")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetReservationByID retrieves one reservation. Members only see their own.
// @Summary Get a reservation by ID
// @Tags Reservation
// @Produce json
// @Param id path integer true "Reservation ID"
// @Success 200 {object} response.Data[dto.ReservationResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetReservationByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReservationByID")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	res, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get reservation by ID")

		response.WithError(w, err)

		return
	}

	if callerID, _ := shared.UserIDFromContext(ctx); !shared.IsAdmin(ctx) && callerID != res.UserID {
		response.WithError(w, failure.ResourceRestrictedError)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// ConfirmReservation moves a pending reservation to confirmed.
// @Summary Confirm a reservation
// @Tags Reservation
// @Produce json
// @Param id path integer true "Reservation ID"
// @Success 200 {object} response.Data[dto.ReservationResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/{id}/confirm [patch]
// @Security BearerAuth
func (handler *Handler) ConfirmReservation(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ConfirmReservation")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	res, err := handler.service.Confirm(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Int64("reservation_id", id).Msg("failed to confirm reservation")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// CancelReservation cancels the caller's reservation, respecting the cancellation lead time.
// @Summary Cancel a reservation
// @Tags Reservation
// @Produce json
// @Param id path integer true "Reservation ID"
// @Success 200 {object} response.Data[dto.ReservationResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/{id}/cancel [patch]
// @Security BearerAuth
func (handler *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelReservation")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	res, err := handler.service.Cancel(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Int64("reservation_id", id).Msg("failed to cancel reservation")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// DeleteReservation hard deletes a reservation.
// @Summary Delete a reservation
// @Tags Reservation
// @Produce json
// @Param id path integer true "Reservation ID"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteReservation")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete reservation")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Reservation deleted by " + shared.Actor(ctx))

	response.WithMessage(w, http.StatusOK, "Reservation deleted successfully")
}

func pageParams(r *http.Request) gDto.QueryParams {
	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.Sanitize(sortColumns, fallbackSort)

	return queryParams
}
