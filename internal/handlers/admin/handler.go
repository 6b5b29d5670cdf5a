package admin

import (
	"net/http"

	"libres/infras/otel"
	dashboardService "libres/internal/domains/dashboard/service"
	equipmentDto "libres/internal/domains/equipment/model/dto"
	projectorService "libres/internal/domains/projector/service"
	reservationService "libres/internal/domains/reservation/service"
	roomDto "libres/internal/domains/room/model/dto"
	userDto "libres/internal/domains/user/model/dto"
	userService "libres/internal/domains/user/service"
	"libres/shared"
	"libres/shared/constant"
	gDto "libres/shared/dto"
	"libres/shared/validator"
	"libres/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Handler serves the administrator-only operations that cut across domains.
type Handler struct {
	dashboard   dashboardService.Dashboard
	projector   projectorService.Projector
	reservation reservationService.Reservation
	user        userService.User
	otel        otel.Otel
}

func New(
	dashboard dashboardService.Dashboard,
	projector projectorService.Projector,
	reservation reservationService.Reservation,
	user userService.User,
	otel otel.Otel,
) Handler {
	return Handler{
		dashboard:   dashboard,
		projector:   projector,
		reservation: reservation,
		user:        user,
		otel:        otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/admin", func(r chi.Router) {
		r.Get("/dashboard", handler.GetDashboard)
		r.Post("/users", handler.CreateAdmin)
		r.Patch("/users/{id}/role", handler.UpdateUserRole)
		r.Patch("/rooms/{id}/status", handler.SetRoomStatus)
		r.Patch("/equipment/{id}/status", handler.SetEquipmentStatus)
		r.Patch("/reservations/{id}/cancel", handler.CancelReservation)
	})
}

// GetDashboard returns catalog and reservation counters.
// @Summary Admin dashboard
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Data[map[string]any]
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/dashboard [get]
// @Security BearerAuth
func (handler *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetDashboard")
	defer scope.End()

	res, err := handler.dashboard.Summary(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get dashboard summary")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// CreateAdmin creates an administrator account.
// @Summary Create an admin
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body userDto.CreateUserRequest true "Create User Request"
// @Success 201 {object} response.Data[gDto.Created]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/users [post]
// @Security BearerAuth
func (handler *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateAdmin")
	defer scope.End()

	req := userDto.CreateUserRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	id, err := handler.user.Create(ctx, req, constant.RoleAdmin)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create admin")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Admin created by " + shared.Actor(ctx))

	response.WithJSON(w, http.StatusCreated, gDto.Created{ID: id})
}

// UpdateUserRole promotes or demotes a user.
// @Summary Change a user's role
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path integer true "User ID"
// @Param request body userDto.UpdateRoleRequest true "Update Role Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/users/{id}/role [patch]
// @Security BearerAuth
func (handler *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateUserRole")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	req := userDto.UpdateRoleRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.user.UpdateRole(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update user role")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "User role updated successfully")
}

// SetRoomStatus sets a room's display status.
// @Summary Set room status
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path integer true "Room ID"
// @Param request body roomDto.UpdateStatusRequest true "Status"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/rooms/{id}/status [patch]
// @Security BearerAuth
func (handler *Handler) SetRoomStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SetRoomStatus")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	req := roomDto.UpdateStatusRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.projector.SetRoomStatus(ctx, id, req.Status); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to set room status")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Room status updated successfully")
}

// SetEquipmentStatus sets a piece of equipment's display status.
// @Summary Set equipment status
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path integer true "Equipment ID"
// @Param request body equipmentDto.UpdateStatusRequest true "Status"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/equipment/{id}/status [patch]
// @Security BearerAuth
func (handler *Handler) SetEquipmentStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SetEquipmentStatus")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	req := equipmentDto.UpdateStatusRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.projector.SetEquipmentStatus(ctx, id, req.Status); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to set equipment status")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Equipment status updated successfully")
}

// CancelReservation cancels any reservation regardless of the cancellation lead time.
// @Summary Cancel a reservation as admin
// @Tags Admin
// @Produce json
// @Param id path integer true "Reservation ID"
// @Success 200 {object} response.Data[map[string]any]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/reservations/{id}/cancel [patch]
// @Security BearerAuth
func (handler *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelReservation")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	res, err := handler.reservation.AdminCancel(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Int64("reservation_id", id).Msg("failed to cancel reservation")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
