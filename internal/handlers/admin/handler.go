package admin

import (
	"net/http"

	"insurai/infras/otel"
	"insurai/internal/domains/appointment/model/dto"
	"insurai/internal/domains/appointment/service"
	"insurai/shared/constant"
	"insurai/shared/validator"
	"insurai/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Engine
	otel    otel.Otel
}

func New(service service.Engine, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

// Router expects a router that is already guarded by the API key middleware.
func (handler *Handler) Router(router chi.Router) {
	router.Route("/admin", func(routerGroup chi.Router) {
		routerGroup.Put("/appointments/{id}/status", handler.OverrideStatus)
	})
}

// OverrideStatus sets an appointment's status without the transition rules.
// @Summary Override an appointment status
// @Description Administrative override. Any known status may be set from any status.
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.OverrideStatusRequest true "Override Status Request"
// @Success 200 {object} response.Data[dto.AppointmentResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admin/appointments/{id}/status [put]
// @Security ApiKeyAuth
func (handler *Handler) OverrideStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".OverrideStatus")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.OverrideStatusRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	appointment, err := handler.service.OverrideStatus(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("appointment_id", id).Str("status", req.Status).Msg("failed to override appointment status")

		response.WithError(w, err)

		return
	}

	log.Warn().Str("appointment_id", id).Str("status", appointment.Status).Msg("appointment status overridden")

	response.WithJSON(w, http.StatusOK, appointment)
}
