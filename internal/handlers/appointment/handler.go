package appointment

import (
	"net/http"

	"insurai/infras/otel"
	"insurai/internal/domains/appointment/model/dto"
	"insurai/internal/domains/appointment/service"
	"insurai/shared/constant"
	gDto "insurai/shared/dto"
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

func (handler *Handler) Router(router chi.Router) {
	router.Route("/customers/{customerId}/appointments", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.BookAppointment)
		routerGroup.Get("/", handler.GetCustomerAppointments)
	})

	router.Get("/agents/{agentId}/appointments", handler.GetAgentAppointments)

	router.Route("/appointments/{id}", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetAppointment)
		routerGroup.Put("/status", handler.UpdateStatus)
	})
}

// BookAppointment books an appointment for a customer with an agent.
// @Summary Book an appointment
// @Description Books the agent at the given wall-clock instant. When availability_id is set the slot is consumed in the same transaction.
// @Tags Appointment
// @Accept json
// @Produce json
// @Param customerId path string true "Customer ID"
// @Param request body dto.BookAppointmentRequest true "Book Appointment Request"
// @Success 201 {object} response.Data[dto.AppointmentResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/customers/{customerId}/appointments [post]
func (handler *Handler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".BookAppointment")
	defer scope.End()

	customerID := chi.URLParam(r, constant.RequestParamCustomerID)

	req := dto.BookAppointmentRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	appointment, err := handler.service.Book(ctx, customerID, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("customer_id", customerID).Str("agent_id", req.AgentID).Msg("failed to book appointment")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Appointment booked " + appointment.ID)

	response.WithJSON(w, http.StatusCreated, appointment)
}

// GetCustomerAppointments lists a customer's appointments.
// @Summary List a customer's appointments
// @Tags Appointment
// @Produce json
// @Param customerId path string true "Customer ID"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetAppointmentsResponse]
// @Failure 500 {object} response.Error
// @Router /v1/customers/{customerId}/appointments [get]
func (handler *Handler) GetCustomerAppointments(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetCustomerAppointments")
	defer scope.End()

	customerID := chi.URLParam(r, constant.RequestParamCustomerID)

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	res, err := handler.service.ListByCustomer(ctx, customerID, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("customer_id", customerID).Msg("failed to list customer appointments")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetAgentAppointments lists an agent's appointments.
// @Summary List an agent's appointments
// @Tags Appointment
// @Produce json
// @Param agentId path string true "Agent ID"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetAppointmentsResponse]
// @Failure 500 {object} response.Error
// @Router /v1/agents/{agentId}/appointments [get]
func (handler *Handler) GetAgentAppointments(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAgentAppointments")
	defer scope.End()

	agentID := chi.URLParam(r, constant.RequestParamAgentID)

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	res, err := handler.service.ListByAgent(ctx, agentID, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("agent_id", agentID).Msg("failed to list agent appointments")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetAppointment returns one appointment.
// @Summary Get an appointment by ID
// @Tags Appointment
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Data[dto.AppointmentResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/appointments/{id} [get]
func (handler *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAppointment")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	appointment, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("appointment_id", id).Msg("failed to get appointment")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, appointment)
}

// UpdateStatus moves a pending appointment to CONFIRMED or CANCELLED.
// @Summary Confirm or cancel an appointment
// @Description Accepts CONFIRMED, APPROVED, CANCELLED or REJECTED (case-insensitive). Only PENDING appointments can move.
// @Tags Appointment
// @Produce json
// @Param id path string true "Appointment ID"
// @Param status query string true "Target status"
// @Success 200 {object} response.Data[dto.AppointmentResponse]
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/appointments/{id}/status [put]
func (handler *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateStatus")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	status := r.URL.Query().Get(constant.RequestParamStatus)

	appointment, err := handler.service.UpdateStatus(ctx, id, status)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("appointment_id", id).Str("status", status).Msg("failed to update appointment status")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Appointment " + id + " moved to " + appointment.Status)

	response.WithJSON(w, http.StatusOK, appointment)
}
