package availability

import (
	"net/http"

	"insurai/infras/otel"
	"insurai/internal/domains/availability/model/dto"
	"insurai/internal/domains/availability/service"
	"insurai/shared/constant"
	"insurai/shared/validator"
	"insurai/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Manager
	otel    otel.Otel
}

func New(service service.Manager, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/agents/{agentId}/slots", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.PublishSlot)
		routerGroup.Get("/", handler.GetAgentSlots)
	})

	router.Route("/slots", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.QuerySlots)
		routerGroup.Get("/all", handler.QueryAllSlots)
		routerGroup.Get("/search", handler.SearchSlots)
		routerGroup.Put("/{id}", handler.UpdateSlot)
		routerGroup.Delete("/{id}", handler.DeleteSlot)
	})
}

// PublishSlot publishes a new availability slot for an agent.
// @Summary Publish a slot
// @Description Publish an availability window for an agent. Times are wall-clock HH:mm on the given day.
// @Tags Availability
// @Accept json
// @Produce json
// @Param agentId path string true "Agent ID"
// @Param request body dto.PublishSlotRequest true "Publish Slot Request"
// @Success 201 {object} response.Data[dto.SlotResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/agents/{agentId}/slots [post]
func (handler *Handler) PublishSlot(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".PublishSlot")
	defer scope.End()

	agentID := chi.URLParam(r, constant.RequestParamAgentID)

	req := dto.PublishSlotRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	slot, err := handler.service.Publish(ctx, agentID, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("agent_id", agentID).Msg("failed to publish slot")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Slot published for agent " + agentID)

	response.WithJSON(w, http.StatusCreated, slot)
}

// GetAgentSlots lists the bookable slots of an agent.
// @Summary List an agent's available slots
// @Description Slots that are still available and have not ended yet, earliest first.
// @Tags Availability
// @Produce json
// @Param agentId path string true "Agent ID"
// @Success 200 {object} response.Data[[]dto.SlotResponse]
// @Failure 500 {object} response.Error
// @Router /v1/agents/{agentId}/slots [get]
func (handler *Handler) GetAgentSlots(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAgentSlots")
	defer scope.End()

	agentID := chi.URLParam(r, constant.RequestParamAgentID)

	slots, err := handler.service.ListAvailable(ctx, agentID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("agent_id", agentID).Msg("failed to list agent slots")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, slots)
}

// QuerySlots lists available slots of every agent in a day range.
// @Summary Query available slots
// @Tags Availability
// @Produce json
// @Param start_date query string true "First day (yyyy-MM-dd)"
// @Param end_date query string true "Last day, inclusive (yyyy-MM-dd)"
// @Success 200 {object} response.Data[[]dto.SlotResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/slots [get]
func (handler *Handler) QuerySlots(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".QuerySlots")
	defer scope.End()

	req := dto.QuerySlotsRequest{
		StartDate: r.URL.Query().Get(constant.RequestParamStartDate),
		EndDate:   r.URL.Query().Get(constant.RequestParamEndDate),
	}

	slots, err := handler.service.Query(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to query slots")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, slots)
}

// QueryAllSlots lists every slot still open.
// @Summary List all available slots
// @Tags Availability
// @Produce json
// @Success 200 {object} response.Data[[]dto.SlotResponse]
// @Failure 500 {object} response.Error
// @Router /v1/slots/all [get]
func (handler *Handler) QueryAllSlots(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".QueryAllSlots")
	defer scope.End()

	slots, err := handler.service.QueryAll(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to list slots")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, slots)
}

// SearchSlots finds agents free at a given instant.
// @Summary Search agents available at a date and time
// @Tags Availability
// @Produce json
// @Param date query string true "Day (yyyy-MM-dd)"
// @Param time query string true "Wall clock (HH:mm)"
// @Success 200 {object} response.Data[dto.SearchResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/slots/search [get]
func (handler *Handler) SearchSlots(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SearchSlots")
	defer scope.End()

	req := dto.SearchSlotsRequest{
		Date: r.URL.Query().Get(constant.RequestParamDate),
		Time: r.URL.Query().Get(constant.RequestParamTime),
	}

	res, err := handler.service.Search(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to search slots")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateSlot replaces a slot's window and availability flag.
// @Summary Update a slot
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param request body dto.UpdateSlotRequest true "Update Slot Request"
// @Success 200 {object} response.Data[dto.SlotResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/slots/{id} [put]
func (handler *Handler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateSlot")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateSlotRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	slot, err := handler.service.Update(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("slot_id", id).Msg("failed to update slot")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Slot updated " + id)

	response.WithJSON(w, http.StatusOK, slot)
}

// DeleteSlot removes a slot.
// @Summary Delete a slot
// @Tags Availability
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/slots/{id} [delete]
func (handler *Handler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteSlot")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("slot_id", id).Msg("failed to delete slot")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Slot deleted " + id)

	response.WithMessage(w, http.StatusOK, "Slot deleted successfully")
}
