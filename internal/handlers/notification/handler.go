package notification

import (
	"net/http"
	"strconv"

	"insurai/infras/otel"
	"insurai/internal/domains/notification/model/dto"
	"insurai/internal/domains/notification/service"
	"insurai/shared/constant"
	gDto "insurai/shared/dto"
	"insurai/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Sink
	otel    otel.Otel
}

func New(service service.Sink, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/users/{userId}/notifications", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetNotifications)
		routerGroup.Get("/unread-count", handler.GetUnreadCount)
		routerGroup.Patch("/read", handler.MarkAllRead)
	})

	router.Patch("/notifications/{id}/read", handler.MarkRead)
}

// GetNotifications lists a user's notifications, newest first.
// @Summary List a user's notifications
// @Tags Notification
// @Produce json
// @Param userId path string true "User ID"
// @Param unread query bool false "Only unread notifications"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetNotificationsResponse]
// @Failure 500 {object} response.Error
// @Router /v1/users/{userId}/notifications [get]
func (handler *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetNotifications")
	defer scope.End()

	userID := chi.URLParam(r, constant.RequestParamUserID)

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get(constant.RequestParamUnread))

	res, err := handler.service.ListByUser(ctx, userID, queryParams, unreadOnly)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("user_id", userID).Msg("failed to list notifications")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetUnreadCount returns how many notifications the user has not read.
// @Summary Count unread notifications
// @Tags Notification
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} response.Data[dto.UnreadCountResponse]
// @Failure 500 {object} response.Error
// @Router /v1/users/{userId}/notifications/unread-count [get]
func (handler *Handler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetUnreadCount")
	defer scope.End()

	userID := chi.URLParam(r, constant.RequestParamUserID)

	count, err := handler.service.CountUnread(ctx, userID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("user_id", userID).Msg("failed to count unread notifications")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, dto.UnreadCountResponse{Count: count})
}

// MarkAllRead marks every unread notification of the user as read.
// @Summary Mark all notifications read
// @Tags Notification
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} response.Data[dto.MarkAllReadResponse]
// @Failure 500 {object} response.Error
// @Router /v1/users/{userId}/notifications/read [patch]
func (handler *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".MarkAllRead")
	defer scope.End()

	userID := chi.URLParam(r, constant.RequestParamUserID)

	updated, err := handler.service.MarkAllRead(ctx, userID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("user_id", userID).Msg("failed to mark notifications read")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, dto.MarkAllReadResponse{Updated: updated})
}

// MarkRead marks one notification as read.
// @Summary Mark a notification read
// @Tags Notification
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/notifications/{id}/read [patch]
func (handler *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".MarkRead")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.MarkRead(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("notification_id", id).Msg("failed to mark notification read")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Notification marked as read")
}
