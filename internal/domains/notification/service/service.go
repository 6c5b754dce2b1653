package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"insurai/config"
	"insurai/infras/kafka"
	"insurai/infras/otel"
	"insurai/infras/prometheus"
	"insurai/internal/domains/notification/model"
	"insurai/internal/domains/notification/model/dto"
	"insurai/internal/domains/notification/repository"
	"insurai/shared"
	"insurai/shared/cache"
	"insurai/shared/clock"
	"insurai/shared/constant"
	gDto "insurai/shared/dto"
	"insurai/shared/failure"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheUnread           = "notification:unread"
	defaultPublishTimeout = 2 * time.Second
)

// Sink stores notifications for users and fans them out to the event stream.
type Sink interface {
	Emit(ctx context.Context, event model.Event) (model.Notification, error)
	ListByUser(ctx context.Context, userID string, params gDto.QueryParams, unreadOnly bool) (dto.GetNotificationsResponse, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type serviceImpl struct {
	repo    repository.Inbox
	kafka   kafka.Client
	metrics *prometheus.Metrics
	clock   clock.Clock
	cfg     *config.Config
	cache   cache.RedisCache
	otel    otel.Otel
}

func New(repo repository.Inbox, kafka kafka.Client, metrics *prometheus.Metrics, clk clock.Clock, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Sink {
	return &serviceImpl{
		repo:    repo,
		kafka:   kafka,
		metrics: metrics,
		clock:   clk,
		cfg:     cfg,
		cache:   cache,
		otel:    otel,
	}
}

func byUser(userID string, extra ...any) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: append([]any{
			gDto.Filter{Field: model.FieldUserID, Value: userID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		}, extra...),
	}
}

func unread() gDto.Filter {
	return gDto.Filter{ArgName: "unread", Field: model.FieldIsRead, Value: false, Operator: gDto.FilterOperatorEq, Table: model.TableName}
}

func (s *serviceImpl) Emit(ctx context.Context, event model.Event) (res model.Notification, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Emit")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if event.RecipientID == constant.Empty || event.Title == constant.Empty {
		return res, failure.BadRequestFromString("notification needs a recipient and a title")
	}

	res = model.Notification{
		ID:            uuid.NewString(),
		UserID:        event.RecipientID,
		Title:         event.Title,
		Message:       event.Body,
		Type:          event.Kind,
		AppointmentID: event.AppointmentID,
		CreatedAt:     s.clock.Now(),
	}

	if err = s.repo.Insert(ctx, res); err != nil {
		log.Error().Err(err).Str("userID", event.RecipientID).Str("kind", event.Kind).Msg("failed to store notification")

		return res, fmt.Errorf("failed to store notification: %w", err)
	}

	s.metrics.RecordNotification(event.Kind)
	s.dropUnread(ctx, event.RecipientID)
	s.publish(ctx, res, event.Attributes)

	log.Info().Str("userID", res.UserID).Str("kind", res.Type).Str("notificationID", res.ID).Msg("notification emitted")

	return res, nil
}

func (s *serviceImpl) publish(ctx context.Context, notification model.Notification, attributes map[string]string) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".notification.publish")
	defer scope.End()

	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout())
	defer cancel()

	payload := dto.CreatedEvent{Type: dto.EventTypeCreated, Attributes: attributes}
	payload.Notification.FromModel(notification)

	err := s.kafka.SendMessages(ctx, s.cfg.Kafka.Topics.Notification, kafka.Message{Key: notification.UserID, Value: payload})
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Str("notificationID", notification.ID).Msg("failed to publish notification event")
	}
}

// publishTimeout bounds how long Emit waits on the broker. Callers may hold booking locks.
func (s *serviceImpl) publishTimeout() time.Duration {
	if s.cfg.Kafka.PublishTimeoutMS <= 0 {
		return defaultPublishTimeout
	}

	return time.Duration(s.cfg.Kafka.PublishTimeoutMS) * time.Millisecond
}

func (s *serviceImpl) ListByUser(ctx context.Context, userID string, params gDto.QueryParams, unreadOnly bool) (res dto.GetNotificationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListByUser")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := byUser(userID)
	if unreadOnly {
		filter = byUser(userID, unread())
	}

	params = gDto.QueryParams{Page: params.Page, Limit: params.Limit}.
		Sorted(model.TableName, nil, model.FieldCreatedAt, gDto.SortDirDesc)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("failed to count notifications")

		return res, fmt.Errorf("failed to count notifications: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("failed to list notifications")

		return res, fmt.Errorf("failed to list notifications: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	return res, nil
}

func (s *serviceImpl) CountUnread(ctx context.Context, userID string) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CountUnread")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheUnread, userID)

	if err := s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for unread count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, byUser(userID, unread()))
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("failed to count unread notifications")

		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save unread count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) MarkRead(ctx context.Context, notificationID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".MarkRead")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	current, err := s.repo.Get(ctx, shared.FilterByID(notificationID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("notificationID", notificationID).Msg("failed to get notification")

		return fmt.Errorf("failed to get notification: %w", err)
	}

	if current.ID == constant.Empty {
		return failure.NotFound("notification not found")
	}

	if current.IsRead {
		return nil
	}

	_, err = s.repo.UpdateAffected(ctx, map[string]any{model.FieldIsRead: true}, shared.FilterByID(notificationID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("notificationID", notificationID).Msg("failed to mark notification read")

		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	s.dropUnread(ctx, current.UserID)

	return nil
}

func (s *serviceImpl) MarkAllRead(ctx context.Context, userID string) (res int64, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".MarkAllRead")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res, err = s.repo.UpdateAffected(ctx, map[string]any{model.FieldIsRead: true}, byUser(userID, unread()))
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("failed to mark notifications read")

		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	s.dropUnread(ctx, userID)

	return res, nil
}

func (s *serviceImpl) dropUnread(ctx context.Context, userID string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheUnread, userID)); err != nil {
			log.Error().Err(err).Str("userID", userID).Msg("failed to invalidate unread count cache")
		}
	}()
}
