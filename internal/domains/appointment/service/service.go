package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"net/http"

	"insurai/config"
	"insurai/infras/otel"
	"insurai/infras/prometheus"
	"insurai/internal/domains/appointment/model"
	"insurai/internal/domains/appointment/model/dto"
	"insurai/internal/domains/appointment/repository"
	availabilityService "insurai/internal/domains/availability/service"
	notificationModel "insurai/internal/domains/notification/model"
	notificationService "insurai/internal/domains/notification/service"
	userModel "insurai/internal/domains/user/model"
	userService "insurai/internal/domains/user/service"
	"insurai/shared"
	"insurai/shared/cache"
	"insurai/shared/clock"
	"insurai/shared/constant"
	gDto "insurai/shared/dto"
	"insurai/shared/failure"
	"insurai/shared/lock"
	"insurai/shared/timezone"
	"insurai/shared/validator"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheAppointment     = "appointment"
	cacheGetAppointment  = "appointment:get"
	cacheGetAppointments = "appointment:gets"
)

const (
	errAppointmentNotFound = "appointment not found"
	errAgentNotFound       = "agent not found"
	errCustomerNotFound    = "customer not found"
	errTransition          = "status transition not allowed"
	errStatusChanged       = "appointment status changed concurrently"
)

const (
	actorAgent = "the agent"
	actorAdmin = "an administrator"

	attributeOverrideReason = "override_reason"
)

var sortable = []string{constant.FieldCreatedAt, model.FieldAppointmentDateTime, model.FieldStatus}

// Engine books appointments and drives their status.
type Engine interface {
	Book(ctx context.Context, customerID string, req dto.BookAppointmentRequest) (dto.AppointmentResponse, error)
	UpdateStatus(ctx context.Context, appointmentID, token string) (dto.AppointmentResponse, error)
	OverrideStatus(ctx context.Context, appointmentID string, req dto.OverrideStatusRequest) (dto.AppointmentResponse, error)
	ListByAgent(ctx context.Context, agentID string, params gDto.QueryParams) (dto.GetAppointmentsResponse, error)
	ListByCustomer(ctx context.Context, customerID string, params gDto.QueryParams) (dto.GetAppointmentsResponse, error)
	Get(ctx context.Context, appointmentID string) (dto.AppointmentResponse, error)
}

type serviceImpl struct {
	repo     repository.Ledger
	slots    availabilityService.Manager
	identity userService.Identity
	sink     notificationService.Sink
	locks    *lock.Keyed
	metrics  *prometheus.Metrics
	clock    clock.Clock
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
}

func New(
	repo repository.Ledger,
	slots availabilityService.Manager,
	identity userService.Identity,
	sink notificationService.Sink,
	locks *lock.Keyed,
	metrics *prometheus.Metrics,
	clk clock.Clock,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Engine {
	return &serviceImpl{
		repo:     repo,
		slots:    slots,
		identity: identity,
		sink:     sink,
		locks:    locks,
		metrics:  metrics,
		clock:    clk,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
	}
}

func byParty(field, id string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: field, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}
}

func atInstant(appointment model.Appointment) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldAgentID, Value: appointment.AgentID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldAppointmentDateTime, Value: appointment.AppointmentDateTime, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}
}

// whileStatus matches the appointment only while it still carries status.
func whileStatus(appointmentID, status string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Value: appointmentID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{ArgName: "current_status", Field: model.FieldStatus, Value: status, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}
}

func (s *serviceImpl) resolve(ctx context.Context, userID, notFound string) (userModel.User, error) {
	user, err := s.identity.Resolve(ctx, userID)
	if err != nil {
		if failure.Is(err, http.StatusNotFound) {
			return user, failure.NotFound(notFound)
		}

		return user, fmt.Errorf("failed to resolve user: %w", err)
	}

	return user, nil
}

func (s *serviceImpl) resolveAgent(ctx context.Context, agentID string) (userModel.User, error) {
	agent, err := s.resolve(ctx, agentID, errAgentNotFound)
	if err != nil {
		return agent, err
	}

	if !agent.IsAgent() {
		return agent, failure.NotFound(errAgentNotFound)
	}

	return agent, nil
}

func (s *serviceImpl) Book(ctx context.Context, customerID string, req dto.BookAppointmentRequest) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Book")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	defer func() {
		switch {
		case err == nil:
			s.metrics.RecordBooking(prometheus.OutcomeBooked)
		case failure.Is(err, http.StatusConflict):
			s.metrics.RecordBooking(prometheus.OutcomeConflict)
		case failure.GetCode(err) < http.StatusInternalServerError:
			s.metrics.RecordBooking(prometheus.OutcomeRejected)
		default:
			s.metrics.RecordBooking(prometheus.OutcomeError)
		}
	}()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	appointment, err := req.ToModel(customerID, timezone.GetLocation(), s.clock.Now())
	if err != nil {
		return res, err
	}

	customer, err := s.resolve(ctx, customerID, errCustomerNotFound)
	if err != nil {
		return res, err
	}

	agent, err := s.resolveAgent(ctx, req.AgentID)
	if err != nil {
		return res, err
	}

	key := appointment.LockKey()

	unlock := s.locks.Lock(key)
	defer unlock()

	err = s.repo.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.LockTx(ctx, tx, key); err != nil {
			return err
		}

		taken, err := s.repo.ExistTx(ctx, tx, atInstant(appointment))
		if err != nil {
			return fmt.Errorf("failed to check agent schedule: %w", err)
		}

		if taken {
			return failure.Conflict(repository.ErrSlotBooked)
		}

		if err := s.repo.InsertTx(ctx, tx, appointment); err != nil {
			return err
		}

		if appointment.AvailabilityID != nil {
			return s.slots.ConsumeTx(ctx, tx, appointment.AgentID, *appointment.AvailabilityID)
		}

		return nil
	})
	if err != nil {
		if failure.GetCode(err) == http.StatusInternalServerError {
			log.Error().Err(err).Str("agentID", appointment.AgentID).Str("customerID", customerID).Msg("failed to book appointment")
		}

		return res, err
	}

	log.Info().Str("appointmentID", appointment.ID).Str("agentID", appointment.AgentID).Msg("appointment booked")

	if appointment.AvailabilityID != nil {
		s.slots.Invalidate(ctx, appointment.AgentID)
	}

	s.invalidate(ctx)
	s.notify(ctx, notificationModel.BookedEvent(details(appointment, customer, agent)))

	res.FromModel(appointment)

	return res, nil
}

func (s *serviceImpl) load(ctx context.Context, appointmentID string) (model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, shared.FilterByID(appointmentID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("appointmentID", appointmentID).Msg("failed to get appointment")

		return appointment, fmt.Errorf("failed to get appointment: %w", err)
	}

	if appointment.ID == constant.Empty {
		return appointment, failure.NotFound(errAppointmentNotFound)
	}

	return appointment, nil
}

func (s *serviceImpl) UpdateStatus(ctx context.Context, appointmentID, token string) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	to, err := model.ParseStatus(token)
	if err != nil {
		return res, err
	}

	appointment, err := s.load(ctx, appointmentID)
	if err != nil {
		return res, err
	}

	from := appointment.Status
	if !model.CanTransition(from, to) {
		return res, failure.Conflict(errTransition)
	}

	now := s.clock.Now()

	affected, err := s.repo.UpdateAffected(ctx, map[string]any{
		model.FieldStatus:    to,
		model.FieldUpdatedAt: now,
	}, whileStatus(appointmentID, from))
	if err != nil {
		log.Error().Err(err).Str("appointmentID", appointmentID).Msg("failed to update appointment status")

		return res, fmt.Errorf("failed to update appointment status: %w", err)
	}

	if affected == 0 {
		return res, failure.Conflict(errStatusChanged)
	}

	appointment.Status = to
	appointment.UpdatedAt = now

	s.afterTransition(ctx, appointment, from, actorAgent, nil)

	res.FromModel(appointment)

	return res, nil
}

func (s *serviceImpl) OverrideStatus(ctx context.Context, appointmentID string, req dto.OverrideStatusRequest) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".OverrideStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	to, err := model.ParseStatus(req.Status)
	if err != nil {
		return res, err
	}

	appointment, err := s.load(ctx, appointmentID)
	if err != nil {
		return res, err
	}

	from := appointment.Status
	now := s.clock.Now()

	err = s.repo.Update(ctx, map[string]any{
		model.FieldStatus:    to,
		model.FieldUpdatedAt: now,
	}, shared.FilterByID(appointmentID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("appointmentID", appointmentID).Msg("failed to override appointment status")

		return res, fmt.Errorf("failed to override appointment status: %w", err)
	}

	appointment.Status = to
	appointment.UpdatedAt = now

	log.Info().Str("appointmentID", appointmentID).Str("from", from).Str("to", to).Str("reason", req.Reason).Msg("appointment status overridden")

	if from != to {
		s.afterTransition(ctx, appointment, from, actorAdmin, map[string]string{attributeOverrideReason: req.Reason})
	} else {
		s.invalidate(ctx)
	}

	res.FromModel(appointment)

	return res, nil
}

func (s *serviceImpl) afterTransition(ctx context.Context, appointment model.Appointment, from, actor string, attributes map[string]string) {
	s.metrics.RecordTransition(from, appointment.Status)
	s.invalidate(ctx)

	customer, agent := s.parties(ctx, appointment)

	event := notificationModel.StatusEvent(details(appointment, customer, agent), from, appointment.Status, actor)
	for k, v := range attributes {
		event.Attributes[k] = v
	}

	s.notify(ctx, event)
}

func (s *serviceImpl) list(ctx context.Context, filter gDto.FilterGroup, params gDto.QueryParams) (res dto.GetAppointmentsResponse, err error) {
	params = params.Sorted(model.TableName, sortable, model.FieldAppointmentDateTime, gDto.SortDirAsc)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAppointments, params, filter)

	if err := s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for appointments")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count appointments")

		return res, fmt.Errorf("failed to count appointments: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get appointments")

		return res, fmt.Errorf("failed to get appointments: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save appointments to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) ListByAgent(ctx context.Context, agentID string, params gDto.QueryParams) (res dto.GetAppointmentsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListByAgent")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, err = s.resolveAgent(ctx, agentID); err != nil {
		return res, err
	}

	return s.list(ctx, byParty(model.FieldAgentID, agentID), params)
}

func (s *serviceImpl) ListByCustomer(ctx context.Context, customerID string, params gDto.QueryParams) (res dto.GetAppointmentsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListByCustomer")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, err = s.resolve(ctx, customerID, errCustomerNotFound); err != nil {
		return res, err
	}

	return s.list(ctx, byParty(model.FieldCustomerID, customerID), params)
}

func (s *serviceImpl) Get(ctx context.Context, appointmentID string) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetAppointment, appointmentID)

	if err := s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for appointment")

		return res, nil
	}

	appointment, err := s.load(ctx, appointmentID)
	if err != nil {
		return res, err
	}

	res.FromModel(appointment)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save appointment to cache")
		}
	}()

	return res, nil
}

// parties resolves names for a message. A failed lookup falls back to the raw id.
func (s *serviceImpl) parties(ctx context.Context, appointment model.Appointment) (userModel.User, userModel.User) {
	customer, err := s.identity.Resolve(ctx, appointment.CustomerID)
	if err != nil {
		log.Warn().Err(err).Str("customerID", appointment.CustomerID).Msg("failed to resolve customer for notification")

		customer = userModel.User{ID: appointment.CustomerID, FullName: appointment.CustomerID}
	}

	agent, err := s.identity.Resolve(ctx, appointment.AgentID)
	if err != nil {
		log.Warn().Err(err).Str("agentID", appointment.AgentID).Msg("failed to resolve agent for notification")

		agent = userModel.User{ID: appointment.AgentID, FullName: appointment.AgentID}
	}

	return customer, agent
}

func details(appointment model.Appointment, customer, agent userModel.User) notificationModel.Details {
	return notificationModel.Details{
		AppointmentID: appointment.ID,
		CustomerID:    appointment.CustomerID,
		CustomerName:  customer.DisplayName(),
		AgentName:     agent.DisplayName(),
		AgentEmail:    agent.Email,
		At:            timezone.ToAppTime(appointment.AppointmentDateTime),
		Reason:        appointment.Reason,
	}
}

// notify never fails the caller; the appointment state is already committed.
func (s *serviceImpl) notify(ctx context.Context, event notificationModel.Event) {
	if _, err := s.sink.Emit(context.WithoutCancel(ctx), event); err != nil {
		log.Error().Err(err).Str("kind", event.Kind).Str("userID", event.RecipientID).Msg("failed to emit appointment notification")
	}
}

func (s *serviceImpl) invalidate(ctx context.Context) {
	go func() {
		shared.InvalidateCaches(context.WithoutCancel(ctx), s.cache, cacheAppointment)
	}()
}
