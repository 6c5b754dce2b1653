package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"insurai/config"
	"insurai/infras/otel"
	"insurai/internal/domains/availability/model"
	"insurai/internal/domains/availability/model/dto"
	"insurai/internal/domains/availability/repository"
	userService "insurai/internal/domains/user/service"
	"insurai/shared"
	"insurai/shared/cache"
	"insurai/shared/clock"
	"insurai/shared/constant"
	gDto "insurai/shared/dto"
	"insurai/shared/failure"
	"insurai/shared/validator"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheSlot         = "slot"
	cacheSlotsByAgent = "slot:agent"
)

const (
	errSlotNotFound  = "slot not found"
	errAgentNotFound = "agent not found"
)

// Manager owns every mutation of availability slots.
type Manager interface {
	Publish(ctx context.Context, agentID string, req dto.PublishSlotRequest) (dto.SlotResponse, error)
	ListAvailable(ctx context.Context, agentID string) ([]dto.SlotResponse, error)
	Query(ctx context.Context, req dto.QuerySlotsRequest) ([]dto.SlotResponse, error)
	QueryAll(ctx context.Context) ([]dto.SlotResponse, error)
	Search(ctx context.Context, req dto.SearchSlotsRequest) (dto.SearchResponse, error)
	Update(ctx context.Context, slotID string, req dto.UpdateSlotRequest) (dto.SlotResponse, error)
	Delete(ctx context.Context, slotID string) error
	Consume(ctx context.Context, slotID string) error
	ConsumeTx(ctx context.Context, sqltx *sqlx.Tx, agentID, slotID string) error
	Invalidate(ctx context.Context, agentID string)
}

type serviceImpl struct {
	repo     repository.Store
	identity userService.Identity
	clock    clock.Clock
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
}

func New(repo repository.Store, identity userService.Identity, clk clock.Clock, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Manager {
	return &serviceImpl{
		repo:     repo,
		identity: identity,
		clock:    clk,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
	}
}

func availableFilter(extra ...any) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: append([]any{
			gDto.Filter{ArgName: "still_available", Field: model.FieldIsAvailable, Value: true, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		}, extra...),
	}
}

func byDate() gDto.QueryParams {
	return gDto.QueryParams{SortBy: model.FieldAvailableDate + ", " + model.FieldStartTime, SortDir: gDto.SortDirAsc}
}

func (s *serviceImpl) resolveAgent(ctx context.Context, agentID string) error {
	agent, err := s.identity.Resolve(ctx, agentID)
	if err != nil {
		if failure.Is(err, http.StatusNotFound) {
			return failure.NotFound(errAgentNotFound)
		}

		return fmt.Errorf("failed to resolve agent: %w", err)
	}

	if !agent.IsAgent() {
		return failure.NotFound(errAgentNotFound)
	}

	return nil
}

// dropExpired keeps slots whose start is at or after now.
func (s *serviceImpl) dropExpired(slots []model.Slot) []model.Slot {
	now := s.clock.Now()
	kept := make([]model.Slot, 0, len(slots))

	for _, slot := range slots {
		if !slot.Expired(now) {
			kept = append(kept, slot)
		}
	}

	return kept
}

func (s *serviceImpl) Publish(ctx context.Context, agentID string, req dto.PublishSlotRequest) (res dto.SlotResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Publish")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	slot, err := req.ToModel(agentID, s.clock.Now())
	if err != nil {
		return res, err
	}

	if err = s.resolveAgent(ctx, agentID); err != nil {
		return res, err
	}

	if err = s.repo.Insert(ctx, slot); err != nil {
		log.Error().Err(err).Str("agentID", agentID).Msg("failed to publish slot")

		return res, fmt.Errorf("failed to publish slot: %w", err)
	}

	s.Invalidate(ctx, agentID)

	res.FromModel(slot)

	return res, nil
}

func (s *serviceImpl) ListAvailable(ctx context.Context, agentID string) (res []dto.SlotResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListAvailable")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.resolveAgent(ctx, agentID); err != nil {
		return nil, err
	}

	cacheKey := shared.BuildCacheKey(cacheSlotsByAgent, agentID)

	if err := s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for agent slots")

		return res, nil
	}

	slots, err := s.repo.GetAll(ctx, byDate(), availableFilter(
		gDto.Filter{Field: model.FieldAgentID, Value: agentID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
	))
	if err != nil {
		log.Error().Err(err).Str("agentID", agentID).Msg("failed to list agent slots")

		return nil, fmt.Errorf("failed to list agent slots: %w", err)
	}

	res = dto.FromModels(slots)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save agent slots to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Query(ctx context.Context, req dto.QuerySlotsRequest) (res []dto.SlotResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Query")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return nil, err
	}

	start, end, err := req.Range()
	if err != nil {
		return nil, err
	}

	slots, err := s.repo.GetAll(ctx, byDate(), availableFilter(
		gDto.Filter{ArgName: "range_start", Field: model.FieldAvailableDate, Value: start, Operator: gDto.FilterOperatorGreaterEq, Table: model.TableName},
		gDto.Filter{ArgName: "range_end", Field: model.FieldAvailableDate, Value: end, Operator: gDto.FilterOperatorLessEq, Table: model.TableName},
	))
	if err != nil {
		log.Error().Err(err).Msg("failed to query slots")

		return nil, fmt.Errorf("failed to query slots: %w", err)
	}

	return dto.FromModels(s.dropExpired(slots)), nil
}

func (s *serviceImpl) QueryAll(ctx context.Context) (res []dto.SlotResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".QueryAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	slots, err := s.repo.GetAll(ctx, byDate(), availableFilter())
	if err != nil {
		log.Error().Err(err).Msg("failed to query all slots")

		return nil, fmt.Errorf("failed to query all slots: %w", err)
	}

	return dto.FromModels(s.dropExpired(slots)), nil
}

func (s *serviceImpl) Search(ctx context.Context, req dto.SearchSlotsRequest) (res dto.SearchResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Search")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	date, at, err := req.At()
	if err != nil {
		return res, err
	}

	joined, err := s.repo.Search(ctx, date, at)
	if err != nil {
		log.Error().Err(err).Msg("failed to search slots")

		return res, fmt.Errorf("failed to search slots: %w", err)
	}

	now := s.clock.Now()
	kept := make([]model.SlotWithAgent, 0, len(joined))

	for _, slot := range joined {
		if !slot.Expired(now) {
			kept = append(kept, slot)
		}
	}

	res.FromModels(kept)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, slotID string, req dto.UpdateSlotRequest) (res dto.SlotResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	current, err := s.repo.Get(ctx, shared.FilterByID(slotID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("slotID", slotID).Msg("failed to get slot")

		return res, fmt.Errorf("failed to get slot: %w", err)
	}

	if current.ID == constant.Empty {
		return res, failure.NotFound(errSlotNotFound)
	}

	changes, err := req.Apply(&current, s.clock.Now())
	if err != nil {
		return res, err
	}

	if err = s.repo.Update(ctx, changes, shared.FilterByID(slotID, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Str("slotID", slotID).Msg("failed to update slot")

		return res, fmt.Errorf("failed to update slot: %w", err)
	}

	s.Invalidate(ctx, current.AgentID)

	res.FromModel(current)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, slotID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.repo.Delete(ctx, shared.FilterByID(slotID, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Str("slotID", slotID).Msg("failed to delete slot")

		return fmt.Errorf("failed to delete slot: %w", err)
	}

	go func() {
		shared.InvalidateCaches(context.WithoutCancel(ctx), s.cache, cacheSlot)
	}()

	return nil
}

func consumedChanges(now time.Time) map[string]any {
	return map[string]any{
		model.FieldIsAvailable: false,
		model.FieldUpdatedAt:   now,
	}
}

func stillAvailable(slotID string) gDto.FilterGroup {
	return availableFilter(
		gDto.Filter{Field: model.FieldID, Value: slotID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
	)
}

func (s *serviceImpl) Consume(ctx context.Context, slotID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Consume")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	affected, err := s.repo.UpdateAffected(ctx, consumedChanges(s.clock.Now()), stillAvailable(slotID))
	if err != nil {
		log.Error().Err(err).Str("slotID", slotID).Msg("failed to consume slot")

		return fmt.Errorf("failed to consume slot: %w", err)
	}

	if affected > 0 {
		go func() {
			shared.InvalidateCaches(context.WithoutCancel(ctx), s.cache, cacheSlot)
		}()

		return nil
	}

	slot, err := s.repo.Get(ctx, shared.FilterByID(slotID, model.FieldID, model.TableName))
	if err != nil {
		return fmt.Errorf("failed to get slot: %w", err)
	}

	if slot.ID == constant.Empty {
		return failure.NotFound(errSlotNotFound)
	}

	return failure.Conflict("slot already booked")
}

func (s *serviceImpl) ConsumeTx(ctx context.Context, sqltx *sqlx.Tx, agentID, slotID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ConsumeTx")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	slot, err := s.repo.GetForUpdateTx(ctx, sqltx, shared.FilterByID(slotID, model.FieldID, model.TableName))
	if err != nil {
		return fmt.Errorf("failed to lock slot: %w", err)
	}

	switch {
	case slot.ID == constant.Empty:
		return failure.NotFound(errSlotNotFound)
	case slot.AgentID != agentID:
		return failure.BadRequestFromString("slot does not belong to the requested agent")
	case !slot.IsAvailable:
		return failure.Conflict("slot already booked")
	}

	if err = s.repo.UpdateTx(ctx, sqltx, consumedChanges(s.clock.Now()), stillAvailable(slotID)); err != nil {
		return fmt.Errorf("failed to consume slot: %w", err)
	}

	return nil
}

// Invalidate drops cached slot listings for agentID. Callers that consumed a slot inside
// a transaction call it after commit.
func (s *serviceImpl) Invalidate(ctx context.Context, agentID string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheSlotsByAgent, agentID)); err != nil {
			log.Error().Err(err).Str("agentID", agentID).Msg("failed to invalidate agent slots cache")
		}
	}()
}
