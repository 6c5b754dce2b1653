package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"insurai/config"
	"insurai/infras/otel"
	"insurai/internal/domains/user/model"
	"insurai/internal/domains/user/repository"
	"insurai/shared"
	"insurai/shared/cache"
	"insurai/shared/constant"
	"insurai/shared/failure"

	"github.com/rs/zerolog/log"
)

const cacheGetUser = "user:get"

// Identity resolves user ids for the scheduling core.
type Identity interface {
	Resolve(ctx context.Context, id string) (model.User, error)
}

type serviceImpl struct {
	repo  repository.User
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.User, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Identity {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) Resolve(ctx context.Context, id string) (res model.User, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Resolve")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if id == constant.Empty {
		return res, failure.NotFound("user not found")
	}

	cacheKey := shared.BuildCacheKey(cacheGetUser, id)

	if err := s.cache.Get(ctx, cacheKey, &res); err == nil && res.ID != constant.Empty {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for user")

		return res, nil
	}

	res, err = s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("userID", id).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if res.ID == constant.Empty {
		return res, failure.NotFound("user not found")
	}

	go func(user model.User) {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, user, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save user to cache")
		}
	}(res)

	return res, nil
}
