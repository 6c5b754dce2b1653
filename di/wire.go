//go:build wireinject
// +build wireinject

package di

import (
	"insurai/config"
	"insurai/infras/kafka"
	"insurai/infras/otel"
	"insurai/infras/postgres"
	"insurai/infras/prometheus"
	"insurai/infras/redis"
	"insurai/shared/cache"
	"insurai/shared/clock"
	"insurai/shared/lock"
	"insurai/transport/http"
	"insurai/transport/http/middleware"
	"insurai/transport/http/router"
	"insurai/transport/worker"

	appointmentRepository "insurai/internal/domains/appointment/repository"
	appointmentService "insurai/internal/domains/appointment/service"
	availabilityRepository "insurai/internal/domains/availability/repository"
	availabilityService "insurai/internal/domains/availability/service"
	notificationRepository "insurai/internal/domains/notification/repository"
	notificationService "insurai/internal/domains/notification/service"
	reminderRepository "insurai/internal/domains/reminder/repository"
	reminderService "insurai/internal/domains/reminder/service"
	userRepository "insurai/internal/domains/user/repository"
	userService "insurai/internal/domains/user/service"

	adminHandler "insurai/internal/handlers/admin"
	appointmentHandler "insurai/internal/handlers/appointment"
	availabilityHandler "insurai/internal/handlers/availability"
	notificationHandler "insurai/internal/handlers/notification"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	kafka.New,
	prometheus.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	clock.New,
	lock.NewKeyed,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
)

var availabilityDomain = wire.NewSet(
	availabilityRepository.New,
	availabilityService.New,
)

var notificationDomain = wire.NewSet(
	notificationRepository.New,
	notificationService.New,
)

var appointmentDomain = wire.NewSet(
	appointmentRepository.New,
	appointmentService.New,
)

var reminderDomain = wire.NewSet(
	reminderRepository.New,
	reminderService.New,
)

var domains = wire.NewSet(
	userDomain,
	availabilityDomain,
	notificationDomain,
	appointmentDomain,
	reminderDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	availabilityHandler.New,
	appointmentHandler.New,
	adminHandler.New,
	notificationHandler.New,
	router.New,
)

func InitializeService() *App {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
		worker.NewReminder,
		wire.Struct(new(App), "*"),
	)

	return &App{}
}
