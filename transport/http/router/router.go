package router

import (
	"insurai/internal/handlers/admin"
	"insurai/internal/handlers/appointment"
	"insurai/internal/handlers/availability"
	"insurai/internal/handlers/notification"
	"insurai/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Availability availability.Handler
	Appointment  appointment.Handler
	Admin        admin.Handler
	Notification notification.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	Auth           middleware.Auth
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Availability.Router(routerGroup)
		r.DomainHandlers.Appointment.Router(routerGroup)
		r.DomainHandlers.Notification.Router(routerGroup)

		routerGroup.Group(func(adminGroup chi.Router) {
			adminGroup.Use(r.Auth.APIKey)
			r.DomainHandlers.Admin.Router(adminGroup)
		})
	})
}

func New(domainHandlers DomainHandlers, auth middleware.Auth) Router {
	return Router{
		DomainHandlers: domainHandlers,
		Auth:           auth,
	}
}
