package middleware

import (
	"crypto/subtle"
	"net/http"

	"insurai/config"
	"insurai/infras/otel"
	"insurai/shared/constant"
	"insurai/shared/failure"
	"insurai/transport/http/response"
)

// Auth guards administrative routes.
type Auth interface {
	APIKey(http.Handler) http.Handler
}

type authImpl struct {
	otel otel.Otel
	cfg  *config.Config
}

func NewAuthMiddleware(otel otel.Otel, cfg *config.Config) Auth {
	return &authImpl{
		otel: otel,
		cfg:  cfg,
	}
}

// APIKey lets a request through only when X-API-Key matches the configured key.
// An empty configured key locks the route entirely.
func (m *authImpl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "api_key.middleware")
		defer scope.End()

		apiKey := request.Header.Get(constant.RequestHeaderAPIKey)
		expected := m.cfg.App.APIKey

		if expected == constant.Empty || apiKey == constant.Empty ||
			subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
			scope.SetAttribute("http.source", "client")
			scope.TraceError(failure.ErrMissingAPIKey)

			response.WithError(writer, failure.ErrMissingAPIKey)

			return
		}

		scope.SetAttribute("http.source", "internal")

		next.ServeHTTP(writer, request)
	})
}
