package handler

import (
	"net/http"

	"insurai/config"
	"insurai/di"
	"insurai/shared/logger"
)

// Handler serves the HTTP API as a single serverless function. The reminder worker does not run here.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	cfg := config.Get()

	logger.InitLogger(cfg)

	logger.SetLogLevel(cfg)

	app := di.InitializeService()
	app.HTTP.ServeHTTP(w, r)
}
