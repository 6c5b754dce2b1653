package di

import (
	"insurai/infras/kafka"
	"insurai/infras/otel"
	"insurai/infras/postgres"
	"insurai/transport/http"
	"insurai/transport/worker"
)

// App is everything cmd/app starts and stops.
type App struct {
	HTTP     *http.HTTP
	Reminder *worker.Worker
	Kafka    kafka.Client
	Otel     otel.Otel
	DB       *postgres.Connection
}
