package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"insurai/config"
	"insurai/infras/otel"
	"insurai/infras/prometheus"
	notificationModel "insurai/internal/domains/notification/model"
	notificationService "insurai/internal/domains/notification/service"
	"insurai/internal/domains/reminder/model"
	"insurai/internal/domains/reminder/repository"
	"insurai/shared/clock"
	"insurai/shared/constant"
	"insurai/shared/timezone"

	"github.com/rs/zerolog/log"
)

const defaultWindowHours = 24

// Sweeper emits one reminder per approved appointment that starts within the window.
type Sweeper interface {
	Sweep(ctx context.Context) (model.Report, error)
}

type serviceImpl struct {
	repo    repository.Tracker
	sink    notificationService.Sink
	metrics *prometheus.Metrics
	clock   clock.Clock
	window  time.Duration
	otel    otel.Otel
}

func New(repo repository.Tracker, sink notificationService.Sink, metrics *prometheus.Metrics, clk clock.Clock, cfg *config.Config, otel otel.Otel) Sweeper {
	hours := cfg.Scheduler.Reminder.WindowHours
	if hours <= 0 {
		hours = defaultWindowHours
	}

	return &serviceImpl{
		repo:    repo,
		sink:    sink,
		metrics: metrics,
		clock:   clk,
		window:  time.Duration(hours) * time.Hour,
		otel:    otel,
	}
}

func (s *serviceImpl) Sweep(ctx context.Context) (report model.Report, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelWorkerScopeName, constant.OtelWorkerScopeName+".reminder.Sweep")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	started := time.Now()
	now := s.clock.Now()

	due, err := s.repo.Due(ctx, now, now.Add(s.window))
	if err != nil {
		log.Error().Err(err).Msg("failed to select appointments for reminders")

		return report, fmt.Errorf("failed to select appointments for reminders: %w", err)
	}

	report.Selected = len(due)

	for _, appointment := range due {
		if ctx.Err() != nil {
			break
		}

		switch s.remind(ctx, appointment, now) {
		case outcomeSent:
			report.Sent++
		case outcomeSkipped:
			report.Skipped++
		default:
			report.Failed++
		}
	}

	s.metrics.RecordSweep(report.Sent, report.Skipped, report.Failed, time.Since(started))

	log.Info().
		Int("selected", report.Selected).
		Int("sent", report.Sent).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("reminder sweep finished")

	return report, nil
}

type outcome int

const (
	outcomeFailed outcome = iota
	outcomeSent
	outcomeSkipped
)

// remind handles one appointment; its failures never leave this function.
func (s *serviceImpl) remind(ctx context.Context, appointment model.Due, now time.Time) outcome {
	claimed, err := s.repo.Claim(ctx, appointment.ID, now)
	if err != nil {
		log.Error().Err(err).Str("appointmentID", appointment.ID).Msg("failed to claim reminder")

		return outcomeFailed
	}

	if !claimed {
		return outcomeSkipped
	}

	event := notificationModel.ReminderEvent(notificationModel.Details{
		AppointmentID: appointment.ID,
		CustomerID:    appointment.CustomerID,
		CustomerName:  appointment.DisplayCustomer(),
		AgentName:     appointment.DisplayAgent(),
		AgentEmail:    appointment.AgentEmail,
		At:            timezone.ToAppTime(appointment.AppointmentDateTime),
		Reason:        appointment.Reason,
	})

	if _, err := s.sink.Emit(ctx, event); err != nil {
		log.Error().Err(err).Str("appointmentID", appointment.ID).Msg("failed to emit reminder, releasing claim")

		if err := s.repo.Release(context.WithoutCancel(ctx), appointment.ID); err != nil {
			log.Error().Err(err).Str("appointmentID", appointment.ID).Msg("failed to release reminder claim")
		}

		return outcomeFailed
	}

	return outcomeSent
}
