package worker

import (
	"context"
	"time"

	"insurai/config"
	"insurai/internal/domains/reminder/service"

	"github.com/rs/zerolog/log"
)

const defaultInterval = time.Hour

// Job is one unit of periodic work. A returned error is logged and the loop keeps going.
type Job func(ctx context.Context) error

// Worker runs a Job right away and then once per interval. Runs never overlap.
type Worker struct {
	name     string
	interval time.Duration
	job      Job
}

func New(name string, interval time.Duration, job Job) *Worker {
	if interval <= 0 {
		interval = defaultInterval
	}

	return &Worker{
		name:     name,
		interval: interval,
		job:      job,
	}
}

// NewReminder wires the reminder sweep into a Worker. It returns nil when the scheduler is disabled.
func NewReminder(cfg *config.Config, sweeper service.Sweeper) *Worker {
	if !cfg.Scheduler.Reminder.Enable {
		return nil
	}

	interval := time.Duration(cfg.Scheduler.Reminder.IntervalSeconds) * time.Second

	return New("reminder", interval, func(ctx context.Context) error {
		_, err := sweeper.Sweep(ctx)

		return err
	})
}

// Run blocks until ctx is done. A nil Worker returns immediately.
func (w *Worker) Run(ctx context.Context) {
	if w == nil {
		return
	}

	log.Info().Str("worker", w.name).Dur("interval", w.interval).Msg("worker started")

	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("worker", w.name).Msg("worker stopped")

			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("worker", w.name).Interface("panic", r).Msg("worker job panicked")
		}
	}()

	if err := w.job(ctx); err != nil {
		log.Error().Err(err).Str("worker", w.name).Msg("worker job failed")
	}
}
