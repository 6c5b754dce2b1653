package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"insurai/config"
	"insurai/internal/domains/reminder/mocks"
	"insurai/internal/domains/reminder/model"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestWorker_RunsImmediately(t *testing.T) {
	var calls atomic.Int32

	w := New("test", time.Hour, func(ctx context.Context) error {
		calls.Add(1)

		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		w.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	cancel()
	<-done

	assert.Equal(t, int32(1), calls.Load())
}

func TestWorker_RunsOnInterval(t *testing.T) {
	var calls atomic.Int32

	w := New("test", 10*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)

		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		w.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestWorker_RunsDoNotOverlap(t *testing.T) {
	var running, overlaps, calls atomic.Int32

	w := New("slow", 5*time.Millisecond, func(ctx context.Context) error {
		if running.Add(1) > 1 {
			overlaps.Add(1)
		}
		defer running.Add(-1)

		calls.Add(1)
		time.Sleep(20 * time.Millisecond)

		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		w.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	assert.Zero(t, overlaps.Load())
}

func TestWorker_KeepsGoingAfterFailureAndPanic(t *testing.T) {
	var calls atomic.Int32

	w := New("flaky", 5*time.Millisecond, func(ctx context.Context) error {
		n := calls.Add(1)
		if n == 1 {
			return errors.New("boom")
		}
		if n == 2 {
			panic("kaboom")
		}

		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go w.Run(ctx)

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestWorker_StopsOnCancelledContext(t *testing.T) {
	var calls atomic.Int32

	w := New("cancelled", time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)

		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w.Run(ctx)

	assert.Zero(t, calls.Load())
}

func TestNew_DefaultsInterval(t *testing.T) {
	w := New("default", 0, func(ctx context.Context) error { return nil })

	assert.Equal(t, time.Hour, w.interval)
}

func TestNewReminder(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Scheduler.Reminder.Enable = false

		w := NewReminder(cfg, nil)
		assert.Nil(t, w)

		// a nil worker is a no-op
		w.Run(context.Background())
	})

	t.Run("enabled sweeps on run", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sweeper := mocks.NewMockSweeper(ctrl)

		cfg := &config.Config{}
		cfg.Scheduler.Reminder.Enable = true
		cfg.Scheduler.Reminder.IntervalSeconds = 3600

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		sweeper.EXPECT().Sweep(gomock.Any()).DoAndReturn(func(context.Context) (model.Report, error) {
			cancel()

			return model.Report{Selected: 1, Sent: 1}, nil
		})

		w := NewReminder(cfg, sweeper)
		assert.Equal(t, time.Hour, w.interval)

		go func() {
			w.Run(ctx)
			close(done)
		}()

		<-done
	})
}
