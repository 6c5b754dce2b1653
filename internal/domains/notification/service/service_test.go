package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"insurai/config"
	"insurai/infras/kafka"
	kafkaMocks "insurai/infras/kafka/mocks"
	otelMocks "insurai/infras/otel/mocks"
	"insurai/infras/prometheus"
	"insurai/internal/domains/notification/mocks"
	"insurai/internal/domains/notification/model"
	"insurai/internal/domains/notification/model/dto"
	"insurai/internal/domains/notification/service"
	cacheMocks "insurai/shared/cache/mocks"
	"insurai/shared/clock"
	gDto "insurai/shared/dto"
	"insurai/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)

type fixture struct {
	repo  *mocks.MockInbox
	kafka *kafkaMocks.MockClient
	cache *cacheMocks.MockRedisCache
	svc   service.Sink
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Kafka.Topics.Notification = "appointment-notifications"
	cfg.Kafka.PublishTimeoutMS = 50
	cfg.Metrics.Enable = true
	cfg.Metrics.Namespace = "insurai_test"

	f := fixture{
		repo:  mocks.NewMockInbox(ctrl),
		kafka: kafkaMocks.NewMockClient(ctrl),
		cache: cacheMocks.NewMockRedisCache(ctrl),
	}

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, f.kafka, prometheus.New(cfg), clock.NewFixed(fixedNow), cfg, f.cache, otelMocks.NewOtel())

	return f
}

func TestSink_Emit(t *testing.T) {
	appointmentID := "a-1"
	event := model.Event{
		RecipientID:   "3",
		Title:         "Appointment Booked Successfully",
		Body:          "body",
		Kind:          model.KindBooking,
		AppointmentID: &appointmentID,
	}

	tests := []struct {
		name      string
		event     model.Event
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name:  "stored and published",
			event: event,
			setupMock: func(f fixture) {
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, n model.Notification) error {
					assert.Equal(t, "3", n.UserID)
					assert.Equal(t, model.KindBooking, n.Type)
					assert.False(t, n.IsRead)
					assert.Equal(t, fixedNow, n.CreatedAt)
					require.NotNil(t, n.AppointmentID)
					assert.Equal(t, "a-1", *n.AppointmentID)

					return nil
				})
				f.kafka.EXPECT().SendMessages(gomock.Any(), "appointment-notifications", gomock.Any()).DoAndReturn(
					func(_ context.Context, _ string, messages ...kafka.Message) error {
						require.Len(t, messages, 1)
						assert.Equal(t, "3", messages[0].Key)

						payload, ok := messages[0].Value.(dto.CreatedEvent)
						require.True(t, ok)
						assert.Equal(t, dto.EventTypeCreated, payload.Type)
						assert.Equal(t, model.KindBooking, payload.Notification.Type)

						return nil
					})
			},
		},
		{
			name:  "publish failure is not returned",
			event: event,
			setupMock: func(f fixture) {
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
				f.kafka.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
			},
		},
		{
			name:  "stalled broker is bounded",
			event: event,
			setupMock: func(f fixture) {
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
				f.kafka.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
					func(ctx context.Context, _ string, _ ...kafka.Message) error {
						_, ok := ctx.Deadline()
						assert.True(t, ok)

						<-ctx.Done()

						return ctx.Err()
					})
			},
		},
		{
			name:  "store failure",
			event: event,
			setupMock: func(f fixture) {
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
			},
			wantCode: http.StatusInternalServerError,
		},
		{
			name:      "missing recipient",
			event:     model.Event{Title: "x", Kind: model.KindReminder},
			setupMock: func(_ fixture) {},
			wantCode:  http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			start := time.Now()
			got, err := f.svc.Emit(context.Background(), tt.event)

			assert.Less(t, time.Since(start), time.Second)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, tt.event.Title, got.Title)
		})
	}
}

func TestSink_ListByUser(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
		_, args := filter.GetWhereClause()
		assert.Equal(t, "3", args[model.FieldUserID])
		assert.Equal(t, false, args["unread"])

		return 11, nil
	})
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Notification, error) {
			assert.Equal(t, "notifications.created_at", params.SortBy)
			assert.Equal(t, gDto.SortDirDesc, params.SortDir)

			return []model.Notification{{ID: "n-1", UserID: "3", CreatedAt: fixedNow}}, nil
		})

	res, err := f.svc.ListByUser(context.Background(), "3", gDto.QueryParams{Page: 1, Limit: 10}, true)

	require.NoError(t, err)
	assert.Equal(t, 11, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
	require.Len(t, res.Notifications, 1)
	assert.Equal(t, "n-1", res.Notifications[0].ID)
}

func TestSink_CountUnread(t *testing.T) {
	t.Run("cache hit", func(t *testing.T) {
		f := newFixture(t)
		f.cache.EXPECT().Get(gomock.Any(), "notification:unread:3", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, dest any) error {
			*(dest.(*int)) = 4

			return nil
		})

		got, err := f.svc.CountUnread(context.Background(), "3")

		require.NoError(t, err)
		assert.Equal(t, 4, got)
	})

	t.Run("cache miss", func(t *testing.T) {
		f := newFixture(t)
		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis: nil"))
		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(2, nil)

		got, err := f.svc.CountUnread(context.Background(), "3")

		require.NoError(t, err)
		assert.Equal(t, 2, got)
	})
}

func TestSink_MarkRead(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name: "unread becomes read",
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Notification{ID: "n-1", UserID: "3"}, nil)
				f.repo.EXPECT().UpdateAffected(gomock.Any(), map[string]any{model.FieldIsRead: true}, gomock.Any()).Return(int64(1), nil)
			},
		},
		{
			name: "already read is a no-op",
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Notification{ID: "n-1", UserID: "3", IsRead: true}, nil)
			},
		},
		{
			name: "unknown notification",
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Notification{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			err := f.svc.MarkRead(context.Background(), "n-1")

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestSink_MarkAllRead(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().UpdateAffected(gomock.Any(), map[string]any{model.FieldIsRead: true}, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ map[string]any, filter gDto.FilterGroup) (int64, error) {
			where, _ := filter.GetWhereClause()
			assert.Contains(t, where, "notifications.is_read = :unread")

			return 5, nil
		})

	got, err := f.svc.MarkAllRead(context.Background(), "3")

	require.NoError(t, err)
	assert.Equal(t, int64(5), got)
}
