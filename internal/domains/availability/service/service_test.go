package service_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"insurai/config"
	otelMocks "insurai/infras/otel/mocks"
	"insurai/internal/domains/availability/mocks"
	"insurai/internal/domains/availability/model"
	"insurai/internal/domains/availability/model/dto"
	"insurai/internal/domains/availability/service"
	userMocks "insurai/internal/domains/user/mocks"
	userModel "insurai/internal/domains/user/model"
	cacheMocks "insurai/shared/cache/mocks"
	"insurai/shared/clock"
	"insurai/shared/constant"
	gDto "insurai/shared/dto"
	"insurai/shared/failure"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	agent7   = userModel.User{ID: "7", Email: "agent7@insurai.test", FullName: "Agent Seven", Role: constant.RoleAgent}
	customer = userModel.User{ID: "3", Email: "c3@insurai.test", FullName: "Customer Three", Role: constant.RoleCustomer}
	fixedNow = time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
)

type fixture struct {
	repo     *mocks.MockStore
	identity *userMocks.MockIdentity
	cache    *cacheMocks.MockRedisCache
	clock    *clock.Fixed
	svc      service.Manager
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		repo:     mocks.NewMockStore(ctrl),
		identity: userMocks.NewMockIdentity(ctrl),
		cache:    cacheMocks.NewMockRedisCache(ctrl),
		clock:    clock.NewFixed(fixedNow),
	}

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis: nil")).AnyTimes()
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, f.identity, f.clock, &config.Config{}, f.cache, otelMocks.NewOtel())

	return f
}

func slotAt(id, day string, startHour, endHour int) model.Slot {
	date, _ := time.Parse(constant.DateOnlyFormat, day)

	return model.Slot{
		ID:            id,
		AgentID:       agent7.ID,
		AvailableDate: date,
		StartTime:     time.Date(0, 1, 1, startHour, 0, 0, 0, time.UTC),
		EndTime:       time.Date(0, 1, 1, endHour, 0, 0, 0, time.UTC),
		IsAvailable:   true,
	}
}

func ids(slots []dto.SlotResponse) []string {
	res := make([]string, len(slots))
	for i, slot := range slots {
		res[i] = slot.ID
	}

	return res
}

func TestManager_Publish(t *testing.T) {
	tests := []struct {
		name      string
		agentID   string
		req       dto.PublishSlotRequest
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name:    "published",
			agentID: agent7.ID,
			req:     dto.PublishSlotRequest{AvailableDate: "2024-06-10", StartTime: "09:00", EndTime: "12:00"},
			setupMock: func(f fixture) {
				f.identity.EXPECT().Resolve(gomock.Any(), agent7.ID).Return(agent7, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, slot model.Slot) error {
					assert.True(t, slot.IsAvailable)
					assert.Equal(t, agent7.ID, slot.AgentID)
					assert.NotEmpty(t, slot.ID)

					return nil
				})
			},
		},
		{
			name:      "end before start",
			agentID:   agent7.ID,
			req:       dto.PublishSlotRequest{AvailableDate: "2024-06-10", StartTime: "12:00", EndTime: "09:00"},
			setupMock: func(_ fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "equal start and end",
			agentID:   agent7.ID,
			req:       dto.PublishSlotRequest{AvailableDate: "2024-06-10", StartTime: "09:00", EndTime: "09:00"},
			setupMock: func(_ fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "malformed date",
			agentID:   agent7.ID,
			req:       dto.PublishSlotRequest{AvailableDate: "10/06/2024", StartTime: "09:00", EndTime: "12:00"},
			setupMock: func(_ fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:    "unknown agent",
			agentID: "404",
			req:     dto.PublishSlotRequest{AvailableDate: "2024-06-10", StartTime: "09:00", EndTime: "12:00"},
			setupMock: func(f fixture) {
				f.identity.EXPECT().Resolve(gomock.Any(), "404").Return(userModel.User{}, failure.NotFound("user not found"))
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:    "user is not an agent",
			agentID: customer.ID,
			req:     dto.PublishSlotRequest{AvailableDate: "2024-06-10", StartTime: "09:00", EndTime: "12:00"},
			setupMock: func(f fixture) {
				f.identity.EXPECT().Resolve(gomock.Any(), customer.ID).Return(customer, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:    "store failure",
			agentID: agent7.ID,
			req:     dto.PublishSlotRequest{AvailableDate: "2024-06-10", StartTime: "09:00", EndTime: "12:00"},
			setupMock: func(f fixture) {
				f.identity.EXPECT().Resolve(gomock.Any(), agent7.ID).Return(agent7, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Publish(context.Background(), tt.agentID, tt.req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "2024-06-10", res.AvailableDate)
			assert.Equal(t, "09:00", res.StartTime)
			assert.Equal(t, "12:00", res.EndTime)
			assert.True(t, res.IsAvailable)
		})
	}
}

// memoryStore backs the mocked Store with a map so publish and list observe each other.
type memoryStore struct {
	mu    sync.Mutex
	slots map[string]model.Slot
}

func (m *memoryStore) wire(repo *mocks.MockStore) {
	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, slot model.Slot) error {
		m.mu.Lock()
		defer m.mu.Unlock()

		m.slots[slot.ID] = slot

		return nil
	}).AnyTimes()

	repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Slot, error) {
			m.mu.Lock()
			defer m.mu.Unlock()

			_, args := filter.GetWhereClause()

			var res []model.Slot

			for _, slot := range m.slots {
				if agentID, ok := args[model.FieldAgentID]; ok && agentID != slot.AgentID {
					continue
				}

				if slot.IsAvailable {
					res = append(res, slot)
				}
			}

			return res, nil
		}).AnyTimes()
}

func TestManager_PublishThenListAvailable(t *testing.T) {
	f := newFixture(t)
	store := &memoryStore{slots: map[string]model.Slot{}}
	store.wire(f.repo)

	f.identity.EXPECT().Resolve(gomock.Any(), agent7.ID).Return(agent7, nil).Times(2)

	published, err := f.svc.Publish(context.Background(), agent7.ID, dto.PublishSlotRequest{
		AvailableDate: "2024-06-10",
		StartTime:     "09:00",
		EndTime:       "12:00",
	})
	require.NoError(t, err)

	listed, err := f.svc.ListAvailable(context.Background(), agent7.ID)
	require.NoError(t, err)

	require.Len(t, listed, 1)
	assert.Equal(t, published.ID, listed[0].ID)
	assert.Equal(t, "2024-06-10", listed[0].AvailableDate)
	assert.Equal(t, "09:00", listed[0].StartTime)
	assert.Equal(t, "12:00", listed[0].EndTime)
	assert.True(t, listed[0].IsAvailable)
}

func TestManager_ListAvailable_UnknownAgent(t *testing.T) {
	f := newFixture(t)
	f.identity.EXPECT().Resolve(gomock.Any(), "404").Return(userModel.User{}, failure.NotFound("user not found"))

	_, err := f.svc.ListAvailable(context.Background(), "404")

	assert.True(t, failure.Is(err, http.StatusNotFound))
}

func TestManager_ListAvailable_KeepsPastSlots(t *testing.T) {
	f := newFixture(t)
	f.identity.EXPECT().Resolve(gomock.Any(), agent7.ID).Return(agent7, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Slot{slotAt("past", "2024-06-01", 9, 10)}, nil)

	res, err := f.svc.ListAvailable(context.Background(), agent7.ID)

	require.NoError(t, err)
	assert.Equal(t, []string{"past"}, ids(res))
}

func TestManager_Query_DropsExpiredSlots(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Slot, error) {
			_, args := filter.GetWhereClause()
			assert.Equal(t, true, args["still_available"])
			assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), args["range_start"])
			assert.Equal(t, time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC), args["range_end"])

			return []model.Slot{
				slotAt("earlier-today", "2024-06-10", 9, 12),
				slotAt("starts-now", "2024-06-10", 10, 11),
				slotAt("tomorrow", "2024-06-11", 9, 10),
			}, nil
		})

	res, err := f.svc.Query(context.Background(), dto.QuerySlotsRequest{StartDate: "2024-06-10", EndDate: "2024-06-11"})

	require.NoError(t, err)
	assert.Equal(t, []string{"starts-now", "tomorrow"}, ids(res))
}

func TestManager_Query_InvalidRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Query(context.Background(), dto.QuerySlotsRequest{StartDate: "2024-06-11", EndDate: "2024-06-10"})
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))

	_, err = f.svc.Query(context.Background(), dto.QuerySlotsRequest{StartDate: "2024-06-11"})
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestManager_QueryAll_DropsExpiredSlots(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Slot{
		slotAt("yesterday", "2024-06-09", 14, 15),
		slotAt("later-today", "2024-06-10", 15, 16),
	}, nil)

	res, err := f.svc.QueryAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"later-today"}, ids(res))
}

func TestManager_Search(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().Search(gomock.Any(), time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 10, 11, 30, 0, 0, time.UTC)).
		Return([]model.SlotWithAgent{
			{Slot: slotAt("expired", "2024-06-10", 9, 12), AgentName: agent7.FullName, AgentEmail: agent7.Email},
			{Slot: slotAt("open", "2024-06-10", 11, 13), AgentName: agent7.FullName, AgentEmail: agent7.Email},
		}, nil)

	res, err := f.svc.Search(context.Background(), dto.SearchSlotsRequest{Date: "2024-06-10", Time: "11:30"})

	require.NoError(t, err)
	assert.True(t, res.HasAvailableAgents)
	assert.Equal(t, "Found 1 available agent(s)", res.Message)
	require.Len(t, res.Slots, 1)
	assert.Equal(t, "open", res.Slots[0].ID)
	assert.Equal(t, agent7.FullName, res.Slots[0].AgentName)
}

func TestManager_Search_NoAgents(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	res, err := f.svc.Search(context.Background(), dto.SearchSlotsRequest{Date: "2024-06-12", Time: "08:00"})

	require.NoError(t, err)
	assert.False(t, res.HasAvailableAgents)
	assert.Equal(t, "No agents available at the requested date and time", res.Message)
	assert.Empty(t, res.Slots)
}

func TestManager_Update(t *testing.T) {
	available := false
	req := dto.UpdateSlotRequest{AvailableDate: "2024-06-12", StartTime: "13:00", EndTime: "15:30", IsAvailable: &available}

	t.Run("overwrites every field", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(slotAt("s-1", "2024-06-10", 9, 12), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, changes map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, false, changes[model.FieldIsAvailable])
				assert.Equal(t, fixedNow, changes[model.FieldUpdatedAt])
				assert.Len(t, changes, 5)

				return nil
			})

		res, err := f.svc.Update(context.Background(), "s-1", req)

		require.NoError(t, err)
		assert.Equal(t, "2024-06-12", res.AvailableDate)
		assert.Equal(t, "13:00", res.StartTime)
		assert.Equal(t, "15:30", res.EndTime)
		assert.False(t, res.IsAvailable)
	})

	t.Run("unknown slot", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Slot{}, nil)

		_, err := f.svc.Update(context.Background(), "missing", req)

		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("missing availability flag", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Update(context.Background(), "s-1", dto.UpdateSlotRequest{AvailableDate: "2024-06-12", StartTime: "13:00", EndTime: "15:30"})

		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestManager_Delete_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	store := map[string]model.Slot{"s-1": slotAt("s-1", "2024-06-10", 9, 12)}

	f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) error {
		_, args := filter.GetWhereClause()
		delete(store, args[model.FieldID].(string))

		return nil
	}).Times(2)

	assert.NoError(t, f.svc.Delete(context.Background(), "s-1"))
	assert.NoError(t, f.svc.Delete(context.Background(), "s-1"))
	assert.NotContains(t, store, "s-1")
}

func TestManager_Consume(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(f fixture)
		wantCode  int
	}{
		{
			name: "consumed",
			setupMock: func(f fixture) {
				f.repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
			},
		},
		{
			name: "missing slot",
			setupMock: func(f fixture) {
				f.repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Slot{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "already consumed",
			setupMock: func(f fixture) {
				f.repo.EXPECT().UpdateAffected(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(slotAt("s-1", "2024-06-10", 9, 12), nil)
			},
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			err := f.svc.Consume(context.Background(), "s-1")

			if tt.wantCode == 0 {
				assert.NoError(t, err)

				return
			}

			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestManager_ConsumeTx(t *testing.T) {
	consumed := slotAt("s-1", "2024-06-10", 9, 12)
	consumed.IsAvailable = false

	tests := []struct {
		name      string
		agentID   string
		slot      model.Slot
		expectUpd bool
		wantCode  int
	}{
		{name: "consumed", agentID: agent7.ID, slot: slotAt("s-1", "2024-06-10", 9, 12), expectUpd: true},
		{name: "missing", agentID: agent7.ID, slot: model.Slot{}, wantCode: http.StatusNotFound},
		{name: "other agent", agentID: "8", slot: slotAt("s-1", "2024-06-10", 9, 12), wantCode: http.StatusBadRequest},
		{name: "already consumed", agentID: agent7.ID, slot: consumed, wantCode: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tx := &sqlx.Tx{}

			f.repo.EXPECT().GetForUpdateTx(gomock.Any(), tx, gomock.Any()).Return(tt.slot, nil)
			if tt.expectUpd {
				f.repo.EXPECT().UpdateTx(gomock.Any(), tx, gomock.Any(), gomock.Any()).Return(nil)
			}

			err := f.svc.ConsumeTx(context.Background(), tx, tt.agentID, "s-1")

			if tt.wantCode == 0 {
				assert.NoError(t, err)

				return
			}

			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}
