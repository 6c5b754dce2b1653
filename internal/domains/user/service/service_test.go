package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"insurai/config"
	otelMocks "insurai/infras/otel/mocks"
	"insurai/internal/domains/user/mocks"
	"insurai/internal/domains/user/model"
	"insurai/internal/domains/user/service"
	cacheMocks "insurai/shared/cache/mocks"
	"insurai/shared/constant"
	"insurai/shared/failure"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestIdentity_Resolve(t *testing.T) {
	agent := model.User{ID: "agent-7", Email: "agent7@insurai.test", FullName: "Agent Seven", Role: constant.RoleAgent}

	tests := []struct {
		name      string
		id        string
		setupMock func(repo *mocks.MockUser, cache *cacheMocks.MockRedisCache)
		want      model.User
		wantCode  int
	}{
		{
			name: "resolved from store",
			id:   "agent-7",
			setupMock: func(repo *mocks.MockUser, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), "user:get:agent-7", gomock.Any()).Return(errors.New("redis: nil"))
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(agent, nil)
				cache.EXPECT().Save(gomock.Any(), "user:get:agent-7", agent, gomock.Any()).Return(nil).AnyTimes()
			},
			want: agent,
		},
		{
			name: "resolved from cache",
			id:   "agent-7",
			setupMock: func(_ *mocks.MockUser, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), "user:get:agent-7", gomock.Any()).DoAndReturn(
					func(_ context.Context, _ string, value any) error {
						*(value.(*model.User)) = agent

						return nil
					})
			},
			want: agent,
		},
		{
			name: "unknown user",
			id:   "ghost",
			setupMock: func(repo *mocks.MockUser, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis: nil"))
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:      "empty id",
			id:        "",
			setupMock: func(_ *mocks.MockUser, _ *cacheMocks.MockRedisCache) {},
			wantCode:  http.StatusNotFound,
		},
		{
			name: "store failure",
			id:   "agent-7",
			setupMock: func(repo *mocks.MockUser, cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis: nil"))
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, errors.New("connection refused"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := mocks.NewMockUser(ctrl)
			cache := cacheMocks.NewMockRedisCache(ctrl)
			tt.setupMock(repo, cache)

			svc := service.New(repo, &config.Config{}, cache, otelMocks.NewOtel())

			got, err := svc.Resolve(context.Background(), tt.id)

			if tt.wantCode != 0 {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Agent Seven", model.User{FullName: "Agent Seven", Email: "a@b.c"}.DisplayName())
	assert.Equal(t, "a@b.c", model.User{Email: "a@b.c"}.DisplayName())
	assert.True(t, model.User{Role: constant.RoleAgent}.IsAgent())
	assert.False(t, model.User{Role: constant.RoleCustomer}.IsAgent())
}
