package shared_test

import (
	"context"
	"errors"
	"testing"

	"insurai/shared"
	"insurai/shared/cache/mocks"
	"insurai/shared/dto"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestCalculateTotalPage(t *testing.T) {
	assert.Equal(t, 1, shared.CalculateTotalPage(0, 10))
	assert.Equal(t, 1, shared.CalculateTotalPage(100, 0))
	assert.Equal(t, 10, shared.CalculateTotalPage(100, 10))
	assert.Equal(t, 11, shared.CalculateTotalPage(101, 10))
}

func TestFilterByID(t *testing.T) {
	result := shared.FilterByID("slot-1", "id", "agent_availability")

	assert.Equal(t, dto.FilterGroup{
		Filters: []any{
			dto.Filter{Field: "id", Value: "slot-1", Operator: dto.FilterOperatorEq, Table: "agent_availability"},
		},
	}, result)
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "slot:all", shared.BuildCacheKey("slot:all"))
	assert.Equal(t, "slot:agent:a-1", shared.BuildCacheKey("slot:agent", "a-1"))
	assert.Equal(t, "appointment:list:customer:c-1", shared.BuildCacheKey("appointment:list", "customer", "c-1"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	req := dto.QueryParams{Page: 1, Limit: 10}
	filterA := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters:  []any{dto.Filter{Field: "user_id", Value: "u-1", Operator: dto.FilterOperatorEq}},
	}
	filterB := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters:  []any{dto.Filter{Field: "user_id", Value: "u-2", Operator: dto.FilterOperatorEq}},
	}

	keyA := shared.BuildCacheKeyWithQuery("notification:list", req, filterA)

	assert.Equal(t, keyA, shared.BuildCacheKeyWithQuery("notification:list", req, filterA))
	assert.NotEqual(t, keyA, shared.BuildCacheKeyWithQuery("notification:list", req, filterB))
	assert.NotEqual(t, keyA, shared.BuildCacheKeyWithQuery("notification:list", dto.QueryParams{Page: 2, Limit: 10}, filterA))
	assert.Contains(t, keyA, "notification:list:1:10:")
}

func TestInvalidateCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCache := mocks.NewMockRedisCache(ctrl)
	mockCache.EXPECT().Clear(gomock.Any(), "slot:all*").Return(nil)
	mockCache.EXPECT().Clear(gomock.Any(), "slot:agent*").Return(errors.New("redis down"))

	shared.InvalidateCaches(context.Background(), mockCache, "slot:all")
	shared.InvalidateCaches(context.Background(), mockCache, "slot:agent")
}
