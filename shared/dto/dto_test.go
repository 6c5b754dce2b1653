package dto_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"insurai/shared/constant"
	"insurai/shared/dto"
	"insurai/shared/model"

	"github.com/stretchr/testify/assert"
)

func TestMetadata_FromModel(t *testing.T) {
	createdAt := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	updatedAt := time.Date(2024, 6, 2, 10, 30, 0, 0, time.UTC)

	metadata := &dto.Metadata{}
	metadata.FromModel(model.Metadata{CreatedAt: createdAt, UpdatedAt: updatedAt})

	assert.Equal(t, createdAt.Format(constant.DateFormat), metadata.CreatedAt)
	assert.Equal(t, updatedAt.Format(constant.DateFormat), metadata.UpdatedAt)
}

func TestFilter_GetWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		filter    dto.Filter
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "equal with table",
			filter:    dto.Filter{Field: "agent_id", Value: "a-1", Operator: dto.FilterOperatorEq, Table: "agent_availability"},
			wantWhere: "agent_availability.agent_id = :agent_id",
			wantArgs:  map[string]any{"agent_id": "a-1"},
		},
		{
			name:      "strict less with arg name",
			filter:    dto.Filter{ArgName: "window_end", Field: "appointment_date_time", Value: 10, Operator: dto.FilterOperatorLess},
			wantWhere: "appointment_date_time < :window_end",
			wantArgs:  map[string]any{"window_end": 10},
		},
		{
			name:      "strict greater",
			filter:    dto.Filter{Field: "end_time", Value: 5, Operator: dto.FilterOperatorGreater},
			wantWhere: "end_time > :end_time",
			wantArgs:  map[string]any{"end_time": 5},
		},
		{
			name:      "in slice",
			filter:    dto.Filter{Field: "status", Value: []string{"PENDING", "APPROVED"}, Operator: dto.FilterOperatorIn},
			wantWhere: "status IN (:status_0, :status_1)",
			wantArgs:  map[string]any{"status_0": "PENDING", "status_1": "APPROVED"},
		},
		{
			name:      "in single value",
			filter:    dto.Filter{Field: "status", Value: "PENDING", Operator: dto.FilterOperatorIn},
			wantWhere: "status IN (:status)",
			wantArgs:  map[string]any{"status": "PENDING"},
		},
		{
			name:      "unknown operator renders nothing",
			filter:    dto.Filter{Field: "status", Value: "PENDING", Operator: "like"},
			wantWhere: "",
			wantArgs:  map[string]any{},
		},
		{
			name:      "plain query",
			filter:    dto.Filter{Value: "NOT EXISTS (SELECT 1)", Operator: dto.FilterPlainQuery},
			wantWhere: "(NOT EXISTS (SELECT 1))",
			wantArgs:  map[string]any{},
		},
		{
			name:      "is null",
			filter:    dto.Filter{Field: "availability_id", Operator: dto.FilterIsNull},
			wantWhere: "availability_id IS NULL",
			wantArgs:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	group := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "user_id", Value: "u-1", Operator: dto.FilterOperatorEq},
			dto.FilterGroup{
				Operator: dto.FilterGroupOperatorOr,
				Filters: []any{
					dto.Filter{ArgName: "read_false", Field: "is_read", Value: false, Operator: dto.FilterOperatorEq},
					dto.Filter{Field: "appointment_id", Operator: dto.FilterIsNull},
				},
			},
		},
	}

	where, args := group.GetWhereClause()

	assert.Equal(t, "(user_id = :user_id AND (is_read = :read_false OR appointment_id IS NULL))", where)
	assert.Equal(t, map[string]any{"user_id": "u-1", "read_false": false}, args)

	empty := dto.FilterGroup{Operator: dto.FilterGroupOperatorAnd}
	where, args = empty.GetWhereClause()

	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		defaultRequest bool
		expected       dto.QueryParams
	}{
		{
			name:     "all parameters",
			query:    "?page=2&limit=20&sort_by=created_at&sort_dir=asc",
			expected: dto.QueryParams{Page: 2, Limit: 20, SortBy: "created_at", SortDir: dto.SortDirAsc},
		},
		{
			name:           "defaults applied",
			query:          "",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:     "limit capped",
			query:    "?limit=5000",
			expected: dto.QueryParams{Limit: constant.MaxValueLimit},
		},
		{
			name:     "invalid values ignored",
			query:    "?page=-1&limit=abc&sort_dir=sideways",
			expected: dto.QueryParams{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/users/u-1/notifications"+tt.query, nil)

			q := dto.QueryParams{}
			q.FromRequest(req, tt.defaultRequest)

			assert.Equal(t, tt.expected, q)
		})
	}
}

func TestQueryParams_Sorted(t *testing.T) {
	allowed := []string{"created_at", "status"}

	t.Run("allowed column keeps direction", func(t *testing.T) {
		q := dto.QueryParams{SortBy: "status", SortDir: dto.SortDirDesc}.Sorted("appointments", allowed, "appointment_date_time", dto.SortDirAsc)

		assert.Equal(t, "appointments.status", q.SortBy)
		assert.Equal(t, dto.SortDirDesc, q.SortDir)
	})

	t.Run("unknown column falls back", func(t *testing.T) {
		q := dto.QueryParams{SortBy: "id; DROP TABLE users", SortDir: dto.SortDirDesc}.Sorted("appointments", allowed, "appointment_date_time", dto.SortDirAsc)

		assert.Equal(t, "appointments.appointment_date_time", q.SortBy)
		assert.Equal(t, dto.SortDirAsc, q.SortDir)
	})

	t.Run("missing direction defaults", func(t *testing.T) {
		q := dto.QueryParams{SortBy: "created_at"}.Sorted("", allowed, "status", dto.SortDirAsc)

		assert.Equal(t, "created_at", q.SortBy)
		assert.Equal(t, dto.SortDirAsc, q.SortDir)
	})
}
