package appointment

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	otelMocks "insurai/infras/otel/mocks"
	"insurai/internal/domains/appointment/mocks"
	"insurai/internal/domains/appointment/model/dto"
	gDto "insurai/shared/dto"
	"insurai/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func setup(t *testing.T) (*mocks.MockEngine, http.Handler) {
	t.Helper()

	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)

	handler := New(engine, otelMocks.NewOtel())
	router := chi.NewRouter()
	handler.Router(router)

	return engine, router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestBookAppointment(t *testing.T) {
	t.Run("booked", func(t *testing.T) {
		engine, router := setup(t)

		engine.EXPECT().
			Book(gomock.Any(), "c-1", dto.BookAppointmentRequest{AgentID: "a-1", AppointmentDateTime: "2024-06-10T09:00", Reason: "Policy review"}).
			Return(dto.AppointmentResponse{ID: "ap-1", Status: "PENDING"}, nil)

		rec := serve(router, http.MethodPost, "/customers/c-1/appointments",
			`{"agent_id":"a-1","appointment_date_time":"2024-06-10T09:00","reason":"Policy review"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"PENDING"`)
	})

	t.Run("slot taken", func(t *testing.T) {
		engine, router := setup(t)

		engine.EXPECT().Book(gomock.Any(), "c-1", gomock.Any()).Return(dto.AppointmentResponse{}, failure.Conflict("slot already booked"))

		rec := serve(router, http.MethodPost, "/customers/c-1/appointments",
			`{"agent_id":"a-1","appointment_date_time":"2024-06-10T09:00"}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "slot already booked")
	})

	t.Run("malformed body", func(t *testing.T) {
		_, router := setup(t)

		rec := serve(router, http.MethodPost, "/customers/c-1/appointments", `{"agent_id":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListAppointments(t *testing.T) {
	engine, router := setup(t)

	engine.EXPECT().
		ListByCustomer(gomock.Any(), "c-1", gDto.QueryParams{Page: 2, Limit: 5}).
		Return(dto.GetAppointmentsResponse{TotalData: 6, TotalPage: 2}, nil)
	engine.EXPECT().
		ListByAgent(gomock.Any(), "a-1", gDto.QueryParams{Page: 1, Limit: 10, SortBy: "status", SortDir: "ASC"}).
		Return(dto.GetAppointmentsResponse{}, nil)

	rec := serve(router, http.MethodGet, "/customers/c-1/appointments?page=2&limit=5", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_page":2`)

	rec = serve(router, http.MethodGet, "/agents/a-1/appointments?sort_by=status&sort_dir=asc", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetAppointment(t *testing.T) {
	engine, router := setup(t)

	engine.EXPECT().Get(gomock.Any(), "ap-1").Return(dto.AppointmentResponse{ID: "ap-1"}, nil)
	engine.EXPECT().Get(gomock.Any(), "nope").Return(dto.AppointmentResponse{}, failure.NotFound("appointment not found"))

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/appointments/ap-1", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/appointments/nope", "").Code)
}

func TestUpdateStatus(t *testing.T) {
	engine, router := setup(t)

	engine.EXPECT().UpdateStatus(gomock.Any(), "ap-1", "confirmed").Return(dto.AppointmentResponse{ID: "ap-1", Status: "APPROVED"}, nil)
	engine.EXPECT().UpdateStatus(gomock.Any(), "ap-1", "bogus").Return(dto.AppointmentResponse{}, failure.InvalidStatus("invalid status"))
	engine.EXPECT().UpdateStatus(gomock.Any(), "ap-2", "CANCELLED").Return(dto.AppointmentResponse{}, failure.Conflict("status transition not allowed"))

	rec := serve(router, http.MethodPut, "/appointments/ap-1/status?status=confirmed", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"APPROVED"`)

	assert.Equal(t, http.StatusUnprocessableEntity, serve(router, http.MethodPut, "/appointments/ap-1/status?status=bogus", "").Code)
	assert.Equal(t, http.StatusConflict, serve(router, http.MethodPut, "/appointments/ap-2/status?status=CANCELLED", "").Code)
}
