package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"insurai/infras/otel"
	"insurai/infras/postgres"
	"insurai/internal/domains/reminder/model"
	"insurai/shared"
	"insurai/shared/constant"
	gDto "insurai/shared/dto"
	gRepo "insurai/shared/repository"
)

// notReminded excludes appointments that already carry a delivery marker.
const notReminded = "NOT EXISTS (SELECT 1 FROM appointment_reminders r WHERE r.appointment_id = appointments.id)"

type Tracker interface {
	Due(ctx context.Context, from, to time.Time) ([]model.Due, error)
	Claim(ctx context.Context, appointmentID string, at time.Time) (bool, error)
	Release(ctx context.Context, appointmentID string) error
}

type repositoryImpl struct {
	deliveries gRepo.Repository[model.Delivery]
	due        gRepo.Repository[model.Due]
	otel       otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Tracker {
	return &repositoryImpl{
		deliveries: gRepo.NewRepository[model.Delivery](model.EntityName, model.TableName, model.FieldAppointmentID, db, otel),
		due:        gRepo.NewRepository[model.Due](model.EntityName+"_due", model.AppointmentTable, model.FieldID, db, otel),
		otel:       otel,
	}
}

// Due returns approved appointments strictly inside (from, to) that were never reminded.
func (r *repositoryImpl) Due(ctx context.Context, from, to time.Time) ([]model.Due, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reminder.Due")
	defer scope.End()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldStatus, Value: constant.StatusApproved, Operator: gDto.FilterOperatorEq, Table: model.AppointmentTable},
			gDto.Filter{ArgName: "window_start", Field: model.FieldAppointmentTime, Value: from, Operator: gDto.FilterOperatorGreater, Table: model.AppointmentTable},
			gDto.Filter{ArgName: "window_end", Field: model.FieldAppointmentTime, Value: to, Operator: gDto.FilterOperatorLess, Table: model.AppointmentTable},
			gDto.Filter{Value: notReminded, Operator: gDto.FilterPlainQuery},
		},
	}

	params := gDto.QueryParams{SortBy: model.AppointmentTable + "." + model.FieldAppointmentTime, SortDir: gDto.SortDirAsc}

	due, err := r.due.GetAll(ctx, params, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to select due reminders: %w", err)
	}

	return due, nil
}

// Claim records the delivery marker. It reports false when another sweep got there first.
func (r *repositoryImpl) Claim(ctx context.Context, appointmentID string, at time.Time) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reminder.Claim")
	defer scope.End()

	return r.deliveries.InsertIgnore(ctx, model.Delivery{AppointmentID: appointmentID, SentAt: at}) //nolint:wrapcheck
}

func (r *repositoryImpl) Release(ctx context.Context, appointmentID string) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reminder.Release")
	defer scope.End()

	return r.deliveries.Delete(ctx, shared.FilterByID(appointmentID, model.FieldAppointmentID, model.TableName)) //nolint:wrapcheck
}
