package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"insurai/infras/otel"
	"insurai/infras/postgres"
	"insurai/internal/domains/appointment/model"
	"insurai/shared/constant"
	gDto "insurai/shared/dto"
	"insurai/shared/failure"
	gRepo "insurai/shared/repository"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const ErrSlotBooked = "slot already booked"

type Ledger interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Appointment) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Appointment, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Appointment, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	ExistTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) (bool, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateAffected(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
	WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	LockTx(ctx context.Context, sqltx *sqlx.Tx, key string) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Appointment]
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Ledger {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Appointment](model.EntityName, model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

// InsertTx reports a Conflict when the (agent, instant) unique index rejects the row.
func (r *repositoryImpl) InsertTx(ctx context.Context, sqltx *sqlx.Tx, appointment model.Appointment) error {
	err := r.Repository.InsertTx(ctx, sqltx, appointment)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == constant.PqErrorCodeUniqueViolation {
		return failure.Conflict(ErrSlotBooked)
	}

	return err //nolint:wrapcheck
}

// LockTx takes a transaction scoped advisory lock on key. It is released on commit or rollback.
func (r *repositoryImpl) LockTx(ctx context.Context, sqltx *sqlx.Tx, key string) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".appointment.LockTx")
	defer scope.End()

	if _, err := sqltx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key); err != nil {
		scope.TraceError(err)

		return fmt.Errorf("failed to take booking lock: %w", err)
	}

	return nil
}
