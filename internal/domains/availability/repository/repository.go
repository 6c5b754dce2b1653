package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"time"

	"insurai/infras/otel"
	"insurai/infras/postgres"
	"insurai/internal/domains/availability/model"
	"insurai/shared/constant"
	gDto "insurai/shared/dto"
	gRepo "insurai/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Store interface {
	Insert(ctx context.Context, model model.Slot) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Slot, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Slot, error)
	GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) (model.Slot, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateAffected(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	Search(ctx context.Context, date, at time.Time) ([]model.SlotWithAgent, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Slot]
	joined gRepo.Repository[model.SlotWithAgent]
	otel   otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Store {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Slot](model.EntityName, model.TableName, model.FieldID, db, otel),
		joined:     gRepo.NewRepository[model.SlotWithAgent](model.EntityName+"_agent", model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

// Search returns available slots on date whose window covers at, with the owning agent joined in.
func (r *repositoryImpl) Search(ctx context.Context, date, at time.Time) ([]model.SlotWithAgent, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".availability.Search")
	defer scope.End()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldIsAvailable, Value: true, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldAvailableDate, Value: date, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{ArgName: "search_start", Field: model.FieldStartTime, Value: at, Operator: gDto.FilterOperatorLessEq, Table: model.TableName},
			gDto.Filter{ArgName: "search_end", Field: model.FieldEndTime, Value: at, Operator: gDto.FilterOperatorGreater, Table: model.TableName},
		},
	}

	params := gDto.QueryParams{SortBy: model.TableName + "." + model.FieldStartTime, SortDir: gDto.SortDirAsc}

	return r.joined.GetAll(ctx, params, filter) //nolint:wrapcheck
}
