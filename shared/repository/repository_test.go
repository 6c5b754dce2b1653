package repository_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurai/infras/otel/mocks"
	"insurai/infras/postgres"
	"insurai/shared/dto"
	"insurai/shared/model"
	"insurai/shared/repository"
)

type widget struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	OwnerName string `db:"owner_name" table:"owners" column:"full_name"`
	model.Metadata
}

func (widget) GetJoinQuery() string {
	return "JOIN owners ON owners.id = widgets.owner_id"
}

func newRepo(t *testing.T) (repository.Repository[widget], sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")

	return repository.NewRepository[widget]("widget", "widgets", "id", &postgres.Connection{Read: sqlxDB, Write: sqlxDB}, mocks.NewOtel()), mock
}

func byName(name string) dto.FilterGroup {
	return dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters:  []any{dto.Filter{Field: "name", Value: name, Operator: dto.FilterOperatorEq, Table: "widgets"}},
	}
}

func TestNewRepository_InsertColumnsSkipJoinedFields(t *testing.T) {
	repo, _ := newRepo(t)

	assert.Equal(t, []string{"id", "name", "created_at", "updated_at"}, repo.InsertColumns)
}

func TestRepository_GetAll(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectPrepare(`SELECT widgets\.id, widgets\.name, owners\.full_name AS owner_name ` +
		`FROM widgets JOIN owners ON owners\.id = widgets\.owner_id WHERE \(widgets\.name = \?\) ORDER BY widgets\.name ASC LIMIT \? OFFSET \?`).
		ExpectQuery().
		WithArgs("bolt", int64(10), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_name"}).AddRow("w-1", "bolt", "Dana"))

	params := dto.QueryParams{Page: 2, Limit: 10}.Sorted("widgets", []string{"name"}, "name", dto.SortDirAsc)

	got, err := repo.GetAll(context.Background(), params, byName("bolt"), "id", "name", "full_name")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Dana", got[0].OwnerName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Get_NoRowsIsZeroValue(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectPrepare(`SELECT .* FROM widgets JOIN owners ON owners\.id = widgets\.owner_id WHERE \(widgets\.name = \?\)$`).
		ExpectQuery().
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_name", "created_at", "updated_at"}))

	got, err := repo.Get(context.Background(), byName("missing"))

	require.NoError(t, err)
	assert.Empty(t, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(`UPDATE widgets SET name = \?, updated_at = \? WHERE \(widgets\.name = \?\)`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	affected, err := repo.UpdateAffected(context.Background(), map[string]any{"updated_at": "now", "name": "nut"}, dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters:  []any{dto.Filter{ArgName: "old_name", Field: "name", Value: "bolt", Operator: dto.FilterOperatorEq, Table: "widgets"}},
	})

	require.NoError(t, err)
	assert.EqualValues(t, 2, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_WritesRequireFilter(t *testing.T) {
	repo, mock := newRepo(t)
	empty := dto.FilterGroup{Operator: dto.FilterGroupOperatorAnd}

	require.Error(t, repo.Delete(context.Background(), empty))
	require.Error(t, repo.Update(context.Background(), map[string]any{"name": "x"}, empty))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InsertIgnore(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(`INSERT INTO widgets \(id, name, created_at, updated_at\) VALUES \(\?, \?, \?, \?\) ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	written, err := repo.InsertIgnore(context.Background(), widget{ID: "w-1", Name: "bolt"})

	require.NoError(t, err)
	assert.False(t, written)
	assert.NoError(t, mock.ExpectationsWereMet())
}
