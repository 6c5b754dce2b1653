package repository_test

import (
	"context"
	"testing"
	"time"

	"insurai/infras/otel/mocks"
	"insurai/infras/postgres"
	"insurai/internal/domains/notification/model"
	"insurai/internal/domains/notification/repository"
	gDto "insurai/shared/dto"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInbox(t *testing.T) (repository.Inbox, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")

	return repository.New(&postgres.Connection{Read: sqlxDB, Write: sqlxDB}, mocks.NewOtel()), mock
}

func TestInbox_Insert(t *testing.T) {
	inbox, mock := newInbox(t)

	created := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	appointmentID := "a-1"

	mock.ExpectExec(`INSERT INTO notifications \(id, user_id, title, message, type, is_read, appointment_id, created_at\) VALUES \(\?, \?, \?, \?, \?, \?, \?, \?\)`).
		WithArgs("n-1", "3", "title", "body", model.KindBooking, false, "a-1", created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := inbox.Insert(context.Background(), model.Notification{
		ID:            "n-1",
		UserID:        "3",
		Title:         "title",
		Message:       "body",
		Type:          model.KindBooking,
		AppointmentID: &appointmentID,
		CreatedAt:     created,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInbox_CountUnread(t *testing.T) {
	inbox, mock := newInbox(t)

	mock.ExpectPrepare(`SELECT COUNT\(notifications\.id\) FROM notifications\s+WHERE \(notifications\.user_id = \? AND notifications\.is_read = \?\)`).
		ExpectQuery().
		WithArgs("3", false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	got, err := inbox.Count(context.Background(), gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldUserID, Value: "3", Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{ArgName: "unread", Field: model.FieldIsRead, Value: false, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
