package sqlstore

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/formbff/internal/domain/model"
)

// newMockRepo wires a RecordRepo to a sqlmock connection so driver failures
// can be injected.
func newMockRepo(t *testing.T) (*RecordRepo, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db := sqlx.NewDb(conn, "sqlmock")
	return NewRecordRepo(&DB{Writer: db, Reader: db, Driver: DriverSQLite}), mock
}

func TestRecordRepo_ListAll_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM users").WillReturnError(errors.New("disk I/O error"))

	_, err := repo.ListAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list records")
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepo_ListAll_BadTimestamp(t *testing.T) {
	repo, mock := newMockRepo(t)
	rows := sqlmock.NewRows([]string{"id", "name", "email", "created_at", "updated_at"}).
		AddRow(1, "Alice", "alice@example.com", "not a time", "not a time")
	mock.ExpectQuery("SELECT (.+) FROM users").WillReturnRows(rows)

	_, err := repo.ListAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse created_at")
}

func TestRecordRepo_Insert_ExecError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Alice", "alice@example.com", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("database is locked"))

	_, err := repo.Insert(context.Background(), model.Record{Name: "Alice", Email: "alice@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepo_Delete_ExecError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("DELETE FROM users").WithArgs(int64(7)).WillReturnError(errors.New("connection reset"))

	removed, err := repo.Delete(context.Background(), 7)
	require.Error(t, err)
	assert.False(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepo_Ping_Error(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db := sqlx.NewDb(conn, "sqlmock")
	repo := NewRecordRepo(&DB{Writer: db, Reader: db, Driver: DriverSQLite})

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	err = repo.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
