package storage

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		err   error
		want  error
		name  string
		isNil bool
		plain bool
	}{
		{name: "nil", err: nil, isNil: true},
		{name: "no rows", err: sql.ErrNoRows, want: common.ErrNotFound},
		{name: "pq unique", err: &pq.Error{Code: "23505", Constraint: "users_email_key"}, want: common.ErrDuplicateEntry},
		{name: "pq foreign key", err: &pq.Error{Code: "23503"}, want: common.ErrForeignKey},
		{name: "pq other", err: &pq.Error{Code: "42P01"}, plain: true},
		{name: "sqlite unique", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, want: common.ErrDuplicateEntry},
		{name: "sqlite primary key", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, want: common.ErrDuplicateEntry},
		{name: "sqlite foreign key", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, want: common.ErrForeignKey},
		{name: "other", err: boom, want: boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "op")
			if tt.isNil {
				assert.NoError(t, got)
				return
			}
			require.Error(t, got)
			assert.Contains(t, got.Error(), "op")
			if tt.plain {
				assert.False(t, errors.Is(got, common.ErrDuplicateEntry))
				assert.False(t, errors.Is(got, common.ErrForeignKey))
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func newMockStorage(t *testing.T, driver string) (*SQLStorage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWithDB(sqlx.NewDb(db, driver), logger), mock
}

func TestPostgresPlaceholders(t *testing.T) {
	store, mock := newMockStorage(t, DriverPostgres)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM user_active_categories WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := store.DeleteActiveCategories(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLitePlaceholders(t *testing.T) {
	store, mock := newMockStorage(t, DriverSQLite)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \?`).
		WithArgs("user-1").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetUserByID(ctx, "user-1")
	assert.ErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStorageFailuresPropagate(t *testing.T) {
	store, mock := newMockStorage(t, DriverPostgres)
	ctx := context.Background()
	boom := errors.New("connection reset")

	mock.ExpectExec(`INSERT INTO user_active_categories`).WillReturnError(boom)

	sel := model.CategorySelection{Revenue: []string{"r1"}, Expense: []string{"d1"}}
	err := store.InsertActiveCategories(ctx, sel.Associations("user-1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUniqueViolationFromPostgres(t *testing.T) {
	store, mock := newMockStorage(t, DriverPostgres)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	err := store.CreateUser(ctx, &model.User{
		ExternalID: "ext",
		Name:       "Ana",
		Email:      "ana@example.com",
		ExpiresAt:  sqlmockNow(),
	})
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionCommitAndRollback(t *testing.T) {
	store, mock := newMockStorage(t, DriverPostgres)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM user_active_categories`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	_, err = tx.DeleteActiveCategories(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	mock.ExpectBegin()
	mock.ExpectCommit()
	tx, err = store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	require.NoError(t, mock.ExpectationsWereMet())
}

func sqlmockNow() time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}
