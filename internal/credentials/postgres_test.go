package credentials

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreWithMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	store, err := NewPostgresStore(context.Background(), db)
	require.NoError(t, err)
	return store, mock
}

func TestNewPostgresStoreRequiresDB(t *testing.T) {
	_, err := NewPostgresStore(context.Background(), nil)
	assert.Error(t, err)
}

func TestPostgresStoreLookup(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectQuery(`SELECT user_id, password_hash, salt FROM users WHERE user_id = \$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "password_hash", "salt"}).
			AddRow("alice", "hash", "salt"))

	cred, err := store.Lookup(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, Credential{UserID: "alice", PasswordHash: "hash", Salt: "salt"}, cred)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreLookupNotFound(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectQuery(`SELECT user_id, password_hash, salt FROM users`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Lookup(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreLookupFailure(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectQuery(`SELECT user_id, password_hash, salt FROM users`).
		WithArgs("alice").
		WillReturnError(errors.New("connection reset"))

	_, err := store.Lookup(context.Background(), "alice")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestPostgresStoreInsert(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("alice", "hash", "salt").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.Insert(context.Background(), Credential{UserID: "alice", PasswordHash: "hash", Salt: "salt"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreInsertDuplicate(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("alice", "hash", "salt").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_pkey"})

	err := store.Insert(context.Background(), Credential{UserID: "alice", PasswordHash: "hash", Salt: "salt"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestPostgresStoreInsertOtherError(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("alice", "hash", "salt").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.DiskFull})

	err := store.Insert(context.Background(), Credential{UserID: "alice", PasswordHash: "hash", Salt: "salt"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateKey)
}

func TestPostgresStoreInsertRequiresFields(t *testing.T) {
	store, _ := newStoreWithMock(t)
	assert.Error(t, store.Insert(context.Background(), Credential{UserID: "alice"}))
}
