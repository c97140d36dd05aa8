package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njprem/fitcity-account-service/internal/repository/ports"
)

func TestResetTokenRepoCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResetTokenRepo(db)
	expires := time.Date(2026, 1, 1, 13, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO password_resets \(user_id, reset_token, expires_at\)`).
		WithArgs(int64(4), "tok", expires).
		WillReturnRows(sqlmock.NewRows(resetRowColumns).AddRow(int64(1), "tok", int64(4), expires, false, expires.Add(-time.Hour)))

	reset, err := repo.Create(context.Background(), 4, "tok", expires)
	require.NoError(t, err)
	assert.Equal(t, "tok", reset.Token)
	assert.Equal(t, int64(4), reset.UserID)
	assert.False(t, reset.Used)
}

func TestResetTokenRepoFindValid(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResetTokenRepo(db)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM password_resets\s+WHERE reset_token = \$1 AND used = FALSE AND expires_at > \$2`).
		WithArgs("tok", now).
		WillReturnRows(sqlmock.NewRows(resetRowColumns).AddRow(int64(1), "tok", int64(4), now.Add(time.Hour), false, now))

	reset, err := repo.FindValid(context.Background(), "tok", now)
	require.NoError(t, err)
	require.NotNil(t, reset)
	assert.True(t, reset.Valid(now))

	mock.ExpectQuery(`FROM password_resets`).
		WithArgs("missing", now).
		WillReturnRows(sqlmock.NewRows(resetRowColumns))

	reset, err = repo.FindValid(context.Background(), "missing", now)
	require.NoError(t, err)
	assert.Nil(t, reset)
}

func TestResetTokenRepoLockValidUsesRowLock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResetTokenRepo(db)
	now := time.Now()

	mock.ExpectQuery(`expires_at > \$2\s+FOR UPDATE`).
		WithArgs("tok", now).
		WillReturnRows(sqlmock.NewRows(resetRowColumns).AddRow(int64(1), "tok", int64(4), now.Add(time.Hour), false, now))

	reset, err := repo.LockValid(context.Background(), "tok", now)
	require.NoError(t, err)
	require.NotNil(t, reset)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetTokenRepoMarkUsed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResetTokenRepo(db)

	mock.ExpectExec(`UPDATE password_resets\s+SET used = TRUE\s+WHERE reset_token = \$1 AND used = FALSE`).
		WithArgs("tok").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE password_resets`).
		WithArgs("tok").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE password_resets`).
		WithArgs("tok").
		WillReturnError(errors.New("boom"))

	marked, err := repo.MarkUsed(context.Background(), "tok")
	require.NoError(t, err)
	assert.True(t, marked)

	marked, err = repo.MarkUsed(context.Background(), "tok")
	require.NoError(t, err)
	assert.False(t, marked, "second consumption must not report success")

	_, err = repo.MarkUsed(context.Background(), "tok")
	kind, ok := ports.StoreErrorKindOf(err)
	require.True(t, ok)
	assert.Equal(t, ports.StoreGeneric, kind)
}
