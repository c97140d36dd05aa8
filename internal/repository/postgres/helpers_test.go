package postgres

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var userRowColumns = []string{
	"user_id", "username", "email", "password_hash", "city", "state", "country_code",
	"latitude", "longitude", "is_active", "created_at", "updated_at",
}

func userRows(id int64, username, email, hash string) *sqlmock.Rows {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(userRowColumns).
		AddRow(id, username, email, hash, "Austin", nil, "US", 30.27, nil, true, now, now)
}

var resetRowColumns = []string{"id", "reset_token", "user_id", "expires_at", "used", "created_at"}
