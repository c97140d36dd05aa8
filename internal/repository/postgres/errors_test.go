package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njprem/fitcity-account-service/internal/repository/ports"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyKinds(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: &os.SyscallError{Syscall: "connect", Err: syscall.ECONNREFUSED}}

	cases := []struct {
		name string
		err  error
		want ports.StoreErrorKind
	}{
		{"connection refused", fmt.Errorf("failed to connect: %w", refused), ports.StoreConnectionRefused},
		{"bad password", &pgconn.PgError{Code: "28P01"}, ports.StoreAccessDenied},
		{"no privilege", &pgconn.PgError{Code: "42501"}, ports.StoreAccessDenied},
		{"missing table", &pgconn.PgError{Code: "42P01"}, ports.StoreSchemaMissing},
		{"missing database", &pgconn.PgError{Code: "3D000"}, ports.StoreSchemaMissing},
		{"statement cancelled", &pgconn.PgError{Code: "57014"}, ports.StoreTimeout},
		{"too many connections", &pgconn.PgError{Code: "53300"}, ports.StoreConnectionRefused},
		{"deadline", context.DeadlineExceeded, ports.StoreTimeout},
		{"net timeout", &net.OpError{Op: "read", Err: timeoutErr{}}, ports.StoreTimeout},
		{"other", errors.New("boom"), ports.StoreGeneric},
		{"syntax", &pgconn.PgError{Code: "42601"}, ports.StoreGeneric},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := classify("op", tc.err)
			kind, ok := ports.StoreErrorKindOf(err)
			require.True(t, ok, "expected StoreError, got %T", err)
			assert.Equal(t, tc.want, kind)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestClassifyUniqueViolation(t *testing.T) {
	cases := map[string]string{
		"users_username_key":              "username",
		"users_email_key":                 "email",
		"password_resets_reset_token_key": "reset_token",
		"something_else":                  "",
	}
	for constraint, field := range cases {
		err := classify("insert", &pgconn.PgError{Code: "23505", ConstraintName: constraint})
		var dup *ports.DuplicateError
		require.True(t, errors.As(err, &dup), "constraint %s", constraint)
		assert.Equal(t, field, dup.Field)
	}
}

func TestClassifyPassesThroughClassified(t *testing.T) {
	original := &ports.StoreError{Op: "connect primary", Kind: ports.StoreTimeout, Err: context.DeadlineExceeded}
	assert.Same(t, original, classify("later", original))
	assert.Nil(t, classify("noop", nil))
}

func TestUnavailableKinds(t *testing.T) {
	assert.True(t, ports.StoreConnectionRefused.Unavailable())
	assert.True(t, ports.StoreAccessDenied.Unavailable())
	assert.True(t, ports.StoreTimeout.Unavailable())
	assert.False(t, ports.StoreSchemaMissing.Unavailable())
	assert.False(t, ports.StoreGeneric.Unavailable())
}
