package postgres

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/njprem/fitcity-account-service/internal/repository/ports"
)

// classify converts driver errors into the store taxonomy. Errors that are
// already classified pass through untouched.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var storeErr *ports.StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	var dupErr *ports.DuplicateError
	if errors.As(err, &dupErr) {
		return err
	}

	kind := ports.StoreGeneric
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch pgErr.Code {
		case "23505":
			return &ports.DuplicateError{Field: constraintField(pgErr.ConstraintName), Err: err}
		case "28000", "28P01", "42501":
			kind = ports.StoreAccessDenied
		case "3D000", "3F000", "42P01", "42703":
			kind = ports.StoreSchemaMissing
		case "57014":
			kind = ports.StoreTimeout
		case "57P03", "53300":
			kind = ports.StoreConnectionRefused
		}
	case errors.Is(err, context.DeadlineExceeded), pgconn.Timeout(err), isNetTimeout(err):
		kind = ports.StoreTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		kind = ports.StoreConnectionRefused
	}
	return &ports.StoreError{Op: op, Kind: kind, Err: err}
}

func isNetTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func constraintField(constraint string) string {
	switch {
	case strings.Contains(constraint, "username"):
		return "username"
	case strings.Contains(constraint, "email"):
		return "email"
	case strings.Contains(constraint, "reset_token"):
		return "reset_token"
	default:
		return ""
	}
}
