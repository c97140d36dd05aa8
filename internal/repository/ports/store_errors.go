package ports

import (
	"errors"
	"fmt"
)

type StoreErrorKind int

const (
	StoreGeneric StoreErrorKind = iota
	StoreConnectionRefused
	StoreAccessDenied
	StoreTimeout
	StoreSchemaMissing
)

func (k StoreErrorKind) String() string {
	switch k {
	case StoreConnectionRefused:
		return "connection refused"
	case StoreAccessDenied:
		return "access denied"
	case StoreTimeout:
		return "timeout"
	case StoreSchemaMissing:
		return "schema missing"
	default:
		return "store error"
	}
}

// Unavailable reports whether the store could not be reached or used at all,
// as opposed to a statement failing.
func (k StoreErrorKind) Unavailable() bool {
	return k == StoreConnectionRefused || k == StoreAccessDenied || k == StoreTimeout
}

type StoreError struct {
	Op   string
	Kind StoreErrorKind
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// DuplicateError is returned when an insert violates a unique constraint.
// Field names the colliding column when it can be determined.
type DuplicateError struct {
	Field string
	Err   error
}

func (e *DuplicateError) Error() string {
	if e.Field == "" {
		return "duplicate value"
	}
	return "duplicate " + e.Field
}

func (e *DuplicateError) Unwrap() error {
	return e.Err
}

func StoreErrorKindOf(err error) (StoreErrorKind, bool) {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return StoreGeneric, false
}
