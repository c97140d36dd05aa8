package service

import (
	"errors"

	"github.com/njprem/fitcity-account-service/internal/repository/ports"
)

var (
	ErrInvalidInput             = errors.New("invalid input")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrCurrentPasswordIncorrect = errors.New("current password incorrect")
	ErrUsernameTaken            = errors.New("username already exists")
	ErrEmailTaken               = errors.New("email already exists")
	ErrUserNotFound             = errors.New("user not found")
	ErrInvalidResetToken        = errors.New("invalid or expired reset token")
	ErrInvalidSession           = errors.New("invalid or expired token")
	ErrStoreUnavailable         = errors.New("service temporarily unavailable")
	ErrServer                   = errors.New("internal server error")
)

// InputError is a validation failure with a caller-facing message. It matches
// ErrInvalidInput.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func invalidInput(message string) error {
	return &InputError{Message: message}
}

// OperationError is an infrastructure failure. Kind is ErrStoreUnavailable or
// ErrServer; Cause is kept for logs and development responses only.
type OperationError struct {
	Op    string
	Kind  error
	Cause error
}

func (e *OperationError) Error() string {
	return e.Op + ": " + e.Cause.Error()
}

func (e *OperationError) Unwrap() []error {
	return []error{e.Kind, e.Cause}
}

func operationFailure(op string, cause error) error {
	kind := ErrServer
	if k, ok := ports.StoreErrorKindOf(cause); ok && k.Unavailable() {
		kind = ErrStoreUnavailable
	}
	return &OperationError{Op: op, Kind: kind, Cause: cause}
}

func isDuplicate(err error, field string) bool {
	var dup *ports.DuplicateError
	return errors.As(err, &dup) && dup.Field == field
}
