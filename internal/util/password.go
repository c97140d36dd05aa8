package util

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultPasswordCost matches the work factor existing hashes were created with.
	DefaultPasswordCost = 10
	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

var (
	ErrPasswordEmpty   = errors.New("password cannot be empty")
	ErrPasswordTooLong = fmt.Errorf("password must be at most %d bytes", MaxPasswordBytes)
)

// PasswordHasher produces and checks salted bcrypt hashes. The salt and cost
// are embedded in the hash string, so verification needs nothing else.
type PasswordHasher struct {
	cost  int
	decoy []byte
}

// NewPasswordHasher validates the cost and runs a round trip so that a broken
// primitive stops the process at startup instead of failing per request.
// The round trip hashes a random secret that is then discarded; its hash is
// kept as the decoy for CompareDecoy.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	h := &PasswordHasher{cost: cost}
	secret := uuid.NewString()
	check, err := h.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("password hasher self-check: %w", err)
	}
	if !h.Verify(secret, check) {
		return nil, errors.New("password hasher self-check: verification failed")
	}
	h.decoy = []byte(check)
	return h, nil
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	if err := CheckPasswordLength(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. Malformed hashes never match.
func (h *PasswordHasher) Verify(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CompareDecoy does the same bcrypt work as Verify against a hash nothing
// matches. Callers use it when there is no stored hash to check, so a missing
// account takes as long to reject as a wrong password.
func (h *PasswordHasher) CompareDecoy(password string) {
	_ = bcrypt.CompareHashAndPassword(h.decoy, []byte(password))
}

func (h *PasswordHasher) Cost() int {
	return h.cost
}

func CheckPasswordLength(password string) error {
	if len(password) == 0 {
		return ErrPasswordEmpty
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}
