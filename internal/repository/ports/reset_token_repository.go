package ports

import (
	"context"
	"time"

	"github.com/njprem/fitcity-account-service/internal/domain"
)

type ResetTokenRepository interface {
	Create(ctx context.Context, userID int64, token string, expiresAt time.Time) (*domain.ResetToken, error)
	// FindValid returns the token only when it is unused and expires after now.
	FindValid(ctx context.Context, token string, now time.Time) (*domain.ResetToken, error)
	// LockValid is FindValid holding a row lock until the surrounding transaction ends.
	LockValid(ctx context.Context, token string, now time.Time) (*domain.ResetToken, error)
	// MarkUsed reports false when the token was already used or does not exist.
	MarkUsed(ctx context.Context, token string) (bool, error)
}
