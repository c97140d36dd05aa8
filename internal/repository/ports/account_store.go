package ports

import (
	"context"
	"time"

	"github.com/njprem/fitcity-account-service/internal/domain"
)

// AccountStore is the single seam to persistent account state. Lookups are
// served by the replica, mutations by the primary. WithinTx runs fn in one
// primary transaction that commits when fn returns nil and rolls back
// otherwise; fn's error is returned unchanged.
type AccountStore interface {
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	FindValidResetToken(ctx context.Context, token string, now time.Time) (*domain.ResetToken, error)

	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
	CreateResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) (*domain.ResetToken, error)

	WithinTx(ctx context.Context, fn func(ctx context.Context, tx AccountTx) error) error
}

// AccountTx exposes repositories bound to an open transaction.
type AccountTx interface {
	Users() UserRepository
	ResetTokens() ResetTokenRepository
}
