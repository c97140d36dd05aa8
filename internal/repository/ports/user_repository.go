package ports

import (
	"context"

	"github.com/njprem/fitcity-account-service/internal/domain"
)

// UserRepository lookups return (nil, nil) when no row matches.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user domain.NewUser) (int64, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}
