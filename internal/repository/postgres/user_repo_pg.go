package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/njprem/fitcity-account-service/internal/domain"
)

const userColumns = `user_id, username, email, password_hash, city, state, country_code, latitude, longitude, is_active, created_at, updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepo(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM users
        WHERE username = $1
    `
	return r.findOne(ctx, "find user by username", query, username)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM users
        WHERE email = $1
    `
	return r.findOne(ctx, "find user by email", query, email)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM users
        WHERE user_id = $1
    `
	return r.findOne(ctx, "find user by id", query, id)
}

func (r *UserRepository) findOne(ctx context.Context, op, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.db.QueryRowxContext(ctx, query, arg).StructScan(&user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(op, err)
	}
	return &user, nil
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`
	return r.exists(ctx, "check username", query, username)
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	return r.exists(ctx, "check email", query, email)
}

func (r *UserRepository) exists(ctx context.Context, op, query, arg string) (bool, error) {
	var found bool
	if err := r.db.QueryRowxContext(ctx, query, arg).Scan(&found); err != nil {
		return false, classify(op, err)
	}
	return found, nil
}

func (r *UserRepository) Create(ctx context.Context, user domain.NewUser) (int64, error) {
	const query = `
        INSERT INTO users (username, email, password_hash, city, state, country_code, latitude, longitude)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING user_id
    `
	var id int64
	err := r.db.QueryRowxContext(ctx, query,
		user.Username, user.Email, user.PasswordHash,
		user.City, user.State, user.CountryCode, user.Latitude, user.Longitude,
	).Scan(&id)
	if err != nil {
		return 0, classify("create user", err)
	}
	return id, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const query = `
        UPDATE users
        SET password_hash = $2,
            updated_at = NOW()
        WHERE user_id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, passwordHash)
	return classify("update password", err)
}
