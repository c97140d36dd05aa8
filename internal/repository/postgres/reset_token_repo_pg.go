package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/njprem/fitcity-account-service/internal/domain"
)

type ResetTokenRepository struct {
	db DBTX
}

func NewResetTokenRepo(db DBTX) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

func (r *ResetTokenRepository) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) (*domain.ResetToken, error) {
	const query = `
        INSERT INTO password_resets (user_id, reset_token, expires_at)
        VALUES ($1, $2, $3)
        RETURNING id, reset_token, user_id, expires_at, used, created_at
    `
	var reset domain.ResetToken
	if err := r.db.QueryRowxContext(ctx, query, userID, token, expiresAt).StructScan(&reset); err != nil {
		return nil, classify("create reset token", err)
	}
	return &reset, nil
}

func (r *ResetTokenRepository) FindValid(ctx context.Context, token string, now time.Time) (*domain.ResetToken, error) {
	const query = `
        SELECT id, reset_token, user_id, expires_at, used, created_at
        FROM password_resets
        WHERE reset_token = $1 AND used = FALSE AND expires_at > $2
    `
	return r.findOne(ctx, "find reset token", query, token, now)
}

func (r *ResetTokenRepository) LockValid(ctx context.Context, token string, now time.Time) (*domain.ResetToken, error) {
	const query = `
        SELECT id, reset_token, user_id, expires_at, used, created_at
        FROM password_resets
        WHERE reset_token = $1 AND used = FALSE AND expires_at > $2
        FOR UPDATE
    `
	return r.findOne(ctx, "lock reset token", query, token, now)
}

func (r *ResetTokenRepository) findOne(ctx context.Context, op, query, token string, now time.Time) (*domain.ResetToken, error) {
	var reset domain.ResetToken
	if err := r.db.QueryRowxContext(ctx, query, token, now).StructScan(&reset); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(op, err)
	}
	return &reset, nil
}

func (r *ResetTokenRepository) MarkUsed(ctx context.Context, token string) (bool, error) {
	const query = `
        UPDATE password_resets
        SET used = TRUE
        WHERE reset_token = $1 AND used = FALSE
    `
	res, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return false, classify("mark reset token used", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify("mark reset token used", err)
	}
	return n == 1, nil
}
