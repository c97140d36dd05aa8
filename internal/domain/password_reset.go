package domain

import "time"

// ResetTokenTTL is how long a password reset token stays redeemable.
const ResetTokenTTL = time.Hour

type ResetToken struct {
	ID        int64     `db:"id" json:"id"`
	Token     string    `db:"reset_token" json:"-"`
	UserID    int64     `db:"user_id" json:"userId"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	Used      bool      `db:"used" json:"used"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Valid reports whether the token can still be redeemed at now.
func (t *ResetToken) Valid(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
