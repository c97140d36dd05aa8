package domain

import "time"

type User struct {
	ID           int64     `db:"user_id" json:"userId"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	City         *string   `db:"city" json:"city,omitempty"`
	State        *string   `db:"state" json:"state,omitempty"`
	CountryCode  *string   `db:"country_code" json:"countryCode,omitempty"`
	Latitude     *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude    *float64  `db:"longitude" json:"longitude,omitempty"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Profile is the subset of a user that may leave the service.
type Profile struct {
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	CountryCode *string `json:"countryCode"`
}

func (u *User) PublicProfile() Profile {
	return Profile{
		Username:    u.Username,
		Email:       u.Email,
		City:        u.City,
		State:       u.State,
		CountryCode: u.CountryCode,
	}
}

// NewUser carries the fields supplied at registration.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	City         *string
	State        *string
	CountryCode  *string
	Latitude     *float64
	Longitude    *float64
}
