package http

// ErrorResponse represents a generic error payload. Details is only set in development.
type ErrorResponse struct {
	Error   string `json:"error" example:"invalid credentials"`
	Details string `json:"details,omitempty"`
}

// MessageResponse carries a human readable outcome.
type MessageResponse struct {
	Message string `json:"message" example:"Password updated successfully"`
}

// AuthUser is the public profile returned on login. The password hash never leaves the service.
type AuthUser struct {
	Username    string  `json:"username" example:"alice"`
	Email       string  `json:"email" example:"alice@example.com"`
	City        *string `json:"city" example:"Austin"`
	State       *string `json:"state" example:"TX"`
	CountryCode *string `json:"countryCode" example:"US"`
}

// AuthTokenResponse is returned by the login endpoint.
type AuthTokenResponse struct {
	Token     string   `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt string   `json:"expires_at" example:"2024-01-02T09:30:00Z"`
	User      AuthUser `json:"user"`
}

// RegisterResponse is returned after an account is created.
type RegisterResponse struct {
	Message string `json:"message" example:"User registered successfully"`
	UserID  int64  `json:"userId" example:"42"`
}

// ValidateResetTokenResponse reports a usable reset token.
type ValidateResetTokenResponse struct {
	Valid   bool   `json:"valid" example:"true"`
	Message string `json:"message" example:"Reset token is valid"`
}

type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"StrongPass!23"`
}

type RegisterRequest struct {
	Username    string   `json:"username" example:"alice"`
	Password    string   `json:"password" example:"StrongPass!23"`
	Email       string   `json:"email" example:"alice@example.com"`
	City        *string  `json:"city,omitempty" example:"Austin"`
	State       *string  `json:"state,omitempty" example:"TX"`
	CountryCode *string  `json:"countryCode,omitempty" example:"US"`
	Latitude    *float64 `json:"latitude,omitempty" example:"30.2672"`
	Longitude   *float64 `json:"longitude,omitempty" example:"-97.7431"`
}

type PasswordResetRequest struct {
	Email string `json:"email" example:"alice@example.com"`
}

type ResetTokenRequest struct {
	ResetToken string `json:"resetToken" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"`
}

type PasswordResetConfirmRequest struct {
	ResetToken  string `json:"resetToken" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"`
	NewPassword string `json:"newPassword" example:"NewPass!45"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" example:"OldPass!23"`
	NewPassword     string `json:"newPassword" example:"NewPass!45"`
}
