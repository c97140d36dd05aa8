package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/njprem/fitcity-account-service/internal/service"
	"github.com/njprem/fitcity-account-service/internal/util"
)

const resetRequestedMessage = "If your email is registered, you will receive password reset instructions"

// AccountService is the credential lifecycle exposed over HTTP.
type AccountService interface {
	SessionVerifier
	Register(ctx context.Context, in service.RegisterInput) (int64, error)
	Login(ctx context.Context, username, password string) (*service.LoginResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ValidateResetToken(ctx context.Context, token string) (bool, error)
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	UpdatePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error
	Logout(ctx context.Context, token string) error
}

type AuthHandler struct {
	auth AccountService
	// devMode exposes the underlying cause of 5xx responses.
	devMode bool
}

func RegisterAuth(e *echo.Echo, auth AccountService, devMode bool) {
	h := &AuthHandler{auth: auth, devMode: devMode}

	g := e.Group("/api/v1/auth")
	g.POST("/login", h.login)
	g.POST("/register", h.register)
	g.POST("/reset-password", h.requestPasswordReset)
	g.POST("/reset-password/validate", h.validateResetToken)
	g.POST("/reset-password/confirm", h.confirmPasswordReset)
	g.POST("/logout", h.logout)
	g.POST("/update-password", h.updatePassword, RequireAuth(auth))
}

// login handles POST /api/v1/auth/login
func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	result, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return h.fail(c, err, "unable to login")
	}

	return c.JSON(http.StatusOK, AuthTokenResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
		User: AuthUser{
			Username:    result.User.Username,
			Email:       result.User.Email,
			City:        result.User.City,
			State:       result.User.State,
			CountryCode: result.User.CountryCode,
		},
	})
}

// register handles POST /api/v1/auth/register
func (h *AuthHandler) register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	userID, err := h.auth.Register(c.Request().Context(), service.RegisterInput{
		Username:    req.Username,
		Password:    req.Password,
		Email:       req.Email,
		City:        optionalString(req.City),
		State:       optionalString(req.State),
		CountryCode: optionalString(req.CountryCode),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		return h.fail(c, err, "unable to register user")
	}

	return c.JSON(http.StatusCreated, RegisterResponse{
		Message: "User registered successfully",
		UserID:  userID,
	})
}

// requestPasswordReset handles POST /api/v1/auth/reset-password
func (h *AuthHandler) requestPasswordReset(c echo.Context) error {
	var req PasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.auth.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return h.fail(c, err, "unable to process password reset request")
	}
	return c.JSON(http.StatusOK, util.Message(resetRequestedMessage))
}

// validateResetToken handles POST /api/v1/auth/reset-password/validate
func (h *AuthHandler) validateResetToken(c echo.Context) error {
	var req ResetTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	valid, err := h.auth.ValidateResetToken(c.Request().Context(), req.ResetToken)
	if err != nil {
		return h.fail(c, err, "unable to validate reset token")
	}
	if !valid {
		return c.JSON(http.StatusBadRequest, util.Error(service.ErrInvalidResetToken.Error()))
	}
	return c.JSON(http.StatusOK, ValidateResetTokenResponse{Valid: true, Message: "Reset token is valid"})
}

// confirmPasswordReset handles POST /api/v1/auth/reset-password/confirm
func (h *AuthHandler) confirmPasswordReset(c echo.Context) error {
	var req PasswordResetConfirmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.auth.ConfirmPasswordReset(c.Request().Context(), req.ResetToken, req.NewPassword); err != nil {
		return h.fail(c, err, "unable to reset password")
	}
	return c.JSON(http.StatusOK, util.Message("Password has been reset successfully"))
}

// updatePassword handles POST /api/v1/auth/update-password
func (h *AuthHandler) updatePassword(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req UpdatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.auth.UpdatePassword(c.Request().Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return h.fail(c, err, "unable to update password")
	}
	return c.JSON(http.StatusOK, util.Message("Password updated successfully"))
}

// logout handles POST /api/v1/auth/logout
func (h *AuthHandler) logout(c echo.Context) error {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.TrimSpace(header) == "" {
		return c.JSON(http.StatusBadRequest, util.Error("authorization token is required"))
	}
	token, ok := bearerToken(header)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("invalid authorization header"))
	}

	if err := h.auth.Logout(c.Request().Context(), token); err != nil {
		return h.fail(c, err, "unable to logout")
	}
	return c.JSON(http.StatusOK, util.Message("Logged out successfully"))
}

// fail maps service errors onto statuses. Infrastructure causes are only
// exposed in development.
func (h *AuthHandler) fail(c echo.Context, err error, fallback string) error {
	var inputErr *service.InputError
	switch {
	case errors.As(err, &inputErr):
		return c.JSON(http.StatusBadRequest, util.Error(inputErr.Message))
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrCurrentPasswordIncorrect),
		errors.Is(err, service.ErrInvalidSession):
		return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
	case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrEmailTaken):
		return c.JSON(http.StatusConflict, util.Error(err.Error()))
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, service.ErrInvalidResetToken):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	case errors.Is(err, service.ErrStoreUnavailable):
		return c.JSON(http.StatusServiceUnavailable, util.ErrorDetails(service.ErrStoreUnavailable.Error(), h.details(err)))
	default:
		return c.JSON(http.StatusInternalServerError, util.ErrorDetails(fallback, h.details(err)))
	}
}

func (h *AuthHandler) details(err error) string {
	if !h.devMode {
		return ""
	}
	var opErr *service.OperationError
	if errors.As(err, &opErr) {
		return opErr.Cause.Error()
	}
	return err.Error()
}

func optionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
