package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/njprem/fitcity-account-service/internal/domain"
	"github.com/njprem/fitcity-account-service/internal/repository/ports"
	"github.com/njprem/fitcity-account-service/internal/util"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// PasswordResetSender delivers a reset token to the account owner.
type PasswordResetSender interface {
	SendPasswordReset(ctx context.Context, email, token, username string) error
}

type AuthService struct {
	store  ports.AccountStore
	hasher *util.PasswordHasher
	tokens *util.JWTManager
	mailer PasswordResetSender
	logger *zap.Logger
	now    func() time.Time
}

type RegisterInput struct {
	Username    string
	Password    string
	Email       string
	City        *string
	State       *string
	CountryCode *string
	Latitude    *float64
	Longitude   *float64
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      domain.Profile
}

func NewAuthService(store ports.AccountStore, hasher *util.PasswordHasher, tokens *util.JWTManager, mailer PasswordResetSender, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		mailer: mailer,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates an account. Uniqueness checks and the insert share one
// transaction; a unique violation from a concurrent insert maps to the same
// conflict errors.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (int64, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || in.Password == "" || email == "" {
		return 0, invalidInput("username, password, and email are required")
	}
	if !emailPattern.MatchString(email) {
		return 0, invalidInput("invalid email format")
	}
	if err := util.CheckPasswordLength(in.Password); err != nil {
		return 0, invalidInput(err.Error())
	}

	var userID int64
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.AccountTx) error {
		users := tx.Users()
		taken, err := users.UsernameExists(ctx, username)
		if err != nil {
			return err
		}
		if taken {
			return ErrUsernameTaken
		}
		taken, err = users.EmailExists(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}

		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return err
		}
		id, err := users.Create(ctx, domain.NewUser{
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			City:         in.City,
			State:        in.State,
			CountryCode:  in.CountryCode,
			Latitude:     in.Latitude,
			Longitude:    in.Longitude,
		})
		if err != nil {
			return err
		}
		userID = id
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrUsernameTaken), isDuplicate(err, "username"):
		return 0, ErrUsernameTaken
	case errors.Is(err, ErrEmailTaken), isDuplicate(err, "email"):
		return 0, ErrEmailTaken
	default:
		return 0, s.fail("register", err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", userID))
	return userID, nil
}

// Login never tells the caller whether the username or the password was wrong.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalidInput("username and password are required")
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, s.fail("login", err)
	}
	if user == nil {
		s.hasher.CompareDecoy(password)
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return nil, s.fail("issue session token", err)
	}
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.PublicProfile(),
	}, nil
}

// RequestPasswordReset succeeds identically whether or not email belongs to
// an account. A persisted token is kept even if delivery fails.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalidInput("email is required")
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return s.fail("request password reset", err)
	}
	if user == nil {
		s.logger.Info("password reset requested for unknown email")
		return nil
	}

	reset, err := s.issueResetToken(ctx, user.ID)
	if err != nil {
		return s.fail("create reset token", err)
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, reset.Token, user.Username); err != nil {
		return s.fail("send password reset", err)
	}

	s.logger.Info("password reset issued", zap.Int64("user_id", user.ID), zap.Time("expires_at", reset.ExpiresAt))
	return nil
}

func (s *AuthService) issueResetToken(ctx context.Context, userID int64) (*domain.ResetToken, error) {
	expiresAt := s.now().Add(domain.ResetTokenTTL)
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		token, err := util.GenerateResetToken()
		if err != nil {
			return nil, err
		}
		reset, err := s.store.CreateResetToken(ctx, userID, token, expiresAt)
		if err == nil {
			return reset, nil
		}
		if !isDuplicate(err, "reset_token") {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// ValidateResetToken reports whether token could be redeemed now. It has no
// side effects.
func (s *AuthService) ValidateResetToken(ctx context.Context, token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, invalidInput("reset token is required")
	}

	now := s.now()
	reset, err := s.store.FindValidResetToken(ctx, token, now)
	if err != nil {
		return false, s.fail("validate reset token", err)
	}
	return reset != nil && reset.Valid(now), nil
}

// ConfirmPasswordReset redeems token exactly once. The token row stays locked
// from validation until the transaction that marks it used commits.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" || newPassword == "" {
		return invalidInput("reset token and new password are required")
	}
	if err := util.CheckPasswordLength(newPassword); err != nil {
		return invalidInput(err.Error())
	}

	now := s.now()
	var userID int64
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.AccountTx) error {
		reset, err := tx.ResetTokens().LockValid(ctx, token, now)
		if err != nil {
			return err
		}
		if reset == nil || !reset.Valid(now) {
			return ErrInvalidResetToken
		}

		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return err
		}
		if err := tx.Users().UpdatePassword(ctx, reset.UserID, hash); err != nil {
			return err
		}
		marked, err := tx.ResetTokens().MarkUsed(ctx, token)
		if err != nil {
			return err
		}
		if !marked {
			return ErrInvalidResetToken
		}
		userID = reset.UserID
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			return ErrInvalidResetToken
		}
		return s.fail("confirm password reset", err)
	}

	s.logger.Info("password reset completed", zap.Int64("user_id", userID))
	return nil
}

// UpdatePassword expects userID to come from a verified session.
func (s *AuthService) UpdatePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return invalidInput("current password and new password are required")
	}
	if err := util.CheckPasswordLength(newPassword); err != nil {
		return invalidInput(err.Error())
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return s.fail("load user", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return ErrCurrentPasswordIncorrect
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return s.fail("hash password", err)
	}
	if err := s.store.UpdateUserPassword(ctx, userID, hash); err != nil {
		return s.fail("update password", err)
	}

	s.logger.Info("password updated", zap.Int64("user_id", userID))
	return nil
}

// Authenticate verifies a session token and returns its claims.
func (s *AuthService) Authenticate(token string) (*util.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		s.logger.Debug("session token rejected", zap.Error(err))
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// Logout only checks the token. Issued tokens stay usable until they expire.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return invalidInput("token is required")
	}
	claims, err := s.Authenticate(token)
	if err != nil {
		return err
	}
	s.logger.Info("user logged out", zap.Int64("user_id", claims.UserID))
	return nil
}

func (s *AuthService) fail(op string, err error) error {
	failure := operationFailure(op, err)
	if errors.Is(failure, ErrStoreUnavailable) {
		s.logger.Warn("store unavailable", zap.String("op", op), zap.Error(err))
	} else {
		s.logger.Error("operation failed", zap.String("op", op), zap.Error(err))
	}
	return failure
}
