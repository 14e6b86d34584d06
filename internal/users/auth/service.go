// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/jasht/internal/platform/apperr"
	"github.com/taibuivan/jasht/internal/platform/dberr"
	"github.com/taibuivan/jasht/internal/platform/sec"
	"github.com/taibuivan/jasht/pkg/uuid"
)

// # Contracts & Types

// TokenProvider signs access tokens.
type TokenProvider interface {
	GenerateAccessToken(identity sec.Identity, timeToLive time.Duration) (string, error)
}

// Options tunes a [Service].
type Options struct {
	// AdminEmails are granted the admin role when they register.
	AdminEmails []string

	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

// Service implements the account and session use cases.
type Service struct {
	userRepository              UserRepository
	sessionRepository           SessionRepository
	resetTokenRepository        TokenRepository
	verificationTokenRepository TokenRepository
	tokenProvider               TokenProvider
	logger                      *slog.Logger
	adminEmails                 map[string]struct{}
	now                         func() time.Time
}

// NewService wires the auth use cases.
func NewService(
	users UserRepository,
	sessions SessionRepository,
	resetTokens TokenRepository,
	verificationTokens TokenRepository,
	tokens TokenProvider,
	logger *slog.Logger,
	options Options,
) *Service {
	admins := make(map[string]struct{}, len(options.AdminEmails))
	for _, email := range options.AdminEmails {
		if normalized := normalizeEmail(email); normalized != "" {
			admins[normalized] = struct{}{}
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	clock := options.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Service{
		userRepository:              users,
		sessionRepository:           sessions,
		resetTokenRepository:        resetTokens,
		verificationTokenRepository: verificationTokens,
		tokenProvider:               tokens,
		logger:                      logger.With("component", "auth"),
		adminEmails:                 admins,
		now:                         clock,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

/*
Register validates uniqueness, hashes the password and persists the account.

Description: Emails listed in Options.AdminEmails receive the admin role, every
other account starts as a member. A verification token is stored alongside.

Returns:
  - *User: Created account
  - string: The verification token, empty when it could not be stored
  - error: ErrEmailTaken, ErrUsernameTaken or storage failures
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, string, error) {
	email := normalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)

	// 1. Uniqueness, checked up front for a clean error and again by the unique indexes
	if err := service.ensureAvailable(context, email, username); err != nil {
		return nil, "", err
	}

	// 2. Hash
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	role := sec.RoleMember
	if _, ok := service.adminEmails[email]; ok {
		role = sec.RoleAdmin
	}

	user := &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
	}

	// 3. Persist
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, "", err
	}

	service.logger.InfoContext(context, "account_registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	// 4. Verification token. Failure here does not undo the registration.
	token, err := sec.GenerateSecureToken(SecureTokenLength)
	if err == nil {
		err = service.verificationTokenRepository.Set(context, token, user.ID, VerificationTokenTTL)
	}
	if err != nil {
		service.logger.WarnContext(context, "verification_token_not_stored",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return user, "", nil
	}

	return user, token, nil
}

func (service *Service) ensureAvailable(context context.Context, email, username string) error {
	_, err := service.userRepository.FindByEmail(context, email)
	switch {
	case err == nil:
		return ErrEmailTaken
	case !errors.Is(err, dberr.ErrNotFound):
		return err
	}

	_, err = service.userRepository.FindByUsername(context, username)
	switch {
	case err == nil:
		return ErrUsernameTaken
	case !errors.Is(err, dberr.ErrNotFound):
		return err
	}
	return nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	// Login is an email or a username.
	Login     string
	Password  string
	UserAgent string
	IPAddress string
}

// LoginSession is an issued access token plus its rotating refresh token.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login checks the credentials and opens a refresh session.

Returns:
  - *LoginSession: Tokens and the account
  - error: ErrInvalidCredentials for an unknown login or a wrong password
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	user, err := service.findByLogin(context, input.Login)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		service.logger.InfoContext(context, "login_rejected", slog.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	return service.openSession(context, user, input.UserAgent, input.IPAddress)
}

func (service *Service) findByLogin(context context.Context, login string) (*User, error) {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return service.userRepository.FindByEmail(context, login)
	}
	return service.userRepository.FindByUsername(context, login)
}

// openSession signs an access token and persists a fresh refresh session.
func (service *Service) openSession(context context.Context, user *User, userAgent, ipAddress string) (*LoginSession, error) {
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.Identity(), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(SecureTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	now := service.now().UTC()
	session := &Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: now.Add(RefreshTokenTTL),
		CreatedAt: now,
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt,
		User:                  user,
	}, nil
}

/*
Logout revokes the session behind a refresh token.

Description: Unknown or already revoked tokens are treated as logged out.
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {
	session, err := service.sessionRepository.FindByTokenHash(context, sec.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, ErrInvalidSession) {
			return nil
		}
		return err
	}

	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// # Session Management

/*
RefreshSession rotates a refresh token.

Description: The presented session is revoked before a new one is issued, so
a refresh token is usable exactly once.

Returns:
  - *LoginSession: New credentials
  - error: ErrInvalidSession, or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {
	session, err := service.sessionRepository.FindByTokenHash(context, sec.HashToken(refreshToken))
	if err != nil {
		return nil, err
	}

	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	user, err := service.userRepository.FindByID(context, session.UserID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	return service.openSession(context, user, userAgent, ipAddress)
}

// Me returns the account behind an access token.
func (service *Service) Me(context context.Context, userID string) (*User, error) {
	return service.userRepository.FindByID(context, userID)
}

// # Password Recovery

/*
RequestPasswordReset stores a reset token for the account with this email.

Returns:
  - string: The token, or empty when no account matches. Callers must not
    reveal the difference to the client.
  - error: Generation or storage failures
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) (string, error) {
	user, err := service.userRepository.FindByEmail(context, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	token, err := sec.GenerateSecureToken(SecureTokenLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	if err := service.resetTokenRepository.Set(context, token, user.ID, ResetTokenTTL); err != nil {
		return "", fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	service.logger.InfoContext(context, "password_reset_requested", slog.String("user_id", user.ID))
	return token, nil
}

/*
ResetPassword consumes a reset token and replaces the password.

Description: Every session of the account is revoked afterwards.
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {
	userID, err := service.resetTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	if err := service.resetTokenRepository.Delete(context, token); err != nil {
		service.logger.WarnContext(context, "reset_token_not_deleted", slog.Any("error", err))
	}
	if err := service.sessionRepository.RevokeAll(context, userID); err != nil {
		service.logger.WarnContext(context, "sessions_not_revoked",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}

	return nil
}

/*
ChangePassword replaces the password of a signed-in account.

Description: Other sessions are revoked. The session behind
currentRefreshToken, when given and valid, stays open.
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword, currentRefreshToken string) error {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return err
	}

	// Keep the caller's own session when we can identify it
	var current *Session
	if currentRefreshToken != "" {
		current, _ = service.sessionRepository.FindByTokenHash(context, sec.HashToken(currentRefreshToken))
	}

	var revokeErr error
	if current != nil && current.UserID == userID {
		revokeErr = service.sessionRepository.RevokeOthers(context, userID, current.ID)
	} else {
		revokeErr = service.sessionRepository.RevokeAll(context, userID)
	}
	if revokeErr != nil {
		service.logger.WarnContext(context, "sessions_not_revoked",
			slog.String("user_id", userID),
			slog.Any("error", revokeErr),
		)
	}

	return nil
}

// VerifyEmail consumes a verification token and flags the account as verified.
func (service *Service) VerifyEmail(context context.Context, token string) error {
	userID, err := service.verificationTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	if err := service.userRepository.MarkVerified(context, userID); err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	if err := service.verificationTokenRepository.Delete(context, token); err != nil {
		service.logger.WarnContext(context, "verification_token_not_deleted", slog.Any("error", err))
	}
	return nil
}
