// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for accounts.
// Email and username lookups are case-insensitive.
type UserRepository interface {
	FindByID(context context.Context, id string) (*User, error)
	FindByEmail(context context.Context, email string) (*User, error)
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists a new account.

		Returns:
		  - error: ErrEmailTaken or ErrUsernameTaken on a unique violation
	*/
	Create(context context.Context, user *User) error

	UpdatePassword(context context.Context, userID, newHash string) error
	MarkVerified(context context.Context, userID string) error
}

// # Session Data Access

// SessionRepository defines the data access contract for refresh sessions.
type SessionRepository interface {
	Create(context context.Context, session *Session) error

	// FindByTokenHash returns the live session (not revoked, not expired) for a hash.
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	Revoke(context context.Context, sessionID string) error
	RevokeAll(context context.Context, userID string) error
	RevokeOthers(context context.Context, userID, currentSessionID string) error
}

// # One-Time Tokens

// TokenRepository stores single-use tokens that resolve to a user ID.
type TokenRepository interface {
	Set(context context.Context, token, userID string, ttl time.Duration) error

	// Get returns ErrInvalidToken when the token is unknown or expired.
	Get(context context.Context, token string) (string, error)

	Delete(context context.Context, token string) error
}
