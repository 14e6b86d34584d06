// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/taibuivan/jasht/internal/platform/apperr"
)

// # Domain Errors

var (
	// ErrInvalidCredentials hides whether the login or the password was wrong.
	ErrInvalidCredentials = apperr.New("INVALID_CREDENTIALS", http.StatusUnauthorized, "Invalid login credentials")

	// ErrEmailTaken is returned when the email already belongs to an account.
	ErrEmailTaken = apperr.New("EMAIL_TAKEN", http.StatusConflict, "Email is already registered")

	// ErrUsernameTaken is returned when the username already belongs to an account.
	ErrUsernameTaken = apperr.New("USERNAME_TAKEN", http.StatusConflict, "Username is already taken")

	// ErrInvalidToken covers unknown, expired and already used one-time tokens.
	ErrInvalidToken = apperr.New("INVALID_TOKEN", http.StatusForbidden, "Token is invalid or expired")

	// ErrInvalidSession is returned for unknown, revoked or expired refresh tokens.
	ErrInvalidSession = apperr.New("INVALID_SESSION", http.StatusUnauthorized, "Invalid or expired refresh token")
)
