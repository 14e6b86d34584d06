// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr classifies low-level database failures into [apperr.AppError]
// values so that storage details never reach the client.
package dberr

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/taibuivan/jasht/internal/platform/apperr"
)

// PostgreSQL SQLSTATE codes the application reacts to.
const (
	codeUniqueViolation    = "23505"
	codeCheckViolation     = "23514"
	codeQueryCanceled      = "57014"
	codeAdminShutdown      = "57P01"
	codeCannotConnectNow   = "57P03"
	codeSerializationFault = "40001"
	codeDeadlockDetected   = "40P01"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")

	// ErrUnavailable is returned when the store cannot answer in time or at all.
	ErrUnavailable = apperr.ServiceUnavailable("Storage is temporarily unavailable")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
//
// Errors that already are AppErrors pass through untouched, which lets repository
// code call Wrap on every return path. The action names the failed operation in
// the server-side cause.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Already classified
	if apperr.IsAppError(err) {
		return err
	}

	// 2. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	cause := fmt.Errorf("postgres: %s: %w", action, err)

	// 3. Store availability
	if IsUnavailable(err) {
		return ErrUnavailable.Wrap(cause)
	}

	// 4. Constraint violations are client conflicts
	if IsUniqueViolation(err) {
		return apperr.Conflict("Resource already exists").Wrap(cause)
	}

	var pgError *pgconn.PgError
	if errors.As(err, &pgError) && pgError.Code == codeCheckViolation {
		return apperr.Unprocessable("Value violates a storage constraint").Wrap(cause)
	}

	return apperr.Internal(cause)
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgError *pgconn.PgError
	return errors.As(err, &pgError) && pgError.Code == codeUniqueViolation
}

// IsUnavailable reports whether err means the store is unreachable, overloaded,
// or did not answer before the deadline.
func IsUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		switch pgError.Code {
		case codeQueryCanceled, codeAdminShutdown, codeCannotConnectNow, codeSerializationFault, codeDeadlockDetected:
			return true
		}
		return false
	}

	var connectError *pgconn.ConnectError
	if errors.As(err, &connectError) {
		return true
	}

	var netError net.Error
	return errors.As(err, &netError)
}
