// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the error type shared by every Jasht layer.

A domain or storage failure is turned into an [AppError] before it leaves the
service layer. The HTTP layer only ever reads Code, Message, HTTPStatus and
Details from it.

Architecture:

  - AppError: machine-readable Code plus a client-safe Message.
  - Sentinels: packages declare their own codes with [New] and compare them with [errors.Is].
  - Mapping: every constructor fixes the HTTP status returned to the client.
*/
package apperr

import (
	"errors"
	"net/http"
)

// AppError is the canonical error type for the Jasht API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an [*AppError] carrying the same Code.
//
// Sentinels are cloned with [AppError.Wrap] before being returned, so pointer
// equality is not enough for [errors.Is].
func (e *AppError) Is(target error) bool {
	other, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// Wrap returns a copy of e carrying cause. The receiver is left untouched.
func (e *AppError) Wrap(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// WithMessage returns a copy of e with a different client-safe message.
func (e *AppError) WithMessage(message string) *AppError {
	clone := *e
	clone.Message = message
	return &clone
}

// New declares a custom [AppError]. Domain packages use it for their sentinels.
func New(code string, httpStatus int, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// # Client Errors (4xx)

// NotFound names the missing resource: NotFound("Game") reads "Game not found".
func NotFound(resource string) *AppError {
	return New("NOT_FOUND", http.StatusNotFound, resource+" not found")
}

func Unauthorized(message string) *AppError {
	return New("UNAUTHORIZED", http.StatusUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New("FORBIDDEN", http.StatusForbidden, message)
}

// Conflict is the generic unique-constraint error. Domains usually declare
// a more specific code such as ALREADY_IN_LIBRARY.
func Conflict(message string) *AppError {
	return New("CONFLICT", http.StatusConflict, message)
}

// ValidationError carries one [FieldError] per failing input.
func ValidationError(message string, details ...FieldError) *AppError {
	appError := New("VALIDATION_ERROR", http.StatusBadRequest, message)
	appError.Details = details
	return appError
}

// Unprocessable is for input that is well-formed but rejected by storage rules.
func Unprocessable(message string) *AppError {
	return New("UNPROCESSABLE", http.StatusUnprocessableEntity, message)
}

// # Server Errors (5xx)

// Internal hides cause behind a generic message. The cause is only logged.
func Internal(cause error) *AppError {
	return New("INTERNAL_ERROR", http.StatusInternalServerError, "An unexpected error occurred").Wrap(cause)
}

func ServiceUnavailable(message string) *AppError {
	return New("SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, message)
}

// # Helpers

// IsAppError reports whether err's chain contains an [*AppError].
func IsAppError(err error) bool {
	return As(err) != nil
}

// As returns the first [*AppError] in err's chain, or nil.
func As(err error) *AppError {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError
	}
	return nil
}
