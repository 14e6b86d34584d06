// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"context"
	"errors"
	"net/http"

	"github.com/taibuivan/jasht/internal/platform/apperr"
	"github.com/taibuivan/jasht/internal/platform/dberr"
)

// # Domain Errors

var (
	// ErrInvalidKeyInput is returned when a key cannot be derived (blank title).
	ErrInvalidKeyInput = apperr.New("INVALID_KEY_INPUT", http.StatusBadRequest, "A title is required to identify a game")

	// ErrSourceNotFound is returned when no catalog entry matches a copy request.
	ErrSourceNotFound = apperr.New("SOURCE_NOT_FOUND", http.StatusNotFound, "Game not found in the catalog")

	// ErrAmbiguousSource is returned when a bare title matches several catalog entries.
	ErrAmbiguousSource = apperr.New("AMBIGUOUS_SOURCE", http.StatusBadRequest, "Several catalog games share this title, specify the developer")

	// ErrAlreadyInLibrary is returned when the requester already owns a copy of the entry.
	ErrAlreadyInLibrary = apperr.New("ALREADY_IN_LIBRARY", http.StatusConflict, "This game is already in your library")

	// ErrNotFoundOrForbidden hides whether a record exists from callers who may not see it.
	ErrNotFoundOrForbidden = apperr.New("NOT_FOUND_OR_FORBIDDEN", http.StatusNotFound, "Game not found")

	// ErrInvalidReview is returned for blank text or a rating outside 1..5.
	ErrInvalidReview = apperr.New("INVALID_REVIEW", http.StatusBadRequest, "Review text is required and rating must be between 1 and 5")

	// ErrStoreUnavailable is returned when the store cannot be reached in time.
	ErrStoreUnavailable = apperr.New("STORE_UNAVAILABLE", http.StatusServiceUnavailable, "The game store is temporarily unavailable")

	// ErrAdminOnly is returned for administrator operations called by members.
	ErrAdminOnly = apperr.Forbidden("Administrator role required")
)

// storeError converts timeouts and connectivity failures into [ErrStoreUnavailable].
// Every other error is returned unchanged.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	if errors.Is(err, dberr.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) || dberr.IsUnavailable(err) {
		return ErrStoreUnavailable.Wrap(err)
	}
	return err
}

// notFoundOrForbidden folds a missing record into [ErrNotFoundOrForbidden].
func notFoundOrForbidden(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, dberr.ErrNotFound) {
		return ErrNotFoundOrForbidden.Wrap(err)
	}
	return err
}
