// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package requestutil reads bodies, path parameters and caller identity
// from incoming requests.
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/jasht/internal/platform/apperr"
	"github.com/taibuivan/jasht/internal/platform/ctxutil"
	"github.com/taibuivan/jasht/internal/platform/sec"
	"github.com/taibuivan/jasht/internal/platform/validate"
)

// MaxBodyBytes caps every JSON body. Game payloads are a few kilobytes.
const MaxBodyBytes = 1 << 20

// DecodeJSON decodes exactly one JSON value from the body into target.
// Oversized, malformed or trailing input all yield [validate.ErrInvalidJSON].
func DecodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(io.LimitReader(request.Body, MaxBodyBytes+1))

	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON.Wrap(err)
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param returns a chi path parameter, or "" when the route has none by that name.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Claims returns the verified caller, or nil for anonymous requests.
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

// RequiredUserID returns the caller's user ID or an UNAUTHORIZED error.
func RequiredUserID(request *http.Request) (string, error) {
	claims := Claims(request)
	if claims == nil {
		return "", apperr.Unauthorized("Authentication required")
	}
	return claims.UserID, nil
}
