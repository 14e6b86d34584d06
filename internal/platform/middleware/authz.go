// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"strings"

	"github.com/taibuivan/jasht/internal/platform/apperr"
	"github.com/taibuivan/jasht/internal/platform/ctxutil"
	"github.com/taibuivan/jasht/internal/platform/respond"
	"github.com/taibuivan/jasht/internal/platform/sec"
)

// # Authentication

// TokenVerifier turns a bearer token into claims. [*sec.TokenService] satisfies it.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

var (
	errMalformedAuthorization = apperr.Unauthorized("Invalid authorization format")
	errRejectedToken          = apperr.Unauthorized("Invalid or expired token")
	errAuthenticationRequired = apperr.Unauthorized("Authentication required")
	errInsufficientRole       = apperr.Forbidden("Insufficient permissions")
)

// Authenticate verifies an "Authorization: Bearer" header when one is sent.
//
// Requests without the header continue anonymously; the public catalog
// relies on that. A header that is present but malformed or unverifiable is
// rejected with 401 instead of being downgraded to anonymous.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			header := request.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(writer, request)
				return
			}

			scheme, token, found := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
				respond.Error(writer, request, errMalformedAuthorization)
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				respond.Error(writer, request, errRejectedToken.Wrap(err))
				return
			}

			next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthUser(request.Context(), claims)))
		})
	}
}

// # Authorization

// RequireAuth answers 401 for anonymous requests. Mount after [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return RequireRole(sec.RoleMember)(next)
}

// RequireRole answers 401 for anonymous requests and 403 when the caller's
// role ranks below role. Mount after [Authenticate].
func RequireRole(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())
			switch {
			case claims == nil:
				respond.Error(writer, request, errAuthenticationRequired)
			case !sec.UserRole(claims.Role).AtLeast(role):
				respond.Error(writer, request, errInsufficientRole)
			default:
				next.ServeHTTP(writer, request)
			}
		})
	}
}
