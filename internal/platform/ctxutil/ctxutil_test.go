// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/jasht/internal/platform/ctxutil"
	"github.com/taibuivan/jasht/internal/platform/sec"
)

/*
TestRequestID round-trips the correlation value.
*/
func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	ctx = ctxutil.WithRequestID(ctx, "0192f1c2-7d1e-7000-8000-000000000001")
	assert.Equal(t, "0192f1c2-7d1e-7000-8000-000000000001", ctxutil.GetRequestID(ctx))
}

/*
TestLoggerOr prefers the attached logger over the fallback.
*/
func TestLoggerOr(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
	scoped := slog.New(slog.NewJSONHandler(io.Discard, nil))

	ctx := context.Background()
	assert.Same(t, fallback, ctxutil.LoggerOr(ctx, fallback))
	assert.Same(t, slog.Default(), ctxutil.GetLogger(ctx))

	ctx = ctxutil.WithLogger(ctx, scoped)
	assert.Same(t, scoped, ctxutil.LoggerOr(ctx, fallback))

	ctx = ctxutil.WithLogger(ctx, nil)
	assert.Same(t, fallback, ctxutil.LoggerOr(ctx, fallback))
}

/*
TestAuthUser returns nil for anonymous contexts.
*/
func TestAuthUser(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ctxutil.GetAuthUser(ctx))

	ctx = ctxutil.WithAuthUser(ctx, &sec.AuthClaims{UserID: "u-42", Role: string(sec.RoleAdmin)})
	claims := ctxutil.GetAuthUser(ctx)
	require.NotNil(t, claims)
	assert.Equal(t, "u-42", claims.UserID)
	assert.Equal(t, string(sec.RoleAdmin), claims.Role)
}
