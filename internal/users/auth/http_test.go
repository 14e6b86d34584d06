// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/jasht/internal/platform/constants"
	"github.com/taibuivan/jasht/internal/platform/middleware"
)

type envelope struct {
	Data json.RawMessage `json:"data"`
	Code string          `json:"code"`
}

type sessionPayload struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	User        User   `json:"user"`
}

func newAuthRouter(t *testing.T, exposeTokens bool) (chi.Router, *authFixture) {
	t.Helper()
	fixture := newAuthFixture(t)
	router := chi.NewRouter()
	router.Use(middleware.Authenticate(fixture.signer))
	router.Mount("/", NewHandler(fixture.service, exposeTokens).Routes())
	return router, fixture
}

// send performs one request, optionally with a bearer token and refresh cookie.
func send(t *testing.T, router http.Handler, method, path, body, bearer, refresh string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		request.Header.Set("Authorization", "Bearer "+bearer)
	}
	if refresh != "" {
		request.AddCookie(&http.Cookie{Name: constants.RefreshTokenCookieName, Value: refresh})
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) envelope {
	t.Helper()
	var decoded envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return decoded
}

func refreshCookie(recorder *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == constants.RefreshTokenCookieName {
			return cookie
		}
	}
	return nil
}

/*
TestHTTP_SessionLifecycle registers, signs in, rotates and signs out.
*/
func TestHTTP_SessionLifecycle(t *testing.T) {
	router, _ := newAuthRouter(t, false)

	// 1. Register
	recorder := send(t, router, http.MethodPost, "/register", `{"username":"alice","email":"alice@example.com","password":"secret1"}`, "", "")
	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "password")
	assert.NotContains(t, recorder.Body.String(), `"token"`)

	recorder = send(t, router, http.MethodPost, "/register", `{"username":"alice2","email":"ALICE@example.com","password":"secret1"}`, "", "")
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, "EMAIL_TAKEN", decodeEnvelope(t, recorder).Code)

	// 2. Login
	recorder = send(t, router, http.MethodPost, "/login", `{"login":"alice","password":"nope12"}`, "", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeEnvelope(t, recorder).Code)

	recorder = send(t, router, http.MethodPost, "/login", `{"login":"alice@example.com","password":"secret1"}`, "", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	var session sessionPayload
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, recorder).Data, &session))
	assert.Equal(t, "Bearer", session.TokenType)
	assert.Equal(t, 900, session.ExpiresIn)
	cookie := refreshCookie(recorder)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, constants.RefreshTokenCookiePath, cookie.Path)

	// 3. Me
	recorder = send(t, router, http.MethodGet, "/me", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = send(t, router, http.MethodGet, "/me", "", session.AccessToken, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	var me User
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, recorder).Data, &me))
	assert.Equal(t, "alice", me.Username)

	// 4. Refresh rotates the cookie
	recorder = send(t, router, http.MethodPost, "/refresh", "", "", cookie.Value)
	require.Equal(t, http.StatusOK, recorder.Code)
	rotated := refreshCookie(recorder)
	require.NotNil(t, rotated)
	assert.NotEqual(t, cookie.Value, rotated.Value)

	recorder = send(t, router, http.MethodPost, "/refresh", "", "", cookie.Value)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "INVALID_SESSION", decodeEnvelope(t, recorder).Code)

	// 5. Logout clears the cookie
	recorder = send(t, router, http.MethodPost, "/logout", "", session.AccessToken, rotated.Value)
	require.Equal(t, http.StatusNoContent, recorder.Code)
	cleared := refreshCookie(recorder)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	recorder = send(t, router, http.MethodPost, "/refresh", "", "", rotated.Value)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestHTTP_RegisterValidation rejects malformed payloads before the service runs.
*/
func TestHTTP_RegisterValidation(t *testing.T) {
	router, fixture := newAuthRouter(t, false)

	tests := []struct {
		name string
		body string
	}{
		{"short_password", `{"username":"alice","email":"alice@example.com","password":"12345"}`},
		{"short_username", `{"username":"al","email":"alice@example.com","password":"secret1"}`},
		{"bad_email", `{"username":"alice","email":"alice","password":"secret1"}`},
		{"blank_username", `{"username":"   ","email":"alice@example.com","password":"secret1"}`},
		{"not_json", `{"username":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := send(t, router, http.MethodPost, "/register", tt.body, "", "")
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}

	assert.Empty(t, fixture.users.users)
}

/*
TestHTTP_RecoveryTokens are echoed only when token exposure is enabled.
*/
func TestHTTP_RecoveryTokens(t *testing.T) {
	tests := []struct {
		name   string
		expose bool
	}{
		{"development", true},
		{"production", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newAuthRouter(t, tt.expose)

			recorder := send(t, router, http.MethodPost, "/register", `{"username":"alice","email":"alice@example.com","password":"secret1"}`, "", "")
			require.Equal(t, http.StatusCreated, recorder.Code)
			var registered struct {
				Token string `json:"token"`
			}
			require.NoError(t, json.Unmarshal(decodeEnvelope(t, recorder).Data, &registered))

			recorder = send(t, router, http.MethodPost, "/forgot-password", `{"email":"alice@example.com"}`, "", "")
			require.Equal(t, http.StatusOK, recorder.Code)
			var forgot map[string]string
			require.NoError(t, json.Unmarshal(decodeEnvelope(t, recorder).Data, &forgot))

			if !tt.expose {
				assert.Empty(t, registered.Token)
				assert.NotContains(t, forgot, FieldResetToken)
				return
			}

			require.NotEmpty(t, registered.Token)
			recorder = send(t, router, http.MethodPost, "/verify-email", `{"token":"`+registered.Token+`"}`, "", "")
			assert.Equal(t, http.StatusOK, recorder.Code)

			resetToken := forgot[FieldResetToken]
			require.NotEmpty(t, resetToken)
			recorder = send(t, router, http.MethodPost, "/reset-password", `{"token":"`+resetToken+`","password":"changed1"}`, "", "")
			assert.Equal(t, http.StatusOK, recorder.Code)

			recorder = send(t, router, http.MethodPost, "/reset-password", `{"token":"`+resetToken+`","password":"changed1"}`, "", "")
			assert.Equal(t, http.StatusForbidden, recorder.Code)
		})
	}
}
