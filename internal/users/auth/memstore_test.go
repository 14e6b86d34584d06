// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/taibuivan/jasht/internal/platform/dberr"
	"github.com/taibuivan/jasht/internal/platform/sec"
)

// # Users

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*User)}
}

func (store *memoryUsers) find(match func(*User) bool) (*User, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, user := range store.users {
		if match(user) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (store *memoryUsers) FindByID(_ context.Context, id string) (*User, error) {
	return store.find(func(user *User) bool { return user.ID == id })
}

func (store *memoryUsers) FindByEmail(_ context.Context, email string) (*User, error) {
	return store.find(func(user *User) bool { return strings.EqualFold(user.Email, strings.TrimSpace(email)) })
}

func (store *memoryUsers) FindByUsername(_ context.Context, username string) (*User, error) {
	return store.find(func(user *User) bool { return strings.EqualFold(user.Username, strings.TrimSpace(username)) })
}

func (store *memoryUsers) Create(_ context.Context, user *User) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, existing := range store.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrEmailTaken
		}
		if strings.EqualFold(existing.Username, user.Username) {
			return ErrUsernameTaken
		}
	}
	clone := *user
	store.users[user.ID] = &clone
	return nil
}

func (store *memoryUsers) UpdatePassword(_ context.Context, userID, newHash string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	user, ok := store.users[userID]
	if !ok {
		return dberr.ErrNotFound
	}
	user.PasswordHash = newHash
	return nil
}

func (store *memoryUsers) MarkVerified(_ context.Context, userID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	user, ok := store.users[userID]
	if !ok {
		return dberr.ErrNotFound
	}
	user.IsVerified = true
	return nil
}

// # Sessions

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: make(map[string]*Session)}
}

func (store *memorySessions) Create(_ context.Context, session *Session) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	clone := *session
	store.sessions[session.ID] = &clone
	return nil
}

func (store *memorySessions) FindByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, session := range store.sessions {
		if session.TokenHash == tokenHash && !session.IsRevoked && session.ExpiresAt.After(testNow) {
			clone := *session
			return &clone, nil
		}
	}
	return nil, ErrInvalidSession
}

func (store *memorySessions) Revoke(_ context.Context, sessionID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if session, ok := store.sessions[sessionID]; ok {
		session.IsRevoked = true
	}
	return nil
}

func (store *memorySessions) RevokeAll(_ context.Context, userID string) error {
	return store.RevokeOthers(context.Background(), userID, "")
}

func (store *memorySessions) RevokeOthers(_ context.Context, userID, currentSessionID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, session := range store.sessions {
		if session.UserID == userID && session.ID != currentSessionID {
			session.IsRevoked = true
		}
	}
	return nil
}

// live counts the unrevoked sessions of a user.
func (store *memorySessions) live(userID string) int {
	store.mu.Lock()
	defer store.mu.Unlock()
	count := 0
	for _, session := range store.sessions {
		if session.UserID == userID && !session.IsRevoked {
			count++
		}
	}
	return count
}

// # One-Time Tokens

type memoryTokens struct {
	mu     sync.Mutex
	tokens map[string]string
	ttls   map[string]time.Duration
	down   bool
}

func newMemoryTokens() *memoryTokens {
	return &memoryTokens{tokens: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (store *memoryTokens) Set(_ context.Context, token, userID string, ttl time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.down {
		return errors.New("token store down")
	}
	store.tokens[token] = userID
	store.ttls[token] = ttl
	return nil
}

func (store *memoryTokens) Get(_ context.Context, token string) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	userID, ok := store.tokens[token]
	if !ok {
		return "", ErrInvalidToken
	}
	return userID, nil
}

func (store *memoryTokens) Delete(_ context.Context, token string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.tokens, token)
	return nil
}

// # Signing Keys

var (
	keyOnce   sync.Once
	signer    *sec.TokenService
	signerErr error
)

// testSigner shares one RSA key across the package's tests.
func testSigner(t *testing.T) *sec.TokenService {
	t.Helper()
	keyOnce.Do(func() {
		privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			signerErr = err
			return
		}
		signer = sec.NewTokenServiceFromKeys(privateKey, &privateKey.PublicKey, "jasht-test")
	})
	if signerErr != nil {
		t.Fatalf("generate signing key: %v", signerErr)
	}
	return signer
}
