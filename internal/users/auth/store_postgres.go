// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/jasht/internal/platform/database/schema"
	"github.com/taibuivan/jasht/internal/platform/dberr"
)

// Unique index names from the users migration.
const (
	emailIndex    = "account_email_uq"
	usernameIndex = "account_username_uq"
)

var (
	accountTable = schema.UserAccount
	sessionTable = schema.UserSession

	userSelect = fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s, %s, %s FROM %s`,
		accountTable.ID, accountTable.Username, accountTable.Email, accountTable.Password,
		accountTable.Role, accountTable.IsVerified, accountTable.CreatedAt, accountTable.UpdatedAt,
		accountTable.Table,
	)

	sessionSelect = fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s, %s, %s FROM %s`,
		sessionTable.ID, sessionTable.UserID, sessionTable.TokenHash, sessionTable.UserAgent,
		sessionTable.IPAddress, sessionTable.ExpiresAt, sessionTable.IsRevoked, sessionTable.CreatedAt,
		sessionTable.Table,
	)
)

// # User Repository

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a PostgreSQL backed [UserRepository].
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create persists a new account.

Description: Unique violations on email or username are reported with the
matching domain error, so concurrent registrations cannot both succeed.
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		accountTable.Table,
		accountTable.ID, accountTable.Username, accountTable.Email, accountTable.Password,
		accountTable.Role, accountTable.IsVerified, accountTable.CreatedAt, accountTable.UpdatedAt,
	)

	now := time.Now().UTC()
	_, err := repository.pool.Exec(context, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role, user.IsVerified, now,
	)
	if err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && dberr.IsUniqueViolation(err) {
			switch pgError.ConstraintName {
			case emailIndex:
				return ErrEmailTaken.Wrap(err)
			case usernameIndex:
				return ErrUsernameTaken.Wrap(err)
			}
		}
		return dberr.Wrap(err, "create_user")
	}

	user.CreatedAt, user.UpdatedAt = now, now
	return nil
}

// FindByID retrieves a live account.
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`%s WHERE %s = $1 AND %s IS NULL`, userSelect, accountTable.ID, accountTable.DeletedAt)
	return repository.findOne(context, query, id, "find_user_by_id")
}

// FindByEmail retrieves a live account by email, ignoring case.
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`%s WHERE lower(%s) = lower($1) AND %s IS NULL`, userSelect, accountTable.Email, accountTable.DeletedAt)
	return repository.findOne(context, query, strings.TrimSpace(email), "find_user_by_email")
}

// FindByUsername retrieves a live account by username, ignoring case.
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	query := fmt.Sprintf(`%s WHERE lower(%s) = lower($1) AND %s IS NULL`, userSelect, accountTable.Username, accountTable.DeletedAt)
	return repository.findOne(context, query, strings.TrimSpace(username), "find_user_by_username")
}

// UpdatePassword replaces the password hash.
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = now() WHERE %s = $1 AND %s IS NULL`,
		accountTable.Table, accountTable.Password, accountTable.UpdatedAt, accountTable.ID, accountTable.DeletedAt)

	return repository.execOne(context, "update_password", query, userID, newHash)
}

// MarkVerified flags the account's email as confirmed.
func (repository *PostgresUserRepository) MarkVerified(context context.Context, userID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE, %s = now() WHERE %s = $1 AND %s IS NULL`,
		accountTable.Table, accountTable.IsVerified, accountTable.UpdatedAt, accountTable.ID, accountTable.DeletedAt)

	return repository.execOne(context, "mark_verified", query, userID)
}

func (repository *PostgresUserRepository) findOne(context context.Context, query, argument, action string) (*User, error) {
	user := &User{}
	err := repository.pool.QueryRow(context, query, argument).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Role, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return user, nil
}

// execOne runs a statement that must touch exactly one live row.
func (repository *PostgresUserRepository) execOne(context context.Context, action, query string, arguments ...any) error {
	tag, err := repository.pool.Exec(context, query, arguments...)
	if err != nil {
		return dberr.Wrap(err, action)
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// # Session Repository

// PostgresSessionRepository implements [SessionRepository] using pgx.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a PostgreSQL backed [SessionRepository].
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

// Create records a new refresh session.
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sessionTable.Table,
		sessionTable.ID, sessionTable.UserID, sessionTable.TokenHash, sessionTable.UserAgent,
		sessionTable.IPAddress, sessionTable.ExpiresAt, sessionTable.IsRevoked, sessionTable.CreatedAt,
	)

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	_, err := repository.pool.Exec(context, query,
		session.ID, session.UserID, session.TokenHash, session.UserAgent,
		session.IPAddress, session.ExpiresAt, session.IsRevoked, session.CreatedAt,
	)
	return dberr.Wrap(err, "create_session")
}

// FindByTokenHash returns the live session for a refresh token hash.
func (repository *PostgresSessionRepository) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	query := fmt.Sprintf(`%s WHERE %s = $1 AND NOT %s AND %s > now()`,
		sessionSelect, sessionTable.TokenHash, sessionTable.IsRevoked, sessionTable.ExpiresAt)

	session := &Session{}
	err := repository.pool.QueryRow(context, query, tokenHash).Scan(
		&session.ID, &session.UserID, &session.TokenHash, &session.UserAgent,
		&session.IPAddress, &session.ExpiresAt, &session.IsRevoked, &session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidSession
		}
		return nil, dberr.Wrap(err, "find_session")
	}
	return session, nil
}

// Revoke invalidates one session.
func (repository *PostgresSessionRepository) Revoke(context context.Context, sessionID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE, %s = now() WHERE %s = $1`,
		sessionTable.Table, sessionTable.IsRevoked, sessionTable.RevokedAt, sessionTable.ID)

	_, err := repository.pool.Exec(context, query, sessionID)
	return dberr.Wrap(err, "revoke_session")
}

// RevokeAll invalidates every live session of a user.
func (repository *PostgresSessionRepository) RevokeAll(context context.Context, userID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE, %s = now() WHERE %s = $1 AND NOT %s`,
		sessionTable.Table, sessionTable.IsRevoked, sessionTable.RevokedAt, sessionTable.UserID, sessionTable.IsRevoked)

	_, err := repository.pool.Exec(context, query, userID)
	return dberr.Wrap(err, "revoke_all_sessions")
}

// RevokeOthers invalidates every live session of a user except the current one.
func (repository *PostgresSessionRepository) RevokeOthers(context context.Context, userID, currentSessionID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE, %s = now() WHERE %s = $1 AND %s <> $2 AND NOT %s`,
		sessionTable.Table, sessionTable.IsRevoked, sessionTable.RevokedAt,
		sessionTable.UserID, sessionTable.ID, sessionTable.IsRevoked)

	_, err := repository.pool.Exec(context, query, userID, currentSessionID)
	return dberr.Wrap(err, "revoke_other_sessions")
}
