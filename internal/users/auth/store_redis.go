// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/jasht/internal/platform/constants"
)

// RedisTokenRepository implements [TokenRepository] on Redis strings with a TTL.
type RedisTokenRepository struct {
	client redis.Cmdable
	prefix string
	kind   string
}

// NewResetTokenRepository stores password reset tokens.
func NewResetTokenRepository(client redis.Cmdable) *RedisTokenRepository {
	return &RedisTokenRepository{client: client, prefix: constants.RedisPrefixResetToken, kind: "reset"}
}

// NewVerificationTokenRepository stores email verification tokens.
func NewVerificationTokenRepository(client redis.Cmdable) *RedisTokenRepository {
	return &RedisTokenRepository{client: client, prefix: constants.RedisPrefixVerifyToken, kind: "verify"}
}

func (repository *RedisTokenRepository) key(token string) string {
	return repository.prefix + token
}

// Set stores the token with its owner and expiry.
func (repository *RedisTokenRepository) Set(context context.Context, token, userID string, ttl time.Duration) error {
	if err := repository.client.Set(context, repository.key(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_%s_token_set_failed: %w", repository.kind, err)
	}
	return nil
}

/*
Get resolves a token to its user ID.

Returns:
  - string: The owning user ID
  - error: ErrInvalidToken when absent or expired, connectivity errors otherwise
*/
func (repository *RedisTokenRepository) Get(context context.Context, token string) (string, error) {
	userID, err := repository.client.Get(context, repository.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("redis_%s_token_get_failed: %w", repository.kind, err)
	}
	return userID, nil
}

// Delete removes a used token.
func (repository *RedisTokenRepository) Delete(context context.Context, token string) error {
	if err := repository.client.Del(context, repository.key(token)).Err(); err != nil {
		return fmt.Errorf("redis_%s_token_delete_failed: %w", repository.kind, err)
	}
	return nil
}
