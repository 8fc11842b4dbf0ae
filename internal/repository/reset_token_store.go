package repository

// reset_token_store.go keeps superadmin password-reset tokens in Redis with a
// TTL.  An earlier design held these in process memory, which lost tokens on
// restart and hid them from other instances; a shared keyed store with
// expiry removes both problems.

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrResetTokenInvalid is returned when a reset token is unknown, already
// consumed, or expired.
var ErrResetTokenInvalid = errors.New("invalid or expired reset token")

// ErrResetUnavailable is returned when no Redis connection is configured and
// the reset flow therefore cannot operate.
var ErrResetUnavailable = errors.New("password reset is unavailable")

// ResetTokenStore issues and consumes one-time password-reset tokens.
type ResetTokenStore struct {
	rdb *redis.Client
}

func NewResetTokenStore(rdb *redis.Client) *ResetTokenStore {
	return &ResetTokenStore{rdb: rdb}
}

func resetKey(token string) string { return "pwreset:" + token }

// Issue generates a random token bound to the given email and stores it with
// the supplied TTL.  The token is returned so the caller can deliver it to
// the account owner.
func (s *ResetTokenStore) Issue(ctx context.Context, email string, ttl time.Duration) (string, error) {
	if s.rdb == nil {
		return "", ErrResetUnavailable
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	if err := s.rdb.Set(ctx, resetKey(token), email, ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Consume atomically fetches and deletes a token, returning the bound email.
// A token can therefore be used at most once, regardless of how many
// instances share the store.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (string, error) {
	if s.rdb == nil {
		return "", ErrResetUnavailable
	}
	email, err := s.rdb.GetDel(ctx, resetKey(token)).Result()
	if err == redis.Nil {
		return "", ErrResetTokenInvalid
	}
	if err != nil {
		return "", err
	}
	return email, nil
}
