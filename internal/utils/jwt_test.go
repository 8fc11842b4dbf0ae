package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "access-secret"
	testRefreshSecret = "refresh-secret"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	tok, err := NewAccessToken(testAccessSecret, 42, "a@x.com", "admin", 15)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), tok.Exp, 5*time.Second)

	id, err := VerifyToken(TokenKindAccess, testAccessSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id.UserID)
	assert.Equal(t, "a@x.com", id.Email)
	assert.Equal(t, "admin", id.Role)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	tok, err := NewRefreshToken(testRefreshSecret, 7, "s@x.com", "superadmin", 7)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(7*24*time.Hour), tok.Exp, 5*time.Second)

	id, err := VerifyToken(TokenKindRefresh, testRefreshSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id.UserID)
	assert.Equal(t, "superadmin", id.Role)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	tok, err := NewAccessToken(testAccessSecret, 1, "a@x.com", "user", 15)
	require.NoError(t, err)

	_, err = VerifyToken(TokenKindAccess, "other-secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_Expired(t *testing.T) {
	tok, err := NewAccessToken(testAccessSecret, 1, "a@x.com", "user", -1)
	require.NoError(t, err)

	_, err = VerifyToken(TokenKindAccess, testAccessSecret, tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_Malformed(t *testing.T) {
	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := VerifyToken(TokenKindAccess, testAccessSecret, raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "raw=%q", raw)
	}
}

// A refresh token must be rejected when presented as an access token even if
// both kinds were signed with the same secret: the kind claim is checked in
// addition to the signature.
func TestVerifyToken_KindMismatchSameSecret(t *testing.T) {
	shared := "shared-secret"
	refresh, err := NewRefreshToken(shared, 1, "a@x.com", "user", 7)
	require.NoError(t, err)

	_, err = VerifyToken(TokenKindAccess, shared, refresh.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	access, err := NewAccessToken(shared, 1, "a@x.com", "user", 15)
	require.NoError(t, err)

	_, err = VerifyToken(TokenKindRefresh, shared, access.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
