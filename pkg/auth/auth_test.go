package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)

	assert.NotEqual(t, "admin123", hash)
	assert.True(t, CheckPassword(hash, "admin123"))
	assert.False(t, CheckPassword(hash, "admin124"))
	assert.False(t, CheckPassword("not-a-hash", "admin123"))
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", "pos")

	token, err := m.GenerateToken("sess-1", "user-1", "admin", "admin", time.Now())
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID())
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenRejectedWithOtherSecretOrIssuer(t *testing.T) {
	token, err := NewTokenManager("secret", "pos").GenerateToken("sess-1", "user-1", "admin", "admin", time.Now())
	require.NoError(t, err)

	_, err = NewTokenManager("other", "pos").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenManager("secret", "someone-else").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenManager("secret", "pos").ValidateToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
