package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("user-1", "ADMIN", secret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, "ADMIN", session.Role)
}

func TestParseToken(t *testing.T) {
	secret := []byte("test-secret")

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateToken("user-1", "STAFF", secret, time.Hour)
		require.NoError(t, err)

		_, err = ParseToken(token, []byte("other-secret"))
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := GenerateToken("user-1", "STAFF", secret, -time.Minute)
		require.NoError(t, err)

		_, err = ParseToken(token, secret)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseToken("not-a-jwt", secret)
		assert.Error(t, err)
	})

	t.Run("missing user id", func(t *testing.T) {
		token, err := GenerateToken("", "STAFF", secret, time.Hour)
		require.NoError(t, err)

		_, err = ParseToken(token, secret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
