package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(testSecret, 15*time.Minute, 24*time.Hour, "launch")
	require.NoError(t, err)
	return m
}

func TestTokenPair(t *testing.T) {
	m := newManager(t)

	pair, err := m.GenerateTokenPair("usr-1", "tnt-1", []string{"owner"})
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", claims.UserID)
	assert.Equal(t, "usr-1", claims.Subject)
	assert.Equal(t, "tnt-1", claims.TenantID)
	assert.Equal(t, []string{"owner"}, claims.Roles)

	_, err = m.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	refreshed, err := m.RefreshTokens(pair.RefreshToken)
	require.NoError(t, err)
	claims, err = m.ValidateAccessToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "tnt-1", claims.TenantID)

	_, err = m.RefreshTokens(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejects(t *testing.T) {
	m := newManager(t)
	pair, err := m.GenerateTokenPair("usr-1", "tnt-1", nil)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		m.now = func() time.Time { return time.Now().Add(time.Hour) }
		defer func() { m.now = time.Now }()
		_, err := m.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewManager("fedcba9876543210fedcba9876543210", time.Minute, time.Hour, "launch")
		require.NoError(t, err)
		_, err = other.ValidateToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other issuer", func(t *testing.T) {
		other, err := NewManager(testSecret, time.Minute, time.Hour, "elsewhere")
		require.NoError(t, err)
		_, err = other.ValidateToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none alg", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Type: TypeAccess}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.ValidateToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestWeakSecret(t *testing.T) {
	_, err := NewManager("short", time.Minute, time.Hour, "launch")
	assert.ErrorIs(t, err, ErrWeakSecret)
}
