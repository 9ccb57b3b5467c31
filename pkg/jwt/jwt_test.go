package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager("test-secret", 15*time.Minute, time.Hour, "test")
	require.NoError(t, err)
	return m
}

func TestGenerateAndValidate(t *testing.T) {
	r := require.New(t)
	m := newTestManager(t)

	pair, err := m.GenerateTokenPair("u1", "alice@test.local", "alice")
	r.NoError(err)

	claims, err := m.ValidateToken(pair.AccessToken)
	r.NoError(err)
	r.Equal("u1", claims.UserID)
	r.Equal("alice@test.local", claims.Email)
	r.Equal("alice", claims.Username)
	r.Equal("access", claims.Type)

	claims, err = m.ValidateToken(pair.RefreshToken)
	r.NoError(err)
	r.Equal("refresh", claims.Type)
}

func TestRefreshPreservesIdentityClaims(t *testing.T) {
	r := require.New(t)
	m := newTestManager(t)

	pair, err := m.GenerateTokenPair("u1", "alice@test.local", "alice")
	r.NoError(err)

	// Refresh twice; the identity must survive each rotation intact.
	for i := 0; i < 2; i++ {
		pair, err = m.RefreshTokens(pair.RefreshToken)
		r.NoError(err)

		claims, err := m.ValidateToken(pair.AccessToken)
		r.NoError(err)
		r.Equal("u1", claims.UserID)
		r.Equal("alice@test.local", claims.Email)
		r.Equal("alice", claims.Username)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	r := require.New(t)
	m := newTestManager(t)

	pair, err := m.GenerateTokenPair("u1", "alice@test.local", "alice")
	r.NoError(err)

	_, err = m.RefreshTokens(pair.AccessToken)
	r.ErrorIs(err, ErrInvalidToken)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	r := require.New(t)
	m := newTestManager(t)

	other, err := NewManager("other-secret", 15*time.Minute, time.Hour, "test")
	r.NoError(err)
	pair, err := other.GenerateTokenPair("u1", "alice@test.local", "alice")
	r.NoError(err)

	_, err = m.ValidateToken(pair.AccessToken)
	r.ErrorIs(err, ErrInvalidToken)
}
