package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/session-bridge/internal/domain"
)

func TestMintPairClaims(t *testing.T) {
	signer := NewTokenSigner("test-secret", time.Hour, 7*24*time.Hour)

	pair, err := signer.MintPair("user-1", "a@b.com", domain.RoleAuthenticated)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := signer.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", access.Subject)
	assert.Equal(t, "a@b.com", access.Email)
	assert.Equal(t, domain.RoleAuthenticated, access.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), access.ExpiresAt.Time, 5*time.Second)

	refresh, err := signer.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", refresh.Subject)
	assert.True(t, refresh.Refresh)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), refresh.ExpiresAt.Time, 5*time.Second)
}

func TestMintPairMissingSecret(t *testing.T) {
	signer := NewTokenSigner("", time.Hour, 7*24*time.Hour)

	_, err := signer.MintPair("user-1", "a@b.com", domain.RoleAuthenticated)
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestParseRefreshRejectsAccessToken(t *testing.T) {
	signer := NewTokenSigner("test-secret", time.Hour, 7*24*time.Hour)

	pair, err := signer.MintPair("user-1", "a@b.com", domain.RoleAuthenticated)
	require.NoError(t, err)

	_, err = signer.ParseRefresh(pair.AccessToken)
	require.Error(t, err)
}

func TestParseAccessRejectsTamperedToken(t *testing.T) {
	signer := NewTokenSigner("test-secret", time.Hour, 7*24*time.Hour)
	other := NewTokenSigner("other-secret", time.Hour, 7*24*time.Hour)

	pair, err := other.MintPair("user-1", "a@b.com", domain.RoleAuthenticated)
	require.NoError(t, err)

	_, err = signer.ParseAccess(pair.AccessToken)
	require.Error(t, err)
}

func TestZeroTTLsFallBackToDefaults(t *testing.T) {
	signer := NewTokenSigner("test-secret", 0, 0)
	assert.Equal(t, time.Hour, signer.AccessTTL())
}
