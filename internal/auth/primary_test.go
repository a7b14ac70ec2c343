package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signPrimary(t *testing.T, secret, email, name string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":   email,
		"name":    name,
		"picture": "https://example.com/a.png",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyPrimaryToken(t *testing.T) {
	verifier := NewPrimaryVerifier("primary-secret")

	identity, err := verifier.Verify(signPrimary(t, "primary-secret", "a@b.com", "A"))
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "a@b.com", identity.Email)
	assert.Equal(t, "A", identity.Name)
	assert.Equal(t, "https://example.com/a.png", identity.Picture)
}

func TestVerifyEmptyTokenReturnsNil(t *testing.T) {
	verifier := NewPrimaryVerifier("primary-secret")

	identity, err := verifier.Verify("")
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	verifier := NewPrimaryVerifier("primary-secret")

	_, err := verifier.Verify(signPrimary(t, "other-secret", "a@b.com", "A"))
	require.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "a@b.com",
		"exp":   time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("primary-secret"))
	require.NoError(t, err)

	verifier := NewPrimaryVerifier("primary-secret")
	_, err = verifier.Verify(signed)
	require.Error(t, err)
}

func TestVerifyMissingSecret(t *testing.T) {
	verifier := NewPrimaryVerifier("")

	_, err := verifier.Verify(signPrimary(t, "primary-secret", "a@b.com", "A"))
	require.ErrorIs(t, err, ErrMissingSecret)
}
