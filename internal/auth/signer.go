package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/session-bridge/internal/domain"
)

// ErrMissingSecret is returned when the signing secret is not configured.
// This is a configuration error: fatal, never retried.
var ErrMissingSecret = errors.New("signing secret not configured")

// TokenSigner mints and validates the access/refresh token pair presented to
// the platform session store.
type TokenSigner struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenSigner builds a signer. An empty secret is allowed at construction
// so config problems surface as typed errors on first use instead of a nil
// service.
func NewTokenSigner(secret string, accessTTL, refreshTTL time.Duration) *TokenSigner {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenSigner{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// AccessClaims is the payload of a minted access token.
type AccessClaims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a minted refresh token.
type RefreshClaims struct {
	Role    domain.Role `json:"role"`
	Refresh bool        `json:"refresh"`
	jwt.RegisteredClaims
}

// MintPair signs an access token and a refresh token for the subject with
// distinct claim sets and expiries.
func (s *TokenSigner) MintPair(subject, email string, role domain.Role) (*domain.TokenPair, error) {
	if len(s.secret) == 0 {
		return nil, ErrMissingSecret
	}

	now := time.Now()
	accessExp := now.Add(s.accessTTL)
	refreshExp := now.Add(s.refreshTTL)

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	})
	accessStr, err := access.SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, &RefreshClaims{
		Role:    role,
		Refresh: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
		},
	})
	refreshStr, err := refresh.SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:      accessStr,
		RefreshToken:     refreshStr,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// ParseAccess validates a minted access token and returns its claims.
func (s *TokenSigner) ParseAccess(tokenStr string) (*AccessClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, s.keyFunc)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ParseRefresh validates a minted refresh token and returns its claims.
// Tokens without the refresh flag are rejected.
func (s *TokenSigner) ParseRefresh(tokenStr string) (*RefreshClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &RefreshClaims{}, s.keyFunc)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*RefreshClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if !claims.Refresh {
		return nil, errors.New("not a refresh token")
	}
	return claims, nil
}

// AccessTTL exposes the access token lifetime for response payloads.
func (s *TokenSigner) AccessTTL() time.Duration {
	return s.accessTTL
}

func (s *TokenSigner) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, errors.New("unexpected signing method")
	}
	if len(s.secret) == 0 {
		return nil, ErrMissingSecret
	}
	return s.secret, nil
}
