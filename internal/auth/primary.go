package auth

import (
	"errors"

	jwt "github.com/golang-jwt/jwt/v5"
)

// PrimaryIdentity is the subject asserted by a verified Auth.js session
// token. Verified, never mutated by the bridge flow.
type PrimaryIdentity struct {
	Email   string
	Name    string
	Picture string
}

type primaryClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// PrimaryVerifier validates Auth.js session tokens with the shared secret.
type PrimaryVerifier struct {
	secret []byte
}

// NewPrimaryVerifier builds a verifier for the primary identity system.
func NewPrimaryVerifier(secret string) *PrimaryVerifier {
	return &PrimaryVerifier{secret: []byte(secret)}
}

// Verify checks signature and expiry and returns the asserted identity.
// An empty token returns (nil, nil) so the caller can distinguish "no
// session" from "bad session"; both map to the same unauthenticated outcome.
func (v *PrimaryVerifier) Verify(tokenStr string) (*PrimaryIdentity, error) {
	if tokenStr == "" {
		return nil, nil
	}
	if len(v.secret) == 0 {
		return nil, ErrMissingSecret
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &primaryClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*primaryClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	return &PrimaryIdentity{
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}
