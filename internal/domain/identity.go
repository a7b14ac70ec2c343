package domain

import "time"

// Provider tags which upstream login provider an identity originated from.
type Provider string

const (
	ProviderAuthJS Provider = "authjs"
)

// Role is the platform role asserted in minted tokens.
type Role string

const (
	RoleAuthenticated Role = "authenticated"
)

// Identity is the platform-side identity record, keyed by email. Exactly one
// record exists per unique primary-identity email; its ID is the sub claim of
// every token minted for that email.
type Identity struct {
	ID             string
	Email          string
	Name           string
	AvatarURL      string
	Provider       Provider
	EmailConfirmed bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
