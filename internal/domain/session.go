package domain

import "time"

// TokenPair is a freshly minted access/refresh token set. Never persisted
// server-side; handed to the client and used to establish a session.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Session is the platform-side session state established by presenting a
// minted token pair to the session store.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// BridgeState is the terminal state of a bridge attempt.
type BridgeState string

const (
	// BridgeStateExisting means a live session was found before any
	// provisioning work (fast path).
	BridgeStateExisting BridgeState = "EXISTING"
	// BridgeStateConfirmed means the established session was read back
	// successfully.
	BridgeStateConfirmed BridgeState = "CONFIRMED"
	// BridgeStateDegraded means tokens were minted and the identity resolved,
	// but the live session could not be confirmed by read-back.
	BridgeStateDegraded BridgeState = "DEGRADED_SUCCESS"
)

// BridgeResult is the state-tagged outcome of a successful bridge attempt.
// Unrecoverable failures are returned as errors instead.
type BridgeResult struct {
	State    BridgeState
	Identity *Identity
	Tokens   *TokenPair
	Session  *Session
}

// Verified reports whether the session was confirmed live.
func (r *BridgeResult) Verified() bool {
	return r.State == BridgeStateExisting || r.State == BridgeStateConfirmed
}
