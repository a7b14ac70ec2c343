package dto

// SessionUser identifies the session subject in responses.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SessionPayload is the minted session handed to the client.
type SessionPayload struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	User         SessionUser `json:"user"`
}

// BridgeResponse is the success body of the bridge endpoint.
type BridgeResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	User    *SessionUser    `json:"user,omitempty"`
	Session *SessionPayload `json:"session,omitempty"`
}

// RefreshRequest payload for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// IdentityResponse is the admin view of an identity record.
type IdentityResponse struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	Provider       string `json:"provider"`
	EmailConfirmed bool   `json:"email_confirmed"`
	CreatedAt      string `json:"created_at"`
}
