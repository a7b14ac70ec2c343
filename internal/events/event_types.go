package events

import (
	"time"

	"github.com/spec-kit/session-bridge/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIdentityCreated   EventType = "identity_created"
	EventIdentityRefreshed EventType = "identity_refreshed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	IdentityID string      `json:"identity_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// IdentityCreatedPayload carries the data the enrollment hook needs.
type IdentityCreatedPayload struct {
	Email    string          `json:"email"`
	Name     string          `json:"name"`
	Provider domain.Provider `json:"provider"`
}

// IdentityRefreshedPayload notes a metadata refresh on an existing identity.
type IdentityRefreshedPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
