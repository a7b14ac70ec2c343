package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/session-bridge/internal/config"
	"github.com/spec-kit/session-bridge/internal/domain"
	"github.com/spec-kit/session-bridge/internal/events"
)

func TestEnrollmentPostsSubscriber(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dispatcher := events.NewInMemoryDispatcher()
	svc := NewEnrollmentService(dispatcher, zap.NewNop(), config.EnrollmentConfig{
		WebhookURL: server.URL,
		ListID:     "newsletter",
	})
	svc.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:         "evt-1",
		Type:       events.EventIdentityCreated,
		IdentityID: "id1",
		Payload: events.IdentityCreatedPayload{
			Email:    "a@b.com",
			Name:     "A",
			Provider: domain.ProviderAuthJS,
		},
	})
	require.NoError(t, err)

	require.NotNil(t, received)
	assert.Equal(t, "a@b.com", received["email"])
	assert.Equal(t, "id1", received["user_id"])
	assert.Equal(t, "newsletter", received["list_id"])
}

func TestEnrollmentFailureIsSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	server.Close() // force connection errors

	dispatcher := events.NewInMemoryDispatcher()
	svc := NewEnrollmentService(dispatcher, zap.NewNop(), config.EnrollmentConfig{WebhookURL: server.URL})
	svc.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventIdentityCreated,
		Payload: events.IdentityCreatedPayload{Email: "a@b.com"},
	})
	require.NoError(t, err)
}

func TestEnrollmentDisabledWithoutURL(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewEnrollmentService(dispatcher, zap.NewNop(), config.EnrollmentConfig{})
	svc.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventIdentityCreated,
		Payload: events.IdentityCreatedPayload{Email: "a@b.com"},
	})
	require.NoError(t, err)
}
