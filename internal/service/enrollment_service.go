package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/session-bridge/internal/config"
	"github.com/spec-kit/session-bridge/internal/events"
)

// EnrollmentService enrolls newly provisioned identities into the mailing
// list. Strictly best-effort: every failure is logged and swallowed so the
// bridge flow can never be blocked by the list provider.
type EnrollmentService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.EnrollmentConfig
	client     *http.Client
}

// NewEnrollmentService creates the service.
func NewEnrollmentService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.EnrollmentConfig) *EnrollmentService {
	return &EnrollmentService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// RegisterHandlers subscribes to identity lifecycle events.
func (n *EnrollmentService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventIdentityCreated, n.handleIdentityCreated)
}

func (n *EnrollmentService) handleIdentityCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IdentityCreatedPayload)
	if !ok {
		n.logger.Warn("enrollment: unexpected payload type", zap.String("event_id", event.ID))
		return nil
	}

	n.logger.Info("IdentityCreated",
		zap.String("identity_id", event.IdentityID),
		zap.String("email", payload.Email))

	if err := n.enroll(ctx, payload.Email, payload.Name, event.IdentityID); err != nil {
		n.logger.Warn("enrollment failed",
			zap.String("identity_id", event.IdentityID),
			zap.String("email", payload.Email),
			zap.Error(err))
	}
	return nil
}

// enroll posts the subscriber to the configured list webhook. A missing URL
// disables enrollment silently.
func (n *EnrollmentService) enroll(ctx context.Context, email, name, identityID string) error {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return nil
	}

	body, err := json.Marshal(map[string]string{
		"email":   email,
		"name":    name,
		"user_id": identityID,
		"list_id": n.cfg.ListID,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.logger.Warn("enrollment webhook rejected subscriber",
			zap.Int("status", resp.StatusCode),
			zap.String("email", email))
	}
	return nil
}
