package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/session-bridge/internal/api/dto"
	"github.com/spec-kit/session-bridge/internal/config"
	"github.com/spec-kit/session-bridge/internal/domain"
	"github.com/spec-kit/session-bridge/internal/service"
	apperrors "github.com/spec-kit/session-bridge/pkg/util"
)

// BridgeHandler exposes the session-bridge endpoints.
type BridgeHandler struct {
	bridge *service.BridgeService
	cfg    config.BridgeConfig
	logger *zap.Logger
}

// NewBridgeHandler constructs handler.
func NewBridgeHandler(bridgeService *service.BridgeService, cfg config.BridgeConfig, logger *zap.Logger) *BridgeHandler {
	return &BridgeHandler{bridge: bridgeService, cfg: cfg, logger: logger}
}

// CreateSession handles POST /api/auth/supabase-session. No request body;
// the primary session cookie carries everything needed.
func (h *BridgeHandler) CreateSession(c *fiber.Ctx) error {
	input := service.BridgeInput{
		PrimaryToken: h.primaryToken(c),
		SessionRef:   c.Cookies(h.cfg.SessionCookieName),
	}

	result, err := h.bridge.Bridge(c.UserContext(), input)
	if err != nil {
		return h.writeError(c, err)
	}

	if result.State == domain.BridgeStateExisting {
		return c.JSON(dto.BridgeResponse{
			Success: true,
			Message: "Existing session found",
			User: &dto.SessionUser{
				ID:    result.Identity.ID,
				Email: result.Identity.Email,
			},
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.SessionCookieName,
		Value:    result.Session.ID,
		Expires:  result.Session.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(dto.BridgeResponse{
		Success: true,
		Message: "Session created successfully",
		Session: &dto.SessionPayload{
			AccessToken:  result.Tokens.AccessToken,
			RefreshToken: result.Tokens.RefreshToken,
			ExpiresIn:    h.cfg.AccessTokenTTLSeconds,
			User: dto.SessionUser{
				ID:    result.Identity.ID,
				Email: result.Identity.Email,
			},
		},
	})
}

// RefreshSession handles POST /api/auth/refresh.
func (h *BridgeHandler) RefreshSession(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if req.RefreshToken == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "refresh_token required"})
	}

	identity, pair, err := h.bridge.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(dto.BridgeResponse{
		Success: true,
		Message: "Session refreshed successfully",
		Session: &dto.SessionPayload{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			ExpiresIn:    h.cfg.AccessTokenTTLSeconds,
			User: dto.SessionUser{
				ID:    identity.ID,
				Email: identity.Email,
			},
		},
	})
}

func (h *BridgeHandler) primaryToken(c *fiber.Ctx) string {
	if token := c.Cookies(h.cfg.PrimaryCookieName); token != "" {
		return token
	}
	return c.Cookies("__Secure-" + h.cfg.PrimaryCookieName)
}

// writeError maps DomainErrors to the flat error body bridge clients parse.
func (h *BridgeHandler) writeError(c *fiber.Ctx, err error) error {
	domainErr := apperrors.ToDomainError(err)
	if domainErr.HTTPStatus >= 500 {
		h.logger.Error("bridge request failed",
			zap.String("code", domainErr.Code),
			zap.Error(domainErr))
	}
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": domainErr.Message})
}
