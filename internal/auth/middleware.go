package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/spec-kit/session-bridge/pkg/util"
)

// ServiceKeyMiddleware guards operator endpoints with a bearer service-role
// key compared against a bcrypt hash held in config. The plaintext key is
// never stored by the service.
type ServiceKeyMiddleware struct {
	keyHash string
}

// NewServiceKeyMiddleware constructs the middleware.
func NewServiceKeyMiddleware(keyHash string) *ServiceKeyMiddleware {
	return &ServiceKeyMiddleware{keyHash: keyHash}
}

// Handle enforces the service-role key for admin routes.
func (m *ServiceKeyMiddleware) Handle(c *fiber.Ctx) error {
	if m.keyHash == "" {
		return apperrors.NewConfigError("admin service key not configured")
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthenticated("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthenticated("invalid authorization header")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(m.keyHash), []byte(parts[1])); err != nil {
		return apperrors.NewForbidden("invalid service key")
	}

	return c.Next()
}
