package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/session-bridge/internal/api/dto"
	"github.com/spec-kit/session-bridge/internal/repository"
	apperrors "github.com/spec-kit/session-bridge/pkg/util"
)

const defaultPageSize = 50

// IdentitiesHandler exposes the operator view of provisioned identities.
type IdentitiesHandler struct {
	identities repository.IdentityRepository
}

// NewIdentitiesHandler constructs handler.
func NewIdentitiesHandler(identities repository.IdentityRepository) *IdentitiesHandler {
	return &IdentitiesHandler{identities: identities}
}

// List handles GET /api/admin/identities.
func (h *IdentitiesHandler) List(c *fiber.Ctx) error {
	limit := queryInt(c, "limit", defaultPageSize)
	if limit <= 0 || limit > 200 {
		limit = defaultPageSize
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	identities, err := h.identities.List(c.UserContext(), limit, offset)
	if err != nil {
		return apperrors.MapError(err)
	}

	items := make([]dto.IdentityResponse, 0, len(identities))
	for _, identity := range identities {
		items = append(items, dto.IdentityResponse{
			ID:             identity.ID,
			Email:          identity.Email,
			Name:           identity.Name,
			AvatarURL:      identity.AvatarURL,
			Provider:       string(identity.Provider),
			EmailConfirmed: identity.EmailConfirmed,
			CreatedAt:      identity.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"identities": items,
			"limit":      limit,
			"offset":     offset,
		},
	})
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	val := c.Query(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
