package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/session-bridge/internal/api/http/handlers"
	"github.com/spec-kit/session-bridge/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Bridge     *handlers.BridgeHandler
	Identities *handlers.IdentitiesHandler
	ServiceKey *auth.ServiceKeyMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authGroup := app.Group("/api/auth")
	authGroup.Post("/supabase-session", cfg.Bridge.CreateSession)
	authGroup.Post("/refresh", cfg.Bridge.RefreshSession)

	adminGroup := app.Group("/api/admin", cfg.ServiceKey.Handle)
	adminGroup.Get("/identities", cfg.Identities.List)
}
