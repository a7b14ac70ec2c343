package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/session-bridge/internal/api/http"
	"github.com/spec-kit/session-bridge/internal/api/http/handlers"
	"github.com/spec-kit/session-bridge/internal/auth"
	"github.com/spec-kit/session-bridge/internal/config"
	"github.com/spec-kit/session-bridge/internal/events"
	"github.com/spec-kit/session-bridge/internal/observability"
	"github.com/spec-kit/session-bridge/internal/persistence"
	"github.com/spec-kit/session-bridge/internal/repository"
	"github.com/spec-kit/session-bridge/internal/service"
	"github.com/spec-kit/session-bridge/internal/session"
	"github.com/spec-kit/session-bridge/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	dispatcher := events.NewInMemoryDispatcher()

	identityRepo := repository.NewIdentityRepository(pg.PoolHandle())
	sessionStore := session.NewRedisStore(redis.Client)

	bridgeService := service.NewBridgeService(cfg.Bridge, service.BridgeDependencies{
		Verifier:   auth.NewPrimaryVerifier(cfg.Bridge.PrimarySecret),
		Signer:     auth.NewTokenSigner(cfg.Bridge.JWTSecret, cfg.Bridge.AccessTokenTTL(), cfg.Bridge.RefreshTokenTTL()),
		Identities: identityRepo,
		Sessions:   sessionStore,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	enrollmentService := service.NewEnrollmentService(dispatcher, logger, cfg.Enrollment)
	worker.StartEnrollmentWorker(enrollmentService)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	bridgeHandler := handlers.NewBridgeHandler(bridgeService, cfg.Bridge, logger)
	identitiesHandler := handlers.NewIdentitiesHandler(identityRepo)
	serviceKey := auth.NewServiceKeyMiddleware(cfg.Admin.ServiceKeyHash)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:     healthHandler,
		Bridge:     bridgeHandler,
		Identities: identitiesHandler,
		ServiceKey: serviceKey,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
