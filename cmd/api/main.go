package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/care-access/internal/api/http"
	"github.com/spec-kit/care-access/internal/api/http/handlers"
	"github.com/spec-kit/care-access/internal/auth"
	"github.com/spec-kit/care-access/internal/config"
	"github.com/spec-kit/care-access/internal/events"
	"github.com/spec-kit/care-access/internal/observability"
	"github.com/spec-kit/care-access/internal/persistence"
	"github.com/spec-kit/care-access/internal/repository"
	"github.com/spec-kit/care-access/internal/repository/memory"
	"github.com/spec-kit/care-access/internal/service"
	"github.com/spec-kit/care-access/internal/worker"
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

	var store repository.Store
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		store = repository.NewPostgresStore(pool)
	} else {
		store = memory.NewStore()
		pg = nil
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	deps := service.Dependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	}

	identityService := service.NewIdentityService(deps)
	if err := identityService.SeedSuperAdmins(ctx, cfg.Access.SuperAdminPrincipals); err != nil {
		logger.Fatal("failed to seed superAdmins", zap.Error(err))
	}
	lifecycleService := service.NewLifecycleService(deps)
	approvalService := service.NewApprovalService(deps)
	auditService := service.NewAuditService(deps, cfg.Access.AuditMaxPageSize)

	worker.StartNotificationWorker(ctx, service.NewNotificationService(dispatcher, logger, cfg.Notification, redis.Client))

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL())

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:     handlers.NewUsersHandler(identityService),
		Roles:     handlers.NewRolesHandler(lifecycleService),
		Approvals: handlers.NewApprovalsHandler(approvalService),
		Audit:     handlers.NewAuditHandler(auditService),
		Care: handlers.NewCareHandler(
			service.NewFacilityService(deps),
			service.NewDeviceService(deps),
			service.NewAppointmentService(deps),
			service.NewRecordService(deps),
		),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		RoleChecker:    service.NewAccessGuard(deps),
		RateLimiter:    httptransport.NewRateLimiter(cfg.RateLimit),
		Metrics:        metrics,
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
