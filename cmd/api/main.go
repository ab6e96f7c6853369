package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-service/internal/api/http"
	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/classifier"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/repository/memstore"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/taxonomy"
	"github.com/spec-kit/complaint-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App.Name, cfg.Logger)
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
	if pg.Configured() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		store = repository.NewPostgresStore(pg.PoolHandle())
	} else {
		store = memstore.New()
	}
	repos := store.Repos()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	webhook := worker.NewWebhookWorker(cfg.Notification, logger)
	webhook.Start(ctx)
	defer webhook.Stop()
	service.NewNotificationService(dispatcher, logger, webhook).RegisterHandlers()

	sanitizer := classifier.NewSanitizer()
	taxonomyStore := taxonomy.NewStore(repos.Taxonomy, taxonomy.Config{TTL: cfg.Taxonomy.CacheTTL()})
	classificationService := service.NewClassificationService(service.ClassificationDependencies{
		Classifier: classifier.New(taxonomyStore, repos.Taxonomy, logger, classifier.Config{Threshold: cfg.Classifier.Threshold}),
		Taxonomy:   taxonomyStore,
	})
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Sanitizer:  sanitizer,
		Logger:     logger,
	})
	triageService := service.NewTriageService(service.TriageDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Sanitizer:  sanitizer,
		Logger:     logger,
		Metrics:    metrics,
	})
	lifecycleService := service.NewLifecycleService(service.LifecycleDependencies{
		Store:      store,
		Triage:     triageService,
		Dispatcher: dispatcher,
		Sanitizer:  sanitizer,
		Logger:     logger,
		Metrics:    metrics,
	})
	reportService := service.NewReportService(store)
	taxonomyAdminService := service.NewTaxonomyAdminService(service.TaxonomyAdminDependencies{
		Store:     store,
		Sanitizer: sanitizer,
		Logger:    logger,
	})
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:  repos.Users,
		StaffRepo: repos.Staff,
	})
	staffService := service.NewStaffService(*cfg, service.AccountDependencies{
		UserRepo:  repos.Users,
		StaffRepo: repos.Staff,
	})
	profileService := service.NewProfileService(service.ProfileDependencies{
		UserRepo:  repos.Users,
		StaffRepo: repos.Staff,
		Sanitizer: sanitizer,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.Users, repos.Staff)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(authService),
		Complaints:     handlers.NewComplaintsHandler(classificationService, complaintService),
		Subadmin:       handlers.NewSubadminHandler(lifecycleService, triageService, reportService),
		Admin:          handlers.NewAdminHandler(lifecycleService, reportService, staffService),
		Taxonomy:       handlers.NewTaxonomyHandler(taxonomyAdminService, classificationService),
		Profile:        handlers.NewProfileHandler(profileService),
		AuthMiddleware: authMiddleware,
		RateLimiter:    httptransport.RateLimiter(cfg.RateLimit, redis.LimiterStorage()),
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
