package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/solar-admin/internal/backend"
	"github.com/jwalitptl/solar-admin/internal/config"
	addressbookHandler "github.com/jwalitptl/solar-admin/internal/handler/addressbook"
	auditHandler "github.com/jwalitptl/solar-admin/internal/handler/audit"
	authHandler "github.com/jwalitptl/solar-admin/internal/handler/auth"
	"github.com/jwalitptl/solar-admin/internal/handler/customerpreorder"
	"github.com/jwalitptl/solar-admin/internal/handler/health"
	notificationHandler "github.com/jwalitptl/solar-admin/internal/handler/notification"
	promHandler "github.com/jwalitptl/solar-admin/internal/handler/prometheus"
	"github.com/jwalitptl/solar-admin/internal/handler/resource"
	"github.com/jwalitptl/solar-admin/internal/middleware"
	"github.com/jwalitptl/solar-admin/internal/repository"
	"github.com/jwalitptl/solar-admin/internal/repository/postgres"
	"github.com/jwalitptl/solar-admin/internal/repository/remote"
	"github.com/jwalitptl/solar-admin/internal/router"
	"github.com/jwalitptl/solar-admin/internal/service/addressbook"
	"github.com/jwalitptl/solar-admin/internal/service/audit"
	"github.com/jwalitptl/solar-admin/internal/service/catalog"
	"github.com/jwalitptl/solar-admin/internal/service/notification"
	"github.com/jwalitptl/solar-admin/internal/service/session"
	"github.com/jwalitptl/solar-admin/internal/storage"
	"github.com/jwalitptl/solar-admin/internal/worker"
	"github.com/jwalitptl/solar-admin/pkg/auth"
	"github.com/jwalitptl/solar-admin/pkg/logger"
	"github.com/jwalitptl/solar-admin/pkg/metrics"
	"github.com/jwalitptl/solar-admin/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level := logger.ParseLevel(cfg.Log.Level)
	zerolog.SetGlobalLevel(level)
	appLog := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		JSON:       cfg.Environment != "development",
	})

	ctx := context.Background()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics("solar_admin", registry)

	// Storage
	store, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}

	// Audit trail, only with a database
	var auditRepo repository.AuditRepository
	checks := []health.Check{}
	if cfg.Database.DSN != "" {
		db, err := postgres.NewDB(ctx, postgres.Config{
			DSN:             cfg.Database.DSN,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		base := postgres.NewBaseRepository(db)
		auditRepo = postgres.NewAuditRepository(base)
		checks = append(checks, health.Check{Name: "audit_db", Optional: true, Ping: base.Ping})
	} else {
		log.Warn().Msg("no database configured, audit trail disabled")
	}
	auditSvc := audit.NewService(auditRepo)
	auditor := audit.NewAuditLogger(auditSvc, appLog)

	// Backend client
	client := backend.NewClient(backend.Config{
		BaseURL:   cfg.BackendURL(),
		Timeout:   cfg.Backend.Timeout,
		UserAgent: "solar-admin",
		Breaker:   cfg.Backend.Breaker.Settings("backend"),
	}, appLog, m)

	// Repositories
	products := remote.NewProductRepository(client)
	categories := remote.NewCategoryRepository(client)
	promotions := remote.NewPromotionRepository(client)
	preorders := remote.NewPreOrderRepository(client)
	locations := remote.NewPickupLocationRepository(client)
	admins := remote.NewAdminUserRepository(client)
	customerPreOrders := remote.NewCustomerPreOrderRepository(client)
	notifications := remote.NewNotificationRepository(client)
	authRepo := remote.NewAuthRepository(client)

	// Services
	jwtSvc, err := auth.NewJWTService(cfg.Session.Secret, cfg.Session.Issuer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token service")
	}
	sessionSvc := session.NewService(authRepo, store, jwtSvc, cfg.Session.TTL, auditor, appLog, m)
	addressSvc := addressbook.NewService(store, auditor)
	notificationSvc := notification.NewService(notification.Config{
		DraftTTL:   cfg.Notification.DraftTTL,
		Currency:   cfg.Notification.Currency,
		DateFormat: cfg.Notification.DateFormat,
	}, customerPreOrders, locations, notifications, addressSvc, validator.New(), auditor, appLog, m)

	productSvc := catalog.NewProductService(products, auditor)
	categorySvc := catalog.NewCategoryService(categories, auditor)
	promotionSvc := catalog.NewPromotionService(promotions, auditor)
	preorderSvc := catalog.NewPreOrderService(preorders, auditor)
	locationSvc := catalog.NewPickupLocationService(locations, auditor)
	adminSvc := catalog.NewAdminUserService(admins, auditor)
	cpoSvc := catalog.NewCustomerPreOrderService(customerPreOrders, auditor)

	// Handlers
	checks = append(checks,
		health.Check{Name: "store", Ping: store.Ping},
		health.Check{Name: "backend", Optional: true, Ping: client.Ping},
	)
	healthH := health.NewHandler(checks...)
	prom := promHandler.New(registry, m)

	r := router.NewRouter(
		middleware.NewAuthMiddleware(sessionSvc),
		router.RouterConfig{
			Mode: ginMode(cfg.Environment),
			RateLimiter: middleware.RateLimiterConfig{
				Rate:  rate.Limit(cfg.RateLimit.RPS),
				Burst: cfg.RateLimit.Burst,
			},
			CORSConfig: middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins...),
			SizeLimit:  middleware.DefaultSizeLimitConfig(),
			Security:   middleware.DefaultSecurityConfig(),
		},
		router.WithHealth(healthH),
		router.WithMetrics(prom.Handler(), prom.Middleware()),
		router.WithAuth(authHandler.NewHandler(sessionSvc)),
		router.WithHandlers(
			resource.NewHandler(productSvc, "/products").WithUploads("images"),
			resource.NewHandler(categorySvc, "/categories").WithUploads("image"),
			resource.NewHandler(promotionSvc, "/promotions"),
			resource.NewHandler(preorderSvc, "/preorders"),
			resource.NewHandler(locationSvc, "/pickup-locations"),
			customerpreorder.NewHandler(cpoSvc),
			notificationHandler.NewHandler(notificationSvc),
			addressbookHandler.NewHandler(addressSvc),
		),
		router.WithRestricted(
			resource.NewHandler(adminSvc, "/admin-users"),
			auditHandler.NewHandler(auditSvc),
		),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	if auditSvc.Enabled() {
		cleanup := worker.NewAuditCleanupWorker(auditSvc, cfg.Database.AuditRetention, 24*time.Hour, appLog)
		go cleanup.Start(workerCtx)
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("backend", client.BaseURL()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	auditor.Wait()

	log.Info().Msg("server exited")
}

func newStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.Storage.Driver == "redis" {
		return storage.NewRedis(ctx, storage.RedisConfig{
			URL:    cfg.Storage.RedisURL,
			Prefix: "solar-admin:",
		})
	}
	return storage.NewMemory(10 * time.Minute), nil
}

func ginMode(env string) string {
	if env == "development" {
		return "debug"
	}
	return "release"
}
