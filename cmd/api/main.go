package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/horno-sanmarino/bakery-api/docs"
	"github.com/horno-sanmarino/bakery-api/internal/auth"
	"github.com/horno-sanmarino/bakery-api/internal/config"
	"github.com/horno-sanmarino/bakery-api/internal/database"
	"github.com/horno-sanmarino/bakery-api/internal/erp"
	"github.com/horno-sanmarino/bakery-api/internal/http/handler"
	"github.com/horno-sanmarino/bakery-api/internal/http/middleware"
	"github.com/horno-sanmarino/bakery-api/internal/http/router"
	"github.com/horno-sanmarino/bakery-api/internal/jobs"
	"github.com/horno-sanmarino/bakery-api/internal/logger"
	"github.com/horno-sanmarino/bakery-api/internal/repository"
	"github.com/horno-sanmarino/bakery-api/internal/service"
	"github.com/horno-sanmarino/bakery-api/internal/storage"
	"go.uber.org/zap"
)

// @title Horno San Marino API
// @version 1.0
// @description Production, orders and dispatch API for the Horno San Marino bakery

// @contact.name API Support
// @contact.email sistemas@hornosanmarino.ec

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "bakery-api-staging.hornosanmarino.ec"
	case "production":
		docs.SwaggerInfo.Host = "api.hornosanmarino.ec"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize storage (export archive)
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize the ERP mirror connection (optional, read-only).
	// The API keeps running without it; only invoice sync and the billing
	// reconciliation lose their data source.
	erpClient, err := erp.NewClient(&cfg.ERPMirror, log)
	if err != nil {
		log.Warn("ERP mirror connection failed, continuing without it",
			zap.Error(err),
		)
		erpClient = nil
	}

	// Business timezone drives bucket boundaries everywhere
	location := service.BusinessLocation(cfg.Production.Timezone, log)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	dispatchRepo := repository.NewDispatchRepository(db)
	materialRepo := repository.NewRawMaterialRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	providerRepo := repository.NewProviderRepository(db)

	// Token issuer and auth middleware
	tokenIssuer, err := auth.NewTokenIssuer(&cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to create token issuer: %w", err)
	}
	authMiddleware := auth.NewMiddleware(tokenIssuer, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize services
	authService := service.NewAuthService(userRepo, tokenIssuer, log)
	orderService := service.NewOrderService(orderRepo, location, log)
	productionService := service.NewProductionService(orderRepo, dispatchRepo, location, log)
	warehouseService := service.NewWarehouseService(db, materialRepo, movementRepo, providerRepo, log)
	posService := service.NewPOSService(dispatchRepo, orderRepo, log)
	analyticsService := service.NewAnalyticsService(orderRepo, erpClient, log)
	exportService := service.NewExportService(orderRepo, fileStorage, location, log)
	invoiceSyncService := service.NewInvoiceSyncService(orderRepo, erpClient, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, log)
	orderHandler := handler.NewOrderHandler(orderService, exportService, log)
	productionHandler := handler.NewProductionHandler(productionService, log)
	warehouseHandler := handler.NewWarehouseHandler(warehouseService, log)
	posHandler := handler.NewPOSHandler(posService, log)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		erpClient,
		authMiddleware,
		rateLimiter,
		authHandler,
		orderHandler,
		productionHandler,
		warehouseHandler,
		posHandler,
		analyticsHandler,
	)

	// Start the invoice sync scheduler when the mirror is available
	var scheduler *jobs.Scheduler
	if cfg.ERPMirror.SyncEnabled && erpClient.IsEnabled() {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterInvoiceSyncJob(
			scheduler,
			invoiceSyncService,
			log,
			cfg.ERPMirror.SyncCron,
			5*time.Minute,
			true, // clear any backlog right away
		); err != nil {
			log.Error("Failed to register invoice sync job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with invoice sync job",
				zap.String("cron_expr", cfg.ERPMirror.SyncCron),
			)
		}
	} else {
		log.Info("Invoice sync disabled",
			zap.Bool("sync_enabled", cfg.ERPMirror.SyncEnabled),
			zap.Bool("mirror_available", erpClient.IsEnabled()),
		)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close ERP mirror connection if initialized
		if err := erpClient.Close(); err != nil {
			log.Warn("Error closing ERP mirror connection", zap.Error(err))
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
