package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/horno-sanmarino/bakery-api/internal/auth"
	"github.com/horno-sanmarino/bakery-api/internal/config"
	"github.com/horno-sanmarino/bakery-api/internal/database"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/erp"
	"github.com/horno-sanmarino/bakery-api/internal/http/handler"
	"github.com/horno-sanmarino/bakery-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/horno-sanmarino/bakery-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg               *config.Config
	logger            *zap.Logger
	db                *gorm.DB
	erpClient         *erp.Client
	authMiddleware    *auth.Middleware
	rateLimiter       *middleware.RateLimiter
	authHandler       *handler.AuthHandler
	orderHandler      *handler.OrderHandler
	productionHandler *handler.ProductionHandler
	warehouseHandler  *handler.WarehouseHandler
	posHandler        *handler.POSHandler
	analyticsHandler  *handler.AnalyticsHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	erpClient *erp.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	orderHandler *handler.OrderHandler,
	productionHandler *handler.ProductionHandler,
	warehouseHandler *handler.WarehouseHandler,
	posHandler *handler.POSHandler,
	analyticsHandler *handler.AnalyticsHandler,
) *Router {
	return &Router{
		cfg:               cfg,
		logger:            logger,
		db:                db,
		erpClient:         erpClient,
		authMiddleware:    authMiddleware,
		rateLimiter:       rateLimiter,
		authHandler:       authHandler,
		orderHandler:      orderHandler,
		productionHandler: productionHandler,
		warehouseHandler:  warehouseHandler,
		posHandler:        posHandler,
		analyticsHandler:  analyticsHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP) // Apply IP-based rate limiting globally

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database connectivity check
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Combined readiness check (database plus the optional ERP mirror)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		// Mirror being down degrades reporting but not the board
		checks["erp_mirror"] = rt.erpClient.HealthCheck(r.Context())

		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		if !allHealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			status = "unhealthy"
		} else {
			w.WriteHeader(http.StatusOK)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Post("/auth/login", rt.authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)

			// Orders
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", rt.orderHandler.List)
				r.Post("/", rt.orderHandler.Create)
				r.Get("/export", rt.orderHandler.Export)
				r.Get("/{id}", rt.orderHandler.Get)
				r.Put("/{id}", rt.orderHandler.Update)
				r.Put("/{id}/invoice", rt.orderHandler.UpdateInvoice)
				r.Post("/{id}/collection", rt.orderHandler.RegisterPayment)
			})

			// Production board
			r.Route("/production", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireRole(domain.RoleProduction))

				r.Get("/", rt.productionHandler.Tasks)
				r.Get("/summary", rt.productionHandler.Summary)
				r.Get("/all-orders", rt.productionHandler.AllOrders)
				r.Get("/reports", rt.productionHandler.Report)
				r.Patch("/batch", rt.productionHandler.BatchStage)
				r.Post("/progress", rt.productionHandler.RegisterProgress)
				r.Patch("/{id}", rt.productionHandler.UpdateTask)
				r.Patch("/{id}/void", rt.productionHandler.Void)
				r.Patch("/{id}/revert", rt.productionHandler.Revert)
				r.Patch("/{id}/restore", rt.productionHandler.Restore)
				r.Post("/{id}/dispatch", rt.productionHandler.Dispatch)
			})

			// Warehouse
			r.Route("/warehouse", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireRole(domain.RoleProduction))

				r.Get("/", rt.warehouseHandler.ListMovements)
				r.Post("/", rt.warehouseHandler.RegisterMovement)
				r.Get("/materials", rt.warehouseHandler.ListMaterials)
				r.Post("/materials", rt.warehouseHandler.CreateMaterial)
				r.Get("/providers", rt.warehouseHandler.ListProviders)
				r.Post("/providers", rt.warehouseHandler.CreateProvider)
			})

			// POS branches
			r.Route("/pos", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireRole(domain.RolePOS))

				r.Get("/dispatches", rt.posHandler.ListIncoming)
				r.Post("/dispatches/{id}/reception", rt.posHandler.ConfirmReception)
			})

			// Analytics
			r.Route("/analytics", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)

				r.Get("/sales-by-responsible", rt.analyticsHandler.SalesByResponsible)
			})
		})
	})

	return r
}
