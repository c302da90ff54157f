package main

import (
	"strconv"
	"time"

	"entitlement-service/internal/entitlement"
	"entitlement-service/internal/handler"
	"entitlement-service/internal/middleware"
	"entitlement-service/internal/model"
	"entitlement-service/internal/store"
	"entitlement-service/pkg/config"
	"entitlement-service/pkg/database"
	"entitlement-service/pkg/jwtutil"
	"entitlement-service/pkg/logger"
	"entitlement-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting entitlement service...", zap.String("environment", cfg.Server.Env))

	// Initialize JWT utilities
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utilities initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Initialize database and run migrations
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(&model.TenantBilling{}); err != nil {
		log.Fatal("Failed to migrate database models", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed",
		zap.String("db_host", cfg.DB.Host), zap.String("db_name", cfg.DB.DBName))

	// Wire the entitlement gateway: gorm store, injected decision cache
	billingStore := store.NewBillingStore(db)
	cache, err := entitlement.NewDecisionCache(cfg.Entitlement.CacheSize, cfg.Entitlement.CacheTTL)
	if err != nil {
		log.Fatal("Failed to create decision cache", zap.Error(err))
	}
	gateway := entitlement.NewGateway(billingStore, cache, log, cfg.Entitlement.StoreTimeout)
	entitlementHandler := handler.NewEntitlementHandler(gateway)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)

	// Request logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Process request
			err := next(c)

			// Calculate duration
			duration := time.Since(start).Seconds()
			status := c.Response().Status

			// Log request details
			log := logger.FromContext(c)
			log.Info("HTTP Request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", status),
				zap.Float64("duration_s", duration),
				zap.String("ip", c.RealIP()),
			)

			prometheus.HttpRequestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				strconv.Itoa(status),
			).Inc()

			prometheus.HttpRequestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
				strconv.Itoa(status),
			).Observe(duration)

			return err
		}
	})

	// Public routes
	e.GET("/health", handler.HealthCheck)

	// Prometheus metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API routes that require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	// Entitlement endpoints with tenant context requirement
	entitlements := api.Group("/entitlements")
	entitlements.Use(middleware.RequireTenantContext)

	entitlements.GET("/check", entitlementHandler.Check)
	entitlements.POST("/cache/invalidate", entitlementHandler.InvalidateCache)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
