package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"timele/app/echo-server/router"
	"timele/business/prediction"
	psqlRepo "timele/internal/repository/postgres"
	redisRepo "timele/internal/repository/redis"
	"timele/internal/middleware"
	"timele/internal/rest"
	"timele/pkg/config"
	"timele/pkg/database"
	redisdb "timele/pkg/database/redis"
	"timele/pkg/logger"
	"timele/pkg/utils"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting TimeL-E prediction service", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	// Model artifacts: a missing artifact dir is not fatal, the service
	// serves rule-based predictions until a reload succeeds.
	registry := prediction.NewModelRegistry()
	if arts, err := registry.LoadFrom(cfg.Model.Dir); err != nil {
		logger.Warn("Model artifacts not loaded, serving rule-based only", "dir", cfg.Model.Dir, "error", err)
	} else {
		logger.Info("Model artifacts loaded", "version", arts.Version)
	}

	// Optional prediction cache
	var cache prediction.ResponseCache
	if cfg.Redis.RedisHost != "" && cfg.Model.CacheTTLSeconds > 0 {
		client, err := redisdb.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, prediction cache disabled", "error", err)
		} else {
			defer func() { _ = redisdb.CloseRedisClient(client) }()
			cache = redisRepo.NewPredictionCache(client, time.Duration(cfg.Model.CacheTTLSeconds)*time.Second)
			logger.Info("Prediction cache enabled", "ttl_seconds", cfg.Model.CacheTTLSeconds)
		}
	}

	// Init repo
	historyRepo := psqlRepo.NewOrderHistoryRepository(db)
	productsRepo := psqlRepo.NewProductRepository(db)
	eventRepo := psqlRepo.NewPredictionEventRepository(db)

	// Init service
	predictionService := prediction.NewPredictionService(
		historyRepo,
		productsRepo,
		eventRepo,
		cache,
		registry,
		prediction.DefaultLadder,
	)

	// Init handler
	predictionHandler := rest.NewPredictionHandler(predictionService)
	adminHandler := rest.NewPredictionAdminHandler(registry, cfg.Model.Dir, predictionService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.TraceMiddleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetPredictionRoutes(api, predictionHandler)
	router.SetPredictionAdminRoutes(api, adminHandler)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
