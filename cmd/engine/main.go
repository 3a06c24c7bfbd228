package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autoapply/internal/api/routes"
	"autoapply/internal/config"
	"autoapply/internal/driver"
	"autoapply/internal/engine"
	"autoapply/internal/logging"
	"autoapply/internal/pacing"
	"autoapply/internal/profileupdate"
	"autoapply/pkg/utils"

	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logging
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting Auto Apply Engine")

	// Status store: Redis when configured, in-memory otherwise
	var store utils.StatusStore
	if cfg.Redis.Enabled {
		redisStore, err := utils.NewRedisStatusStore(cfg.Redis.URL)
		if err != nil {
			logger.Warn("Redis unavailable, falling back to in-memory status store", map[string]interface{}{
				"error": err.Error(),
			})
			store = utils.NewMemoryStatusStore()
		} else {
			logger.Info("Connected to Redis status store", nil)
			store = redisStore
		}
	} else {
		store = utils.NewMemoryStatusStore()
	}
	defer store.Close()

	// Each run opens its own stealth browser session
	newDriver := func(cfg *config.Config) (driver.Driver, error) {
		return driver.NewRodDriver(cfg)
	}

	svc := engine.NewService(cfg, newDriver)

	// The profile flow is short; it paces its edits but needs no keep-alive
	updaterPacer := pacing.NewJitterPacer(cfg, nil, logger)
	updater := profileupdate.NewUpdater(cfg, newDriver, updaterPacer, logger)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Setup routes
	routes.SetupRoutes(e, cfg, svc, updater, store)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{
				"error": err.Error(),
			})
		}

		logger.Info("Server shutdown complete", nil)
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{
		"address": address,
	})

	if err := e.Start(address); err != nil {
		logger.Error("Server stopped", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}
