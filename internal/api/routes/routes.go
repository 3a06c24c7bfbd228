package routes

import (
	"net/http"

	"autoapply/internal/api/handlers"
	"autoapply/internal/api/middleware"
	"autoapply/internal/config"
	"autoapply/internal/engine"
	"autoapply/internal/profileupdate"
	"autoapply/pkg/utils"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, svc *engine.Service, updater *profileupdate.Updater, store utils.StatusStore) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())
	// Apply submission and status polling are quick; the profile update
	// drives a browser inline and needs the longer window
	e.Use(middleware.SelectiveTimeoutConfig(cfg.Server.ReadTimeout, 5*cfg.ProfileUpdate.SaveTimeout))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler)
		health.GET("/live", handlers.LivenessHandler)
	}

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		apply := v1.Group("/apply")
		{
			apply.POST("", handlers.ApplyHandler(svc, store))
			apply.GET("/:run_id", handlers.RunStatusHandler(store))
		}

		profile := v1.Group("/profile")
		{
			profile.POST("/update", handlers.ProfileUpdateHandler(updater))
		}
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "Auto Apply Engine",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}
