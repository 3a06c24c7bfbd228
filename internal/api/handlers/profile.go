package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"autoapply/internal/logging"
	"autoapply/internal/profileupdate"
	"autoapply/pkg/models"
	"autoapply/pkg/utils"
)

// ProfileUpdateHandler runs the profile refresh flow synchronously: it is a
// short single-page edit, so the caller waits for the outcome.
func ProfileUpdateHandler(updater *profileupdate.Updater) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRunID()
		logger := logging.GetGlobalLogger().WithField("request_id", requestID)

		logger.Info("Profile update requested")

		var req models.ProfileUpdateRequest
		if err := c.Bind(&req); err != nil {
			logger.Error("Failed to bind profile update request", map[string]interface{}{
				"error": err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_request",
				Message:   "Invalid request format",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		if err := validate.Struct(&req); err != nil {
			logger.Error("Profile update validation failed", map[string]interface{}{
				"error": err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		result := updater.Update(c.Request().Context(), &req)

		logger.Info("Profile update finished", map[string]interface{}{
			"success": result.Success,
			"message": result.Message,
		})

		statusCode := http.StatusOK
		if !result.Success {
			statusCode = http.StatusUnprocessableEntity
		}
		return c.JSON(statusCode, result)
	}
}
