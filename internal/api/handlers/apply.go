package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"autoapply/internal/engine"
	"autoapply/internal/logging"
	"autoapply/pkg/models"
	"autoapply/pkg/utils"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ApplyHandler accepts an application run and executes it asynchronously.
// A run drives a real browser for minutes to hours, so the handler returns
// 202 with a run ID immediately and the status store tracks progress.
func ApplyHandler(svc *engine.Service, store utils.StatusStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		runID := utils.GenerateRunID()
		logger := logging.GetGlobalLogger().WithField("run_id", runID)

		logger.Info("Apply run requested")

		var req models.ApplyRequest
		if err := c.Bind(&req); err != nil {
			logger.Error("Failed to bind apply request", map[string]interface{}{
				"error": err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_request",
				Message:   "Invalid request format",
				RequestID: runID,
				Timestamp: time.Now(),
			})
		}

		if err := validate.Struct(&req); err != nil {
			logger.Error("Apply request validation failed", map[string]interface{}{
				"error": err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   err.Error(),
				RequestID: runID,
				Timestamp: time.Now(),
			})
		}

		now := time.Now()
		status := &models.RunStatus{
			RunID:     runID,
			State:     models.RunStateAccepted,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := store.Put(c.Request().Context(), status); err != nil {
			logger.Error("Failed to persist run status", map[string]interface{}{
				"error": err.Error(),
			})
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "status_store_unavailable",
				Message:   "Could not persist run status",
				RequestID: runID,
				Timestamp: time.Now(),
			})
		}

		// The run outlives the HTTP request deliberately
		go executeRun(svc, store, runID, &req.Profile)

		return c.JSON(http.StatusAccepted, models.AcceptedResponse{
			RunID:     runID,
			State:     models.RunStateAccepted,
			Timestamp: now,
		})
	}
}

func executeRun(svc *engine.Service, store utils.StatusStore, runID string, profile *models.ApplicantProfile) {
	ctx := context.Background()
	logger := logging.GetGlobalLogger().WithField("run_id", runID)

	updateStatus(ctx, store, logger, &models.RunStatus{
		RunID: runID,
		State: models.RunStateRunning,
	})

	result := svc.Execute(ctx, profile)

	state := models.RunStateCompleted
	if !result.Success {
		state = models.RunStateFailed
	}
	updateStatus(ctx, store, logger, &models.RunStatus{
		RunID:  runID,
		State:  state,
		Result: result,
	})

	logger.Info("Apply run finished", map[string]interface{}{
		"state":   string(state),
		"message": result.Message,
	})
}

func updateStatus(ctx context.Context, store utils.StatusStore, logger logging.Logger, status *models.RunStatus) {
	status.UpdatedAt = time.Now()
	if err := store.Put(ctx, status); err != nil {
		logger.Error("Failed to update run status", map[string]interface{}{
			"state": string(status.State),
			"error": err.Error(),
		})
	}
}

// RunStatusHandler reports the stored state of one run
func RunStatusHandler(store utils.StatusStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		runID := c.Param("run_id")

		status, err := store.Get(c.Request().Context(), runID)
		if err != nil {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:     "run_not_found",
				Message:   "No run with that ID",
				RequestID: runID,
				Timestamp: time.Now(),
			})
		}

		return c.JSON(http.StatusOK, status)
	}
}
