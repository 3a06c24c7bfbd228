package engine

import (
	"context"
	"fmt"
	"strings"

	"autoapply/internal/config"
	"autoapply/internal/driver"
	"autoapply/internal/ledger"
	"autoapply/internal/logging"
	"autoapply/internal/pacing"
	"autoapply/pkg/models"
	"autoapply/pkg/utils"
)

// DriverFactory opens a fresh browser session for one run
type DriverFactory func(cfg *config.Config) (driver.Driver, error)

// Service runs complete application campaigns: one browser session, one
// frontier, one ledger per Execute call.
type Service struct {
	cfg       *config.Config
	newDriver DriverFactory
}

func NewService(cfg *config.Config, newDriver DriverFactory) *Service {
	return &Service{
		cfg:       cfg,
		newDriver: newDriver,
	}
}

// Execute performs a full run for one profile. It never returns an error:
// every failure mode collapses into the RunResult, with the run's progress
// log attached either way.
func (s *Service) Execute(ctx context.Context, profile *models.ApplicantProfile) *models.RunResult {
	buffer := logging.NewBufferAdapter("run-buffer")
	runLogger := s.runLogger(buffer)
	defer runLogger.Close()

	result := &models.RunResult{}
	defer func() {
		if r := recover(); r != nil {
			runLogger.Error("Run panicked", map[string]interface{}{
				"panic": fmt.Sprintf("%v", r),
			})
			result.Success = false
			result.Message = fmt.Sprintf("run panicked: %v", r)
		}
		result.Logs = buffer.Lines()
	}()

	// An empty frontier is a no-op run, not an error
	frontier := BuildFrontier(profile.Positions, profile.Locations)
	if len(frontier) == 0 {
		result.Success = true
		result.Message = "nothing to search: no positions or locations"
		return result
	}
	runLogger.Info(fmt.Sprintf("Run started: %d search tasks", len(frontier)), nil)

	drv, err := s.newDriver(s.cfg)
	if err != nil {
		runLogger.Error("Failed to start browser session", map[string]interface{}{
			"error": err.Error(),
		})
		result.Message = fmt.Sprintf("failed to start browser session: %v", err)
		return result
	}
	defer func() {
		if err := drv.Close(); err != nil {
			runLogger.Warn("Browser session teardown failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	if err := SignIn(ctx, drv, s.cfg, runLogger); err != nil {
		result.Message = fmt.Sprintf("sign-in failed: %v", err)
		return result
	}

	led, err := ledger.New(s.cfg.Ledger.Dir, runLogger)
	if err != nil {
		result.Message = fmt.Sprintf("failed to open ledger: %v", err)
		return result
	}

	// Cooldowns nudge the page so the session does not idle out
	keepAlive := func(kaCtx context.Context) {
		_ = drv.Scroll(kaCtx, 120)
		_ = drv.Scroll(kaCtx, -120)
	}
	pacer := pacing.NewJitterPacer(s.cfg, keepAlive, runLogger)

	runner := NewRunner(drv, s.cfg, profile, pacer, led, runLogger)
	runErr := runner.Run(ctx, frontier)

	applied, failed, skipped := led.Counts()
	summary := fmt.Sprintf("%d applied, %d failed, %d skipped across %d tasks", applied, failed, skipped, len(frontier))

	switch {
	case runErr == nil:
		runLogger.Info("Run complete: "+summary, nil)
		result.Success = true
		result.Message = summary
	case utils.IsSessionFatal(runErr):
		runLogger.Error("Run terminated: "+runErr.Error(), nil)
		result.Message = fmt.Sprintf("session terminated (%v); partial results: %s", runErr, summary)
	case ctx.Err() != nil:
		runLogger.Warn("Run cancelled", nil)
		result.Message = fmt.Sprintf("run cancelled; partial results: %s", summary)
	default:
		runLogger.Error("Run aborted: "+runErr.Error(), nil)
		result.Message = fmt.Sprintf("run aborted (%v); partial results: %s", runErr, summary)
	}

	return result
}

// runLogger builds a per-run logger so concurrent runs do not interleave
// their buffers: the shared stdout stream plus this run's capture buffer.
func (s *Service) runLogger(buffer *logging.BufferAdapter) *logging.MultiLogger {
	l := logging.NewMultiLogger()
	l.SetLevel(logging.ParseLogLevel(s.cfg.Logging.Level))
	format := strings.ToLower(s.cfg.Logging.Format)
	_ = l.AddAdapter(logging.NewStdoutAdapter("run-stdout", format))
	_ = l.AddAdapter(buffer)
	return l
}
