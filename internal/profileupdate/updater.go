// Package profileupdate drives the target's profile editor: it rewrites the
// headline (and optionally the summary) to a random configured variant, a
// lightweight way to keep a profile looking active.
package profileupdate

import (
	"context"
	"fmt"
	"math/rand"

	"autoapply/internal/config"
	"autoapply/internal/driver"
	"autoapply/internal/engine"
	"autoapply/internal/logging"
	"autoapply/internal/pacing"
	"autoapply/pkg/models"
)

const (
	selHeadlineEdit  = "button[aria-label='Edit headline']"
	selHeadlineInput = "input#headline, textarea#headline"
	selSummaryEdit   = "button[aria-label='Edit summary']"
	selSummaryInput  = "textarea#summary"
	selEditorSave    = "div.edit-panel button[type='submit']"
	selSaveConfirm   = ".edit-save-toast"
)

// Updater performs one profile refresh per Update call. Editor actions run
// through the same pacer as the application engine so the profile flow keeps
// the human traffic pattern.
type Updater struct {
	cfg       *config.Config
	newDriver engine.DriverFactory
	pacer     pacing.Pacer
	logger    logging.Logger
}

func NewUpdater(cfg *config.Config, newDriver engine.DriverFactory, pacer pacing.Pacer, logger logging.Logger) *Updater {
	return &Updater{
		cfg:       cfg,
		newDriver: newDriver,
		pacer:     pacer,
		logger:    logger,
	}
}

// Update signs in with the request's credentials, rewrites the headline to a
// random configured variant and saves. Never returns an error: every failure
// collapses into the result.
func (u *Updater) Update(ctx context.Context, req *models.ProfileUpdateRequest) (result *models.UpdateResult) {
	result = &models.UpdateResult{}
	defer func() {
		if r := recover(); r != nil {
			u.logger.Error("Profile update panicked", map[string]interface{}{
				"panic": fmt.Sprintf("%v", r),
			})
			result.Success = false
			result.Message = fmt.Sprintf("profile update panicked: %v", r)
		}
	}()

	if len(u.cfg.ProfileUpdate.HeadlineVariants) == 0 {
		result.Message = "no headline variants configured"
		return result
	}

	// Request credentials and headless preference override the run config
	cfg := *u.cfg
	cfg.Target.Username = req.Username
	cfg.Target.Password = req.Password
	cfg.Driver.HeadlessMode = req.Headless

	drv, err := u.newDriver(&cfg)
	if err != nil {
		result.Message = fmt.Sprintf("failed to start browser session: %v", err)
		return result
	}
	defer func() {
		if err := drv.Close(); err != nil {
			u.logger.Warn("Browser session teardown failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	if err := engine.SignIn(ctx, drv, &cfg, u.logger); err != nil {
		result.Message = fmt.Sprintf("sign-in failed: %v", err)
		return result
	}

	profileURL := cfg.Target.BaseURL + cfg.Target.ProfilePath
	if err := drv.Navigate(ctx, profileURL); err != nil {
		result.Message = fmt.Sprintf("profile page unreachable: %v", err)
		return result
	}

	headline := pickVariant(cfg.ProfileUpdate.HeadlineVariants)
	if err := u.editField(ctx, drv, &cfg, selHeadlineEdit, selHeadlineInput, headline); err != nil {
		result.Message = fmt.Sprintf("headline update failed: %v", err)
		return result
	}
	u.logger.Info("Headline updated", map[string]interface{}{
		"headline": headline,
	})

	// The summary editor sits below the fold
	_ = drv.Scroll(ctx, 600)

	if len(cfg.ProfileUpdate.SummaryVariants) > 0 {
		summary := pickVariant(cfg.ProfileUpdate.SummaryVariants)
		if err := u.editField(ctx, drv, &cfg, selSummaryEdit, selSummaryInput, summary); err != nil {
			// Partial success: the headline is already saved
			u.logger.Warn("Summary update failed", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			u.logger.Info("Summary updated", nil)
		}
	}

	result.Success = true
	result.Message = "profile updated"
	result.Headline = headline
	return result
}

// editField opens one editor panel, replaces its value and saves. Each
// state-changing action is paced.
func (u *Updater) editField(ctx context.Context, drv driver.Driver, cfg *config.Config, editSel, inputSel, value string) error {
	edit, err := drv.WaitVisible(ctx, editSel, cfg.Target.PollTimeout)
	if err != nil {
		return fmt.Errorf("edit control not found: %w", err)
	}
	if err := u.pacer.Wait(ctx); err != nil {
		return err
	}
	if err := edit.Click(ctx); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}

	input, err := drv.WaitVisible(ctx, inputSel, cfg.Target.PollTimeout)
	if err != nil {
		return fmt.Errorf("editor input not found: %w", err)
	}
	if err := u.pacer.Wait(ctx); err != nil {
		return err
	}
	if err := input.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear field: %w", err)
	}
	if err := input.Input(ctx, value); err != nil {
		return fmt.Errorf("failed to enter value: %w", err)
	}

	save, err := drv.Find(ctx, selEditorSave)
	if err != nil {
		return fmt.Errorf("save button not found: %w", err)
	}
	if err := u.pacer.Wait(ctx); err != nil {
		return err
	}
	if err := save.Click(ctx); err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}

	if _, err := drv.WaitVisible(ctx, selSaveConfirm, cfg.ProfileUpdate.SaveTimeout); err != nil {
		return fmt.Errorf("save not confirmed: %w", err)
	}
	return nil
}

func pickVariant(variants []string) string {
	return variants[rand.Intn(len(variants))]
}
