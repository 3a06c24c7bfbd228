package engine

import (
	"context"
	"fmt"
	"strings"

	"autoapply/internal/config"
	"autoapply/internal/driver"
	"autoapply/internal/logging"
	"autoapply/pkg/utils"
)

const (
	selLoginUsername = "input#username"
	selLoginPassword = "input#password"
	selLoginSubmit   = "button[type='submit']"
	selNavProfile    = "nav .profile-menu"
)

// challengeMarkers are URL fragments the target redirects to when it wants
// human verification. Hitting one ends the session: the engine never
// attempts to solve a challenge.
var challengeMarkers = []string{"/checkpoint", "/challenge", "/captcha"}

// SignIn authenticates the browser session against the target. A rejected
// credential pair or a missing login form is an auth failure; a verification
// redirect after submit is a challenge. Both are session-fatal.
func SignIn(ctx context.Context, drv driver.Driver, cfg *config.Config, logger logging.Logger) error {
	loginURL := cfg.Target.BaseURL + cfg.Target.LoginPath

	logger.Info("Signing in to target", map[string]interface{}{
		"url": loginURL,
	})

	if err := drv.Navigate(ctx, loginURL); err != nil {
		return utils.NewFatalNavigationError(fmt.Sprintf("failed to open login page %s", loginURL), err)
	}

	username, err := drv.WaitVisible(ctx, selLoginUsername, cfg.Target.PollTimeout)
	if err != nil {
		// Already authenticated sessions land past the form
		if authenticated, checkErr := isSignedIn(ctx, drv); checkErr == nil && authenticated {
			logger.Info("Session already authenticated", nil)
			return nil
		}
		return utils.NewAuthError("login form not found", err)
	}

	if cfg.Target.Username == "" || cfg.Target.Password == "" {
		return utils.NewAuthError("no credentials configured", nil)
	}

	if err := username.Input(ctx, cfg.Target.Username); err != nil {
		return utils.NewAuthError("failed to enter username", err)
	}

	password, err := drv.Find(ctx, selLoginPassword)
	if err != nil {
		return utils.NewAuthError("password field not found", err)
	}
	if err := password.Input(ctx, cfg.Target.Password); err != nil {
		return utils.NewAuthError("failed to enter password", err)
	}

	submit, err := drv.Find(ctx, selLoginSubmit)
	if err != nil {
		return utils.NewAuthError("login submit button not found", err)
	}
	if err := submit.Click(ctx); err != nil {
		return utils.NewAuthError("failed to submit login form", err)
	}

	// Wait out the post-login redirect, then decide what we landed on
	if _, err := drv.WaitVisible(ctx, selNavProfile, cfg.Target.PollTimeout); err != nil {
		if chErr := CheckChallenge(ctx, drv); chErr != nil {
			return chErr
		}
		return utils.NewAuthError("sign-in not confirmed", err)
	}

	logger.Info("Signed in", nil)
	return nil
}

// CheckChallenge inspects the current page for a verification interstitial.
// Returns a challenge error when one is present, nil otherwise.
func CheckChallenge(ctx context.Context, drv driver.Driver) error {
	current, err := drv.CurrentURL(ctx)
	if err != nil {
		return nil
	}
	for _, marker := range challengeMarkers {
		if strings.Contains(current, marker) {
			return utils.NewChallengeError(fmt.Sprintf("verification challenge at %s", current))
		}
	}
	return nil
}

// isSignedIn reports whether the page shows the authenticated navigation
func isSignedIn(ctx context.Context, drv driver.Driver) (bool, error) {
	el, err := drv.Find(ctx, selNavProfile)
	if err != nil {
		return false, nil
	}
	return el.Visible(ctx)
}
