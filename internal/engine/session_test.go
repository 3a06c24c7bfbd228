package engine

import (
	"context"
	"testing"

	"autoapply/internal/driver/drivertest"
	"autoapply/internal/logging"
	"autoapply/pkg/utils"
)

func TestSignInSubmitsCredentials(t *testing.T) {
	drv := drivertest.New()
	cfg := testConfig()
	cfg.Target.Username = "ada@example.com"
	cfg.Target.Password = "hunter2"

	username := &drivertest.FakeElement{Tag: "input"}
	password := &drivertest.FakeElement{Tag: "input"}
	submit := &drivertest.FakeElement{
		OnClick: func() {
			drv.Set(selNavProfile, &drivertest.FakeElement{})
		},
	}
	drv.Set(selLoginUsername, username)
	drv.Set(selLoginPassword, password)
	drv.Set(selLoginSubmit, submit)

	if err := SignIn(context.Background(), drv, cfg, logging.NewMultiLogger()); err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if username.Value != "ada@example.com" || password.Value != "hunter2" {
		t.Errorf("credentials not entered: %q / %q", username.Value, password.Value)
	}
	if drv.URL != cfg.Target.BaseURL+cfg.Target.LoginPath {
		t.Errorf("navigated to %q", drv.URL)
	}
}

func TestSignInAlreadyAuthenticated(t *testing.T) {
	drv := drivertest.New()
	// No login form, but the authenticated navigation is present
	drv.Set(selNavProfile, &drivertest.FakeElement{})

	if err := SignIn(context.Background(), drv, testConfig(), logging.NewMultiLogger()); err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
}

func TestSignInWithoutCredentials(t *testing.T) {
	drv := drivertest.New()
	drv.Set(selLoginUsername, &drivertest.FakeElement{Tag: "input"})

	err := SignIn(context.Background(), drv, testConfig(), logging.NewMultiLogger())
	if !utils.IsKind(err, utils.KindAuth) {
		t.Errorf("expected auth error, got %v", err)
	}
}

func TestSignInUnconfirmedIsAuthError(t *testing.T) {
	drv := drivertest.New()
	cfg := testConfig()
	cfg.Target.Username = "ada@example.com"
	cfg.Target.Password = "wrong"

	drv.Set(selLoginUsername, &drivertest.FakeElement{Tag: "input"})
	drv.Set(selLoginPassword, &drivertest.FakeElement{Tag: "input"})
	// Submit leads nowhere: no authenticated navigation ever appears
	drv.Set(selLoginSubmit, &drivertest.FakeElement{})

	err := SignIn(context.Background(), drv, cfg, logging.NewMultiLogger())
	if !utils.IsKind(err, utils.KindAuth) {
		t.Errorf("expected auth error, got %v", err)
	}
}

func TestSignInDetectsChallengeRedirect(t *testing.T) {
	drv := drivertest.New()
	cfg := testConfig()
	cfg.Target.Username = "ada@example.com"
	cfg.Target.Password = "hunter2"

	drv.Set(selLoginUsername, &drivertest.FakeElement{Tag: "input"})
	drv.Set(selLoginPassword, &drivertest.FakeElement{Tag: "input"})
	drv.Set(selLoginSubmit, &drivertest.FakeElement{
		OnClick: func() {
			drv.URL = "https://target.example/checkpoint/verify"
		},
	})

	err := SignIn(context.Background(), drv, cfg, logging.NewMultiLogger())
	if !utils.IsKind(err, utils.KindChallenge) {
		t.Errorf("expected challenge error, got %v", err)
	}
}

func TestCheckChallenge(t *testing.T) {
	drv := drivertest.New()

	drv.URL = "https://target.example/jobs/search"
	if err := CheckChallenge(context.Background(), drv); err != nil {
		t.Errorf("ordinary page flagged as challenge: %v", err)
	}

	drv.URL = "https://target.example/challenge/abc"
	if err := CheckChallenge(context.Background(), drv); !utils.IsKind(err, utils.KindChallenge) {
		t.Errorf("challenge page not detected: %v", err)
	}
}
