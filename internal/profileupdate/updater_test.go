package profileupdate

import (
	"context"
	"errors"
	"testing"
	"time"

	"autoapply/internal/config"
	"autoapply/internal/driver"
	"autoapply/internal/driver/drivertest"
	"autoapply/internal/logging"
	"autoapply/internal/pacing"
	"autoapply/pkg/models"
)

// countingPacer records how often the updater paces its edits
type countingPacer struct {
	waits int
	err   error
}

func (p *countingPacer) Wait(context.Context) error     { p.waits++; return p.err }
func (p *countingPacer) PageDone(context.Context) error { return nil }

func updaterConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Target.BaseURL = "https://target.example"
	cfg.Target.LoginPath = "/login"
	cfg.Target.ProfilePath = "/in/me"
	cfg.Target.PollTimeout = time.Second
	cfg.ProfileUpdate.SaveTimeout = time.Second
	cfg.ProfileUpdate.HeadlineVariants = []string{
		"Software Engineer | Distributed Systems",
		"Backend Engineer | Go",
	}
	return cfg
}

// signedInDriver returns a fake already past authentication with a working
// headline editor wired up
func signedInDriver() (*drivertest.FakeDriver, *drivertest.FakeElement) {
	drv := drivertest.New()
	drv.Set("nav .profile-menu", &drivertest.FakeElement{})

	input := &drivertest.FakeElement{Tag: "input"}
	drv.Set(selHeadlineEdit, &drivertest.FakeElement{
		OnClick: func() {
			drv.Set(selHeadlineInput, input)
			drv.Set(selEditorSave, &drivertest.FakeElement{
				OnClick: func() {
					drv.Set(selSaveConfirm, &drivertest.FakeElement{})
				},
			})
		},
	})
	return drv, input
}

func newTestUpdater(cfg *config.Config, drv *drivertest.FakeDriver) *Updater {
	factory := func(*config.Config) (driver.Driver, error) {
		return drv, nil
	}
	return NewUpdater(cfg, factory, pacing.NopPacer{}, logging.NewMultiLogger())
}

func TestUpdateSetsHeadlineVariant(t *testing.T) {
	cfg := updaterConfig()
	drv, input := signedInDriver()
	u := newTestUpdater(cfg, drv)

	result := u.Update(context.Background(), &models.ProfileUpdateRequest{
		Username: "ada@example.com",
		Password: "hunter2",
	})
	if !result.Success {
		t.Fatalf("Update failed: %s", result.Message)
	}

	found := false
	for _, v := range cfg.ProfileUpdate.HeadlineVariants {
		if result.Headline == v {
			found = true
		}
	}
	if !found {
		t.Errorf("headline %q is not a configured variant", result.Headline)
	}
	if input.Value != result.Headline {
		t.Errorf("input value %q does not match reported headline %q", input.Value, result.Headline)
	}
	if !drv.Closed {
		t.Error("browser session not torn down")
	}
}

func TestUpdateWithoutVariants(t *testing.T) {
	cfg := updaterConfig()
	cfg.ProfileUpdate.HeadlineVariants = nil

	u := NewUpdater(cfg, func(*config.Config) (driver.Driver, error) {
		t.Fatal("driver must not start without variants")
		return nil, nil
	}, pacing.NopPacer{}, logging.NewMultiLogger())

	result := u.Update(context.Background(), &models.ProfileUpdateRequest{Username: "u", Password: "p"})
	if result.Success {
		t.Error("expected failure without configured variants")
	}
}

func TestUpdatePacesEditorActions(t *testing.T) {
	cfg := updaterConfig()
	drv, _ := signedInDriver()
	pacer := &countingPacer{}
	u := NewUpdater(cfg, func(*config.Config) (driver.Driver, error) {
		return drv, nil
	}, pacer, logging.NewMultiLogger())

	result := u.Update(context.Background(), &models.ProfileUpdateRequest{Username: "u", Password: "p"})
	if !result.Success {
		t.Fatalf("Update failed: %s", result.Message)
	}
	// Open editor, replace value, save: three paced actions for the headline
	if pacer.waits != 3 {
		t.Errorf("pacer waits = %d, want 3", pacer.waits)
	}
}

func TestUpdateAbortsWhenPacerCancelled(t *testing.T) {
	cfg := updaterConfig()
	drv, input := signedInDriver()
	pacer := &countingPacer{err: context.Canceled}
	u := NewUpdater(cfg, func(*config.Config) (driver.Driver, error) {
		return drv, nil
	}, pacer, logging.NewMultiLogger())

	result := u.Update(context.Background(), &models.ProfileUpdateRequest{Username: "u", Password: "p"})
	if result.Success {
		t.Error("expected failure when pacing is cancelled")
	}
	if input.Value != "" {
		t.Errorf("headline written despite cancelled pacing: %q", input.Value)
	}
	if !drv.Closed {
		t.Error("browser session not torn down after cancellation")
	}
}

func TestUpdateSignInFailure(t *testing.T) {
	cfg := updaterConfig()
	drv := drivertest.New() // no login form, no authenticated nav
	u := newTestUpdater(cfg, drv)

	result := u.Update(context.Background(), &models.ProfileUpdateRequest{Username: "u", Password: "p"})
	if result.Success {
		t.Error("expected failure when sign-in fails")
	}
	if !drv.Closed {
		t.Error("browser session not torn down after failure")
	}
}

func TestUpdateDriverFailure(t *testing.T) {
	cfg := updaterConfig()
	u := NewUpdater(cfg, func(*config.Config) (driver.Driver, error) {
		return nil, errors.New("no chrome binary")
	}, pacing.NopPacer{}, logging.NewMultiLogger())

	result := u.Update(context.Background(), &models.ProfileUpdateRequest{Username: "u", Password: "p"})
	if result.Success {
		t.Error("expected failure when the browser cannot start")
	}
}

func TestUpdateUsesRequestHeadlessPreference(t *testing.T) {
	cfg := updaterConfig()
	cfg.Driver.HeadlessMode = true

	var sawHeadless *bool
	drv, _ := signedInDriver()
	u := NewUpdater(cfg, func(c *config.Config) (driver.Driver, error) {
		v := c.Driver.HeadlessMode
		sawHeadless = &v
		return drv, nil
	}, pacing.NopPacer{}, logging.NewMultiLogger())

	u.Update(context.Background(), &models.ProfileUpdateRequest{Username: "u", Password: "p", Headless: false})

	if sawHeadless == nil || *sawHeadless {
		t.Error("request headless preference not applied to the session")
	}

	// The shared config must be untouched
	if !cfg.Driver.HeadlessMode {
		t.Error("shared config mutated by request override")
	}
}
