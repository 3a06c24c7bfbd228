package engine

import (
	"context"
	"testing"
	"time"

	"autoapply/internal/config"
	"autoapply/internal/driver/drivertest"
	"autoapply/internal/logging"
	"autoapply/internal/pacing"
	"autoapply/pkg/models"
	"autoapply/pkg/utils"
)

const (
	selTextProbe = "input[type='text'], input:not([type])"
	selTextFill  = "input[type='text'], input[type='number'], input[type='tel'], input[type='email'], input:not([type]), textarea"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Target.BaseURL = "https://target.example"
	cfg.Target.LoginPath = "/login"
	cfg.Target.SearchPath = "/jobs/search"
	cfg.Target.PageSize = 25
	cfg.Target.PollTimeout = time.Second
	cfg.Target.PollInterval = time.Millisecond
	cfg.Engine.MaxPagesPerTask = 3
	cfg.Engine.WizardMaxRetries = 3
	cfg.Engine.SubmitConfirmTimeout = time.Second
	return cfg
}

func testWizard(drv *drivertest.FakeDriver, cfg *config.Config) *Wizard {
	profile := testWizardProfile()
	return NewWizard(drv, cfg, profile, pacing.NopPacer{}, logging.NewMultiLogger())
}

func testWizardProfile() *models.ApplicantProfile {
	return &models.ApplicantProfile{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
		Phone:      "5551234567",
		ResumePath: "/docs/resume.pdf",
	}
}

// emailStep builds one form-group container holding a free-text email field
func emailStep() *drivertest.FakeElement {
	input := &drivertest.FakeElement{Tag: "input"}
	return &drivertest.FakeElement{
		Children: map[string][]*drivertest.FakeElement{
			"label":      {{TextVal: "Email address"}},
			selTextProbe: {input},
			selTextFill:  {input},
		},
	}
}

func testListing() models.JobListing {
	return models.JobListing{
		Title:         "Backend Engineer",
		Company:       "Initech",
		Location:      "Berlin",
		CanonicalLink: "https://target.example/jobs/view/1",
		ApplyMethod:   models.ApplyMethodWizard,
	}
}

func TestApplySkipsWithoutWizardEntry(t *testing.T) {
	drv := drivertest.New()
	w := testWizard(drv, testConfig())

	record, err := w.Apply(context.Background(), models.SearchTask{}, testListing())
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if record.Result != models.ResultSkipped {
		t.Errorf("result = %s, want skipped", record.Result)
	}
	if record.Reason != "no wizard entry" {
		t.Errorf("reason = %q", record.Reason)
	}
}

func TestApplyCompletesWizard(t *testing.T) {
	drv := drivertest.New()

	action := &drivertest.FakeElement{TextVal: "Next"}
	action.OnClick = func() {
		// First click advances to the final step
		action.TextVal = "Submit application"
		if action.Clicks == 2 {
			drv.Set(selSuccessToast, &drivertest.FakeElement{TextVal: "Application sent"})
		}
	}

	follow := &drivertest.FakeElement{TextVal: "Follow Initech"}
	drv.Set(selApplyEntry, &drivertest.FakeElement{
		TextVal: "Quick apply",
		OnClick: func() {
			drv.Set(selWizardModal, &drivertest.FakeElement{})
			drv.Set(selFormElement, emailStep())
			drv.Set(selPrimaryAction, action)
			drv.Set(selFollowCompany, follow)
		},
	})

	w := testWizard(drv, testConfig())
	record, err := w.Apply(context.Background(), models.SearchTask{}, testListing())
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if record.Result != models.ResultApplied {
		t.Fatalf("result = %s (%s), want applied", record.Result, record.Reason)
	}
	if action.Clicks != 2 {
		t.Errorf("action clicks = %d, want 2 (next then submit)", action.Clicks)
	}
	if follow.Clicks != 1 {
		t.Errorf("follow-company opt-out clicks = %d, want 1", follow.Clicks)
	}

	filled := emailValue(drv)
	if filled != "ada@example.com" {
		t.Errorf("email field = %q, want profile email", filled)
	}
}

func emailValue(drv *drivertest.FakeDriver) string {
	els := drv.Selectors[selFormElement]
	if len(els) == 0 {
		return ""
	}
	inputs := els[0].Children[selTextFill]
	if len(inputs) == 0 {
		return ""
	}
	return inputs[0].Value
}

func TestApplyUnconfirmedSubmission(t *testing.T) {
	drv := drivertest.New()

	// The submit click never produces a confirmation toast
	action := &drivertest.FakeElement{TextVal: "Submit application"}

	drv.Set(selApplyEntry, &drivertest.FakeElement{
		OnClick: func() {
			drv.Set(selWizardModal, &drivertest.FakeElement{})
			drv.Set(selFormElement, emailStep())
			drv.Set(selPrimaryAction, action)
		},
	})

	w := testWizard(drv, testConfig())
	record, err := w.Apply(context.Background(), models.SearchTask{}, testListing())
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if record.Result != models.ResultFailed {
		t.Errorf("result = %s, want failed", record.Result)
	}
	if record.Reason != "unconfirmed" {
		t.Errorf("reason = %q, want unconfirmed", record.Reason)
	}
}

func TestApplyValidationRetriesExhausted(t *testing.T) {
	drv := drivertest.New()

	action := &drivertest.FakeElement{TextVal: "Next"}
	drv.Set(selApplyEntry, &drivertest.FakeElement{
		OnClick: func() {
			drv.Set(selWizardModal, &drivertest.FakeElement{})
			drv.Set(selFormElement, emailStep())
			drv.Set(selPrimaryAction, action)
			// The modal rejects every attempt
			drv.Set(selValidationMsg, &drivertest.FakeElement{TextVal: "Required"})
		},
	})

	cfg := testConfig()
	cfg.Engine.WizardMaxRetries = 2

	w := testWizard(drv, cfg)
	record, err := w.Apply(context.Background(), models.SearchTask{}, testListing())
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if record.Result != models.ResultFailed {
		t.Errorf("result = %s, want failed", record.Result)
	}
	if record.Reason != "validation retries exhausted" {
		t.Errorf("reason = %q", record.Reason)
	}
	if action.Clicks != cfg.Engine.WizardMaxRetries+1 {
		t.Errorf("action clicks = %d, want %d", action.Clicks, cfg.Engine.WizardMaxRetries+1)
	}
}

func TestApplyChallengeIsSessionFatal(t *testing.T) {
	drv := drivertest.New()
	w := testWizard(drv, testConfig())

	listing := testListing()
	listing.CanonicalLink = "https://target.example/checkpoint/verify"

	record, err := w.Apply(context.Background(), models.SearchTask{}, listing)
	if err == nil {
		t.Fatal("expected a session-fatal error")
	}
	if !utils.IsSessionFatal(err) {
		t.Errorf("error should be session-fatal: %v", err)
	}
	if record.Result != models.ResultFailed {
		t.Errorf("result = %s, want failed", record.Result)
	}
}

func TestApplyUnreachableListingIsIsolated(t *testing.T) {
	drv := drivertest.New()
	listing := testListing()
	drv.NavErr[listing.CanonicalLink] = context.DeadlineExceeded

	w := testWizard(drv, testConfig())
	record, err := w.Apply(context.Background(), models.SearchTask{}, listing)
	if err != nil {
		t.Fatalf("per-listing failure must not kill the session: %v", err)
	}
	if record.Result != models.ResultFailed {
		t.Errorf("result = %s, want failed", record.Result)
	}
}
