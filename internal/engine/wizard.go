package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"autoapply/internal/config"
	"autoapply/internal/driver"
	"autoapply/internal/engine/resolver"
	"autoapply/internal/logging"
	"autoapply/internal/pacing"
	"autoapply/pkg/models"
	"autoapply/pkg/utils"
)

const (
	selApplyEntry      = "button.jobs-apply-button, button.quick-apply-button"
	selWizardModal     = "div.application-modal"
	selModalDismiss    = "button[aria-label='Dismiss']"
	selDiscardConfirm  = "button[data-control-name='discard_application_confirm_btn']"
	selPrimaryAction   = "div.application-modal footer button.artdeco-button--primary"
	selFormElement     = "div.application-modal div.form-group"
	selValidationMsg   = "div.application-modal .form-element-validation-error"
	selSuccessToast    = ".application-success-toast, .post-apply-confirmation"
	selFollowCompany   = "div.application-modal label[for='follow-company-checkbox']"
	selSuggestionFirst = ".typeahead-suggestions li"

	submitSentinel = "submit application"

	// Hard cap on modal steps; a wizard deeper than this is looping
	maxWizardSteps = 20
)

// Wizard drives the target's application modal for one listing: probes each
// step's form elements, synthesizes answers from the profile, and advances
// until submission or an unrecoverable step failure.
type Wizard struct {
	drv     driver.Driver
	cfg     *config.Config
	profile *models.ApplicantProfile
	pacer   pacing.Pacer
	logger  logging.Logger
}

func NewWizard(drv driver.Driver, cfg *config.Config, profile *models.ApplicantProfile, pacer pacing.Pacer, logger logging.Logger) *Wizard {
	return &Wizard{
		drv:     drv,
		cfg:     cfg,
		profile: profile,
		pacer:   pacer,
		logger:  logger,
	}
}

// Apply attempts a full application against one listing. The returned record
// always describes the outcome; a non-nil error means the whole session must
// stop (auth lost, challenge presented, context cancelled).
func (w *Wizard) Apply(ctx context.Context, task models.SearchTask, listing models.JobListing) (models.OutcomeRecord, error) {
	record := func(result models.OutcomeResult, reason string) models.OutcomeRecord {
		return models.OutcomeRecord{
			Task:      task,
			Listing:   listing,
			Result:    result,
			Reason:    reason,
			Timestamp: time.Now(),
		}
	}

	if err := w.drv.Navigate(ctx, listing.CanonicalLink); err != nil {
		if ctx.Err() != nil {
			return record(models.ResultFailed, "cancelled"), ctx.Err()
		}
		w.logger.Warn(fmt.Sprintf("Listing page unreachable: %s", listing.CanonicalLink), map[string]interface{}{
			"error": err.Error(),
		})
		return record(models.ResultFailed, "listing unreachable"), nil
	}

	if err := CheckChallenge(ctx, w.drv); err != nil {
		return record(models.ResultFailed, "challenge"), err
	}

	if err := w.pacer.Wait(ctx); err != nil {
		return record(models.ResultFailed, "cancelled"), err
	}

	entry, err := w.drv.WaitVisible(ctx, selApplyEntry, w.cfg.Target.PollTimeout)
	if err != nil {
		// External-apply listings have no wizard entry point
		w.logger.Info(fmt.Sprintf("Skipping %s at %s: no in-page apply", listing.Title, listing.Company), nil)
		return record(models.ResultSkipped, "no wizard entry"), nil
	}

	if err := entry.Click(ctx); err != nil {
		return record(models.ResultFailed, "apply button unclickable"), nil
	}

	if _, err := w.drv.WaitVisible(ctx, selWizardModal, w.cfg.Target.PollTimeout); err != nil {
		return record(models.ResultFailed, "wizard did not open"), nil
	}

	result, reason, err := w.traverse(ctx)
	if err != nil {
		w.dismiss(context.WithoutCancel(ctx))
		return record(models.ResultFailed, reason), err
	}
	if result != models.ResultApplied {
		w.dismiss(ctx)
	}
	return record(result, reason), nil
}

// traverse walks the modal step by step. Outcome and reason describe what
// happened; err is non-nil only when the session itself is done.
func (w *Wizard) traverse(ctx context.Context) (models.OutcomeResult, string, error) {
	retriesLeft := w.cfg.Engine.WizardMaxRetries

	for step := 0; step < maxWizardSteps; step++ {
		if err := ctx.Err(); err != nil {
			return models.ResultFailed, "cancelled", err
		}

		if err := w.fillStep(ctx); err != nil {
			if utils.IsSessionFatal(err) {
				return models.ResultFailed, "challenge", err
			}
			if retriesLeft <= 0 {
				w.logger.Warn("Wizard step failed after retries", map[string]interface{}{
					"error": err.Error(),
				})
				return models.ResultFailed, "step retries exhausted", nil
			}
			retriesLeft--
			continue
		}

		action, err := w.drv.Find(ctx, selPrimaryAction)
		if err != nil {
			return models.ResultFailed, "no wizard action button", nil
		}
		label, _ := action.Text(ctx)

		if strings.Contains(strings.ToLower(label), submitSentinel) {
			return w.submit(ctx, action)
		}

		if err := w.pacer.Wait(ctx); err != nil {
			return models.ResultFailed, "cancelled", err
		}
		if err := action.Click(ctx); err != nil {
			return models.ResultFailed, "wizard action unclickable", nil
		}

		// The target highlights rejected answers in place instead of
		// advancing; burn a retry and fill the same step again
		if w.hasValidationError(ctx) {
			if retriesLeft <= 0 {
				return models.ResultFailed, "validation retries exhausted", nil
			}
			retriesLeft--
		}
	}

	return models.ResultFailed, "wizard step limit reached", nil
}

// submit opts out of the follow-company extra, clicks the final button and
// waits for the confirmation toast. A missing toast is an unconfirmed
// submission, recorded as a failure rather than guessed as a success.
func (w *Wizard) submit(ctx context.Context, action driver.Element) (models.OutcomeResult, string, error) {
	if follow, err := w.drv.Find(ctx, selFollowCompany); err == nil {
		if err := follow.Click(ctx); err != nil {
			w.logger.Debug("Could not untick follow-company", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if err := w.pacer.Wait(ctx); err != nil {
		return models.ResultFailed, "cancelled", err
	}
	if err := action.Click(ctx); err != nil {
		return models.ResultFailed, "submit unclickable", nil
	}

	if _, err := w.drv.WaitVisible(ctx, selSuccessToast, w.cfg.Engine.SubmitConfirmTimeout); err != nil {
		if chErr := CheckChallenge(ctx, w.drv); chErr != nil {
			return models.ResultFailed, "challenge", chErr
		}
		return models.ResultFailed, "unconfirmed", nil
	}

	return models.ResultApplied, "", nil
}

// fillStep answers every form element currently shown in the modal
func (w *Wizard) fillStep(ctx context.Context) error {
	containers, err := w.drv.FindAll(ctx, selFormElement)
	if err != nil {
		return err
	}

	for _, container := range containers {
		probe, err := w.probe(ctx, container)
		if err != nil {
			return err
		}

		field, err := resolver.Classify(probe)
		if err != nil {
			w.logger.Warn("Unclassifiable form element", map[string]interface{}{
				"label": probe.Label,
			})
			return err
		}

		answer := resolver.Resolve(w.profile, field)
		w.logger.Debug(fmt.Sprintf("Answering %q", field.Label), map[string]interface{}{
			"kind":  string(field.Kind),
			"rule":  answer.Rule,
			"value": answer.Value,
		})

		if err := w.applyAnswer(ctx, container, field, answer); err != nil {
			return err
		}
	}

	return nil
}

// probe collects the structural facts about one form element container
func (w *Wizard) probe(ctx context.Context, container driver.Element) (resolver.Probe, error) {
	var p resolver.Probe

	if label, err := container.Find(ctx, "label"); err == nil {
		p.Label, _ = label.Text(ctx)
	}

	if radios, err := container.FindAll(ctx, "input[type='radio']"); err == nil && len(radios) > 0 {
		if labels, err := container.FindAll(ctx, "input[type='radio'] + label, label.radio-label"); err == nil {
			for _, l := range labels {
				if text, err := l.Text(ctx); err == nil && strings.TrimSpace(text) != "" {
					p.RadioLabels = append(p.RadioLabels, strings.TrimSpace(text))
				}
			}
		}
	}

	if sel, err := container.Find(ctx, "select"); err == nil {
		p.HasSelect = true
		p.SelectOpts, _ = sel.Options(ctx)
	}

	if input, err := container.Find(ctx, "input[type='text'], input:not([type])"); err == nil {
		p.HasText = true
		p.InputType, _ = input.Attribute(ctx, "type")
	} else if input, err := container.Find(ctx, "input[type='number'], input[type='tel'], input[type='email']"); err == nil {
		p.HasText = true
		p.InputType, _ = input.Attribute(ctx, "type")
	}
	if _, err := container.Find(ctx, "textarea"); err == nil {
		p.HasTextArea = true
	}

	if _, err := container.Find(ctx, "input[type='date'], input.date-input"); err == nil {
		p.HasDate = true
	}
	if _, err := container.Find(ctx, "input[type='checkbox']"); err == nil {
		p.HasCheckbox = true
	}
	if _, err := container.Find(ctx, "input[type='file']"); err == nil {
		p.HasFile = true
	}

	return p, nil
}

// applyAnswer performs the resolved action against the live container
func (w *Wizard) applyAnswer(ctx context.Context, container driver.Element, field resolver.Field, answer resolver.Answer) error {
	if err := w.pacer.Wait(ctx); err != nil {
		return err
	}

	switch answer.Action {
	case resolver.ActionFill:
		return w.fillText(ctx, container, answer.Value)

	case resolver.ActionChoose:
		if field.Kind == resolver.KindDropdown {
			sel, err := container.Find(ctx, "select")
			if err != nil {
				return utils.NewElementNotFoundError("dropdown vanished before answer", err)
			}
			return sel.SelectOption(ctx, answer.Value)
		}
		return w.chooseRadio(ctx, container, answer.Value)

	case resolver.ActionCheck:
		box, err := container.Find(ctx, "input[type='checkbox']")
		if err != nil {
			return utils.NewElementNotFoundError("checkbox vanished before answer", err)
		}
		return box.Click(ctx)

	case resolver.ActionUpload:
		input, err := container.Find(ctx, "input[type='file']")
		if err != nil {
			return utils.NewElementNotFoundError("file input vanished before answer", err)
		}
		return input.Upload(ctx, answer.Value)

	case resolver.ActionFillAndConfirm:
		if err := w.fillText(ctx, container, answer.Value); err != nil {
			return err
		}
		// Typeahead fields only accept values picked from the list
		if suggestion, err := w.drv.WaitVisible(ctx, selSuggestionFirst, w.cfg.Target.PollInterval*4); err == nil {
			return suggestion.Click(ctx)
		}
		return nil

	default:
		return utils.NewClassificationError(fmt.Sprintf("no handler for action %d on %q", answer.Action, field.Label))
	}
}

// fillText clears and types into the step's text-like input
func (w *Wizard) fillText(ctx context.Context, container driver.Element, value string) error {
	input, err := container.Find(ctx, "input[type='text'], input[type='number'], input[type='tel'], input[type='email'], input:not([type]), textarea")
	if err != nil {
		return utils.NewElementNotFoundError("text input vanished before answer", err)
	}
	if err := input.Clear(ctx); err != nil {
		return err
	}
	return input.Input(ctx, value)
}

// chooseRadio clicks the radio option whose label matches value
func (w *Wizard) chooseRadio(ctx context.Context, container driver.Element, value string) error {
	labels, err := container.FindAll(ctx, "input[type='radio'] + label, label.radio-label")
	if err != nil {
		return utils.NewElementNotFoundError("radio group vanished before answer", err)
	}
	want := strings.ToLower(strings.TrimSpace(value))
	for _, label := range labels {
		text, err := label.Text(ctx)
		if err != nil {
			continue
		}
		if strings.ToLower(strings.TrimSpace(text)) == want {
			return label.Click(ctx)
		}
	}
	return utils.NewValidationError(fmt.Sprintf("no radio option matches %q", value), nil)
}

// hasValidationError reports whether the modal shows an inline rejection
func (w *Wizard) hasValidationError(ctx context.Context) bool {
	msgs, err := w.drv.FindAll(ctx, selValidationMsg)
	return err == nil && len(msgs) > 0
}

// dismiss closes the modal and confirms the discard prompt when it appears.
// Best effort: a modal that will not close is abandoned with the page.
func (w *Wizard) dismiss(ctx context.Context) {
	btn, err := w.drv.Find(ctx, selModalDismiss)
	if err != nil {
		return
	}
	if err := btn.Click(ctx); err != nil {
		return
	}
	if confirm, err := w.drv.WaitVisible(ctx, selDiscardConfirm, w.cfg.Target.PollInterval*4); err == nil {
		_ = confirm.Click(ctx)
	}
}
