package engine

import (
	"context"
	"fmt"
	"net/url"

	"autoapply/internal/config"
	"autoapply/internal/driver"
	"autoapply/internal/ledger"
	"autoapply/internal/logging"
	"autoapply/internal/pacing"
	"autoapply/pkg/models"
	"autoapply/pkg/utils"
)

// Runner executes one run's search frontier: pages through each task's
// results, filters listings and hands the eligible ones to the wizard.
type Runner struct {
	drv     driver.Driver
	cfg     *config.Config
	profile *models.ApplicantProfile
	pacer   pacing.Pacer
	ledger  *ledger.Ledger
	logger  logging.Logger
}

func NewRunner(drv driver.Driver, cfg *config.Config, profile *models.ApplicantProfile, pacer pacing.Pacer, led *ledger.Ledger, logger logging.Logger) *Runner {
	return &Runner{
		drv:     drv,
		cfg:     cfg,
		profile: profile,
		pacer:   pacer,
		ledger:  led,
		logger:  logger,
	}
}

// Run works through every task in the frontier. It returns an error only
// when the session is finished: context cancelled, auth lost, or a
// challenge presented. Per-task failures are absorbed and logged.
func (r *Runner) Run(ctx context.Context, frontier []models.SearchTask) error {
	seen := NewSeenSet()
	lister := NewLister(r.cfg.Target.BaseURL, seen, r.profile, r.logger)
	wizard := NewWizard(r.drv, r.cfg, r.profile, r.pacer, r.logger)

	for i, task := range frontier {
		r.logger.Info(fmt.Sprintf("Task %d/%d: %q in %q", i+1, len(frontier), task.Position, task.Location), nil)

		if err := r.runTask(ctx, task, lister, wizard); err != nil {
			if utils.IsSessionFatal(err) || ctx.Err() != nil {
				return err
			}
			if utils.IsKind(err, utils.KindFatalNavigation) {
				r.logger.Warn(fmt.Sprintf("Abandoning task %q in %q", task.Position, task.Location), map[string]interface{}{
					"error": err.Error(),
				})
				continue
			}
			return err
		}
	}

	return nil
}

// runTask pages through one position/location search until the results run
// out or the page cap is hit.
func (r *Runner) runTask(ctx context.Context, task models.SearchTask, lister *Lister, wizard *Wizard) error {
	for page := 0; page < r.cfg.Engine.MaxPagesPerTask; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		pageURL := r.searchURL(task, page)
		if err := r.drv.Navigate(ctx, pageURL); err != nil {
			return utils.NewFatalNavigationError(fmt.Sprintf("results page unreachable: %s", pageURL), err)
		}
		if err := CheckChallenge(ctx, r.drv); err != nil {
			return err
		}

		html, err := r.drv.PageHTML(ctx)
		if err != nil {
			return utils.NewFatalNavigationError("failed to read results page", err)
		}

		listings, err := lister.Extract(html, task)
		if utils.IsKind(err, utils.KindPageExhausted) {
			r.logger.Info(fmt.Sprintf("No more results for %q in %q after page %d", task.Position, task.Location, page), nil)
			return nil
		}
		if err != nil {
			return utils.NewFatalNavigationError("failed to extract listings", err)
		}

		eligible := lister.FilterEligible(listings)
		r.logger.Info(fmt.Sprintf("Page %d: %d listings, %d eligible", page+1, len(listings), len(eligible)), nil)

		for _, listing := range eligible {
			record, err := wizard.Apply(ctx, task, listing)
			r.ledger.Append(record)
			r.logListing(record)
			if err != nil {
				return err
			}
		}

		if err := r.pacer.PageDone(ctx); err != nil {
			return err
		}
	}

	r.logger.Info(fmt.Sprintf("Page cap reached for %q in %q", task.Position, task.Location), nil)
	return nil
}

// searchURL builds the results page address for one task and page index
func (r *Runner) searchURL(task models.SearchTask, page int) string {
	params := url.Values{}
	params.Set("keywords", task.Position)
	params.Set("location", task.Location)
	if page > 0 {
		params.Set("start", fmt.Sprintf("%d", page*r.cfg.Target.PageSize))
	}
	return r.cfg.Target.BaseURL + r.cfg.Target.SearchPath + "?" + params.Encode()
}

func (r *Runner) logListing(rec models.OutcomeRecord) {
	switch rec.Result {
	case models.ResultApplied:
		r.logger.Info(fmt.Sprintf("Applied: %s at %s", rec.Listing.Title, rec.Listing.Company), nil)
	case models.ResultSkipped:
		r.logger.Info(fmt.Sprintf("Skipped: %s at %s (%s)", rec.Listing.Title, rec.Listing.Company, rec.Reason), nil)
	default:
		r.logger.Warn(fmt.Sprintf("Failed: %s at %s (%s)", rec.Listing.Title, rec.Listing.Company, rec.Reason), nil)
	}
}
