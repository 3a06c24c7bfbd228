package engine

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"autoapply/internal/logging"
	"autoapply/pkg/models"
	"autoapply/pkg/utils"
)

// Lister extracts job listings from a results page and filters them for
// eligibility against the seen set and the profile's blacklists.
type Lister struct {
	baseURL            string
	seen               *SeenSet
	blacklistCompanies []string
	blacklistTitle     map[string]struct{}
	logger             logging.Logger
}

// NewLister creates a lister bound to one run's seen set and blacklists
func NewLister(baseURL string, seen *SeenSet, profile *models.ApplicantProfile, logger logging.Logger) *Lister {
	titleWords := make(map[string]struct{}, len(profile.BlacklistTitleWords))
	for _, w := range profile.BlacklistTitleWords {
		titleWords[strings.ToLower(w)] = struct{}{}
	}

	return &Lister{
		baseURL:            baseURL,
		seen:               seen,
		blacklistCompanies: profile.BlacklistCompanies,
		blacklistTitle:     titleWords,
		logger:             logger,
	}
}

// Selector lists tried in order per card; the first non-empty text wins
var (
	listingCardSelectors = []string{
		"li[data-job-id]",
		"li.jobs-search-results__list-item",
		"div.job-card-container",
		".job-card",
	}
	listingTitleSelectors = []string{
		"a.job-card__title",
		".job-card-list__title",
		"h3 a",
		"a",
	}
	listingCompanySelectors = []string{
		".job-card__company",
		".job-card-container__company-name",
		".company-name",
		"h4",
	}
	listingLocationSelectors = []string{
		".job-card__location",
		".job-card-container__metadata-item",
		".job-location",
	}
	quickApplyBadgeSelectors = []string{
		".quick-apply-badge",
		".job-card-container__apply-method",
	}
)

// Extract parses the listing cards out of a results page. A page with no
// usable cards means the task's result pages are exhausted, reported as a
// PageExhausted-tagged error so the runner can end the page loop.
func (l *Lister) Extract(html string, task models.SearchTask) ([]models.JobListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	var cards *goquery.Selection
	for _, selector := range listingCardSelectors {
		cards = doc.Find(selector)
		if cards.Length() > 0 {
			break
		}
	}
	if cards == nil || cards.Length() == 0 {
		return nil, utils.NewPageExhaustedError(fmt.Sprintf("no listing cards for %q in %q", task.Position, task.Location))
	}

	var listings []models.JobListing
	cards.Each(func(_ int, card *goquery.Selection) {
		title := firstText(card, listingTitleSelectors)
		company := firstText(card, listingCompanySelectors)
		location := firstText(card, listingLocationSelectors)
		if location == "" {
			location = task.Location
		}

		link := l.cardLink(card)
		if title == "" || link == "" {
			return
		}

		method := models.ApplyMethodExternal
		for _, selector := range quickApplyBadgeSelectors {
			if card.Find(selector).Length() > 0 {
				method = models.ApplyMethodWizard
				break
			}
		}

		listings = append(listings, models.JobListing{
			Title:         title,
			Company:       company,
			Location:      location,
			CanonicalLink: Canonicalize(link),
			ApplyMethod:   method,
		})
	})

	if len(listings) == 0 {
		return nil, utils.NewPageExhaustedError(fmt.Sprintf("no listing cards for %q in %q", task.Position, task.Location))
	}
	return listings, nil
}

// FilterEligible returns the listings worth attempting. Every listing,
// eligible or not, enters the seen set here so a later page cannot
// re-surface it; blacklist and duplicate skips are logged, not ledgered.
func (l *Lister) FilterEligible(listings []models.JobListing) []models.JobListing {
	var eligible []models.JobListing

	for _, listing := range listings {
		if l.seen.Contains(listing.CanonicalLink) {
			l.logger.Debug("Skipping already-seen listing", map[string]interface{}{
				"link": listing.CanonicalLink,
			})
			continue
		}
		l.seen.Add(listing.CanonicalLink)

		if company := l.blacklistedCompany(listing.Company); company != "" {
			l.logger.Info(fmt.Sprintf("Skipping %s at %s: blacklisted company", listing.Title, listing.Company), map[string]interface{}{
				"match": company,
			})
			continue
		}

		if word := l.blacklistedTitleWord(listing.Title); word != "" {
			l.logger.Info(fmt.Sprintf("Skipping %s at %s: blacklisted title word", listing.Title, listing.Company), map[string]interface{}{
				"match": word,
			})
			continue
		}

		eligible = append(eligible, listing)
	}

	return eligible
}

// blacklistedCompany returns the matching blacklist token, if any.
// Matching is a case-insensitive substring test.
func (l *Lister) blacklistedCompany(company string) string {
	lower := strings.ToLower(company)
	for _, token := range l.blacklistCompanies {
		if token != "" && strings.Contains(lower, strings.ToLower(token)) {
			return token
		}
	}
	return ""
}

// blacklistedTitleWord returns the first title token present in the
// blacklisted word set, if any.
func (l *Lister) blacklistedTitleWord(title string) string {
	if len(l.blacklistTitle) == 0 {
		return ""
	}
	for _, token := range strings.Fields(strings.ToLower(title)) {
		token = strings.Trim(token, ".,()-/")
		if _, ok := l.blacklistTitle[token]; ok {
			return token
		}
	}
	return ""
}

// cardLink pulls the listing URL off the card, resolved against the target
// base URL when relative.
func (l *Lister) cardLink(card *goquery.Selection) string {
	href := ""
	for _, selector := range listingTitleSelectors {
		if v, ok := card.Find(selector).First().Attr("href"); ok && v != "" {
			href = v
			break
		}
	}
	if href == "" {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if parsed.IsAbs() {
		return href
	}

	base, err := url.Parse(l.baseURL)
	if err != nil {
		return href
	}
	return base.ResolveReference(parsed).String()
}

// firstText returns the first non-empty trimmed text among the selectors
func firstText(card *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		if text := strings.TrimSpace(card.Find(selector).First().Text()); text != "" {
			return strings.Join(strings.Fields(text), " ")
		}
	}
	return ""
}
