package engine

import (
	"fmt"
	"testing"

	"autoapply/internal/logging"
	"autoapply/pkg/models"
	"autoapply/pkg/utils"
)

const resultsPage = `
<html><body>
<ul>
  <li data-job-id="1">
    <a class="job-card__title" href="/jobs/view/1?refId=a">Backend Engineer</a>
    <span class="job-card__company">Initech</span>
    <span class="job-card__location">Berlin, Germany</span>
    <span class="quick-apply-badge">Quick Apply</span>
  </li>
  <li data-job-id="2">
    <a class="job-card__title" href="https://target.example/jobs/view/2?refId=b">Staff Engineer</a>
    <span class="job-card__company">Globex Staffing</span>
    <span class="job-card__location">Berlin, Germany</span>
  </li>
  <li data-job-id="3">
    <a class="job-card__title" href="/jobs/view/3">Senior Backend Engineer</a>
    <span class="job-card__company">Hooli</span>
    <span class="quick-apply-badge">Quick Apply</span>
  </li>
</ul>
</body></html>`

func testLister(profile *models.ApplicantProfile) (*Lister, *SeenSet) {
	seen := NewSeenSet()
	logger := logging.NewMultiLogger()
	return NewLister("https://target.example", seen, profile, logger), seen
}

func TestExtractListings(t *testing.T) {
	lister, _ := testLister(&models.ApplicantProfile{})
	task := models.SearchTask{Position: "backend engineer", Location: "Berlin"}

	listings, err := lister.Extract(resultsPage, task)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(listings) != 3 {
		t.Fatalf("extracted %d listings, want 3", len(listings))
	}

	first := listings[0]
	if first.Title != "Backend Engineer" || first.Company != "Initech" {
		t.Errorf("unexpected first listing: %+v", first)
	}
	if first.CanonicalLink != "https://target.example/jobs/view/1" {
		t.Errorf("relative link not resolved and canonicalized: %q", first.CanonicalLink)
	}
	if first.ApplyMethod != models.ApplyMethodWizard {
		t.Errorf("badge not detected: %s", first.ApplyMethod)
	}

	second := listings[1]
	if second.CanonicalLink != "https://target.example/jobs/view/2" {
		t.Errorf("absolute link not canonicalized: %q", second.CanonicalLink)
	}
	if second.ApplyMethod != models.ApplyMethodExternal {
		t.Errorf("badge-less listing should be external: %s", second.ApplyMethod)
	}

	// Card 3 has no location span: the task's location fills in
	if listings[2].Location != "Berlin" {
		t.Errorf("missing location should default to the task's: %q", listings[2].Location)
	}
}

func TestExtractEmptyPageReportsExhaustion(t *testing.T) {
	lister, _ := testLister(&models.ApplicantProfile{})

	listings, err := lister.Extract("<html><body><p>No results</p></body></html>", models.SearchTask{})
	if !utils.IsKind(err, utils.KindPageExhausted) {
		t.Fatalf("Extract error = %v, want page-exhausted kind", err)
	}
	if len(listings) != 0 {
		t.Errorf("expected no listings, got %d", len(listings))
	}
}

func TestExtractUnusableCardsReportExhaustion(t *testing.T) {
	lister, _ := testLister(&models.ApplicantProfile{})

	// Cards without a title or link yield no listings
	html := `<html><body><ul><li data-job-id="1"><span class="job-card__company">Acme</span></li></ul></body></html>`
	_, err := lister.Extract(html, models.SearchTask{})
	if !utils.IsKind(err, utils.KindPageExhausted) {
		t.Fatalf("Extract error = %v, want page-exhausted kind", err)
	}
}

func TestFilterEligible(t *testing.T) {
	profile := &models.ApplicantProfile{
		BlacklistCompanies:  []string{"globex"},
		BlacklistTitleWords: []string{"senior"},
	}
	lister, seen := testLister(profile)

	listings := []models.JobListing{
		{Title: "Backend Engineer", Company: "Initech", CanonicalLink: "https://t/jobs/1"},
		{Title: "Staff Engineer", Company: "Globex Staffing", CanonicalLink: "https://t/jobs/2"},
		{Title: "Senior Backend Engineer", Company: "Hooli", CanonicalLink: "https://t/jobs/3"},
	}

	eligible := lister.FilterEligible(listings)
	if len(eligible) != 1 {
		t.Fatalf("eligible = %d, want 1", len(eligible))
	}
	if eligible[0].Company != "Initech" {
		t.Errorf("wrong listing survived: %+v", eligible[0])
	}

	// Everything, eligible or not, is marked seen
	if seen.Len() != 3 {
		t.Errorf("seen set len = %d, want 3", seen.Len())
	}

	// A later page re-surfacing the same listings yields nothing
	if again := lister.FilterEligible(listings); len(again) != 0 {
		t.Errorf("duplicates should be filtered, got %d", len(again))
	}
}

func TestFilterEligibleDedupAcrossTasks(t *testing.T) {
	lister, _ := testLister(&models.ApplicantProfile{})

	shared := models.JobListing{Title: "Backend Engineer", Company: "Initech", CanonicalLink: "https://t/jobs/7"}

	if got := lister.FilterEligible([]models.JobListing{shared}); len(got) != 1 {
		t.Fatalf("first sighting should be eligible, got %d", len(got))
	}
	// Same listing found under a second search task
	if got := lister.FilterEligible([]models.JobListing{shared}); len(got) != 0 {
		t.Errorf("second sighting should be deduplicated, got %d", len(got))
	}
}

func TestFilterEligibleTitleTokenMatching(t *testing.T) {
	profile := &models.ApplicantProfile{BlacklistTitleWords: []string{"intern"}}
	lister, _ := testLister(profile)

	listings := []models.JobListing{
		{Title: "Software Intern", Company: "A", CanonicalLink: "https://t/jobs/10"},
		// "internal" contains "intern" but is a different token
		{Title: "Internal Tools Engineer", Company: "B", CanonicalLink: "https://t/jobs/11"},
	}

	eligible := lister.FilterEligible(listings)
	if len(eligible) != 1 {
		t.Fatalf("eligible = %d, want 1", len(eligible))
	}
	if eligible[0].Title != "Internal Tools Engineer" {
		t.Errorf("token matching too broad: %+v", eligible[0])
	}
}

func TestExtractManyCards(t *testing.T) {
	lister, _ := testLister(&models.ApplicantProfile{})

	html := "<html><body><ul>"
	for i := 0; i < 25; i++ {
		html += fmt.Sprintf(`<li data-job-id="%d"><a class="job-card__title" href="/jobs/view/%d">Engineer %d</a><span class="job-card__company">Acme</span></li>`, i, i, i)
	}
	html += "</ul></body></html>"

	listings, err := lister.Extract(html, models.SearchTask{Location: "Remote"})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(listings) != 25 {
		t.Errorf("extracted %d listings, want 25", len(listings))
	}
}
