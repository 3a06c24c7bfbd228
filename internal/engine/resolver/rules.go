package resolver

import (
	"strconv"
	"strings"
	"time"

	"autoapply/pkg/models"
)

// textPlaceholder is the content-free answer for unmatched required text
// fields. Empty strings fail required-field validation, so it is never blank.
const textPlaceholder = "N/A"

// nonDisclosurePhrases mark the option demographic questions are always
// answered with.
var nonDisclosurePhrases = []string{
	"prefer not",
	"decline",
	"don't wish",
	"do not wish",
	"not specified",
	"rather not",
}

// Rule pairs a label predicate with an answer source. Rules are evaluated in
// order; the first match wins.
type Rule struct {
	Name       string
	Match      func(label string) bool
	Synthesize func(p *models.ApplicantProfile, f Field) Answer
}

// AnswerRules is the ordered rule table for label-driven answers. Structural
// kinds (file, checkbox, date) are handled before the table is consulted.
var AnswerRules = []Rule{
	{
		Name:  "visa_sponsorship",
		Match: matchAny("sponsor", "visa"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			return boolAnswer(f, p.Policy.RequiresVisaSponsorship, "visa_sponsorship")
		},
	},
	{
		Name:  "work_authorization",
		Match: matchAny("legally authorized", "authorized to work", "work authorization", "right to work"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			return boolAnswer(f, p.Policy.LegallyAuthorized, "work_authorization")
		},
	},
	{
		Name:  "background_check",
		Match: matchAny("background check", "background screening"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			return boolAnswer(f, p.Policy.BackgroundCheckOK, "background_check")
		},
	},
	{
		Name:  "drug_test",
		Match: matchAny("drug test", "drug screening"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			return boolAnswer(f, p.Policy.DrugTestOK, "drug_test")
		},
	},
	{
		Name:  "drivers_license",
		Match: matchAny("driver's license", "drivers license", "driving licence"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			return boolAnswer(f, p.Policy.HasDriversLicense, "drivers_license")
		},
	},
	{
		Name:  "certification",
		Match: matchAny("certified", "certification", "licensed"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			return boolAnswer(f, p.Policy.CertifiedProfessional, "certification")
		},
	},
	{
		Name:  "urgent_fill",
		Match: matchAny("urgent", "start immediately", "immediate start"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			return boolAnswer(f, p.Policy.UrgentFill, "urgent_fill")
		},
	},
	{
		Name:  "commute",
		Match: matchAny("commut", "relocat", "on-site", "onsite"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			return boolAnswer(f, p.Policy.CanCommute, "commute")
		},
	},
	{
		Name:  "demographic",
		Match: matchAny("gender", "race", "ethnic", "veteran", "disability", "sexual orientation", "lgbtq", "pronoun"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			return Answer{Action: ActionChoose, Value: pickNonDisclosure(f.Options), Rule: "demographic"}
		},
	},
	{
		Name:  "experience_years",
		Match: matchAny("experience", "years"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			years := lookupExperience(p, f.Label)
			value := strconv.Itoa(years)
			if len(f.Options) > 0 {
				return Answer{Action: ActionChoose, Value: bestOption(f.Options, value), Rule: "experience_years"}
			}
			return Answer{Action: ActionFill, Value: value, Rule: "experience_years"}
		},
	},
	{
		// Ranked below experience so "years of experience with the Go
		// language" resolves as experience, not proficiency
		Name:  "language_proficiency",
		Match: matchAny("proficiency", "language", "fluent"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			level := languageLevel(p, f.Label)
			if len(f.Options) > 0 {
				return Answer{Action: ActionChoose, Value: bestOption(f.Options, level), Rule: "language_proficiency"}
			}
			return Answer{Action: ActionFill, Value: level, Rule: "language_proficiency"}
		},
	},
	{
		Name:  "gpa",
		Match: matchAny("gpa", "grade point"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			return Answer{Action: ActionFill, Value: p.GPA, Rule: "gpa"}
		},
	},
	{
		Name:  "first_name",
		Match: matchAny("first name"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			return Answer{Action: ActionFill, Value: p.FirstName, Rule: "first_name"}
		},
	},
	{
		Name:  "last_name",
		Match: matchAny("last name", "surname", "family name"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			return Answer{Action: ActionFill, Value: p.LastName, Rule: "last_name"}
		},
	},
	{
		Name:  "full_name",
		Match: matchAny("full name", "your name"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			return Answer{Action: ActionFill, Value: p.FullName(), Rule: "full_name"}
		},
	},
	{
		Name:  "email",
		Match: matchAny("email", "e-mail"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			if len(f.Options) > 0 {
				return Answer{Action: ActionChoose, Value: bestOption(f.Options, p.Email), Rule: "email"}
			}
			return Answer{Action: ActionFill, Value: p.Email, Rule: "email"}
		},
	},
	{
		Name:  "country_code",
		Match: matchAny("country code", "dial code"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			if len(f.Options) > 0 {
				return Answer{Action: ActionChoose, Value: bestOption(f.Options, p.CountryCode), Rule: "country_code"}
			}
			return Answer{Action: ActionFill, Value: p.CountryCode, Rule: "country_code"}
		},
	},
	{
		Name:  "phone",
		Match: matchAny("phone", "mobile"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			return Answer{Action: ActionFill, Value: p.Phone, Rule: "phone"}
		},
	},
	{
		Name:  "linkedin",
		Match: matchAny("linkedin"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			return Answer{Action: ActionFill, Value: p.LinkedIn, Rule: "linkedin"}
		},
	},
	{
		Name:  "github",
		Match: matchAny("github"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			return Answer{Action: ActionFill, Value: p.GitHub, Rule: "github"}
		},
	},
	{
		Name:  "website",
		Match: matchAny("website", "portfolio", "personal site", "url"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			return Answer{Action: ActionFill, Value: p.Website, Rule: "website"}
		},
	},
	{
		Name:  "street",
		Match: matchAny("street", "address line"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			return Answer{Action: ActionFill, Value: p.Address.Street, Rule: "street"}
		},
	},
	{
		Name:  "city",
		Match: matchAny("city", "location"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			// City widgets often demand picking from a typeahead
			return Answer{Action: ActionFillAndConfirm, Value: p.Address.City, Rule: "city"}
		},
	},
	{
		Name:  "zip",
		Match: matchAny("zip", "postal"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			return Answer{Action: ActionFill, Value: p.Address.Zip, Rule: "zip"}
		},
	},
	{
		Name:  "state",
		Match: matchAny("state", "province"),
		Synthesize: func(p *models.ApplicantProfile, f Field) Answer {
			if len(f.Options) > 0 {
				return Answer{Action: ActionChoose, Value: bestOption(f.Options, p.Address.State), Rule: "state"}
			}
			return Answer{Action: ActionFill, Value: p.Address.State, Rule: "state"}
		},
	},
}

// Resolve synthesizes an answer for a classified field. Structural kinds are
// handled first, then the ordered label rules, then the fallbacks.
func Resolve(p *models.ApplicantProfile, f Field) Answer {
	switch f.Kind {
	case KindFile:
		return resolveUpload(p, f)
	case KindCheckbox:
		return Answer{Action: ActionCheck, Rule: "checkbox_agree"}
	case KindDate:
		return Answer{Action: ActionFill, Value: time.Now().Format("01/02/2006"), Rule: "date_today"}
	}

	label := strings.ToLower(f.Label)
	for _, rule := range AnswerRules {
		if rule.Match(label) {
			return rule.Synthesize(p, f)
		}
	}

	// Fallbacks: required fields must never stay empty
	switch {
	case f.Kind == KindText && f.Numeric:
		return Answer{Action: ActionFill, Value: "0", Rule: "numeric_fallback"}
	case f.Kind == KindText:
		return Answer{Action: ActionFill, Value: textPlaceholder, Rule: "text_fallback"}
	default:
		return Answer{Action: ActionChoose, Value: pickNonDisclosure(f.Options), Rule: "option_fallback"}
	}
}

// resolveUpload matches documents by the element's preceding label. A
// required cover letter without a configured document falls back to the
// resume rather than aborting the application.
func resolveUpload(p *models.ApplicantProfile, f Field) Answer {
	label := strings.ToLower(f.Label)
	if strings.Contains(label, "cover") {
		path := p.CoverLetterPath
		if path == "" {
			path = p.ResumePath
		}
		return Answer{Action: ActionUpload, Value: path, Rule: "cover_letter_upload"}
	}
	return Answer{Action: ActionUpload, Value: p.ResumePath, Rule: "resume_upload"}
}

// languageLevel resolves the proficiency for the language the label names,
// defaulting to a conservative level for languages the profile omits.
func languageLevel(p *models.ApplicantProfile, label string) string {
	lower := strings.ToLower(label)
	for language, level := range p.Languages {
		if strings.Contains(lower, strings.ToLower(language)) {
			return level
		}
	}
	return "Conversational"
}

// lookupExperience resolves years of experience for a question label:
// technology map first, then industry map, then the configured default.
func lookupExperience(p *models.ApplicantProfile, label string) int {
	lower := strings.ToLower(label)

	for keyword, years := range p.TechnologyExperience {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return years
		}
	}
	for keyword, years := range p.IndustryExperience {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return years
		}
	}
	return p.DefaultExperience
}

// pickNonDisclosure returns the option containing a non-disclosure phrase,
// else the last listed option, else "".
func pickNonDisclosure(options []string) string {
	for _, opt := range options {
		lower := strings.ToLower(opt)
		for _, phrase := range nonDisclosurePhrases {
			if strings.Contains(lower, phrase) {
				return opt
			}
		}
	}
	if len(options) > 0 {
		return options[len(options)-1]
	}
	return ""
}

// pickYesNo returns the option whose text best matches the wanted answer
func pickYesNo(options []string, yes bool) string {
	want := "no"
	if yes {
		want = "yes"
	}
	for _, opt := range options {
		if strings.EqualFold(strings.TrimSpace(opt), want) {
			return opt
		}
	}
	for _, opt := range options {
		if strings.Contains(strings.ToLower(opt), want) {
			return opt
		}
	}
	if len(options) > 0 {
		return options[len(options)-1]
	}
	return ""
}

// bestOption returns the option containing the wanted text, else the last
// option.
func bestOption(options []string, want string) string {
	lowerWant := strings.ToLower(strings.TrimSpace(want))
	if lowerWant != "" {
		for _, opt := range options {
			if strings.Contains(strings.ToLower(opt), lowerWant) {
				return opt
			}
		}
	}
	if len(options) > 0 {
		return options[len(options)-1]
	}
	return ""
}

// boolAnswer answers a policy question on whatever widget carries it
func boolAnswer(f Field, yes bool, rule string) Answer {
	if len(f.Options) > 0 {
		return Answer{Action: ActionChoose, Value: pickYesNo(f.Options, yes), Rule: rule}
	}
	value := "No"
	if yes {
		value = "Yes"
	}
	return Answer{Action: ActionFill, Value: value, Rule: rule}
}

// matchAny builds a predicate matching any of the given substrings
func matchAny(keywords ...string) func(string) bool {
	return func(label string) bool {
		for _, kw := range keywords {
			if strings.Contains(label, kw) {
				return true
			}
		}
		return false
	}
}
