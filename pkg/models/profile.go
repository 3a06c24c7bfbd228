package models

// ApplicantProfile describes the operator the engine applies on behalf of.
// It is read-only for the whole run.
type ApplicantProfile struct {
	FirstName string `json:"first_name" yaml:"first_name" validate:"required"`
	LastName  string `json:"last_name" yaml:"last_name" validate:"required"`
	Email     string `json:"email" yaml:"email" validate:"required,email"`
	Phone     string `json:"phone" yaml:"phone" validate:"required"`
	// CountryCode is the dialing prefix some forms ask for separately
	CountryCode string `json:"country_code,omitempty" yaml:"country_code"`
	LinkedIn    string `json:"linkedin,omitempty" yaml:"linkedin"`
	Website     string `json:"website,omitempty" yaml:"website"`
	GitHub      string `json:"github,omitempty" yaml:"github"`

	Address Address `json:"address" yaml:"address"`

	// Positions and Locations define the search frontier
	Positions []string `json:"positions" yaml:"positions" validate:"required,min=1,dive,required"`
	Locations []string `json:"locations" yaml:"locations" validate:"required,min=1,dive,required"`

	// BlacklistCompanies are matched as case-insensitive substrings against the
	// listing's company name. BlacklistTitleWords are matched against the
	// tokenized listing title.
	BlacklistCompanies []string `json:"blacklist_companies,omitempty" yaml:"blacklist_companies"`
	BlacklistTitleWords []string `json:"blacklist_title_words,omitempty" yaml:"blacklist_title_words"`

	// TechnologyExperience and IndustryExperience map lowercase keywords to
	// years of experience. DefaultExperience is used when neither map matches.
	TechnologyExperience map[string]int `json:"technology_experience,omitempty" yaml:"technology_experience"`
	IndustryExperience   map[string]int `json:"industry_experience,omitempty" yaml:"industry_experience"`
	DefaultExperience    int            `json:"default_experience" yaml:"default_experience"`

	// Languages maps language name to proficiency (e.g. "english" -> "Native")
	Languages map[string]string `json:"languages,omitempty" yaml:"languages"`

	GPA string `json:"gpa,omitempty" yaml:"gpa"`

	Policy PolicyAnswers `json:"policy" yaml:"policy"`

	ResumePath      string `json:"resume_path" yaml:"resume_path" validate:"required"`
	CoverLetterPath string `json:"cover_letter_path,omitempty" yaml:"cover_letter_path"`
}

// Address holds the mailing-address fields forms ask for piecemeal
type Address struct {
	Street string `json:"street,omitempty" yaml:"street"`
	City   string `json:"city,omitempty" yaml:"city"`
	State  string `json:"state,omitempty" yaml:"state"`
	Zip    string `json:"zip,omitempty" yaml:"zip"`
}

// PolicyAnswers are the canned yes/no answers for recurring screening questions
type PolicyAnswers struct {
	RequiresVisaSponsorship bool `json:"requires_visa_sponsorship" yaml:"requires_visa_sponsorship"`
	LegallyAuthorized       bool `json:"legally_authorized" yaml:"legally_authorized"`
	BackgroundCheckOK       bool `json:"background_check_ok" yaml:"background_check_ok"`
	DrugTestOK              bool `json:"drug_test_ok" yaml:"drug_test_ok"`
	HasDriversLicense       bool `json:"has_drivers_license" yaml:"has_drivers_license"`
	CertifiedProfessional   bool `json:"certified_professional" yaml:"certified_professional"`
	UrgentFill              bool `json:"urgent_fill" yaml:"urgent_fill"`
	CanCommute              bool `json:"can_commute" yaml:"can_commute"`
	RemoteOnly              bool `json:"remote_only" yaml:"remote_only"`
}

// FullName returns the applicant's display name
func (p *ApplicantProfile) FullName() string {
	return p.FirstName + " " + p.LastName
}
