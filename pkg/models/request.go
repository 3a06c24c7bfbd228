package models

// ApplyRequest is the invocation payload for the application engine
type ApplyRequest struct {
	Profile ApplicantProfile `json:"profile" validate:"required"`
}

// ProfileUpdateRequest is the invocation payload for the profile update flow
type ProfileUpdateRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Headless bool   `json:"headless"`
}
