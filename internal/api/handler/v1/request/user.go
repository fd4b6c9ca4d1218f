package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type UpdateProfileRequest struct {
	Name        string   `json:"name"`
	Avatar      string   `json:"avatar,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	Faculty     string   `json:"faculty,omitempty"`
	Year        string   `json:"year,omitempty"`
	Major       string   `json:"major,omitempty"`
	LinkedinURL string   `json:"linkedin_url,omitempty"`
	Diet        []string `json:"diet,omitempty"`
	Interests   []string `json:"interests,omitempty"`
}

func (req *UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Bio, validation.Length(0, 500)),
		validation.Field(&req.Avatar, is.URL),
		validation.Field(&req.LinkedinURL, is.URL),
	)
}

// OnboardingRequest is the first-login profile form. Completing it flips
// the onboarding flag so the portal stops routing the user to the form.
type OnboardingRequest struct {
	Name      string   `json:"name"`
	Faculty   string   `json:"faculty"`
	Year      string   `json:"year"`
	Major     string   `json:"major,omitempty"`
	Diet      []string `json:"diet,omitempty"`
	Interests []string `json:"interests,omitempty"`
}

func (req *OnboardingRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Faculty, validation.Required),
		validation.Field(&req.Year, validation.Required),
	)
}
