package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/ubcma/membership-portal-api/internal/domain"
)

type CreateJobRequest struct {
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location,omitempty"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	ApplyURL    string    `json:"apply_url"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

func (req *CreateJobRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Company, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Type, validation.Required, validation.In(
			string(domain.JobFullTime),
			string(domain.JobPartTime),
			string(domain.JobInternship),
		)),
		validation.Field(&req.ApplyURL, validation.Required, is.URL),
	)
}

func (req *CreateJobRequest) ToDomain() domain.Job {
	return domain.Job{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		Type:        domain.JobType(req.Type),
		Description: req.Description,
		ApplyURL:    req.ApplyURL,
		ExpiresAt:   req.ExpiresAt,
	}
}
