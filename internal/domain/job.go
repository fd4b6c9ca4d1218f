package domain

import "time"

type JobType string

const (
	JobFullTime   JobType = "full_time"
	JobPartTime   JobType = "part_time"
	JobInternship JobType = "internship"
)

// Job is a job-board listing posted by an admin.
type Job struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Type        JobType   `json:"type"`
	Description string    `json:"description"`
	ApplyURL    string    `json:"apply_url"`
	PostedByID  uint      `json:"posted_by_id"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsExpired reports whether the listing should no longer be shown.
func (j *Job) IsExpired(now time.Time) bool {
	return !j.ExpiresAt.IsZero() && now.After(j.ExpiresAt)
}
