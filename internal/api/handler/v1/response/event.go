package response

import "github.com/ubcma/membership-portal-api/internal/domain"

// EventDetailsResponse is the payload backing the event page and its
// registration form.
type EventDetailsResponse struct {
	Event     domain.Event           `json:"event"`
	Questions []domain.EventQuestion `json:"questions"`
	Tags      []string               `json:"tags"`
}
