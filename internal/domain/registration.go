package domain

import (
	"strings"
	"time"
)

// ListDelimiter joins multi-valued answers when they are persisted as a
// single response string.
const ListDelimiter = ";"

// Answer is a single response to an event question. Multi-valued question
// types use List, everything else uses Text.
type Answer struct {
	Text string
	List []string
}

// Provided reports whether the answer counts as given for the question
// type: trimmed non-empty string, or non-empty list for multi-valued
// types.
func (a Answer) Provided(t QuestionType) bool {
	if t.IsMultiValued() {
		return len(a.List) > 0
	}

	return strings.TrimSpace(a.Text) != ""
}

// Flatten renders the answer as the persisted response string.
func (a Answer) Flatten(t QuestionType) string {
	if t.IsMultiValued() {
		return strings.Join(a.List, ListDelimiter)
	}

	return strings.TrimSpace(a.Text)
}

// ResponseSet is the ephemeral questionID -> answer map collected while a
// registration form is open. It is never persisted until the registration
// is confirmed.
type ResponseSet map[uint]Answer

// Valid reports whether every required question has been answered.
// Non-required questions impose no constraint.
func (rs ResponseSet) Valid(questions []EventQuestion) bool {
	return len(rs.Missing(questions)) == 0
}

// Missing returns the IDs of required questions without an answer.
func (rs ResponseSet) Missing(questions []EventQuestion) []uint {
	var missing []uint
	for _, q := range questions {
		if !q.IsRequired {
			continue
		}
		if !rs[q.ID].Provided(q.Type) {
			missing = append(missing, q.ID)
		}
	}

	return missing
}

// QuestionResponse is a persisted answer on a confirmed registration.
type QuestionResponse struct {
	ID             uint   `json:"id"`
	RegistrationID uint   `json:"registration_id"`
	QuestionID     uint   `json:"question_id"`
	Response       string `json:"response"`
}

// Registration is the authoritative record of a confirmed event
// registration. It is only ever created server-side.
type Registration struct {
	ID                  uint               `json:"id"`
	EventID             uint               `json:"event_id"`
	UserID              uint               `json:"user_id"`
	TicketCode          string             `json:"ticket_code"`
	StripeTransactionID string             `json:"stripe_transaction_id,omitempty"`
	PaymentVerified     bool               `json:"payment_verified"`
	Responses           []QuestionResponse `json:"responses,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
}
