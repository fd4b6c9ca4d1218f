package domain

import (
	"strings"
	"time"
)

type EventStatus string

const (
	EventUpcoming EventStatus = "upcoming"
	EventOngoing  EventStatus = "ongoing"
	EventPast     EventStatus = "past"
)

// Event is a purchasable/attendable event listed in the portal.
type Event struct {
	ID            uint            `json:"id"`
	Slug          string          `json:"slug"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Location      string          `json:"location"`
	Price         float64         `json:"price"` // CAD
	StartsAt      time.Time       `json:"starts_at"`
	EndsAt        time.Time       `json:"ends_at"`
	AttendeeCap   *int            `json:"attendee_cap"`
	AttendeeCount int             `json:"attendee_count"`
	IsVisible     bool            `json:"is_visible"`
	MembersOnly   bool            `json:"members_only"`
	Tags          []string        `json:"tags"`
	Questions     []EventQuestion `json:"questions,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsFull reports whether the event reached its attendee cap. Events
// without a cap are never full.
func (e *Event) IsFull() bool {
	return e.AttendeeCap != nil && e.AttendeeCount >= *e.AttendeeCap
}

// IsFree reports whether registration bypasses the payment gateway.
func (e *Event) IsFree() bool {
	return e.Price <= 0
}

// PriceCents is the authoritative charge amount in currency minor units.
// Clients may send an amount hint but this value always wins.
func (e *Event) PriceCents() int64 {
	return int64(e.Price*100 + 0.5)
}

// StatusAt derives the event status relative to now.
func (e *Event) StatusAt(now time.Time) EventStatus {
	switch {
	case now.Before(e.StartsAt):
		return EventUpcoming
	case now.After(e.EndsAt):
		return EventPast
	default:
		return EventOngoing
	}
}

// EventFilter holds the local filter state applied to the event list.
type EventFilter struct {
	Status         EventStatus
	Search         string
	Tags           []string
	RegisteredOnly bool
}

// FilterEvents derives the filtered event list from the event directory,
// the user's registrations and the current filter state. Hidden events
// are always excluded.
func FilterEvents(events []Event, registrations []Registration, filter EventFilter, now time.Time) []Event {
	registered := make(map[uint]bool, len(registrations))
	for _, r := range registrations {
		registered[r.EventID] = true
	}

	var result []Event
	for _, e := range events {
		if !e.IsVisible {
			continue
		}
		if filter.Status != "" && e.StatusAt(now) != filter.Status {
			continue
		}
		if filter.RegisteredOnly && !registered[e.ID] {
			continue
		}
		if filter.Search != "" && !matchesSearch(e, filter.Search) {
			continue
		}
		if len(filter.Tags) > 0 && !hasAnyTag(e, filter.Tags) {
			continue
		}
		result = append(result, e)
	}

	return result
}

func matchesSearch(e Event, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}

	return strings.Contains(strings.ToLower(e.Title), term) ||
		strings.Contains(strings.ToLower(e.Description), term) ||
		strings.Contains(strings.ToLower(e.Location), term)
}

func hasAnyTag(e Event, tags []string) bool {
	for _, want := range tags {
		for _, got := range e.Tags {
			if strings.EqualFold(want, got) {
				return true
			}
		}
	}

	return false
}
