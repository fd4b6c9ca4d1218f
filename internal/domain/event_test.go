package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvent_StatusAt(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	event := Event{
		StartsAt: now.Add(-time.Hour),
		EndsAt:   now.Add(time.Hour),
	}

	assert.Equal(t, EventOngoing, event.StatusAt(now))
	assert.Equal(t, EventUpcoming, event.StatusAt(now.Add(-2*time.Hour)))
	assert.Equal(t, EventPast, event.StatusAt(now.Add(2*time.Hour)))
}

func TestEvent_PriceCents(t *testing.T) {
	assert.Equal(t, int64(2500), (&Event{Price: 25}).PriceCents())
	assert.Equal(t, int64(1999), (&Event{Price: 19.99}).PriceCents())
	// Float representation of 10.10 must not round down to 1009.
	assert.Equal(t, int64(1010), (&Event{Price: 10.10}).PriceCents())
	assert.Equal(t, int64(0), (&Event{Price: 0}).PriceCents())
}

func TestEvent_IsFull(t *testing.T) {
	cap := 2

	assert.False(t, (&Event{AttendeeCap: nil, AttendeeCount: 99}).IsFull())
	assert.False(t, (&Event{AttendeeCap: &cap, AttendeeCount: 1}).IsFull())
	assert.True(t, (&Event{AttendeeCap: &cap, AttendeeCount: 2}).IsFull())
	assert.True(t, (&Event{AttendeeCap: &cap, AttendeeCount: 3}).IsFull())
}

func TestFilterEvents(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	events := []Event{
		{ID: 1, Title: "Networking Night", Location: "Sauder", Tags: []string{"social"}, IsVisible: true, StartsAt: now.Add(24 * time.Hour), EndsAt: now.Add(26 * time.Hour)},
		{ID: 2, Title: "Alumni Panel", Description: "career talk", Tags: []string{"career"}, IsVisible: true, StartsAt: now.Add(-26 * time.Hour), EndsAt: now.Add(-24 * time.Hour)},
		{ID: 3, Title: "Secret Gala", IsVisible: false, StartsAt: now.Add(24 * time.Hour), EndsAt: now.Add(26 * time.Hour)},
		{ID: 4, Title: "Case Comp", Tags: []string{"career", "competition"}, IsVisible: true, StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour)},
	}
	registrations := []Registration{{EventID: 2}}

	ids := func(events []Event) []uint {
		out := make([]uint, len(events))
		for i, e := range events {
			out[i] = e.ID
		}

		return out
	}

	t.Run("hidden events never appear", func(t *testing.T) {
		got := FilterEvents(events, nil, EventFilter{}, now)

		assert.Equal(t, []uint{1, 2, 4}, ids(got))
	})

	t.Run("status filter", func(t *testing.T) {
		assert.Equal(t, []uint{1}, ids(FilterEvents(events, nil, EventFilter{Status: EventUpcoming}, now)))
		assert.Equal(t, []uint{2}, ids(FilterEvents(events, nil, EventFilter{Status: EventPast}, now)))
		assert.Equal(t, []uint{4}, ids(FilterEvents(events, nil, EventFilter{Status: EventOngoing}, now)))
	})

	t.Run("search matches title, description and location", func(t *testing.T) {
		assert.Equal(t, []uint{1}, ids(FilterEvents(events, nil, EventFilter{Search: "networking"}, now)))
		assert.Equal(t, []uint{2}, ids(FilterEvents(events, nil, EventFilter{Search: "CAREER TALK"}, now)))
		assert.Equal(t, []uint{1}, ids(FilterEvents(events, nil, EventFilter{Search: "sauder"}, now)))
	})

	t.Run("tag filter matches any tag", func(t *testing.T) {
		got := FilterEvents(events, nil, EventFilter{Tags: []string{"career"}}, now)

		assert.Equal(t, []uint{2, 4}, ids(got))
	})

	t.Run("registered only", func(t *testing.T) {
		got := FilterEvents(events, registrations, EventFilter{RegisteredOnly: true}, now)

		assert.Equal(t, []uint{2}, ids(got))
	})

	t.Run("filters compose", func(t *testing.T) {
		got := FilterEvents(events, registrations, EventFilter{RegisteredOnly: true, Status: EventUpcoming}, now)

		assert.Empty(t, got)
	})
}
