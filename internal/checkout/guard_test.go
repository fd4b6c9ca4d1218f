package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ubcma/membership-portal-api/internal/domain"
)

func buildEvent(mutate func(*domain.Event)) *domain.Event {
	cap := 100
	event := &domain.Event{
		ID:          7,
		Slug:        "spring-gala",
		Title:       "Spring Gala",
		Price:       25,
		StartsAt:    time.Now().Add(24 * time.Hour),
		EndsAt:      time.Now().Add(30 * time.Hour),
		AttendeeCap: &cap,
		IsVisible:   true,
	}
	if mutate != nil {
		mutate(event)
	}

	return event
}

func TestEvaluateGuard_Membership(t *testing.T) {
	now := time.Now()

	t.Run("basic user may purchase", func(t *testing.T) {
		decision := EvaluateGuard(domain.PurchaseMembership, nil, domain.User{Role: domain.RoleBasic}, now)

		assert.Equal(t, OutcomeAllow, decision.Outcome)
		assert.True(t, decision.Allowed())
	})

	t.Run("member is redirected home", func(t *testing.T) {
		decision := EvaluateGuard(domain.PurchaseMembership, nil, domain.User{Role: domain.RoleMember}, now)

		assert.Equal(t, OutcomeAlreadyMember, decision.Outcome)
		assert.Equal(t, "/home", decision.Redirect)
	})

	t.Run("admin counts as member", func(t *testing.T) {
		decision := EvaluateGuard(domain.PurchaseMembership, nil, domain.User{Role: domain.RoleAdmin}, now)

		assert.Equal(t, OutcomeAlreadyMember, decision.Outcome)
	})
}

func TestEvaluateGuard_Event(t *testing.T) {
	now := time.Now()
	basic := domain.User{Role: domain.RoleBasic}

	t.Run("open event allows", func(t *testing.T) {
		decision := EvaluateGuard(domain.PurchaseEvent, buildEvent(nil), basic, now)

		assert.Equal(t, OutcomeAllow, decision.Outcome)
	})

	t.Run("missing event is not found", func(t *testing.T) {
		decision := EvaluateGuard(domain.PurchaseEvent, nil, basic, now)

		assert.Equal(t, OutcomeNotFound, decision.Outcome)
	})

	t.Run("hidden event is not found", func(t *testing.T) {
		event := buildEvent(func(e *domain.Event) { e.IsVisible = false })
		decision := EvaluateGuard(domain.PurchaseEvent, event, basic, now)

		assert.Equal(t, OutcomeNotFound, decision.Outcome)
	})

	t.Run("full event redirects to the full page", func(t *testing.T) {
		event := buildEvent(func(e *domain.Event) {
			cap := 2
			e.AttendeeCap = &cap
			e.AttendeeCount = 2
		})
		decision := EvaluateGuard(domain.PurchaseEvent, event, basic, now)

		assert.Equal(t, OutcomeFull, decision.Outcome)
		assert.Equal(t, "/events/spring-gala/full", decision.Redirect)
	})

	t.Run("uncapped event is never full", func(t *testing.T) {
		event := buildEvent(func(e *domain.Event) {
			e.AttendeeCap = nil
			e.AttendeeCount = 100000
		})
		decision := EvaluateGuard(domain.PurchaseEvent, event, basic, now)

		assert.Equal(t, OutcomeAllow, decision.Outcome)
	})

	t.Run("past event redirects to the event page", func(t *testing.T) {
		event := buildEvent(func(e *domain.Event) {
			e.StartsAt = now.Add(-48 * time.Hour)
			e.EndsAt = now.Add(-24 * time.Hour)
		})
		decision := EvaluateGuard(domain.PurchaseEvent, event, basic, now)

		assert.Equal(t, OutcomeClosed, decision.Outcome)
		assert.Equal(t, "/events/spring-gala", decision.Redirect)
	})

	t.Run("members-only event upsells basic users", func(t *testing.T) {
		event := buildEvent(func(e *domain.Event) { e.MembersOnly = true })
		decision := EvaluateGuard(domain.PurchaseEvent, event, basic, now)

		assert.Equal(t, OutcomeUpgradeRequired, decision.Outcome)
		assert.Equal(t, "/purchase-membership", decision.Redirect)
	})

	t.Run("members-only event allows members", func(t *testing.T) {
		event := buildEvent(func(e *domain.Event) { e.MembersOnly = true })
		decision := EvaluateGuard(domain.PurchaseEvent, event, domain.User{Role: domain.RoleMember}, now)

		assert.Equal(t, OutcomeAllow, decision.Outcome)
	})

	t.Run("full wins over members-only", func(t *testing.T) {
		event := buildEvent(func(e *domain.Event) {
			cap := 1
			e.AttendeeCap = &cap
			e.AttendeeCount = 1
			e.MembersOnly = true
		})
		decision := EvaluateGuard(domain.PurchaseEvent, event, basic, now)

		assert.Equal(t, OutcomeFull, decision.Outcome)
	})
}
