package checkout

import (
	"fmt"
	"time"

	"github.com/ubcma/membership-portal-api/internal/domain"
)

type Outcome string

const (
	OutcomeAllow           Outcome = "allow"
	OutcomeNotFound        Outcome = "not_found"
	OutcomeFull            Outcome = "full"
	OutcomeClosed          Outcome = "closed"
	OutcomeUpgradeRequired Outcome = "upgrade_required"
	OutcomeAlreadyMember   Outcome = "already_member"
)

// Decision is the result of the eligibility guard. Redirect holds the
// client-visible destination for every non-allow outcome.
type Decision struct {
	Outcome  Outcome
	Redirect string
}

func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllow
}

// EvaluateGuard decides whether the user may enter checkout for the given
// purchase. It is a pure function of its inputs and must be re-evaluated
// on every checkout start, never cached, because capacity and timing are
// time-sensitive.
func EvaluateGuard(purchase domain.PurchaseType, event *domain.Event, user domain.User, now time.Time) Decision {
	if purchase == domain.PurchaseMembership {
		if user.Role.IsAtLeastMember() {
			return Decision{Outcome: OutcomeAlreadyMember, Redirect: "/home"}
		}

		return Decision{Outcome: OutcomeAllow}
	}

	if event == nil || !event.IsVisible {
		return Decision{Outcome: OutcomeNotFound}
	}
	if event.IsFull() {
		return Decision{Outcome: OutcomeFull, Redirect: fmt.Sprintf("/events/%v/full", event.Slug)}
	}
	if event.StatusAt(now) == domain.EventPast {
		return Decision{Outcome: OutcomeClosed, Redirect: fmt.Sprintf("/events/%v", event.Slug)}
	}
	if event.MembersOnly && !user.Role.IsAtLeastMember() {
		return Decision{Outcome: OutcomeUpgradeRequired, Redirect: "/purchase-membership"}
	}

	return Decision{Outcome: OutcomeAllow}
}

// GuardRejectionError is returned by Flow.Begin when the guard blocks the
// checkout before any payment intent is requested.
type GuardRejectionError struct {
	Decision Decision
}

func (e *GuardRejectionError) Error() string {
	return fmt.Sprintf("checkout blocked by eligibility guard: %v", e.Decision.Outcome)
}
