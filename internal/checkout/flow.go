package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ubcma/membership-portal-api/internal/domain"
)

type State string

const (
	// StateCreated is the flow before Begin has run.
	StateCreated State = "created"
	// StateIdle means checkout is ready: the guard passed and, for paid
	// flows, a client secret is held. Submission is gated on form
	// validity and terms acceptance.
	StateIdle State = "idle"
	// StateConfirming means a confirmation attempt is in flight. At most
	// one attempt may be in flight; repeat submissions are rejected.
	StateConfirming State = "confirming"
	// StateSucceeded is terminal: the gateway reported the intent as
	// succeeded (or the free registration was recorded).
	StateSucceeded State = "succeeded"
	// StateFailed is terminal for this flow instance: the guard rejected
	// the checkout or no payment intent could be obtained.
	StateFailed State = "failed"
)

var (
	ErrConfirmInFlight   = errors.New("a confirmation attempt is already in flight")
	ErrNotSubmittable    = errors.New("checkout is not ready for submission")
	ErrIntentUnavailable = errors.New("payment intent could not be created")
)

// DeclinedError carries the gateway's message verbatim so it can be
// surfaced to the user unchanged.
type DeclinedError struct {
	Message string
}

func (e *DeclinedError) Error() string {
	return e.Message
}

// IntentRequest asks the server for a payment intent. Amount is a hint
// only; the authoritative amount is always recomputed server-side from
// the event price or the configured membership fee.
type IntentRequest struct {
	PurchaseType domain.PurchaseType
	AmountHint   int64
	Currency     string
	EventID      uint
	UserID       uint
}

// IntentCreator requests a payment intent scoped to one purchase.
type IntentCreator interface {
	CreateIntent(ctx context.Context, req IntentRequest) (domain.PaymentIntent, error)
}

// ConfirmResult reports the gateway's verdict on a confirmation attempt.
type ConfirmResult struct {
	IntentID string
	Status   string
	// DeclineMessage is set when the gateway rejected the payment (card
	// declined, authentication failed). The intent stays open for retry.
	DeclineMessage string
}

// Gateway confirms a payment intent using the collected payment method.
type Gateway interface {
	Confirm(ctx context.Context, clientSecret, paymentMethodID string) (ConfirmResult, error)
}

// RegistrationRecorder persists a free-event registration. Paid
// registrations are recorded through the same path once the gateway
// reports success.
type RegistrationRecorder interface {
	CreateRegistration(ctx context.Context, eventID, userID uint, responses domain.ResponseSet, stripeTransactionID string) (domain.Registration, error)
}

// Flow is the registration/checkout state machine owning one checkout
// attempt: it collects responses, validates required questions, requests
// a payment intent, confirms payment and produces the terminal redirect.
// A Flow maps to one checkout page load and is never shared across
// checkouts; the client secret it holds is single-owner.
type Flow struct {
	mu sync.Mutex

	purchase  domain.PurchaseType
	event     *domain.Event
	user      domain.User
	questions []domain.EventQuestion
	responses domain.ResponseSet

	termsAccepted bool
	state         State
	intent        domain.PaymentIntent
	decision      Decision
	lastError     string
	redirect      string

	intents  IntentCreator
	gateway  Gateway
	recorder RegistrationRecorder
	now      func() time.Time
}

// Deps are the collaborators a flow needs. Recorder may be nil for
// membership flows.
type Deps struct {
	Intents  IntentCreator
	Gateway  Gateway
	Recorder RegistrationRecorder
	Now      func() time.Time
}

// NewEventFlow builds a flow for an event-ticket purchase. Free events
// take the same machine with the payment-confirmation state skipped.
func NewEventFlow(event *domain.Event, questions []domain.EventQuestion, user domain.User, deps Deps) *Flow {
	qs := make([]domain.EventQuestion, len(questions))
	copy(qs, questions)
	domain.SortQuestions(qs)

	return newFlow(domain.PurchaseEvent, event, qs, user, deps)
}

// NewMembershipFlow builds a flow for a paid-membership purchase. It has
// no registration questions, so the form is always valid.
func NewMembershipFlow(user domain.User, deps Deps) *Flow {
	return newFlow(domain.PurchaseMembership, nil, nil, user, deps)
}

func newFlow(purchase domain.PurchaseType, event *domain.Event, questions []domain.EventQuestion, user domain.User, deps Deps) *Flow {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Flow{
		purchase:  purchase,
		event:     event,
		user:      user,
		questions: questions,
		responses: make(domain.ResponseSet),
		state:     StateCreated,
		intents:   deps.Intents,
		gateway:   deps.Gateway,
		recorder:  deps.Recorder,
		now:       deps.Now,
	}
}

// Begin runs the eligibility guard and, for paid flows, requests a fresh
// payment intent. A guard rejection or intent failure is terminal for
// this flow; the caller starts a new flow to retry.
func (f *Flow) Begin(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateCreated {
		return fmt.Errorf("flow already started (state %v)", f.state)
	}

	f.decision = EvaluateGuard(f.purchase, f.event, f.user, f.now())
	if !f.decision.Allowed() {
		f.state = StateFailed
		f.redirect = f.decision.Redirect

		return &GuardRejectionError{Decision: f.decision}
	}

	if f.isFree() {
		f.state = StateIdle

		return nil
	}

	req := IntentRequest{
		PurchaseType: f.purchase,
		Currency:     "cad",
		UserID:       f.user.ID,
	}
	if f.purchase == domain.PurchaseEvent {
		req.EventID = f.event.ID
		req.AmountHint = f.event.PriceCents()
	}

	intent, err := f.intents.CreateIntent(ctx, req)
	if err != nil || intent.ClientSecret == "" {
		// Never fall back to a stale or empty secret.
		f.state = StateFailed
		if err != nil {
			f.lastError = err.Error()
		}

		return fmt.Errorf("%w -> %v", ErrIntentUnavailable, err)
	}

	f.intent = intent
	f.state = StateIdle

	return nil
}

// Resume re-attaches a flow to an intent created earlier in the same
// checkout (the client holds the secret between page load and submit).
// The guard runs again: capacity and timing may have changed since the
// intent was created.
func (f *Flow) Resume(clientSecret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateCreated {
		return fmt.Errorf("flow already started (state %v)", f.state)
	}
	if f.isFree() {
		return fmt.Errorf("free checkouts hold no payment intent")
	}
	if clientSecret == "" {
		return fmt.Errorf("%w -> empty client secret", ErrIntentUnavailable)
	}

	f.decision = EvaluateGuard(f.purchase, f.event, f.user, f.now())
	if !f.decision.Allowed() {
		f.state = StateFailed
		f.redirect = f.decision.Redirect

		return &GuardRejectionError{Decision: f.decision}
	}

	f.intent = domain.PaymentIntent{ClientSecret: clientSecret, PurchaseType: f.purchase}
	f.state = StateIdle

	return nil
}

func (f *Flow) isFree() bool {
	return f.purchase == domain.PurchaseEvent && f.event.IsFree()
}

// SetResponse records an answer. Validity is recomputed synchronously on
// every change; callers read FormValid for the submit control state.
func (f *Flow) SetResponse(questionID uint, answer domain.Answer) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.responses[questionID] = answer
}

func (f *Flow) SetTermsAccepted(accepted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.termsAccepted = accepted
}

// FormValid reports whether every required question has an answer.
func (f *Flow) FormValid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.responses.Valid(f.questions)
}

// CanSubmit reports whether a submission would be accepted right now.
func (f *Flow) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.canSubmitLocked()
}

func (f *Flow) canSubmitLocked() bool {
	return f.state == StateIdle && f.termsAccepted && f.responses.Valid(f.questions)
}

// CanQuickPay reports whether the wallet quick-pay path may be offered.
// No quick-pay without consent: the terms checkbox gates the button.
func (f *Flow) CanQuickPay() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.state == StateIdle && f.termsAccepted
}

// Result is the outcome of a successful submission. IntentID is empty
// for free registrations.
type Result struct {
	RedirectURL  string
	IntentID     string
	Registration *domain.Registration
}

// Submit drives Idle -> Confirming -> Succeeded (or back to Idle on a
/// gateway failure). At most one confirmation attempt is in flight: a
// submit while Confirming returns ErrConfirmInFlight without touching
// the gateway. The wallet quick-pay path goes through the same
// transition with its own payment method ID.
func (f *Flow) Submit(ctx context.Context, paymentMethodID string) (Result, error) {
	f.mu.Lock()
	if f.state == StateConfirming {
		f.mu.Unlock()

		return Result{}, ErrConfirmInFlight
	}
	if !f.canSubmitLocked() {
		f.mu.Unlock()

		return Result{}, ErrNotSubmittable
	}
	f.state = StateConfirming
	f.lastError = ""
	free := f.isFree()
	secret := f.intent.ClientSecret
	responses := f.snapshotResponsesLocked()
	f.mu.Unlock()

	if free {
		return f.completeFree(ctx, responses)
	}

	res, err := f.gateway.Confirm(ctx, secret, paymentMethodID)

	f.mu.Lock()
	defer f.mu.Unlock()

	if ctx.Err() != nil {
		// The checkout was abandoned while the round-trip was in flight;
		// drop the result instead of mutating a dead flow.
		f.state = StateIdle

		return Result{}, ctx.Err()
	}

	if err != nil {
		// Transport failure: inline error, back to Idle, the intent and
		// its secret stay usable for the next attempt.
		f.state = StateIdle
		f.lastError = err.Error()

		return Result{}, fmt.Errorf("f.gateway.Confirm -> %w", err)
	}

	if res.DeclineMessage != "" {
		f.state = StateIdle
		f.lastError = res.DeclineMessage

		return Result{}, &DeclinedError{Message: res.DeclineMessage}
	}

	if res.Status != "succeeded" {
		f.state = StateIdle
		f.lastError = fmt.Sprintf("payment not completed (status %v)", res.Status)

		return Result{}, &DeclinedError{Message: f.lastError}
	}

	f.state = StateSucceeded
	f.redirect = SuccessRedirectURL(res.IntentID, "succeeded")

	return Result{RedirectURL: f.redirect, IntentID: res.IntentID}, nil
}

func (f *Flow) completeFree(ctx context.Context, responses domain.ResponseSet) (Result, error) {
	reg, err := f.recorder.CreateRegistration(ctx, f.event.ID, f.user.ID, responses, "")

	f.mu.Lock()
	defer f.mu.Unlock()

	if ctx.Err() != nil {
		f.state = StateIdle

		return Result{}, ctx.Err()
	}
	if err != nil {
		f.state = StateIdle
		f.lastError = err.Error()

		return Result{}, fmt.Errorf("f.recorder.CreateRegistration -> %w", err)
	}

	f.state = StateSucceeded
	f.redirect = SuccessRedirectURL("", "succeeded")

	return Result{RedirectURL: f.redirect, Registration: &reg}, nil
}

// SuccessRedirectURL builds the terminal redirect for a completed
// checkout. Free registrations carry no payment intent ID.
func SuccessRedirectURL(intentID, status string) string {
	if intentID == "" {
		return fmt.Sprintf("/event-purchase-success?redirect_status=%v", status)
	}

	return fmt.Sprintf("/event-purchase-success?payment_intent=%v&redirect_status=%v", intentID, status)
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.state
}

// Decision returns the guard decision recorded by Begin.
func (f *Flow) Decision() Decision {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.decision
}

// ClientSecret returns the secret held for this checkout. It survives
// failed confirmation attempts; one intent supports multiple attempts.
func (f *Flow) ClientSecret() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.intent.ClientSecret
}

// LastError is the most recent user-visible failure message.
func (f *Flow) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.lastError
}

// RedirectURL is the terminal destination once the flow succeeded or the
// guard redirected it.
func (f *Flow) RedirectURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.redirect
}

func (f *Flow) snapshotResponsesLocked() domain.ResponseSet {
	snapshot := make(domain.ResponseSet, len(f.responses))
	for id, answer := range f.responses {
		snapshot[id] = answer
	}

	return snapshot
}
