package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ubcma/membership-portal-api/internal/domain"
)

type fakeIntentCreator struct {
	mu     sync.Mutex
	calls  int
	intent domain.PaymentIntent
	err    error
}

func (f *fakeIntentCreator) CreateIntent(_ context.Context, _ IntentRequest) (domain.PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++

	return f.intent, f.err
}

func (f *fakeIntentCreator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

type fakeGateway struct {
	mu      sync.Mutex
	calls   int
	results []ConfirmResult
	errs    []error
	// block lets a test hold a confirmation in flight.
	block chan struct{}
}

func (f *fakeGateway) Confirm(_ context.Context, _, _ string) (ConfirmResult, error) {
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.calls
	f.calls++

	var res ConfirmResult
	if i < len(f.results) {
		res = f.results[i]
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}

	return res, err
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

type fakeRecorder struct {
	mu        sync.Mutex
	calls     int
	reg       domain.Registration
	err       error
	responses domain.ResponseSet
}

func (f *fakeRecorder) CreateRegistration(_ context.Context, _, _ uint, responses domain.ResponseSet, _ string) (domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.responses = responses

	return f.reg, f.err
}

func paidEvent() *domain.Event {
	return buildEvent(func(e *domain.Event) {
		e.Questions = []domain.EventQuestion{
			{ID: 1, Label: "Dietary restrictions", Type: domain.QuestionShortText, IsRequired: true, SortOrder: 1},
			{ID: 2, Label: "Workshops", Type: domain.QuestionCheckbox, IsRequired: false, Options: []string{"a", "b"}, SortOrder: 2},
		}
	})
}

func readyPaidFlow(t *testing.T, gateway *fakeGateway) *Flow {
	t.Helper()

	intents := &fakeIntentCreator{intent: domain.PaymentIntent{
		IntentID:     "pi_123",
		ClientSecret: "pi_123_secret_abc",
	}}
	event := paidEvent()
	flow := NewEventFlow(event, event.Questions, domain.User{ID: 9, Role: domain.RoleBasic}, Deps{
		Intents: intents,
		Gateway: gateway,
	})
	require.NoError(t, flow.Begin(context.Background()))

	flow.SetResponse(1, domain.Answer{Text: "none"})
	flow.SetTermsAccepted(true)
	require.True(t, flow.CanSubmit())

	return flow
}

func TestFlow_Begin(t *testing.T) {
	t.Run("guard rejection never requests an intent", func(t *testing.T) {
		intents := &fakeIntentCreator{}
		event := buildEvent(func(e *domain.Event) {
			cap := 1
			e.AttendeeCap = &cap
			e.AttendeeCount = 1
		})
		flow := NewEventFlow(event, nil, domain.User{Role: domain.RoleBasic}, Deps{Intents: intents})

		err := flow.Begin(context.Background())

		var rejection *GuardRejectionError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, OutcomeFull, rejection.Decision.Outcome)
		assert.Equal(t, 0, intents.callCount())
		assert.Equal(t, StateFailed, flow.State())
		assert.Equal(t, "/events/spring-gala/full", flow.RedirectURL())
	})

	t.Run("intent failure is terminal with no secret", func(t *testing.T) {
		intents := &fakeIntentCreator{err: errors.New("stripe down")}
		event := paidEvent()
		flow := NewEventFlow(event, event.Questions, domain.User{Role: domain.RoleBasic}, Deps{Intents: intents})

		err := flow.Begin(context.Background())

		require.ErrorIs(t, err, ErrIntentUnavailable)
		assert.Equal(t, StateFailed, flow.State())
		assert.Empty(t, flow.ClientSecret())
	})

	t.Run("empty secret from the server is treated as failure", func(t *testing.T) {
		intents := &fakeIntentCreator{intent: domain.PaymentIntent{IntentID: "pi_1"}}
		event := paidEvent()
		flow := NewEventFlow(event, event.Questions, domain.User{Role: domain.RoleBasic}, Deps{Intents: intents})

		err := flow.Begin(context.Background())

		require.ErrorIs(t, err, ErrIntentUnavailable)
	})

	t.Run("free event skips the intent", func(t *testing.T) {
		intents := &fakeIntentCreator{}
		event := buildEvent(func(e *domain.Event) { e.Price = 0 })
		flow := NewEventFlow(event, nil, domain.User{Role: domain.RoleBasic}, Deps{Intents: intents})

		require.NoError(t, flow.Begin(context.Background()))

		assert.Equal(t, StateIdle, flow.State())
		assert.Equal(t, 0, intents.callCount())
	})
}

func TestFlow_SubmitGating(t *testing.T) {
	gateway := &fakeGateway{results: []ConfirmResult{{IntentID: "pi_123", Status: "succeeded"}}}
	intents := &fakeIntentCreator{intent: domain.PaymentIntent{IntentID: "pi_123", ClientSecret: "pi_123_secret_abc"}}
	event := paidEvent()
	flow := NewEventFlow(event, event.Questions, domain.User{Role: domain.RoleBasic}, Deps{
		Intents: intents,
		Gateway: gateway,
	})
	require.NoError(t, flow.Begin(context.Background()))

	// Required question unanswered: not submittable even with terms.
	flow.SetTermsAccepted(true)
	assert.False(t, flow.FormValid())
	assert.False(t, flow.CanSubmit())
	assert.True(t, flow.CanQuickPay())

	_, err := flow.Submit(context.Background(), "pm_card")
	require.ErrorIs(t, err, ErrNotSubmittable)
	assert.Equal(t, 0, gateway.callCount())

	// Terms withdrawn: quick-pay is gated too.
	flow.SetResponse(1, domain.Answer{Text: "vegetarian"})
	flow.SetTermsAccepted(false)
	assert.True(t, flow.FormValid())
	assert.False(t, flow.CanSubmit())
	assert.False(t, flow.CanQuickPay())
}

func TestFlow_SubmitSuccess(t *testing.T) {
	gateway := &fakeGateway{results: []ConfirmResult{{IntentID: "pi_123", Status: "succeeded"}}}
	flow := readyPaidFlow(t, gateway)

	result, err := flow.Submit(context.Background(), "pm_card")

	require.NoError(t, err)
	assert.Equal(t, "/event-purchase-success?payment_intent=pi_123&redirect_status=succeeded", result.RedirectURL)
	assert.Equal(t, "pi_123", result.IntentID)
	assert.Equal(t, StateSucceeded, flow.State())
}

func TestFlow_SubmitDeclined(t *testing.T) {
	gateway := &fakeGateway{results: []ConfirmResult{
		{IntentID: "pi_123", DeclineMessage: "Your card was declined."},
		{IntentID: "pi_123", Status: "succeeded"},
	}}
	flow := readyPaidFlow(t, gateway)

	_, err := flow.Submit(context.Background(), "pm_card")

	var declined *DeclinedError
	require.ErrorAs(t, err, &declined)
	// The gateway wording is preserved verbatim.
	assert.Equal(t, "Your card was declined.", declined.Message)
	assert.Equal(t, "Your card was declined.", flow.LastError())

	// Back to Idle with the same secret; the retry reuses the intent.
	assert.Equal(t, StateIdle, flow.State())
	assert.Equal(t, "pi_123_secret_abc", flow.ClientSecret())

	result, err := flow.Submit(context.Background(), "pm_card_2")
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, flow.State())
	assert.Equal(t, "pi_123", result.IntentID)
	assert.Equal(t, 2, gateway.callCount())
}

func TestFlow_SubmitTransportFailure(t *testing.T) {
	gateway := &fakeGateway{errs: []error{errors.New("connection reset")}}
	flow := readyPaidFlow(t, gateway)

	_, err := flow.Submit(context.Background(), "pm_card")

	require.Error(t, err)
	assert.Equal(t, StateIdle, flow.State())
	assert.Equal(t, "pi_123_secret_abc", flow.ClientSecret())
}

func TestFlow_DoubleSubmitConfirmsOnce(t *testing.T) {
	gateway := &fakeGateway{
		results: []ConfirmResult{{IntentID: "pi_123", Status: "succeeded"}},
		block:   make(chan struct{}),
	}
	flow := readyPaidFlow(t, gateway)

	firstDone := make(chan error, 1)
	go func() {
		_, err := flow.Submit(context.Background(), "pm_card")
		firstDone <- err
	}()

	// Wait until the first submission is holding the gateway call.
	require.Eventually(t, func() bool {
		return flow.State() == StateConfirming
	}, time.Second, time.Millisecond)

	_, err := flow.Submit(context.Background(), "pm_card")
	require.ErrorIs(t, err, ErrConfirmInFlight)

	close(gateway.block)
	require.NoError(t, <-firstDone)
	assert.Equal(t, 1, gateway.callCount())
	assert.Equal(t, StateSucceeded, flow.State())
}

func TestFlow_AbandonedSubmitDiscardsResult(t *testing.T) {
	gateway := &fakeGateway{
		results: []ConfirmResult{{IntentID: "pi_123", Status: "succeeded"}},
		block:   make(chan struct{}),
	}
	flow := readyPaidFlow(t, gateway)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := flow.Submit(ctx, "pm_card")
		done <- err
	}()

	require.Eventually(t, func() bool {
		return flow.State() == StateConfirming
	}, time.Second, time.Millisecond)

	cancel()
	close(gateway.block)

	require.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, StateIdle, flow.State())
}

func TestFlow_FreeEventRecordsRegistration(t *testing.T) {
	recorder := &fakeRecorder{reg: domain.Registration{ID: 3, TicketCode: "tick"}}
	event := buildEvent(func(e *domain.Event) {
		e.Price = 0
		e.Questions = []domain.EventQuestion{
			{ID: 1, Label: "Name tag", Type: domain.QuestionShortText, IsRequired: true},
		}
	})
	flow := NewEventFlow(event, event.Questions, domain.User{ID: 4, Role: domain.RoleBasic}, Deps{Recorder: recorder})

	require.NoError(t, flow.Begin(context.Background()))
	flow.SetResponse(1, domain.Answer{Text: "Alex"})
	flow.SetTermsAccepted(true)

	result, err := flow.Submit(context.Background(), "")

	require.NoError(t, err)
	require.NotNil(t, result.Registration)
	assert.Equal(t, "tick", result.Registration.TicketCode)
	assert.Equal(t, "/event-purchase-success?redirect_status=succeeded", result.RedirectURL)
	assert.Equal(t, 1, recorder.calls)
	assert.Equal(t, "Alex", recorder.responses[1].Text)
}

func TestFlow_MembershipFlow(t *testing.T) {
	t.Run("member cannot start", func(t *testing.T) {
		intents := &fakeIntentCreator{}
		flow := NewMembershipFlow(domain.User{Role: domain.RoleMember}, Deps{Intents: intents})

		err := flow.Begin(context.Background())

		var rejection *GuardRejectionError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, OutcomeAlreadyMember, rejection.Decision.Outcome)
		assert.Equal(t, "/home", flow.RedirectURL())
		assert.Equal(t, 0, intents.callCount())
	})

	t.Run("basic user pays and succeeds", func(t *testing.T) {
		gateway := &fakeGateway{results: []ConfirmResult{{IntentID: "pi_m", Status: "succeeded"}}}
		intents := &fakeIntentCreator{intent: domain.PaymentIntent{IntentID: "pi_m", ClientSecret: "pi_m_secret_x"}}
		flow := NewMembershipFlow(domain.User{ID: 2, Role: domain.RoleBasic}, Deps{Intents: intents, Gateway: gateway})

		require.NoError(t, flow.Begin(context.Background()))
		// No questions, so the form is valid out of the box.
		assert.True(t, flow.FormValid())
		flow.SetTermsAccepted(true)

		result, err := flow.Submit(context.Background(), "pm_card")

		require.NoError(t, err)
		assert.Equal(t, "/event-purchase-success?payment_intent=pi_m&redirect_status=succeeded", result.RedirectURL)
	})
}

func TestFlow_Resume(t *testing.T) {
	t.Run("re-runs the guard", func(t *testing.T) {
		event := buildEvent(func(e *domain.Event) {
			cap := 1
			e.AttendeeCap = &cap
			e.AttendeeCount = 1
		})
		flow := NewEventFlow(event, nil, domain.User{Role: domain.RoleBasic}, Deps{})

		err := flow.Resume("pi_123_secret_abc")

		var rejection *GuardRejectionError
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, OutcomeFull, rejection.Decision.Outcome)
	})

	t.Run("attaches the held secret", func(t *testing.T) {
		gateway := &fakeGateway{results: []ConfirmResult{{IntentID: "pi_123", Status: "succeeded"}}}
		event := paidEvent()
		flow := NewEventFlow(event, event.Questions, domain.User{Role: domain.RoleBasic}, Deps{Gateway: gateway})

		require.NoError(t, flow.Resume("pi_123_secret_abc"))
		assert.Equal(t, "pi_123_secret_abc", flow.ClientSecret())

		flow.SetResponse(1, domain.Answer{Text: "none"})
		flow.SetTermsAccepted(true)

		_, err := flow.Submit(context.Background(), "pm_card")
		require.NoError(t, err)
	})

	t.Run("rejects empty secret", func(t *testing.T) {
		event := paidEvent()
		flow := NewEventFlow(event, event.Questions, domain.User{Role: domain.RoleBasic}, Deps{})

		require.ErrorIs(t, flow.Resume(""), ErrIntentUnavailable)
	})
}
