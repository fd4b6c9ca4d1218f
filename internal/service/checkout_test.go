package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ubcma/membership-portal-api/internal/checkout"
	"github.com/ubcma/membership-portal-api/internal/config"
	"github.com/ubcma/membership-portal-api/internal/domain"
	"github.com/ubcma/membership-portal-api/internal/payment"
	"github.com/ubcma/membership-portal-api/internal/repository"
)

type fakeEventRepo struct {
	events map[uint]domain.Event
}

func (f *fakeEventRepo) Create(_ context.Context, event domain.Event) (domain.Event, error) {
	return event, nil
}

func (f *fakeEventRepo) FindByID(_ context.Context, id uint) (domain.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return domain.Event{}, repository.ErrEventNotFound
	}

	return event, nil
}

func (f *fakeEventRepo) FindBySlug(_ context.Context, slug string) (domain.Event, error) {
	for _, event := range f.events {
		if event.Slug == slug {
			return event, nil
		}
	}

	return domain.Event{}, repository.ErrEventNotFound
}

func (f *fakeEventRepo) FindAll(_ context.Context) ([]domain.Event, error) {
	var all []domain.Event
	for _, event := range f.events {
		all = append(all, event)
	}

	return all, nil
}

func (f *fakeEventRepo) Update(_ context.Context, event domain.Event) (domain.Event, error) {
	f.events[event.ID] = event

	return event, nil
}

func (f *fakeEventRepo) Delete(_ context.Context, id uint) error {
	delete(f.events, id)

	return nil
}

type fakeUserRepo struct {
	users map[uint]domain.User
	roles map[uint]domain.Role
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return user, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user domain.User) (domain.User, error) {
	f.users[user.ID] = user

	return user, nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, userID uint, role domain.Role) error {
	if f.roles == nil {
		f.roles = map[uint]domain.Role{}
	}
	f.roles[userID] = role

	return nil
}

type fakeRegRepo struct {
	created  []domain.Registration
	err      error
	verified []string
}

func (f *fakeRegRepo) Create(_ context.Context, reg domain.Registration) (domain.Registration, error) {
	if f.err != nil {
		return domain.Registration{}, f.err
	}
	reg.ID = uint(len(f.created) + 1)
	f.created = append(f.created, reg)

	return reg, nil
}

func (f *fakeRegRepo) MarkPaymentVerified(_ context.Context, stripeTransactionID string) error {
	f.verified = append(f.verified, stripeTransactionID)

	return nil
}

type fakePaymentGateway struct {
	calls  []payment.CreateParams
	intent domain.PaymentIntent
	err    error
}

func (f *fakePaymentGateway) CreateIntent(_ context.Context, p payment.CreateParams) (domain.PaymentIntent, error) {
	f.calls = append(f.calls, p)
	if f.err != nil {
		return domain.PaymentIntent{}, f.err
	}

	return f.intent, nil
}

type fakeVerifier struct {
	event payment.WebhookEvent
	err   error
}

func (f *fakeVerifier) VerifyWebhook(_ []byte, _ string) (payment.WebhookEvent, error) {
	return f.event, f.err
}

func stripeConf() *config.StripeConfig {
	return &config.StripeConfig{
		MembershipFeeCents: 1000,
		Currency:           "cad",
	}
}

func openEvent() domain.Event {
	return domain.Event{
		ID:        5,
		Slug:      "networking-night",
		Price:     25,
		IsVisible: true,
		StartsAt:  time.Now().Add(24 * time.Hour),
		EndsAt:    time.Now().Add(26 * time.Hour),
	}
}

func newCheckoutFixture(event domain.Event, user domain.User) (*CheckoutService, *fakePaymentGateway, *fakeRegRepo, *fakeUserRepo) {
	events := &fakeEventRepo{events: map[uint]domain.Event{event.ID: event}}
	users := &fakeUserRepo{users: map[uint]domain.User{user.ID: user}}
	regs := &fakeRegRepo{}
	gateway := &fakePaymentGateway{intent: domain.PaymentIntent{IntentID: "pi_x", ClientSecret: "pi_x_secret_y"}}
	verifier := &fakeVerifier{}

	svc := NewCheckoutService(events, users, regs, gateway, verifier, stripeConf())

	return svc, gateway, regs, users
}

func TestCheckoutService_CreateIntent(t *testing.T) {
	basic := domain.User{ID: 1, Role: domain.RoleBasic}

	t.Run("event amount comes from the event price, not the hint", func(t *testing.T) {
		svc, gateway, _, _ := newCheckoutFixture(openEvent(), basic)

		_, err := svc.CreateIntent(context.Background(), checkout.IntentRequest{
			PurchaseType: domain.PurchaseEvent,
			EventID:      5,
			UserID:       1,
			AmountHint:   1, // a tampered client hint
		})

		require.NoError(t, err)
		require.Len(t, gateway.calls, 1)
		assert.Equal(t, int64(2500), gateway.calls[0].Amount)
		assert.Equal(t, "cad", gateway.calls[0].Currency)
	})

	t.Run("membership uses the configured fee", func(t *testing.T) {
		svc, gateway, _, _ := newCheckoutFixture(openEvent(), basic)

		_, err := svc.CreateIntent(context.Background(), checkout.IntentRequest{
			PurchaseType: domain.PurchaseMembership,
			UserID:       1,
		})

		require.NoError(t, err)
		require.Len(t, gateway.calls, 1)
		assert.Equal(t, int64(1000), gateway.calls[0].Amount)
	})

	t.Run("member cannot buy a membership", func(t *testing.T) {
		svc, gateway, _, _ := newCheckoutFixture(openEvent(), domain.User{ID: 1, Role: domain.RoleMember})

		_, err := svc.CreateIntent(context.Background(), checkout.IntentRequest{
			PurchaseType: domain.PurchaseMembership,
			UserID:       1,
		})

		require.ErrorIs(t, err, ErrAlreadyMember)
		assert.Empty(t, gateway.calls)
	})

	t.Run("full event never reaches the gateway", func(t *testing.T) {
		event := openEvent()
		cap := 1
		event.AttendeeCap = &cap
		event.AttendeeCount = 1
		svc, gateway, _, _ := newCheckoutFixture(event, basic)

		_, err := svc.CreateIntent(context.Background(), checkout.IntentRequest{
			PurchaseType: domain.PurchaseEvent,
			EventID:      5,
			UserID:       1,
		})

		require.ErrorIs(t, err, ErrEventFull)
		assert.Empty(t, gateway.calls)
	})

	t.Run("past event is closed", func(t *testing.T) {
		event := openEvent()
		event.StartsAt = time.Now().Add(-48 * time.Hour)
		event.EndsAt = time.Now().Add(-24 * time.Hour)
		svc, gateway, _, _ := newCheckoutFixture(event, basic)

		_, err := svc.CreateIntent(context.Background(), checkout.IntentRequest{
			PurchaseType: domain.PurchaseEvent,
			EventID:      5,
			UserID:       1,
		})

		require.ErrorIs(t, err, ErrRegistrationClosed)
		assert.Empty(t, gateway.calls)
	})

	t.Run("members-only event rejects basic users", func(t *testing.T) {
		event := openEvent()
		event.MembersOnly = true
		svc, gateway, _, _ := newCheckoutFixture(event, basic)

		_, err := svc.CreateIntent(context.Background(), checkout.IntentRequest{
			PurchaseType: domain.PurchaseEvent,
			EventID:      5,
			UserID:       1,
		})

		require.ErrorIs(t, err, ErrMembersOnlyEvent)
		assert.Empty(t, gateway.calls)
	})

	t.Run("free event has no intent", func(t *testing.T) {
		event := openEvent()
		event.Price = 0
		svc, gateway, _, _ := newCheckoutFixture(event, basic)

		_, err := svc.CreateIntent(context.Background(), checkout.IntentRequest{
			PurchaseType: domain.PurchaseEvent,
			EventID:      5,
			UserID:       1,
		})

		require.ErrorIs(t, err, ErrFreeEvent)
		assert.Empty(t, gateway.calls)
	})
}

func TestCheckoutService_CreateRegistration(t *testing.T) {
	basic := domain.User{ID: 1, Role: domain.RoleBasic}

	t.Run("persists flattened responses with a ticket code", func(t *testing.T) {
		event := openEvent()
		event.Questions = []domain.EventQuestion{
			{ID: 10, Type: domain.QuestionShortText, IsRequired: true},
			{ID: 11, Type: domain.QuestionCheckbox, Options: []string{"a", "b"}},
		}
		svc, _, regs, _ := newCheckoutFixture(event, basic)

		reg, err := svc.CreateRegistration(context.Background(), 5, 1, domain.ResponseSet{
			10: {Text: " vegan "},
			11: {List: []string{"a", "b"}},
		}, "pi_x")

		require.NoError(t, err)
		assert.NotEmpty(t, reg.TicketCode)
		assert.Equal(t, "pi_x", reg.StripeTransactionID)
		require.Len(t, regs.created, 1)
		require.Len(t, regs.created[0].Responses, 2)
		assert.Equal(t, "vegan", regs.created[0].Responses[0].Response)
		assert.Equal(t, "a;b", regs.created[0].Responses[1].Response)
	})

	t.Run("missing required responses are rejected", func(t *testing.T) {
		event := openEvent()
		event.Questions = []domain.EventQuestion{
			{ID: 10, Type: domain.QuestionShortText, IsRequired: true},
		}
		svc, _, regs, _ := newCheckoutFixture(event, basic)

		_, err := svc.CreateRegistration(context.Background(), 5, 1, domain.ResponseSet{}, "pi_x")

		require.ErrorIs(t, err, ErrMissingResponses)
		assert.Empty(t, regs.created)
	})

	t.Run("paid event requires a transaction id", func(t *testing.T) {
		svc, _, regs, _ := newCheckoutFixture(openEvent(), basic)

		_, err := svc.CreateRegistration(context.Background(), 5, 1, domain.ResponseSet{}, "")

		require.ErrorIs(t, err, ErrPaymentRequired)
		assert.Empty(t, regs.created)
	})

	t.Run("free event needs no transaction id", func(t *testing.T) {
		event := openEvent()
		event.Price = 0
		svc, _, regs, _ := newCheckoutFixture(event, basic)

		_, err := svc.CreateRegistration(context.Background(), 5, 1, domain.ResponseSet{}, "")

		require.NoError(t, err)
		require.Len(t, regs.created, 1)
	})

	t.Run("storage capacity rejection surfaces as full", func(t *testing.T) {
		event := openEvent()
		event.Price = 0
		svc, _, regs, _ := newCheckoutFixture(event, basic)
		regs.err = repository.ErrEventFull

		_, err := svc.CreateRegistration(context.Background(), 5, 1, domain.ResponseSet{}, "")

		require.ErrorIs(t, err, ErrEventFull)
	})

	t.Run("duplicate registration surfaces as conflict", func(t *testing.T) {
		event := openEvent()
		event.Price = 0
		svc, _, regs, _ := newCheckoutFixture(event, basic)
		regs.err = repository.ErrAlreadyRegistered

		_, err := svc.CreateRegistration(context.Background(), 5, 1, domain.ResponseSet{}, "")

		require.ErrorIs(t, err, ErrAlreadyRegistered)
	})
}

func TestCheckoutService_HandleWebhook(t *testing.T) {
	basic := domain.User{ID: 1, Role: domain.RoleBasic}

	t.Run("membership success promotes the user", func(t *testing.T) {
		svc, _, _, users := newCheckoutFixture(openEvent(), basic)
		verifier := &fakeVerifier{event: payment.WebhookEvent{
			Type:         "payment_intent.succeeded",
			IntentID:     "pi_m",
			PurchaseType: domain.PurchaseMembership,
			UserID:       1,
		}}
		svc.verifier = verifier

		require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
		assert.Equal(t, domain.RoleMember, users.roles[1])
	})

	t.Run("event success verifies the registration", func(t *testing.T) {
		svc, _, regs, _ := newCheckoutFixture(openEvent(), basic)
		svc.verifier = &fakeVerifier{event: payment.WebhookEvent{
			Type:         "payment_intent.succeeded",
			IntentID:     "pi_e",
			PurchaseType: domain.PurchaseEvent,
			UserID:       1,
			EventID:      5,
		}}

		require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
		assert.Equal(t, []string{"pi_e"}, regs.verified)
	})

	t.Run("verification failure is returned", func(t *testing.T) {
		svc, _, _, _ := newCheckoutFixture(openEvent(), basic)
		svc.verifier = &fakeVerifier{err: assert.AnError}

		require.Error(t, svc.HandleWebhook(context.Background(), []byte("{}"), "bad-sig"))
	})

	t.Run("payment failure is acknowledged without side effects", func(t *testing.T) {
		svc, _, regs, users := newCheckoutFixture(openEvent(), basic)
		svc.verifier = &fakeVerifier{event: payment.WebhookEvent{
			Type:         "payment_intent.payment_failed",
			IntentID:     "pi_f",
			PurchaseType: domain.PurchaseEvent,
		}}

		require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
		assert.Empty(t, regs.verified)
		assert.Empty(t, users.roles)
	})
}
