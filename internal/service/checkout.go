package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ubcma/membership-portal-api/internal/checkout"
	"github.com/ubcma/membership-portal-api/internal/config"
	"github.com/ubcma/membership-portal-api/internal/domain"
	"github.com/ubcma/membership-portal-api/internal/payment"
	"github.com/ubcma/membership-portal-api/internal/repository"
)

var (
	ErrEventFull         = repository.ErrEventFull
	ErrAlreadyRegistered = repository.ErrAlreadyRegistered

	ErrRegistrationClosed  = errors.New("registration is closed for past events")
	ErrMembersOnlyEvent    = errors.New("event is restricted to members")
	ErrAlreadyMember       = errors.New("user already has an active membership")
	ErrFreeEvent           = errors.New("free events do not require payment")
	ErrInvalidPurchaseType = errors.New("invalid purchase type")
	ErrMissingResponses    = errors.New("required questions are missing responses")
	ErrPaymentRequired     = errors.New("paid events require a stripe transaction id")
)

// timeNow is swapped in guard tests.
var timeNow = time.Now

type PaymentGateway interface {
	CreateIntent(ctx context.Context, p payment.CreateParams) (domain.PaymentIntent, error)
}

type WebhookVerifier interface {
	VerifyWebhook(payload []byte, sigHeader string) (payment.WebhookEvent, error)
}

type CheckoutRegistrationRepository interface {
	Create(ctx context.Context, reg domain.Registration) (domain.Registration, error)
	MarkPaymentVerified(ctx context.Context, stripeTransactionID string) error
}

// CheckoutService is the server-side authority behind the checkout flow:
// it derives amounts from the event directory (client hints are never
// trusted), re-checks eligibility before every intent, and owns the
// registration record and webhook handling.
type CheckoutService struct {
	events   EventRepository
	users    UserRepository
	regs     CheckoutRegistrationRepository
	gateway  PaymentGateway
	verifier WebhookVerifier
	conf     *config.StripeConfig
}

func NewCheckoutService(
	events EventRepository,
	users UserRepository,
	regs CheckoutRegistrationRepository,
	gateway PaymentGateway,
	verifier WebhookVerifier,
	conf *config.StripeConfig,
) *CheckoutService {
	return &CheckoutService{
		events:   events,
		users:    users,
		regs:     regs,
		gateway:  gateway,
		verifier: verifier,
		conf:     conf,
	}
}

// CreateIntent implements checkout.IntentCreator. The amount is always
// recomputed here from the authoritative event price or the configured
// membership fee; req.AmountHint is ignored.
func (s *CheckoutService) CreateIntent(ctx context.Context, req checkout.IntentRequest) (domain.PaymentIntent, error) {
	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("s.users.FindByID -> %w", err)
	}

	var (
		amount  int64
		eventID uint
	)

	switch req.PurchaseType {
	case domain.PurchaseMembership:
		if user.Role.IsAtLeastMember() {
			return domain.PaymentIntent{}, ErrAlreadyMember
		}
		amount = s.conf.MembershipFeeCents

	case domain.PurchaseEvent:
		event, err := s.events.FindByID(ctx, req.EventID)
		if err != nil {
			if errors.Is(err, repository.ErrEventNotFound) {
				return domain.PaymentIntent{}, ErrEventNotFound
			}

			return domain.PaymentIntent{}, fmt.Errorf("s.events.FindByID -> %w", err)
		}
		if event.IsFree() {
			return domain.PaymentIntent{}, ErrFreeEvent
		}
		if err := s.guardEvent(&event, user); err != nil {
			return domain.PaymentIntent{}, err
		}
		amount = event.PriceCents()
		eventID = event.ID

	default:
		return domain.PaymentIntent{}, ErrInvalidPurchaseType
	}

	intent, err := s.gateway.CreateIntent(ctx, payment.CreateParams{
		Amount:       amount,
		Currency:     s.conf.Currency,
		PurchaseType: req.PurchaseType,
		EventID:      eventID,
		UserID:       user.ID,
	})
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("s.gateway.CreateIntent -> %w", err)
	}

	return intent, nil
}

// guardEvent re-runs the eligibility checks server-side. The client runs
// the same guard for UX, but it can be bypassed, so nothing here relies
// on it.
func (s *CheckoutService) guardEvent(event *domain.Event, user domain.User) error {
	decision := checkout.EvaluateGuard(domain.PurchaseEvent, event, user, timeNow())
	switch decision.Outcome {
	case checkout.OutcomeAllow:
		return nil
	case checkout.OutcomeNotFound:
		return ErrEventNotFound
	case checkout.OutcomeFull:
		return ErrEventFull
	case checkout.OutcomeClosed:
		return ErrRegistrationClosed
	case checkout.OutcomeUpgradeRequired:
		return ErrMembersOnlyEvent
	default:
		return fmt.Errorf("unexpected guard outcome %v", decision.Outcome)
	}
}

// CreateRegistration implements checkout.RegistrationRecorder. Required
// questions are re-validated here regardless of client-side checks, and
// capacity is enforced transactionally in the storage layer.
func (s *CheckoutService) CreateRegistration(ctx context.Context, eventID, userID uint, responses domain.ResponseSet, stripeTransactionID string) (domain.Registration, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Registration{}, ErrEventNotFound
		}

		return domain.Registration{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("s.users.FindByID -> %w", err)
	}

	if err := s.guardEvent(&event, user); err != nil {
		return domain.Registration{}, err
	}
	if !event.IsFree() && stripeTransactionID == "" {
		return domain.Registration{}, ErrPaymentRequired
	}
	if !responses.Valid(event.Questions) {
		return domain.Registration{}, ErrMissingResponses
	}

	reg := domain.Registration{
		EventID:             event.ID,
		UserID:              user.ID,
		TicketCode:          uuid.NewString(),
		StripeTransactionID: stripeTransactionID,
	}
	for _, q := range event.Questions {
		answer := responses[q.ID]
		if !answer.Provided(q.Type) {
			continue
		}
		reg.Responses = append(reg.Responses, domain.QuestionResponse{
			QuestionID: q.ID,
			Response:   answer.Flatten(q.Type),
		})
	}

	created, err := s.regs.Create(ctx, reg)
	if err != nil {
		if errors.Is(err, repository.ErrEventFull) {
			return domain.Registration{}, ErrEventFull
		}
		if errors.Is(err, repository.ErrAlreadyRegistered) {
			return domain.Registration{}, ErrAlreadyRegistered
		}

		return domain.Registration{}, fmt.Errorf("s.regs.Create -> %w", err)
	}

	return created, nil
}

// HandleWebhook reacts to verified gateway deliveries. Role promotion on
// a successful membership purchase happens here and nowhere else in the
// checkout path.
func (s *CheckoutService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.verifier.VerifyWebhook(payload, sigHeader)
	if err != nil {
		return fmt.Errorf("s.verifier.VerifyWebhook -> %w", err)
	}

	switch event.Type {
	case "payment_intent.succeeded":
		switch event.PurchaseType {
		case domain.PurchaseMembership:
			if err := s.users.UpdateRole(ctx, event.UserID, domain.RoleMember); err != nil {
				return fmt.Errorf("s.users.UpdateRole -> %w", err)
			}
		case domain.PurchaseEvent:
			err := s.regs.MarkPaymentVerified(ctx, event.IntentID)
			if err != nil && !errors.Is(err, repository.ErrRegistrationNotFound) {
				return fmt.Errorf("s.regs.MarkPaymentVerified -> %w", err)
			}
			if errors.Is(err, repository.ErrRegistrationNotFound) {
				// The registration record may land after the webhook;
				// verification is retried when it does.
				zap.L().Info("webhook arrived before registration record",
					zap.String("intent_id", event.IntentID))
			}
		}
	case "payment_intent.payment_failed":
		zap.L().Info("payment failed", zap.String("intent_id", event.IntentID))
	}

	return nil
}
