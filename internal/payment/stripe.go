// Package payment wraps the Stripe payment-intent API behind the small
// surfaces the checkout flow and services consume.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
	"github.com/stripe/stripe-go/v72/webhook"

	"github.com/ubcma/membership-portal-api/internal/checkout"
	"github.com/ubcma/membership-portal-api/internal/config"
	"github.com/ubcma/membership-portal-api/internal/domain"
)

// CreateParams describes the intent to create. Amount is the
// server-derived amount in currency minor units; client hints never reach
// this layer.
type CreateParams struct {
	Amount       int64
	Currency     string
	PurchaseType domain.PurchaseType
	EventID      uint
	UserID       uint
}

type StripeGateway struct {
	sc            *client.API
	webhookSecret string
}

func NewStripeGateway(conf *config.StripeConfig) *StripeGateway {
	sc := &client.API{}
	sc.Init(conf.SecretKey, nil)

	return &StripeGateway{
		sc:            sc,
		webhookSecret: conf.WebhookSecret,
	}
}

// CreateIntent creates a fresh payment intent scoped to one checkout.
// Each call carries its own idempotency key, so a retried HTTP request
// cannot double-create intents.
func (g *StripeGateway) CreateIntent(ctx context.Context, p CreateParams) (domain.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.Amount),
		Currency: stripe.String(p.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())
	params.AddMetadata("purchase_type", string(p.PurchaseType))
	params.AddMetadata("user_id", strconv.FormatUint(uint64(p.UserID), 10))
	if p.PurchaseType == domain.PurchaseEvent {
		params.AddMetadata("event_id", strconv.FormatUint(uint64(p.EventID), 10))
	}

	intent, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("g.sc.PaymentIntents.New -> %w", err)
	}

	return domain.PaymentIntent{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       p.Amount,
		Currency:     p.Currency,
		PurchaseType: p.PurchaseType,
	}, nil
}

// Confirm asks Stripe to confirm the intent with the collected payment
// method. Card rejections come back as a decline message, not an error,
// so the flow can surface Stripe's wording verbatim and keep the intent
// open for retry.
func (g *StripeGateway) Confirm(ctx context.Context, clientSecret, paymentMethodID string) (checkout.ConfirmResult, error) {
	intentID, err := intentIDFromSecret(clientSecret)
	if err != nil {
		return checkout.ConfirmResult{}, err
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(paymentMethodID),
	}
	params.Context = ctx

	intent, err := g.sc.PaymentIntents.Confirm(intentID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return checkout.ConfirmResult{
				IntentID:       intentID,
				DeclineMessage: stripeErr.Msg,
			}, nil
		}

		return checkout.ConfirmResult{}, fmt.Errorf("g.sc.PaymentIntents.Confirm -> %w", err)
	}

	return checkout.ConfirmResult{
		IntentID: intent.ID,
		Status:   string(intent.Status),
	}, nil
}

// WebhookEvent is the gateway-neutral view of a verified webhook
// delivery. Only payment-intent events carry intent details.
type WebhookEvent struct {
	Type         string
	IntentID     string
	PurchaseType domain.PurchaseType
	UserID       uint
	EventID      uint
}

// VerifyWebhook checks the Stripe signature and extracts the fields the
// checkout service acts on.
func (g *StripeGateway) VerifyWebhook(payload []byte, sigHeader string) (WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
	if err != nil {
		return WebhookEvent{}, fmt.Errorf("webhook.ConstructEvent -> %w", err)
	}

	parsed := WebhookEvent{Type: string(event.Type)}
	if !strings.HasPrefix(parsed.Type, "payment_intent.") {
		return parsed, nil
	}

	var intent stripe.PaymentIntent
	if err = json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return WebhookEvent{}, fmt.Errorf("json.Unmarshal -> %w", err)
	}

	parsed.IntentID = intent.ID
	parsed.PurchaseType = domain.PurchaseType(intent.Metadata["purchase_type"])
	if userID, err := strconv.ParseUint(intent.Metadata["user_id"], 10, 64); err == nil {
		parsed.UserID = uint(userID)
	}
	if eventID, err := strconv.ParseUint(intent.Metadata["event_id"], 10, 64); err == nil {
		parsed.EventID = uint(eventID)
	}

	return parsed, nil
}

// intentIDFromSecret recovers the intent ID from a client secret of the
// form "pi_xxx_secret_yyy".
func intentIDFromSecret(clientSecret string) (string, error) {
	id, _, found := strings.Cut(clientSecret, "_secret")
	if !found || !strings.HasPrefix(id, "pi_") {
		return "", fmt.Errorf("malformed client secret")
	}

	return id, nil
}
