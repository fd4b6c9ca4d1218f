package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/ubcma/membership-portal-api/internal/domain"
)

var (
	errEventIDRequired   = errors.New("event_id is required for event purchases")
	errTermsNotAccepted  = errors.New("terms must be accepted")
	errInvalidPurchase   = errors.New("purchase_type must be membership or event")
	errMissingTicketType = errors.New("purchase_type is required")
)

// ResponseInput is one answer in a registration submission. Multi-valued
// question types populate Values, everything else uses Response.
type ResponseInput struct {
	QuestionID uint     `json:"question_id"`
	Response   string   `json:"response,omitempty"`
	Values     []string `json:"values,omitempty"`
}

// ToResponseSet collapses submitted answers into the domain response map.
func ToResponseSet(inputs []ResponseInput) domain.ResponseSet {
	set := make(domain.ResponseSet, len(inputs))
	for _, in := range inputs {
		set[in.QuestionID] = domain.Answer{Text: in.Response, List: in.Values}
	}

	return set
}

type CreatePaymentIntentRequest struct {
	PurchaseType string `json:"purchase_type"`
	// Amount is a display hint only; the server derives the charged
	// amount from its own records.
	Amount   int64  `json:"amount,omitempty"`
	Currency string `json:"currency,omitempty"`
	EventID  uint   `json:"event_id,omitempty"`
}

func (req *CreatePaymentIntentRequest) Validate() error {
	if req.PurchaseType == "" {
		return errMissingTicketType
	}
	if !domain.PurchaseType(req.PurchaseType).IsValid() {
		return errInvalidPurchase
	}
	if domain.PurchaseType(req.PurchaseType) == domain.PurchaseEvent && req.EventID == 0 {
		return errEventIDRequired
	}

	return nil
}

// ConfirmPaymentRequest drives a server-side confirmation of an intent
// the client already holds the secret for.
type ConfirmPaymentRequest struct {
	PurchaseType    string          `json:"purchase_type"`
	EventID         uint            `json:"event_id,omitempty"`
	ClientSecret    string          `json:"client_secret"`
	PaymentMethodID string          `json:"payment_method_id"`
	AcceptTerms     bool            `json:"accept_terms"`
	Responses       []ResponseInput `json:"responses,omitempty"`
}

func (req *ConfirmPaymentRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.ClientSecret, validation.Required),
		validation.Field(&req.PaymentMethodID, validation.Required),
	)
	if err != nil {
		return err
	}

	if !domain.PurchaseType(req.PurchaseType).IsValid() {
		return errInvalidPurchase
	}
	if domain.PurchaseType(req.PurchaseType) == domain.PurchaseEvent && req.EventID == 0 {
		return errEventIDRequired
	}
	if !req.AcceptTerms {
		return errTermsNotAccepted
	}

	return nil
}

// CreateRegistrationRequest records a confirmed registration. Paid events
// reference the succeeded transaction; free events accept terms instead.
type CreateRegistrationRequest struct {
	Responses           []ResponseInput `json:"responses,omitempty"`
	StripeTransactionID string          `json:"stripe_transaction_id,omitempty"`
	AcceptTerms         bool            `json:"accept_terms"`
}

func (req *CreateRegistrationRequest) Validate() error {
	if req.StripeTransactionID == "" && !req.AcceptTerms {
		return errTermsNotAccepted
	}

	return nil
}
