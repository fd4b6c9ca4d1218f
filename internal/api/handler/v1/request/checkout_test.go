package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePaymentIntentRequest_Validate(t *testing.T) {
	t.Run("membership needs no event", func(t *testing.T) {
		req := CreatePaymentIntentRequest{PurchaseType: "membership"}

		require.NoError(t, req.Validate())
	})

	t.Run("event purchases need an event id", func(t *testing.T) {
		req := CreatePaymentIntentRequest{PurchaseType: "event"}

		assert.ErrorIs(t, req.Validate(), errEventIDRequired)

		req.EventID = 5
		require.NoError(t, req.Validate())
	})

	t.Run("unknown purchase types are rejected", func(t *testing.T) {
		req := CreatePaymentIntentRequest{PurchaseType: "donation"}

		assert.ErrorIs(t, req.Validate(), errInvalidPurchase)
	})

	t.Run("purchase type is required", func(t *testing.T) {
		assert.ErrorIs(t, (&CreatePaymentIntentRequest{}).Validate(), errMissingTicketType)
	})
}

func TestConfirmPaymentRequest_Validate(t *testing.T) {
	valid := ConfirmPaymentRequest{
		PurchaseType:    "event",
		EventID:         5,
		ClientSecret:    "pi_1_secret_2",
		PaymentMethodID: "pm_card",
		AcceptTerms:     true,
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, valid.Validate())
	})

	t.Run("terms must be accepted", func(t *testing.T) {
		req := valid
		req.AcceptTerms = false

		assert.ErrorIs(t, req.Validate(), errTermsNotAccepted)
	})

	t.Run("client secret required", func(t *testing.T) {
		req := valid
		req.ClientSecret = ""

		require.Error(t, req.Validate())
	})

	t.Run("payment method required", func(t *testing.T) {
		req := valid
		req.PaymentMethodID = ""

		require.Error(t, req.Validate())
	})
}

func TestToResponseSet(t *testing.T) {
	set := ToResponseSet([]ResponseInput{
		{QuestionID: 1, Response: "short answer"},
		{QuestionID: 2, Values: []string{"a", "b"}},
	})

	require.Len(t, set, 2)
	assert.Equal(t, "short answer", set[1].Text)
	assert.Equal(t, []string{"a", "b"}, set[2].List)
}
