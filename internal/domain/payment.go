package domain

type PurchaseType string

const (
	PurchaseMembership PurchaseType = "membership"
	PurchaseEvent      PurchaseType = "event"
)

func (t PurchaseType) IsValid() bool {
	return t == PurchaseMembership || t == PurchaseEvent
}

// PaymentIntent is the portal's view of an in-flight charge. The
// ClientSecret scopes one checkout attempt; it is requested fresh per
// checkout and never cached across sessions.
type PaymentIntent struct {
	IntentID     string       `json:"intent_id"`
	ClientSecret string       `json:"client_secret"`
	Amount       int64        `json:"amount"` // currency minor units
	Currency     string       `json:"currency"`
	PurchaseType PurchaseType `json:"purchase_type"`
}
