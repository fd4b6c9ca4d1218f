package response

import "github.com/ubcma/membership-portal-api/internal/domain"

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
}

// ConfirmPaymentResponse reports a terminal confirmation outcome. The
// redirect is the only persistence signal the client receives; the
// authoritative registration state is created server-side.
type ConfirmPaymentResponse struct {
	Status      string `json:"status"`
	RedirectURL string `json:"redirect_url"`
}

type RegistrationResponse struct {
	Registration domain.Registration `json:"registration"`
	RedirectURL  string              `json:"redirect_url"`
}
