package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ubcma/membership-portal-api/internal/api/handler/v1/request"
	"github.com/ubcma/membership-portal-api/internal/api/handler/v1/response"
	"github.com/ubcma/membership-portal-api/internal/checkout"
	"github.com/ubcma/membership-portal-api/internal/domain"
	"github.com/ubcma/membership-portal-api/internal/service"
)

// CheckoutService is the server-side half of the checkout flow: intent
// creation, registration recording and webhook handling.
type CheckoutService interface {
	checkout.IntentCreator
	checkout.RegistrationRecorder

	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
}

type CheckoutEventProvider interface {
	GetEventBySlug(ctx context.Context, slug string) (domain.Event, error)
	GetEventByID(ctx context.Context, id uint) (domain.Event, error)
}

// RegistrationPublisher fans a confirmed registration out to live
// listeners. Publishing never blocks the request.
type RegistrationPublisher interface {
	PublishRegistration(reg domain.Registration)
}

type CheckoutHandler struct {
	svc     CheckoutService
	gateway checkout.Gateway
	events  CheckoutEventProvider
	users   CurrentUserProvider
	feed    RegistrationPublisher
}

func NewCheckoutHandler(
	svc CheckoutService,
	gateway checkout.Gateway,
	events CheckoutEventProvider,
	users CurrentUserProvider,
	feed RegistrationPublisher,
) *CheckoutHandler {
	return &CheckoutHandler{
		svc:     svc,
		gateway: gateway,
		events:  events,
		users:   users,
		feed:    feed,
	}
}

func (h *CheckoutHandler) deps() checkout.Deps {
	return checkout.Deps{
		Intents:  h.svc,
		Gateway:  h.gateway,
		Recorder: h.svc,
	}
}

// HandleCreatePaymentIntent godoc
// @Summary      Start a checkout and create a payment intent
// @Description  The charged amount is always derived server-side; the amount field is a display hint only.
// @Tags         checkout
// @Produce      json
// @Param        request   body      request.CreatePaymentIntentRequest true "request body"
// @Success      200      {object}   response.PaymentIntentResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /stripe/create-payment-intent [post]
// @Security     ApiKeyAuth
func (h *CheckoutHandler) HandleCreatePaymentIntent(ctx *gin.Context) {
	var req request.CreatePaymentIntentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	user, ok := getCurrentUser(ctx, h.users)
	if !ok {
		return
	}

	flow, ok := h.buildFlow(ctx, domain.PurchaseType(req.PurchaseType), req.EventID, user)
	if !ok {
		return
	}

	if err := flow.Begin(ctx.Request.Context()); err != nil {
		var rejection *checkout.GuardRejectionError
		if errors.As(err, &rejection) {
			renderGuardRejection(ctx, rejection.Decision)

			return
		}

		err = fmt.Errorf("v1.HandleCreatePaymentIntent -> flow.Begin -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.PaymentIntentResponse{
		ClientSecret: flow.ClientSecret(),
	})
}

// HandleConfirmPayment godoc
// @Summary      Confirm a payment intent and finish the checkout
// @Description  Resumes the checkout holding the client secret, confirms the payment and records the registration for event purchases.
// @Tags         checkout
// @Produce      json
// @Param        request   body      request.ConfirmPaymentRequest true "request body"
// @Success      200      {object}   response.ConfirmPaymentResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      402      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /stripe/confirm-payment [post]
// @Security     ApiKeyAuth
func (h *CheckoutHandler) HandleConfirmPayment(ctx *gin.Context) {
	var req request.ConfirmPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	user, ok := getCurrentUser(ctx, h.users)
	if !ok {
		return
	}

	flow, ok := h.buildFlow(ctx, domain.PurchaseType(req.PurchaseType), req.EventID, user)
	if !ok {
		return
	}

	if err := flow.Resume(req.ClientSecret); err != nil {
		var rejection *checkout.GuardRejectionError
		if errors.As(err, &rejection) {
			renderGuardRejection(ctx, rejection.Decision)

			return
		}

		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	for _, in := range req.Responses {
		flow.SetResponse(in.QuestionID, domain.Answer{Text: in.Response, List: in.Values})
	}
	flow.SetTermsAccepted(req.AcceptTerms)

	result, err := flow.Submit(ctx.Request.Context(), req.PaymentMethodID)
	if err != nil {
		h.renderSubmitErr(ctx, err)

		return
	}

	if domain.PurchaseType(req.PurchaseType) == domain.PurchaseEvent {
		reg, err := h.svc.CreateRegistration(
			ctx.Request.Context(),
			req.EventID,
			user.ID,
			request.ToResponseSet(req.Responses),
			result.IntentID,
		)
		if err != nil {
			h.renderRecordErr(ctx, err)

			return
		}
		h.feed.PublishRegistration(reg)
	}

	ctx.JSON(http.StatusOK, response.ConfirmPaymentResponse{
		Status:      "succeeded",
		RedirectURL: result.RedirectURL,
	})
}

// HandleCreateRegistration godoc
// @Summary      Register for a free event
// @Description  Paid events go through the payment-intent and confirm endpoints; this endpoint also accepts a succeeded transaction ID as a fallback recording path.
// @Tags         checkout
// @Produce      json
// @Param        slug     path      string true "event slug"
// @Param        request   body      request.CreateRegistrationRequest true "request body"
// @Success      201      {object}   response.RegistrationResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /events/{slug}/registrations/create [post]
// @Security     ApiKeyAuth
func (h *CheckoutHandler) HandleCreateRegistration(ctx *gin.Context) {
	var req request.CreateRegistrationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	user, ok := getCurrentUser(ctx, h.users)
	if !ok {
		return
	}

	slug := ctx.Param("slug")
	event, err := h.events.GetEventBySlug(ctx.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "slug", slug))

			return
		}

		err = fmt.Errorf("v1.HandleCreateRegistration -> h.events.GetEventBySlug -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	if event.IsFree() {
		h.registerFree(ctx, &event, user, req)

		return
	}

	// Paid fallback: the client confirmed the intent on its side and
	// reports the succeeded transaction. The webhook flips the
	// verification flag once Stripe delivers it.
	reg, err := h.svc.CreateRegistration(
		ctx.Request.Context(),
		event.ID,
		user.ID,
		request.ToResponseSet(req.Responses),
		req.StripeTransactionID,
	)
	if err != nil {
		h.renderRecordErr(ctx, err)

		return
	}
	h.feed.PublishRegistration(reg)

	ctx.JSON(http.StatusCreated, response.RegistrationResponse{
		Registration: reg,
		RedirectURL:  checkout.SuccessRedirectURL(reg.StripeTransactionID, "succeeded"),
	})
}

func (h *CheckoutHandler) registerFree(ctx *gin.Context, event *domain.Event, user domain.User, req request.CreateRegistrationRequest) {
	flow := checkout.NewEventFlow(event, event.Questions, user, h.deps())

	if err := flow.Begin(ctx.Request.Context()); err != nil {
		var rejection *checkout.GuardRejectionError
		if errors.As(err, &rejection) {
			renderGuardRejection(ctx, rejection.Decision)

			return
		}

		err = fmt.Errorf("v1.registerFree -> flow.Begin -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	for _, in := range req.Responses {
		flow.SetResponse(in.QuestionID, domain.Answer{Text: in.Response, List: in.Values})
	}
	flow.SetTermsAccepted(req.AcceptTerms)

	result, err := flow.Submit(ctx.Request.Context(), "")
	if err != nil {
		h.renderSubmitErr(ctx, err)

		return
	}

	if result.Registration == nil {
		err := fmt.Errorf("v1.registerFree -> flow.Submit returned no registration")
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	h.feed.PublishRegistration(*result.Registration)

	ctx.JSON(http.StatusCreated, response.RegistrationResponse{
		Registration: *result.Registration,
		RedirectURL:  result.RedirectURL,
	})
}

// HandleStripeWebhook godoc
// @Summary      Receive Stripe webhook deliveries
// @Tags         checkout
// @Produce      json
// @Success      200      {object}   map[string]bool
// @Failure      400      {object}   response.Err
// @Router       /stripe/webhook [post]
func (h *CheckoutHandler) HandleStripeWebhook(ctx *gin.Context) {
	payload, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	sigHeader := ctx.GetHeader("Stripe-Signature")
	if err := h.svc.HandleWebhook(ctx.Request.Context(), payload, sigHeader); err != nil {
		// Signature failures and malformed payloads both get a 400 so
		// Stripe retries deliveries we could not act on.
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("webhook rejected")))

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *CheckoutHandler) buildFlow(ctx *gin.Context, purchase domain.PurchaseType, eventID uint, user domain.User) (*checkout.Flow, bool) {
	if purchase == domain.PurchaseMembership {
		return checkout.NewMembershipFlow(user, h.deps()), true
	}

	event, err := h.events.GetEventByID(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))

			return nil, false
		}

		err = fmt.Errorf("v1.buildFlow -> h.events.GetEventByID -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return nil, false
	}

	if event.IsFree() {
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrFreeEvent))

		return nil, false
	}

	return checkout.NewEventFlow(&event, event.Questions, user, h.deps()), true
}

func (h *CheckoutHandler) renderSubmitErr(ctx *gin.Context, err error) {
	var declined *checkout.DeclinedError
	switch {
	case errors.As(err, &declined):
		// The gateway message is user-facing and rendered verbatim.
		response.RenderErr(ctx, response.ErrPaymentFailed(declined))
	case errors.Is(err, checkout.ErrConfirmInFlight):
		response.RenderErr(ctx, response.ErrConflict(checkout.ErrConfirmInFlight))
	case errors.Is(err, checkout.ErrNotSubmittable):
		response.RenderErr(ctx, response.ErrBadRequest(checkout.ErrNotSubmittable))
	default:
		err = fmt.Errorf("v1.renderSubmitErr -> flow.Submit -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}

func (h *CheckoutHandler) renderRecordErr(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.RenderErr(ctx, response.ErrNotFound("event", "ID", "requested"))
	case errors.Is(err, service.ErrEventFull):
		response.RenderErr(ctx, response.ErrConflict(service.ErrEventFull))
	case errors.Is(err, service.ErrAlreadyRegistered):
		response.RenderErr(ctx, response.ErrConflict(service.ErrAlreadyRegistered))
	case errors.Is(err, service.ErrRegistrationClosed):
		response.RenderErr(ctx, response.ErrConflict(service.ErrRegistrationClosed))
	case errors.Is(err, service.ErrMembersOnlyEvent):
		response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrMembersOnlyEvent))
	case errors.Is(err, service.ErrMissingResponses):
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrMissingResponses))
	case errors.Is(err, service.ErrPaymentRequired):
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrPaymentRequired))
	default:
		err = fmt.Errorf("v1.renderRecordErr -> svc.CreateRegistration -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}

// renderGuardRejection maps guard outcomes onto HTTP statuses and ships
// the redirect destination to the client.
func renderGuardRejection(ctx *gin.Context, decision checkout.Decision) {
	var (
		status int
		msg    error
	)

	switch decision.Outcome {
	case checkout.OutcomeNotFound:
		status, msg = http.StatusNotFound, errors.New("event not found")
	case checkout.OutcomeFull:
		status, msg = http.StatusConflict, errors.New("event is full")
	case checkout.OutcomeClosed:
		status, msg = http.StatusConflict, errors.New("registration is closed")
	case checkout.OutcomeUpgradeRequired:
		status, msg = http.StatusForbidden, errors.New("event is restricted to members")
	case checkout.OutcomeAlreadyMember:
		status, msg = http.StatusConflict, errors.New("membership is already active")
	default:
		status, msg = http.StatusForbidden, errors.New("checkout is not available")
	}

	response.RenderErr(ctx, response.ErrGuardRejected(status, msg, decision.Redirect))
}
