package domain

import (
	"context"
	"errors"
)

// ErrInvalidSignature is returned when an inbound webhook fails its
// shared-secret signature check.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Payment event types consumed from the payment provider.
const (
	PaymentEventCompleted = "payment.completed"
	PaymentEventRefunded  = "charge.refunded"
)

// CheckoutSessionParams are the inputs for creating a hosted payment session.
type CheckoutSessionParams struct {
	LineItemName    string
	UnitAmountCents int
	Quantity        int
	Currency        string
	SuccessURL      string
	CancelURL       string
	// Metadata is carried opaquely by the provider and echoed back on
	// webhook events. Carries event_id, tier_id, ticket_id.
	Metadata map[string]string
}

// CheckoutSession is a created hosted payment session.
type CheckoutSession struct {
	ID          string
	RedirectURL string
}

// PaymentEvent is a verified, parsed webhook event from the payment provider.
type PaymentEvent struct {
	ID          string
	Type        string
	SessionID   string
	PaymentRef  string
	AmountCents int
	Metadata    map[string]string
}

// PaymentProvider creates hosted payment sessions (infrastructure port).
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error)
}

// PaymentWebhookVerifier verifies the signature of an inbound payment webhook
// and parses it. A failed signature check returns ErrInvalidSignature.
type PaymentWebhookVerifier interface {
	VerifyAndParse(payload []byte, signature string) (*PaymentEvent, error)
}

// PaymentWebhookService applies verified payment events to tickets and
// inventory. Handlers are idempotent: redelivery of an event produces the
// same end state as a single delivery and returns success.
type PaymentWebhookService interface {
	HandlePaymentEvent(ctx context.Context, ev *PaymentEvent) error
}
