package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
// It returns the provider's message id for delivery-status correlation.
type Mailer interface {
	Send(to, subject, html, text string) (providerMessageID string, err error)
}

// SMSSender defines the contract for sending SMS messages (infrastructure port).
type SMSSender interface {
	Send(ctx context.Context, to, body string) (providerMessageID string, err error)
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeEmailData holds data for the account welcome email.
type WelcomeEmailData struct {
	Email     string
	FirstName string
}

// TicketConfirmationData holds data for the reservation confirmation message.
type TicketConfirmationData struct {
	Email      string
	GuestName  string
	EventName  string
	TierName   string
	Quantity   int
	TicketCode string
}

// GuestMessageData holds data for invitation and thank-you messages to a contact.
type GuestMessageData struct {
	Email         string
	Phone         string
	GuestName     string
	EventName     string
	OrganizerName string
}

// MessageService defines domain-level outbound messaging. Invitation and
// thank-you sends return the provider message id so the attempt can be
// audited and later updated by delivery webhooks.
type MessageService interface {
	SendWelcome(ctx context.Context, data *WelcomeEmailData) error
	SendTicketConfirmation(ctx context.Context, data *TicketConfirmationData) error
	SendInvitationEmail(ctx context.Context, data *GuestMessageData) (string, error)
	SendInvitationSMS(ctx context.Context, data *GuestMessageData) (string, error)
	SendThankYouEmail(ctx context.Context, data *GuestMessageData) (string, error)
	SendThankYouSMS(ctx context.Context, data *GuestMessageData) (string, error)
}
