package domain

import (
	"context"
	"time"
)

// MessageType distinguishes invitation and thank-you sends in the audit log.
type MessageType string

const (
	MessageTypeInvitation MessageType = "invitation"
	MessageTypeThankYou   MessageType = "thank_you"
)

// MessageStatus is the delivery state of one message attempt. Rows are
// inserted as sent or failed; delivered and bounced arrive later via
// provider delivery webhooks matched by provider_message_id.
type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusFailed    MessageStatus = "failed"
	MessageStatusBounced   MessageStatus = "bounced"
)

// InvitationLog is an append-only audit row per message attempt. The only
// mutation after insert is the provider-driven status update.
// swagger:model InvitationLog
type InvitationLog struct {
	ID                string            `json:"id"`
	EventID           string            `json:"event_id"`
	ContactID         string            `json:"contact_id"`
	MessageType       MessageType       `json:"message_type"`
	Channel           InvitationChannel `json:"channel"`
	Status            MessageStatus     `json:"status"`
	ProviderMessageID string            `json:"provider_message_id,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// InvitationLogRepository defines storage for the message audit log.
type InvitationLogRepository interface {
	Create(ctx context.Context, l *InvitationLog) error
	// UpdateStatusByProviderMessageID updates the status of the row matching
	// the provider's message id. Returns ErrNotFound when no row matches;
	// callers treat that as an acknowledged no-op.
	UpdateStatusByProviderMessageID(ctx context.Context, providerMessageID string, status MessageStatus) error
	ListByEventID(ctx context.Context, eventID string, params PaginationParams) ([]*InvitationLog, int, error)
}

// SendReport is the sent/failed accounting returned by a message fan-out.
type SendReport struct {
	Sent   int      `json:"sent"`
	Failed []string `json:"failed"`
}

// InviteService defines invitation and thank-you fan-out plus delivery-status
// webhook handling.
type InviteService interface {
	// SendInvitations messages contacts on their preferred channel. With
	// onlyUninvited, contacts already stamped invited_at are skipped.
	SendInvitations(ctx context.Context, eventID, callerID string, onlyUninvited bool) (*SendReport, error)
	// SendThankYou messages contacts holding a confirmed or checked-in ticket.
	SendThankYou(ctx context.Context, eventID, callerID string) (*SendReport, error)
	ListMessageLog(ctx context.Context, eventID, callerID string, params PaginationParams) ([]*InvitationLog, int, error)
	// HandleDeliveryStatus applies a provider delivery-status update. Unknown
	// provider message ids are acknowledged no-ops.
	HandleDeliveryStatus(ctx context.Context, providerMessageID string, status MessageStatus) error
}
