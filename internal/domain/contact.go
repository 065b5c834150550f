package domain

import (
	"context"
	"strings"
	"time"
)

// InvitationChannel is how a contact prefers to receive messages.
type InvitationChannel string

const (
	ChannelEmail InvitationChannel = "email"
	ChannelSMS   InvitationChannel = "sms"
	ChannelBoth  InvitationChannel = "both"
	ChannelNone  InvitationChannel = "none"
)

// ValidInvitationChannel reports whether c is a known channel value.
func ValidInvitationChannel(c InvitationChannel) bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelBoth, ChannelNone:
		return true
	}
	return false
}

// Contact is a per-event guest record. At least one of Email or Phone is
// required; contacts are deduplicated per event by case-insensitive email or
// exact phone.
// swagger:model Contact
type Contact struct {
	ID        string            `json:"id"`
	EventID   string            `json:"event_id"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Email     string            `json:"email,omitempty"`
	Phone     string            `json:"phone,omitempty"`
	Channel   InvitationChannel `json:"invitation_channel"`
	// InvitedAt is stamped on the first invitation attempt and distinguishes
	// the "uninvited" targeting scope.
	InvitedAt *time.Time `json:"invited_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NormalizeEmail lowercases and trims an email for dedup comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewContact returns a new Contact. ID is set by the repository on create.
func NewContact(eventID, firstName, lastName, email, phone string, channel InvitationChannel, createdAt time.Time) *Contact {
	return &Contact{
		EventID:   eventID,
		FirstName: firstName,
		LastName:  lastName,
		Email:     NormalizeEmail(email),
		Phone:     strings.TrimSpace(phone),
		Channel:   channel,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// ContactRepository defines the interface for contact storage.
type ContactRepository interface {
	Create(ctx context.Context, c *Contact) error
	GetByID(ctx context.Context, id string) (*Contact, error)
	// FindByEventAndEmail matches by normalized (lowercased) email.
	FindByEventAndEmail(ctx context.Context, eventID, email string) (*Contact, error)
	FindByEventAndPhone(ctx context.Context, eventID, phone string) (*Contact, error)
	// List returns contacts for the event, optionally filtered by a
	// case-insensitive search over name/email/phone and by uninvited scope.
	List(ctx context.Context, eventID, search string, onlyUninvited bool, params PaginationParams) ([]*Contact, int, error)
	// ListWithConfirmedTickets returns contacts holding at least one
	// confirmed or checked-in ticket for the event (thank-you targeting).
	ListWithConfirmedTickets(ctx context.Context, eventID string) ([]*Contact, error)
	SetInvitedAt(ctx context.Context, contactID string, at time.Time) error
	Delete(ctx context.Context, contactID string) error
}

// ContactImportRow is one already-parsed row of a contact import. CSV
// parsing itself happens outside this module.
type ContactImportRow struct {
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone"`
	Channel   InvitationChannel `json:"invitation_channel"`
}

// ContactImportResult reports the outcome of a bulk import.
type ContactImportResult struct {
	Imported int      `json:"imported"`
	Skipped  []string `json:"skipped"`
}

// ContactService defines guest-list management operations.
type ContactService interface {
	AddContact(ctx context.Context, eventID, callerID string, row ContactImportRow) (*Contact, error)
	ImportContacts(ctx context.Context, eventID, callerID string, rows []ContactImportRow) (*ContactImportResult, error)
	ListContacts(ctx context.Context, eventID, callerID, search string, onlyUninvited bool, params PaginationParams) ([]*Contact, int, error)
	DeleteContact(ctx context.Context, eventID, contactID, callerID string) error
}
