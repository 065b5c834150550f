package domain

import (
	"context"
	"time"
)

// TicketStatus is the state of a ticket. The machine is
// pending -> confirmed -> checked_in, with side exits
// confirmed -> cancelled, confirmed -> refunded, and checked_in -> confirmed
// (undo check-in). Only unpaid paid-tier tickets ever enter pending.
type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "pending"
	TicketStatusConfirmed TicketStatus = "confirmed"
	TicketStatusCheckedIn TicketStatus = "checked_in"
	TicketStatusCancelled TicketStatus = "cancelled"
	TicketStatusRefunded  TicketStatus = "refunded"
	// TicketStatusExpired marks a pending ticket whose checkout session could
	// not be created; it never held inventory.
	TicketStatusExpired TicketStatus = "expired"
)

// CanTransition reports whether moving a ticket from one status to another is allowed.
func CanTransition(from, to TicketStatus) bool {
	switch from {
	case TicketStatusPending:
		return to == TicketStatusConfirmed || to == TicketStatusExpired
	case TicketStatusConfirmed:
		return to == TicketStatusCheckedIn || to == TicketStatusCancelled || to == TicketStatusRefunded
	case TicketStatusCheckedIn:
		return to == TicketStatusConfirmed
	default:
		return false
	}
}

// IsLive reports whether a ticket status counts against inventory and
// per-guest caps (not cancelled, refunded, or expired).
func (s TicketStatus) IsLive() bool {
	return s == TicketStatusPending || s == TicketStatusConfirmed || s == TicketStatusCheckedIn
}

// Ticket represents a reservation of one or more seats in a tier. Rows are
// not exploded per seat; Quantity is the number of seats this row represents.
// swagger:model Ticket
type Ticket struct {
	ID      string `json:"id"`
	EventID string `json:"event_id"`
	TierID  string `json:"tier_id"`
	// ContactID links the ticket to a guest record when one could be resolved.
	ContactID *string      `json:"contact_id,omitempty"`
	Status    TicketStatus `json:"status"`
	Quantity  int          `json:"quantity"`
	// TicketCode is an immutable opaque identifier assigned at creation, used
	// for lookup, printable rendering, and door check-in.
	TicketCode      string `json:"ticket_code"`
	AmountPaidCents int    `json:"amount_paid_cents"`
	// PaymentSessionID references the hosted checkout session for paid tickets.
	PaymentSessionID *string   `json:"payment_session_id,omitempty"`
	PaymentRef       *string   `json:"payment_ref,omitempty"`
	GuestName        string    `json:"guest_name"`
	GuestEmail       string    `json:"guest_email,omitempty"`
	GuestPhone       string    `json:"guest_phone,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewTicket returns a new Ticket in the given status. ID is set by the repository on create.
func NewTicket(eventID, tierID, ticketCode string, status TicketStatus, quantity int, guestName, guestEmail, guestPhone string, createdAt time.Time) *Ticket {
	return &Ticket{
		EventID:    eventID,
		TierID:     tierID,
		TicketCode: ticketCode,
		Status:     status,
		Quantity:   quantity,
		GuestName:  guestName,
		GuestEmail: guestEmail,
		GuestPhone: guestPhone,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

// TicketRepository defines the interface for ticket storage. Status writes
// are conditional on the current status so duplicate external events and
// concurrent staff actions resolve to no-ops instead of double transitions.
type TicketRepository interface {
	Create(ctx context.Context, t *Ticket) error
	GetByID(ctx context.Context, id string) (*Ticket, error)
	GetByCode(ctx context.Context, code string) (*Ticket, error)
	GetByPaymentRef(ctx context.Context, paymentRef string) (*Ticket, error)
	ListByEventID(ctx context.Context, eventID string, params PaginationParams) ([]*Ticket, int, error)
	// SumLiveQuantityForGuest sums Quantity over the tier's live tickets
	// matching the given email (case-insensitive) or phone (exact). Either
	// identifier may be empty.
	SumLiveQuantityForGuest(ctx context.Context, tierID, email, phone string) (int, error)
	SetPaymentSession(ctx context.Context, ticketID, sessionID string) error
	// ConfirmPayment flips a pending ticket to confirmed and records the
	// amount and payment reference, in one conditional statement. It returns
	// ErrConflict without changing anything if the ticket is no longer
	// pending, which makes it the idempotency gate for webhook redelivery.
	ConfirmPayment(ctx context.Context, ticketID string, amountPaidCents int, paymentRef string) error
	// UpdateStatusIf transitions from -> to in one conditional statement,
	// returning ErrConflict if the ticket was not in the expected status.
	UpdateStatusIf(ctx context.Context, ticketID string, from, to TicketStatus) error
	// ListStalePending returns pending tickets older than the cutoff, for
	// operator reconciliation of abandoned checkouts. Nothing expires them
	// automatically.
	ListStalePending(ctx context.Context, eventID string, olderThan time.Time) ([]*Ticket, error)
}

// CheckoutInput is a public checkout (paid tier) request.
type CheckoutInput struct {
	EventID    string
	TierID     string
	Quantity   int
	GuestName  string
	GuestEmail string
	GuestPhone string
}

// CheckoutResult is the outcome of a successful checkout start: the pending
// ticket and the hosted payment page to redirect the buyer to.
type CheckoutResult struct {
	Ticket      *Ticket `json:"ticket"`
	RedirectURL string  `json:"redirect_url"`
}

// RSVPInput is a public RSVP (free tier) request.
type RSVPInput struct {
	EventID    string
	TierID     string
	Quantity   int
	GuestName  string
	GuestEmail string
	GuestPhone string
}

// BookingService defines the reservation orchestrators: public checkout and
// RSVP, staff walk-in issue, and door/lifecycle actions on existing tickets.
type BookingService interface {
	Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error)
	RSVP(ctx context.Context, in RSVPInput) (*Ticket, error)
	IssueWalkIn(ctx context.Context, callerID string, in RSVPInput) (*Ticket, error)
	GetTicketByCode(ctx context.Context, code string) (*Ticket, error)
	ListEventTickets(ctx context.Context, eventID, callerID string, params PaginationParams) ([]*Ticket, int, error)
	ListStalePendingTickets(ctx context.Context, eventID, callerID string, olderThan time.Duration) ([]*Ticket, error)
	CheckInTicket(ctx context.Context, eventID, code, callerID string) (*Ticket, error)
	UndoCheckIn(ctx context.Context, eventID, code, callerID string) (*Ticket, error)
	CancelTicket(ctx context.Context, eventID, code, callerID string) (*Ticket, error)
}
