package domain

import (
	"context"
	"errors"
	"time"
)

// ErrTierNotEmpty is returned when deleting a tier that has sold tickets.
var ErrTierNotEmpty = errors.New("tier has sold tickets")

// ErrInventoryConflict is returned by the atomic sold-count adjustment when
// applying the delta would take quantity_sold below zero or above
// quantity_total. Orchestrators treat it as an ordinary sold-out rejection.
var ErrInventoryConflict = errors.New("inventory adjustment out of bounds")

// TicketTier is a purchasable or reservable category of ticket for an event,
// with its own price and inventory. PriceCents of 0 means the tier is free
// and reservable via RSVP only.
// swagger:model TicketTier
type TicketTier struct {
	ID      string `json:"id"`
	EventID string `json:"event_id"`
	Name    string `json:"name"`
	// PriceCents is the unit price; 0 means free.
	PriceCents int `json:"price_cents"`
	// QuantityTotal and QuantitySold satisfy 0 <= QuantitySold <= QuantityTotal
	// at all times; the repository enforces this inside the adjustment statement.
	QuantityTotal int `json:"quantity_total"`
	QuantitySold  int `json:"quantity_sold"`
	// MaxPerContact caps the summed quantity of live tickets one guest may
	// hold for this tier; nil means no cap.
	MaxPerContact *int      `json:"max_per_contact,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewTicketTier returns a new TicketTier with zero sold. ID is set by the repository on create.
func NewTicketTier(eventID, name string, priceCents, quantityTotal int, maxPerContact *int, createdAt time.Time) *TicketTier {
	return &TicketTier{
		EventID:       eventID,
		Name:          name,
		PriceCents:    priceCents,
		QuantityTotal: quantityTotal,
		MaxPerContact: maxPerContact,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

// IsFree reports whether the tier is reservable without payment.
func (t *TicketTier) IsFree() bool {
	return t.PriceCents == 0
}

// Remaining returns the unsold capacity of the tier.
func (t *TicketTier) Remaining() int {
	return t.QuantityTotal - t.QuantitySold
}

// TierUpdate holds optional fields for a partial tier update; nil fields are unchanged.
type TierUpdate struct {
	Name          *string
	PriceCents    *int
	QuantityTotal *int
	MaxPerContact *int
	// ClearMaxPerContact removes the per-guest cap when true.
	ClearMaxPerContact bool
}

// TicketTierRepository defines the interface for tier storage, including the
// single atomic sold-count adjustment primitive.
type TicketTierRepository interface {
	Create(ctx context.Context, tier *TicketTier) error
	GetByID(ctx context.Context, id string) (*TicketTier, error)
	ListByEventID(ctx context.Context, eventID string) ([]*TicketTier, error)
	Update(ctx context.Context, tierID string, upd TierUpdate) (*TicketTier, error)
	Delete(ctx context.Context, tierID string) error
	// AdjustSold atomically adds delta to quantity_sold. The floor (0) and
	// ceiling (quantity_total) checks are part of the same statement as the
	// write; an out-of-bounds result returns ErrInventoryConflict and changes
	// nothing.
	AdjustSold(ctx context.Context, tierID string, delta int) error
}

// TierService defines organizer-facing tier management operations.
type TierService interface {
	CreateTier(ctx context.Context, eventID, callerID string, tier *TicketTier) (*TicketTier, error)
	ListTiers(ctx context.Context, eventID, callerID string) ([]*TicketTier, error)
	UpdateTier(ctx context.Context, eventID, tierID, callerID string, upd TierUpdate) (*TicketTier, error)
	DeleteTier(ctx context.Context, eventID, tierID, callerID string) error
}
