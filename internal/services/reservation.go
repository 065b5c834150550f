package services

import (
	"fmt"

	"doorlist/internal/domain"
)

// ReservationPath is the entry flow a reservation request arrived through.
type ReservationPath int

const (
	// PathRSVP is the synchronous free-tier flow.
	PathRSVP ReservationPath = iota
	// PathCheckout is the paid flow via a hosted payment session.
	PathCheckout
	// PathWalkIn is a staff-issued ticket at the door; it bypasses the
	// price-class gate but not capacity or per-guest caps.
	PathWalkIn
)

// ValidateReservation is the pure reservation gate. Given a tier snapshot,
// the requested quantity, and the guest's summed live quantity for this tier,
// it accepts (nil) or rejects with a specific human-readable reason.
//
// Rules run in order: price class must match the entry path, then remaining
// capacity, then the per-guest cap (only when the tier has one and a guest
// identifier was present to sum against). Callers must re-run this against a
// freshly read snapshot immediately before any quantity-affecting write;
// snapshots from page load are never trusted through to the write.
func ValidateReservation(tier *domain.TicketTier, requestedQty, existingQty int, hasGuestIdentity bool, path ReservationPath) error {
	if requestedQty < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidInput)
	}

	switch path {
	case PathRSVP:
		if !tier.IsFree() {
			return domain.NewReservationRejection("This tier is not free; use the checkout flow")
		}
	case PathCheckout:
		if tier.IsFree() {
			return domain.NewReservationRejection("This tier is free; use the RSVP flow")
		}
	case PathWalkIn:
		// no price-class gate at the door
	}

	remaining := tier.Remaining()
	if remaining <= 0 {
		return domain.NewReservationRejection("Sold out")
	}
	if requestedQty > remaining {
		return domain.NewReservationRejection(remainingMessage(remaining))
	}

	if tier.MaxPerContact != nil && hasGuestIdentity {
		cap := *tier.MaxPerContact
		allowed := cap - existingQty
		if allowed <= 0 {
			return domain.NewReservationRejection(fmt.Sprintf("Ticket limit of %d per guest reached, 0 more allowed", cap))
		}
		if requestedQty > allowed {
			return domain.NewReservationRejection(allowanceMessage(allowed))
		}
	}

	return nil
}

func remainingMessage(remaining int) string {
	if remaining == 1 {
		return "Only 1 ticket remaining"
	}
	return fmt.Sprintf("Only %d tickets remaining", remaining)
}

func allowanceMessage(allowed int) string {
	if allowed == 1 {
		return "Only 1 more ticket allowed for this guest"
	}
	return fmt.Sprintf("Only %d more tickets allowed for this guest", allowed)
}
