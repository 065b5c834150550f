package domain

import "context"

// PublicEventView is what the public reservation page needs: the event and
// its tiers. Hidden events (not published, link disabled, or cancelled) are
// indistinguishable from missing ones.
type PublicEventView struct {
	Event *Event
	Tiers []*TicketTier
}

// PublicService serves the unauthenticated event page.
type PublicService interface {
	GetPublicEvent(ctx context.Context, eventID string) (*PublicEventView, error)
}
