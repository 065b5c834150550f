package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"doorlist/internal/domain"
)

type bookingFixture struct {
	events   *memEventRepo
	tiers    *memTierRepo
	tickets  *memTicketRepo
	contacts *memContactRepo
	team     *memTeamRepo
	payments *fakePaymentProvider
	messages *fakeMessageService
	svc      domain.BookingService
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	f := &bookingFixture{
		events:   &memEventRepo{events: map[string]*domain.Event{}},
		tiers:    &memTierRepo{tiers: map[string]*domain.TicketTier{}},
		tickets:  &memTicketRepo{tickets: map[string]*domain.Ticket{}},
		contacts: &memContactRepo{contacts: map[string]*domain.Contact{}},
		team:     &memTeamRepo{members: map[string]bool{}},
		payments: &fakePaymentProvider{session: &domain.CheckoutSession{ID: "sess-1", RedirectURL: "https://pay.example.com/sess-1"}},
		messages: &fakeMessageService{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewBookingService(f.events, f.tiers, f.tickets, f.contacts, f.team, f.payments, f.messages, logger, "https://doorlist.example.com", 2*time.Second)
	return f
}

func (f *bookingFixture) addPublishedEvent(id, organizerID string) *domain.Event {
	now := time.Now()
	e := domain.NewEvent("Launch Party", organizerID, 500, now.Add(24*time.Hour), now.Add(30*time.Hour), now)
	e.ID = id
	e.Status = domain.EventStatusPublished
	f.events.events[id] = e
	return e
}

func (f *bookingFixture) addTier(id, eventID string, priceCents, total, sold int, maxPerContact *int) *domain.TicketTier {
	tier := domain.NewTicketTier(eventID, "General", priceCents, total, maxPerContact, time.Now())
	tier.ID = id
	tier.QuantitySold = sold
	f.tiers.tiers[id] = tier
	return tier
}

func TestBookingService_RSVP(t *testing.T) {
	t.Run("reserves a confirmed ticket and sends confirmation", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addPublishedEvent("ev-1", "org-1")
		f.addTier("tier-1", "ev-1", 0, 10, 9, nil)

		ticket, err := f.svc.RSVP(context.Background(), domain.RSVPInput{
			EventID:    "ev-1",
			TierID:     "tier-1",
			Quantity:   1,
			GuestName:  "Ada Lovelace",
			GuestEmail: "Ada@Example.com",
		})
		require.NoError(t, err)
		require.Equal(t, domain.TicketStatusConfirmed, ticket.Status)
		require.Equal(t, 1, ticket.Quantity)
		require.Equal(t, "ada@example.com", ticket.GuestEmail)
		require.NotEmpty(t, ticket.TicketCode)
		require.Zero(t, ticket.AmountPaidCents)
		require.Equal(t, 10, f.tiers.tiers["tier-1"].QuantitySold)
		require.Len(t, f.messages.confirmations, 1)
		require.Equal(t, ticket.TicketCode, f.messages.confirmations[0].TicketCode)
	})

	t.Run("rejects when fewer tickets remain than requested", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addPublishedEvent("ev-1", "org-1")
		f.addTier("tier-1", "ev-1", 0, 10, 9, nil)

		_, err := f.svc.RSVP(context.Background(), domain.RSVPInput{
			EventID: "ev-1", TierID: "tier-1", Quantity: 2, GuestName: "Ada",
		})
		rej, ok := domain.IsReservationRejection(err)
		require.True(t, ok)
		require.Equal(t, "Only 1 ticket remaining", rej.Reason)
		require.Empty(t, f.tickets.tickets)
		require.Equal(t, 9, f.tiers.tiers["tier-1"].QuantitySold)
	})

	t.Run("rejects paid tiers", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addPublishedEvent("ev-1", "org-1")
		f.addTier("tier-1", "ev-1", 2500, 10, 0, nil)

		_, err := f.svc.RSVP(context.Background(), domain.RSVPInput{
			EventID: "ev-1", TierID: "tier-1", Quantity: 1, GuestName: "Ada",
		})
		rej, ok := domain.IsReservationRejection(err)
		require.True(t, ok)
		require.Equal(t, "This tier is not free; use the checkout flow", rej.Reason)
		require.Empty(t, f.tickets.tickets)
		require.Empty(t, f.tiers.adjustCalls)
	})

	t.Run("enforces the per-guest cap across prior live tickets", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addPublishedEvent("ev-1", "org-1")
		maxPer := 2
		f.addTier("tier-1", "ev-1", 0, 10, 2, &maxPer)
		f.tickets.tickets["tk-prior"] = &domain.Ticket{
			ID: "tk-prior", EventID: "ev-1", TierID: "tier-1",
			Status: domain.TicketStatusConfirmed, Quantity: 2,
			GuestEmail: "ada@example.com",
		}

		_, err := f.svc.RSVP(context.Background(), domain.RSVPInput{
			EventID: "ev-1", TierID: "tier-1", Quantity: 1, GuestName: "Ada", GuestEmail: "ada@example.com",
		})
		rej, ok := domain.IsReservationRejection(err)
		require.True(t, ok)
		require.Equal(t, "Ticket limit of 2 per guest reached, 0 more allowed", rej.Reason)
	})

	t.Run("lost inventory race surfaces the fresh remaining count", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addPublishedEvent("ev-1", "org-1")
		f.addTier("tier-1", "ev-1", 0, 10, 8, nil)
		// A competing reservation lands between this caller's snapshot read
		// and its conditional write.
		f.tiers.onAdjust = func() {
			f.tiers.tiers["tier-1"].QuantitySold = 9
		}

		_, err := f.svc.RSVP(context.Background(), domain.RSVPInput{
			EventID: "ev-1", TierID: "tier-1", Quantity: 2, GuestName: "Ada",
		})
		rej, ok := domain.IsReservationRejection(err)
		require.True(t, ok)
		require.Equal(t, "Only 1 ticket remaining", rej.Reason)
		require.Empty(t, f.tickets.tickets)
		require.Equal(t, 9, f.tiers.tiers["tier-1"].QuantitySold)
		require.Equal(t, []int{2}, f.tiers.adjustCalls)
	})

	t.Run("lost inventory race the fresh read no longer shows answers sold out", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addPublishedEvent("ev-1", "org-1")
		f.addTier("tier-1", "ev-1", 0, 10, 0, nil)
		f.tiers.adjustErr = domain.ErrInventoryConflict

		_, err := f.svc.RSVP(context.Background(), domain.RSVPInput{
			EventID: "ev-1", TierID: "tier-1", Quantity: 1, GuestName: "Ada",
		})
		rej, ok := domain.IsReservationRejection(err)
		require.True(t, ok)
		require.Equal(t, "Sold out", rej.Reason)
		require.Empty(t, f.tickets.tickets)
	})

	t.Run("hidden events are reported as not found", func(t *testing.T) {
		f := newBookingFixture(t)
		e := f.addPublishedEvent("ev-1", "org-1")
		e.LinkActive = false
		f.addTier("tier-1", "ev-1", 0, 10, 0, nil)

		_, err := f.svc.RSVP(context.Background(), domain.RSVPInput{
			EventID: "ev-1", TierID: "tier-1", Quantity: 1, GuestName: "Ada",
		})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("releases claimed inventory when the ticket insert fails", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addPublishedEvent("ev-1", "org-1")
		f.addTier("tier-1", "ev-1", 0, 10, 4, nil)
		f.tickets.createErr = errors.New("insert failed")

		_, err := f.svc.RSVP(context.Background(), domain.RSVPInput{
			EventID: "ev-1", TierID: "tier-1", Quantity: 2, GuestName: "Ada",
		})
		require.Error(t, err)
		require.Equal(t, 4, f.tiers.tiers["tier-1"].QuantitySold)
		require.Equal(t, []int{2, -2}, f.tiers.adjustCalls)
	})
}

func TestBookingService_Checkout(t *testing.T) {
	t.Run("creates a pending ticket and a payment session", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addPublishedEvent("ev-1", "org-1")
		f.addTier("tier-1", "ev-1", 2500, 10, 0, nil)

		res, err := f.svc.Checkout(context.Background(), domain.CheckoutInput{
			EventID:    "ev-1",
			TierID:     "tier-1",
			Quantity:   2,
			GuestName:  "Ada Lovelace",
			GuestEmail: "ada@example.com",
		})
		require.NoError(t, err)
		require.Equal(t, domain.TicketStatusPending, res.Ticket.Status)
		require.Equal(t, "https://pay.example.com/sess-1", res.RedirectURL)
		require.NotNil(t, res.Ticket.PaymentSessionID)
		require.Equal(t, "sess-1", *res.Ticket.PaymentSessionID)

		// Inventory is claimed only on payment confirmation, never at checkout start.
		require.Empty(t, f.tiers.adjustCalls)

		require.Equal(t, 2500, f.payments.lastParams.UnitAmountCents)
		require.Equal(t, 2, f.payments.lastParams.Quantity)
		require.Equal(t, res.Ticket.ID, f.payments.lastParams.Metadata["ticket_id"])
		require.Contains(t, f.payments.lastParams.SuccessURL, res.Ticket.TicketCode)
	})

	t.Run("rejects free tiers", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addPublishedEvent("ev-1", "org-1")
		f.addTier("tier-1", "ev-1", 0, 10, 0, nil)

		_, err := f.svc.Checkout(context.Background(), domain.CheckoutInput{
			EventID: "ev-1", TierID: "tier-1", Quantity: 1, GuestName: "Ada",
		})
		rej, ok := domain.IsReservationRejection(err)
		require.True(t, ok)
		require.Equal(t, "This tier is free; use the RSVP flow", rej.Reason)
		require.Empty(t, f.tickets.tickets)
	})

	t.Run("expires the pending ticket when the session cannot be created", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addPublishedEvent("ev-1", "org-1")
		f.addTier("tier-1", "ev-1", 2500, 10, 0, nil)
		f.payments.err = errors.New("provider unavailable")

		_, err := f.svc.Checkout(context.Background(), domain.CheckoutInput{
			EventID: "ev-1", TierID: "tier-1", Quantity: 1, GuestName: "Ada",
		})
		require.Error(t, err)
		require.Len(t, f.tickets.tickets, 1)
		for _, tk := range f.tickets.tickets {
			require.Equal(t, domain.TicketStatusExpired, tk.Status)
		}
	})

	t.Run("links the ticket to a matching contact", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addPublishedEvent("ev-1", "org-1")
		f.addTier("tier-1", "ev-1", 2500, 10, 0, nil)
		f.contacts.contacts["ct-1"] = &domain.Contact{ID: "ct-1", EventID: "ev-1", Email: "ada@example.com"}

		res, err := f.svc.Checkout(context.Background(), domain.CheckoutInput{
			EventID: "ev-1", TierID: "tier-1", Quantity: 1, GuestName: "Ada", GuestEmail: "ada@example.com",
		})
		require.NoError(t, err)
		require.NotNil(t, res.Ticket.ContactID)
		require.Equal(t, "ct-1", *res.Ticket.ContactID)
	})
}

func TestBookingService_IssueWalkIn(t *testing.T) {
	t.Run("organizer issues a paid walk-in with amount recorded", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addPublishedEvent("ev-1", "org-1")
		f.addTier("tier-1", "ev-1", 1500, 10, 0, nil)

		ticket, err := f.svc.IssueWalkIn(context.Background(), "org-1", domain.RSVPInput{
			EventID: "ev-1", TierID: "tier-1", Quantity: 2, GuestName: "Walk In",
		})
		require.NoError(t, err)
		require.Equal(t, domain.TicketStatusConfirmed, ticket.Status)
		require.Equal(t, 3000, ticket.AmountPaidCents)
		require.Equal(t, 2, f.tiers.tiers["tier-1"].QuantitySold)
	})

	t.Run("works on a draft event", func(t *testing.T) {
		f := newBookingFixture(t)
		e := f.addPublishedEvent("ev-1", "org-1")
		e.Status = domain.EventStatusDraft
		f.addTier("tier-1", "ev-1", 0, 10, 0, nil)

		_, err := f.svc.IssueWalkIn(context.Background(), "org-1", domain.RSVPInput{
			EventID: "ev-1", TierID: "tier-1", Quantity: 1, GuestName: "Walk In",
		})
		require.NoError(t, err)
	})

	t.Run("team member may issue, stranger may not", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addPublishedEvent("ev-1", "org-1")
		f.addTier("tier-1", "ev-1", 0, 10, 0, nil)
		f.team.members["ev-1:helper-1"] = true

		_, err := f.svc.IssueWalkIn(context.Background(), "helper-1", domain.RSVPInput{
			EventID: "ev-1", TierID: "tier-1", Quantity: 1, GuestName: "Walk In",
		})
		require.NoError(t, err)

		_, err = f.svc.IssueWalkIn(context.Background(), "stranger", domain.RSVPInput{
			EventID: "ev-1", TierID: "tier-1", Quantity: 1, GuestName: "Walk In",
		})
		require.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestBookingService_TicketTransitions(t *testing.T) {
	seed := func(f *bookingFixture, status domain.TicketStatus) *domain.Ticket {
		tk := &domain.Ticket{
			ID: "tk-1", EventID: "ev-1", TierID: "tier-1",
			Status: status, Quantity: 2, TicketCode: "code-1", GuestName: "Ada",
		}
		f.tickets.tickets[tk.ID] = tk
		return tk
	}

	t.Run("check-in and undo round trip", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addPublishedEvent("ev-1", "org-1")
		f.addTier("tier-1", "ev-1", 0, 10, 2, nil)
		seed(f, domain.TicketStatusConfirmed)

		ticket, err := f.svc.CheckInTicket(context.Background(), "ev-1", "code-1", "org-1")
		require.NoError(t, err)
		require.Equal(t, domain.TicketStatusCheckedIn, ticket.Status)

		ticket, err = f.svc.UndoCheckIn(context.Background(), "ev-1", "code-1", "org-1")
		require.NoError(t, err)
		require.Equal(t, domain.TicketStatusConfirmed, ticket.Status)
	})

	t.Run("check-in of a pending ticket conflicts", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addPublishedEvent("ev-1", "org-1")
		f.addTier("tier-1", "ev-1", 0, 10, 2, nil)
		seed(f, domain.TicketStatusPending)

		_, err := f.svc.CheckInTicket(context.Background(), "ev-1", "code-1", "org-1")
		require.ErrorIs(t, err, domain.ErrConflict)
		require.Contains(t, err.Error(), "ticket is pending")
	})

	t.Run("cancel releases the seats", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addPublishedEvent("ev-1", "org-1")
		f.addTier("tier-1", "ev-1", 0, 10, 2, nil)
		seed(f, domain.TicketStatusConfirmed)

		ticket, err := f.svc.CancelTicket(context.Background(), "ev-1", "code-1", "org-1")
		require.NoError(t, err)
		require.Equal(t, domain.TicketStatusCancelled, ticket.Status)
		require.Equal(t, 0, f.tiers.tiers["tier-1"].QuantitySold)
	})

	t.Run("ticket from another event is not found", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addPublishedEvent("ev-1", "org-1")
		f.addPublishedEvent("ev-2", "org-1")
		tk := seed(f, domain.TicketStatusConfirmed)
		tk.EventID = "ev-2"

		_, err := f.svc.CheckInTicket(context.Background(), "ev-1", "code-1", "org-1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("stranger cannot transition tickets", func(t *testing.T) {
		f := newBookingFixture(t)
		f.addPublishedEvent("ev-1", "org-1")
		seed(f, domain.TicketStatusConfirmed)

		_, err := f.svc.CheckInTicket(context.Background(), "ev-1", "code-1", "stranger")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestBookingService_ListStalePendingTickets(t *testing.T) {
	f := newBookingFixture(t)
	f.addPublishedEvent("ev-1", "org-1")
	old := time.Now().Add(-2 * time.Hour)
	f.tickets.tickets["tk-old"] = &domain.Ticket{
		ID: "tk-old", EventID: "ev-1", TierID: "tier-1",
		Status: domain.TicketStatusPending, Quantity: 1, CreatedAt: old,
	}
	f.tickets.tickets["tk-fresh"] = &domain.Ticket{
		ID: "tk-fresh", EventID: "ev-1", TierID: "tier-1",
		Status: domain.TicketStatusPending, Quantity: 1, CreatedAt: time.Now(),
	}

	tickets, err := f.svc.ListStalePendingTickets(context.Background(), "ev-1", "org-1", time.Hour)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	require.Equal(t, "tk-old", tickets[0].ID)
}
