package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"doorlist/internal/domain"
)

type bookingService struct {
	eventRepo   domain.EventRepository
	tierRepo    domain.TicketTierRepository
	ticketRepo  domain.TicketRepository
	contactRepo domain.ContactRepository
	teamRepo    domain.EventTeamMemberRepository
	payments    domain.PaymentProvider
	messages    domain.MessageService
	logger      *slog.Logger
	// publicBaseURL is used to build checkout success/cancel redirect URLs.
	publicBaseURL  string
	contextTimeout time.Duration
}

// NewBookingService creates a BookingService with the given repositories and collaborators.
func NewBookingService(
	eventRepo domain.EventRepository,
	tierRepo domain.TicketTierRepository,
	ticketRepo domain.TicketRepository,
	contactRepo domain.ContactRepository,
	teamRepo domain.EventTeamMemberRepository,
	payments domain.PaymentProvider,
	messages domain.MessageService,
	logger *slog.Logger,
	publicBaseURL string,
	timeout time.Duration,
) domain.BookingService {
	return &bookingService{
		eventRepo:      eventRepo,
		tierRepo:       tierRepo,
		ticketRepo:     ticketRepo,
		contactRepo:    contactRepo,
		teamRepo:       teamRepo,
		payments:       payments,
		messages:       messages,
		logger:         logger,
		publicBaseURL:  publicBaseURL,
		contextTimeout: timeout,
	}
}

// loadVisibleTier fetches the event and tier for a public reservation request.
// Events that are not published, link-inactive, or cancelled are reported as
// not found so the public surface does not leak their existence.
func (s *bookingService) loadVisibleTier(ctx context.Context, eventID, tierID string) (*domain.Event, *domain.TicketTier, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get event: %w", err)
	}
	if !event.IsPubliclyVisible() {
		return nil, nil, domain.ErrNotFound
	}
	tier, err := s.tierRepo.GetByID(ctx, tierID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get tier: %w", err)
	}
	if tier.EventID != event.ID {
		return nil, nil, domain.ErrNotFound
	}
	return event, tier, nil
}

// existingQuantity sums the guest's live tickets for the tier when the tier
// has a per-guest cap and the guest gave an identifier.
func (s *bookingService) existingQuantity(ctx context.Context, tier *domain.TicketTier, email, phone string) (int, bool, error) {
	hasIdentity := email != "" || phone != ""
	if tier.MaxPerContact == nil || !hasIdentity {
		return 0, hasIdentity, nil
	}
	existing, err := s.ticketRepo.SumLiveQuantityForGuest(ctx, tier.ID, email, phone)
	if err != nil {
		return 0, hasIdentity, fmt.Errorf("sum guest tickets: %w", err)
	}
	return existing, hasIdentity, nil
}

// resolveContactID links the ticket to an existing guest record matching the
// buyer's email or phone, if one exists for the event.
func (s *bookingService) resolveContactID(ctx context.Context, eventID, email, phone string) *string {
	if email != "" {
		if c, err := s.contactRepo.FindByEventAndEmail(ctx, eventID, email); err == nil {
			return &c.ID
		}
	}
	if phone != "" {
		if c, err := s.contactRepo.FindByEventAndPhone(ctx, eventID, phone); err == nil {
			return &c.ID
		}
	}
	return nil
}

func (s *bookingService) Checkout(ctx context.Context, in domain.CheckoutInput) (*domain.CheckoutResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email := domain.NormalizeEmail(in.GuestEmail)
	event, tier, err := s.loadVisibleTier(ctx, in.EventID, in.TierID)
	if err != nil {
		return nil, err
	}

	existing, hasIdentity, err := s.existingQuantity(ctx, tier, email, in.GuestPhone)
	if err != nil {
		return nil, err
	}
	if err := ValidateReservation(tier, in.Quantity, existing, hasIdentity, PathCheckout); err != nil {
		return nil, err
	}

	now := time.Now()
	ticket := domain.NewTicket(event.ID, tier.ID, uuid.NewString(), domain.TicketStatusPending, in.Quantity, in.GuestName, email, in.GuestPhone, now)
	ticket.ContactID = s.resolveContactID(ctx, event.ID, email, in.GuestPhone)
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	session, err := s.payments.CreateCheckoutSession(ctx, domain.CheckoutSessionParams{
		LineItemName:    fmt.Sprintf("%s - %s", event.Name, tier.Name),
		UnitAmountCents: tier.PriceCents,
		Quantity:        in.Quantity,
		Currency:        "usd",
		SuccessURL:      fmt.Sprintf("%s/tickets/%s?payment=success", s.publicBaseURL, ticket.TicketCode),
		CancelURL:       fmt.Sprintf("%s/events/%s?payment=cancelled", s.publicBaseURL, event.ID),
		Metadata: map[string]string{
			"event_id":  event.ID,
			"tier_id":   tier.ID,
			"ticket_id": ticket.ID,
		},
	})
	if err != nil {
		// No ticket without a valid payment session path: mark the pending
		// row expired so it cannot linger, then fail the request.
		if expErr := s.ticketRepo.UpdateStatusIf(ctx, ticket.ID, domain.TicketStatusPending, domain.TicketStatusExpired); expErr != nil {
			s.logger.ErrorContext(ctx, "expire ticket after session failure", "ticket_id", ticket.ID, "err", expErr)
		}
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	if err := s.ticketRepo.SetPaymentSession(ctx, ticket.ID, session.ID); err != nil {
		// The webhook carries ticket_id in metadata, so confirmation still
		// works without the stored session reference; log and continue.
		s.logger.ErrorContext(ctx, "persist payment session ref", "ticket_id", ticket.ID, "session_id", session.ID, "err", err)
	} else {
		ticket.PaymentSessionID = &session.ID
	}

	return &domain.CheckoutResult{Ticket: ticket, RedirectURL: session.RedirectURL}, nil
}

func (s *bookingService) RSVP(ctx context.Context, in domain.RSVPInput) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email := domain.NormalizeEmail(in.GuestEmail)
	event, tier, err := s.loadVisibleTier(ctx, in.EventID, in.TierID)
	if err != nil {
		return nil, err
	}

	ticket, err := s.reserveConfirmed(ctx, event, tier, in.Quantity, in.GuestName, email, in.GuestPhone, PathRSVP)
	if err != nil {
		return nil, err
	}

	// Best-effort confirmation: the ticket is already real, a messaging
	// failure never rolls it back.
	if email != "" {
		data := &domain.TicketConfirmationData{
			Email:      email,
			GuestName:  in.GuestName,
			EventName:  event.Name,
			TierName:   tier.Name,
			Quantity:   ticket.Quantity,
			TicketCode: ticket.TicketCode,
		}
		if err := s.messages.SendTicketConfirmation(ctx, data); err != nil {
			s.logger.ErrorContext(ctx, "send rsvp confirmation", "ticket_id", ticket.ID, "err", err)
		}
	}
	return ticket, nil
}

// reserveConfirmed claims inventory and inserts a confirmed ticket. The
// atomic sold-count adjustment is the real gate; the validator run before it
// is advisory and supplies the exact rejection message on conflict.
func (s *bookingService) reserveConfirmed(ctx context.Context, event *domain.Event, tier *domain.TicketTier, quantity int, guestName, email, phone string, path ReservationPath) (*domain.Ticket, error) {
	existing, hasIdentity, err := s.existingQuantity(ctx, tier, email, phone)
	if err != nil {
		return nil, err
	}
	if err := ValidateReservation(tier, quantity, existing, hasIdentity, path); err != nil {
		return nil, err
	}

	if err := s.tierRepo.AdjustSold(ctx, tier.ID, quantity); err != nil {
		if errors.Is(err, domain.ErrInventoryConflict) {
			return nil, s.rejectionFromFreshSnapshot(ctx, tier.ID, quantity, existing, hasIdentity, path)
		}
		return nil, fmt.Errorf("adjust inventory: %w", err)
	}

	now := time.Now()
	ticket := domain.NewTicket(event.ID, tier.ID, uuid.NewString(), domain.TicketStatusConfirmed, quantity, guestName, email, phone, now)
	if path != PathRSVP || tier.PriceCents > 0 {
		ticket.AmountPaidCents = tier.PriceCents * quantity
	}
	ticket.ContactID = s.resolveContactID(ctx, event.ID, email, phone)
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		// Release the claimed seats; a failure here is logged for manual
		// reconciliation rather than surfaced to the guest.
		if relErr := s.tierRepo.AdjustSold(ctx, tier.ID, -quantity); relErr != nil {
			s.logger.ErrorContext(ctx, "release inventory after ticket insert failure", "tier_id", tier.ID, "quantity", quantity, "err", relErr)
		}
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	return ticket, nil
}

// rejectionFromFreshSnapshot re-validates once against a fresh tier read so
// the guest sees the exact remaining count instead of a generic failure.
func (s *bookingService) rejectionFromFreshSnapshot(ctx context.Context, tierID string, quantity, existing int, hasIdentity bool, path ReservationPath) error {
	fresh, err := s.tierRepo.GetByID(ctx, tierID)
	if err != nil {
		return domain.NewReservationRejection("Sold out")
	}
	if err := ValidateReservation(fresh, quantity, existing, hasIdentity, path); err != nil {
		return err
	}
	// The conditional write lost a race the fresh snapshot no longer shows;
	// treat it as sold out rather than a fatal error.
	return domain.NewReservationRejection("Sold out")
}

func (s *bookingService) IssueWalkIn(ctx context.Context, callerID string, in domain.RSVPInput) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, in.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	ok, err := canManageEvent(ctx, s.teamRepo, event, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}

	tier, err := s.tierRepo.GetByID(ctx, in.TierID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get tier: %w", err)
	}
	if tier.EventID != event.ID {
		return nil, domain.ErrNotFound
	}

	email := domain.NormalizeEmail(in.GuestEmail)
	return s.reserveConfirmed(ctx, event, tier, in.Quantity, in.GuestName, email, in.GuestPhone, PathWalkIn)
}

func (s *bookingService) GetTicketByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	ticket, err := s.ticketRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return ticket, nil
}

func (s *bookingService) ListEventTickets(ctx context.Context, eventID, callerID string, params domain.PaginationParams) ([]*domain.Ticket, int, error) {
	event, err := s.authorizedEvent(ctx, eventID, callerID)
	if err != nil {
		return nil, 0, err
	}
	tickets, total, err := s.ticketRepo.ListByEventID(ctx, event.ID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, total, nil
}

func (s *bookingService) ListStalePendingTickets(ctx context.Context, eventID, callerID string, olderThan time.Duration) ([]*domain.Ticket, error) {
	event, err := s.authorizedEvent(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}
	tickets, err := s.ticketRepo.ListStalePending(ctx, event.ID, time.Now().Add(-olderThan))
	if err != nil {
		return nil, fmt.Errorf("list stale pending tickets: %w", err)
	}
	return tickets, nil
}

func (s *bookingService) CheckInTicket(ctx context.Context, eventID, code, callerID string) (*domain.Ticket, error) {
	return s.transitionTicket(ctx, eventID, code, callerID, domain.TicketStatusConfirmed, domain.TicketStatusCheckedIn)
}

func (s *bookingService) UndoCheckIn(ctx context.Context, eventID, code, callerID string) (*domain.Ticket, error) {
	return s.transitionTicket(ctx, eventID, code, callerID, domain.TicketStatusCheckedIn, domain.TicketStatusConfirmed)
}

func (s *bookingService) CancelTicket(ctx context.Context, eventID, code, callerID string) (*domain.Ticket, error) {
	ticket, err := s.transitionTicket(ctx, eventID, code, callerID, domain.TicketStatusConfirmed, domain.TicketStatusCancelled)
	if err != nil {
		return nil, err
	}
	// Release the seats. The cancellation stands even if the release fails;
	// the failure is logged for manual reconciliation.
	if err := s.tierRepo.AdjustSold(ctx, ticket.TierID, -ticket.Quantity); err != nil {
		s.logger.ErrorContext(ctx, "release inventory after cancel", "ticket_id", ticket.ID, "tier_id", ticket.TierID, "err", err)
	}
	return ticket, nil
}

// transitionTicket authorizes the caller and applies a conditional status
// transition, treating a lost race on the condition as ErrConflict.
func (s *bookingService) transitionTicket(ctx context.Context, eventID, code, callerID string, from, to domain.TicketStatus) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.authorizedEvent(ctx, eventID, callerID); err != nil {
		return nil, err
	}
	ticket, err := s.ticketRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if ticket.EventID != eventID {
		return nil, domain.ErrNotFound
	}
	if ticket.Status != from || !domain.CanTransition(from, to) {
		return nil, fmt.Errorf("%w: ticket is %s", domain.ErrConflict, ticket.Status)
	}
	if err := s.ticketRepo.UpdateStatusIf(ctx, ticket.ID, from, to); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: ticket status changed concurrently", domain.ErrConflict)
		}
		return nil, fmt.Errorf("update ticket status: %w", err)
	}
	ticket.Status = to
	return ticket, nil
}

func (s *bookingService) authorizedEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	ok, err := canManageEvent(ctx, s.teamRepo, event, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}
	return event, nil
}
