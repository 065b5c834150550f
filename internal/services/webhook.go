package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"doorlist/internal/domain"
)

type paymentWebhookService struct {
	ticketRepo domain.TicketRepository
	tierRepo   domain.TicketTierRepository
	logger     *slog.Logger
}

// NewPaymentWebhookService creates the handler that applies verified payment
// events to tickets and inventory.
func NewPaymentWebhookService(ticketRepo domain.TicketRepository, tierRepo domain.TicketTierRepository, logger *slog.Logger) domain.PaymentWebhookService {
	return &paymentWebhookService{ticketRepo: ticketRepo, tierRepo: tierRepo, logger: logger}
}

// HandlePaymentEvent applies one verified provider event. It returns an error
// only for internal failures that should make the provider retry; duplicate
// deliveries, unknown event types, and unmatched references all return nil so
// the provider stops redelivering.
func (s *paymentWebhookService) HandlePaymentEvent(ctx context.Context, ev *domain.PaymentEvent) error {
	switch ev.Type {
	case domain.PaymentEventCompleted:
		return s.handleCompleted(ctx, ev)
	case domain.PaymentEventRefunded:
		return s.handleRefunded(ctx, ev)
	default:
		s.logger.InfoContext(ctx, "ignoring payment event", "type", ev.Type, "event_id", ev.ID)
		return nil
	}
}

func (s *paymentWebhookService) handleCompleted(ctx context.Context, ev *domain.PaymentEvent) error {
	ticketID := ev.Metadata["ticket_id"]
	if ticketID == "" {
		s.logger.WarnContext(ctx, "payment completed without ticket_id metadata", "event_id", ev.ID, "session_id", ev.SessionID)
		return nil
	}
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "payment completed for unknown ticket", "ticket_id", ticketID, "event_id", ev.ID)
			return nil
		}
		return fmt.Errorf("get ticket: %w", err)
	}
	if ticket.Status != domain.TicketStatusPending {
		// Duplicate delivery; already confirmed (or otherwise resolved).
		return nil
	}

	// The conditional confirm is the idempotency gate: only the delivery that
	// wins pending -> confirmed goes on to increment inventory, so provider
	// retries cannot double-count.
	if err := s.ticketRepo.ConfirmPayment(ctx, ticket.ID, ev.AmountCents, ev.PaymentRef); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil
		}
		return fmt.Errorf("confirm ticket: %w", err)
	}

	if err := s.tierRepo.AdjustSold(ctx, ticket.TierID, ticket.Quantity); err != nil {
		// The confirmation is already durable and the provider must not
		// retry (a retry would be a no-op on confirm and still not
		// increment). Log for manual reconciliation and acknowledge.
		s.logger.ErrorContext(ctx, "inventory increment after payment confirmation failed, needs manual reconciliation",
			"ticket_id", ticket.ID, "tier_id", ticket.TierID, "quantity", ticket.Quantity, "err", err)
	}
	return nil
}

func (s *paymentWebhookService) handleRefunded(ctx context.Context, ev *domain.PaymentEvent) error {
	if ev.PaymentRef == "" {
		s.logger.WarnContext(ctx, "refund event without payment reference", "event_id", ev.ID)
		return nil
	}
	ticket, err := s.ticketRepo.GetByPaymentRef(ctx, ev.PaymentRef)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// No matching ticket is an acknowledged no-op, not an error.
			s.logger.InfoContext(ctx, "refund for unmatched payment reference", "payment_ref", ev.PaymentRef, "event_id", ev.ID)
			return nil
		}
		return fmt.Errorf("get ticket by payment ref: %w", err)
	}
	if ticket.Status == domain.TicketStatusRefunded {
		return nil
	}
	if err := s.ticketRepo.UpdateStatusIf(ctx, ticket.ID, domain.TicketStatusConfirmed, domain.TicketStatusRefunded); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost a race or the ticket is checked in / cancelled; nothing
			// further this handler should force.
			s.logger.WarnContext(ctx, "refund skipped, ticket not in confirmed state", "ticket_id", ticket.ID, "status", ticket.Status)
			return nil
		}
		return fmt.Errorf("mark ticket refunded: %w", err)
	}
	if err := s.tierRepo.AdjustSold(ctx, ticket.TierID, -ticket.Quantity); err != nil {
		s.logger.ErrorContext(ctx, "inventory release after refund failed, needs manual reconciliation",
			"ticket_id", ticket.ID, "tier_id", ticket.TierID, "quantity", ticket.Quantity, "err", err)
	}
	return nil
}
