package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"doorlist/internal/domain"
)

type tierService struct {
	eventRepo      domain.EventRepository
	tierRepo       domain.TicketTierRepository
	teamRepo       domain.EventTeamMemberRepository
	contextTimeout time.Duration
}

// NewTierService creates a TierService with the given repositories.
func NewTierService(
	eventRepo domain.EventRepository,
	tierRepo domain.TicketTierRepository,
	teamRepo domain.EventTeamMemberRepository,
	timeout time.Duration,
) domain.TierService {
	return &tierService{
		eventRepo:      eventRepo,
		tierRepo:       tierRepo,
		teamRepo:       teamRepo,
		contextTimeout: timeout,
	}
}

func (s *tierService) authorizedEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
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

// checkEventCapacity soft-enforces that the sum of tier quantity_total does
// not exceed the event capacity. Validation-time only, not transactional.
func (s *tierService) checkEventCapacity(ctx context.Context, event *domain.Event, excludeTierID string, addedTotal int) error {
	if event.Capacity <= 0 {
		return nil
	}
	tiers, err := s.tierRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("list tiers: %w", err)
	}
	sum := addedTotal
	for _, t := range tiers {
		if t.ID == excludeTierID {
			continue
		}
		sum += t.QuantityTotal
	}
	if sum > event.Capacity {
		return fmt.Errorf("%w: total tier quantity %d exceeds event capacity %d", domain.ErrInvalidInput, sum, event.Capacity)
	}
	return nil
}

func (s *tierService) CreateTier(ctx context.Context, eventID, callerID string, tier *domain.TicketTier) (*domain.TicketTier, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.authorizedEvent(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(tier.Name) == "" {
		return nil, fmt.Errorf("%w: tier name is required", domain.ErrInvalidInput)
	}
	if tier.PriceCents < 0 {
		return nil, fmt.Errorf("%w: price_cents must be non-negative", domain.ErrInvalidInput)
	}
	if tier.QuantityTotal < 1 {
		return nil, fmt.Errorf("%w: quantity_total must be at least 1", domain.ErrInvalidInput)
	}
	if tier.MaxPerContact != nil && *tier.MaxPerContact < 1 {
		return nil, fmt.Errorf("%w: max_per_contact must be at least 1", domain.ErrInvalidInput)
	}
	if err := s.checkEventCapacity(ctx, event, "", tier.QuantityTotal); err != nil {
		return nil, err
	}

	now := time.Now()
	tier.EventID = event.ID
	tier.QuantitySold = 0
	tier.CreatedAt = now
	tier.UpdatedAt = now
	if err := s.tierRepo.Create(ctx, tier); err != nil {
		return nil, fmt.Errorf("create tier: %w", err)
	}
	return tier, nil
}

func (s *tierService) ListTiers(ctx context.Context, eventID, callerID string) ([]*domain.TicketTier, error) {
	if _, err := s.authorizedEvent(ctx, eventID, callerID); err != nil {
		return nil, err
	}
	tiers, err := s.tierRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}
	return tiers, nil
}

func (s *tierService) UpdateTier(ctx context.Context, eventID, tierID, callerID string, upd domain.TierUpdate) (*domain.TicketTier, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.authorizedEvent(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}
	tier, err := s.tierRepo.GetByID(ctx, tierID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get tier: %w", err)
	}
	if tier.EventID != event.ID {
		return nil, domain.ErrNotFound
	}

	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, fmt.Errorf("%w: tier name cannot be empty", domain.ErrInvalidInput)
	}
	if upd.PriceCents != nil && *upd.PriceCents < 0 {
		return nil, fmt.Errorf("%w: price_cents must be non-negative", domain.ErrInvalidInput)
	}
	if upd.MaxPerContact != nil && *upd.MaxPerContact < 1 {
		return nil, fmt.Errorf("%w: max_per_contact must be at least 1", domain.ErrInvalidInput)
	}
	if upd.QuantityTotal != nil {
		if *upd.QuantityTotal < tier.QuantitySold {
			return nil, fmt.Errorf("%w: quantity_total cannot be below quantity_sold (%d)", domain.ErrInvalidInput, tier.QuantitySold)
		}
		if err := s.checkEventCapacity(ctx, event, tier.ID, *upd.QuantityTotal); err != nil {
			return nil, err
		}
	}

	updated, err := s.tierRepo.Update(ctx, tierID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update tier: %w", err)
	}
	return updated, nil
}

// DeleteTier removes a tier. Tiers with sold tickets are never deletable,
// regardless of caller privilege.
func (s *tierService) DeleteTier(ctx context.Context, eventID, tierID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.authorizedEvent(ctx, eventID, callerID)
	if err != nil {
		return err
	}
	tier, err := s.tierRepo.GetByID(ctx, tierID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get tier: %w", err)
	}
	if tier.EventID != event.ID {
		return domain.ErrNotFound
	}
	if tier.QuantitySold > 0 {
		return domain.ErrTierNotEmpty
	}
	if err := s.tierRepo.Delete(ctx, tierID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		if errors.Is(err, domain.ErrTierNotEmpty) {
			return domain.ErrTierNotEmpty
		}
		return fmt.Errorf("delete tier: %w", err)
	}
	return nil
}
