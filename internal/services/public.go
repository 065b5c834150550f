package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"doorlist/internal/domain"
)

type publicService struct {
	eventRepo      domain.EventRepository
	tierRepo       domain.TicketTierRepository
	contextTimeout time.Duration
}

// NewPublicService creates the service behind the unauthenticated event page.
func NewPublicService(
	eventRepo domain.EventRepository,
	tierRepo domain.TicketTierRepository,
	timeout time.Duration,
) domain.PublicService {
	return &publicService{
		eventRepo:      eventRepo,
		tierRepo:       tierRepo,
		contextTimeout: timeout,
	}
}

func (s *publicService) GetPublicEvent(ctx context.Context, eventID string) (*domain.PublicEventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	// Hidden events look exactly like missing ones to the public surface.
	if !event.IsPubliclyVisible() {
		return nil, domain.ErrNotFound
	}
	tiers, err := s.tierRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}
	return &domain.PublicEventView{Event: event, Tiers: tiers}, nil
}
