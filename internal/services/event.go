package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"doorlist/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	teamRepo       domain.EventTeamMemberRepository
	userRepo       domain.UserRepository
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given repositories.
func NewEventService(
	eventRepo domain.EventRepository,
	teamRepo domain.EventTeamMemberRepository,
	userRepo domain.UserRepository,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		teamRepo:       teamRepo,
		userRepo:       userRepo,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.OrganizerID == "" {
		return fmt.Errorf("%w: event organizer is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(event.Name) == "" {
		return fmt.Errorf("%w: event name is required", domain.ErrInvalidInput)
	}
	if !event.DateStart.Before(event.DateEnd) {
		return fmt.Errorf("%w: date_start must be before date_end", domain.ErrInvalidInput)
	}
	if event.Capacity < 0 {
		return fmt.Errorf("%w: capacity must be non-negative", domain.ErrInvalidInput)
	}

	now := time.Now()
	event.Status = domain.EventStatusDraft
	event.LinkActive = true
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
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

func (s *eventService) ListMyEvents(ctx context.Context, callerID string) ([]*domain.Event, error) {
	events, err := s.eventRepo.ListByOrganizerID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, callerID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.GetEvent(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}

	// The date window invariant holds against the merged values.
	start, end := event.DateStart, event.DateEnd
	if upd.DateStart != nil {
		start = *upd.DateStart
	}
	if upd.DateEnd != nil {
		end = *upd.DateEnd
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: date_start must be before date_end", domain.ErrInvalidInput)
	}
	if upd.Capacity != nil && *upd.Capacity < 0 {
		return nil, fmt.Errorf("%w: capacity must be non-negative", domain.ErrInvalidInput)
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, fmt.Errorf("%w: event name cannot be empty", domain.ErrInvalidInput)
	}

	updated, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

// lifecycle applies a status transition; only the organizer may change
// lifecycle state.
func (s *eventService) lifecycle(ctx context.Context, eventID, callerID string, allowedFrom []domain.EventStatus, to domain.EventStatus) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != callerID {
		return nil, domain.ErrForbidden
	}
	allowed := false
	for _, from := range allowedFrom {
		if event.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: event is %s", domain.ErrConflict, event.Status)
	}
	if err := s.eventRepo.UpdateStatus(ctx, eventID, to); err != nil {
		return nil, fmt.Errorf("update event status: %w", err)
	}
	event.Status = to
	return event, nil
}

func (s *eventService) PublishEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	return s.lifecycle(ctx, eventID, callerID, []domain.EventStatus{domain.EventStatusDraft}, domain.EventStatusPublished)
}

func (s *eventService) ArchiveEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	return s.lifecycle(ctx, eventID, callerID, []domain.EventStatus{domain.EventStatusDraft, domain.EventStatusPublished}, domain.EventStatusArchived)
}

// UnarchiveEvent restores an archived event to published.
func (s *eventService) UnarchiveEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	return s.lifecycle(ctx, eventID, callerID, []domain.EventStatus{domain.EventStatusArchived}, domain.EventStatusPublished)
}

func (s *eventService) CancelEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != callerID {
		return nil, domain.ErrForbidden
	}
	if event.CancelledAt != nil {
		return nil, fmt.Errorf("%w: event already cancelled", domain.ErrConflict)
	}
	now := time.Now()
	if err := s.eventRepo.SetCancelledAt(ctx, eventID, now); err != nil {
		return nil, fmt.Errorf("cancel event: %w", err)
	}
	event.CancelledAt = &now
	return event, nil
}

func (s *eventService) SetEventLinkActive(ctx context.Context, eventID, callerID string, active bool) (*domain.Event, error) {
	event, err := s.GetEvent(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}
	if err := s.eventRepo.SetLinkActive(ctx, eventID, active); err != nil {
		return nil, fmt.Errorf("set link active: %w", err)
	}
	event.LinkActive = active
	return event, nil
}

func (s *eventService) AddTeamMemberByEmail(ctx context.Context, eventID, email, callerID string) (*domain.EventTeamMember, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != callerID {
		return nil, domain.ErrForbidden
	}

	user, err := s.userRepo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if user.ID == event.OrganizerID {
		return nil, fmt.Errorf("%w: organizer is already on the event", domain.ErrInvalidInput)
	}
	if member, err := s.teamRepo.IsMember(ctx, eventID, user.ID); err != nil {
		return nil, fmt.Errorf("check team membership: %w", err)
	} else if member {
		return nil, domain.ErrAlreadyMember
	}
	if err := s.teamRepo.Add(ctx, eventID, user.ID); err != nil {
		return nil, fmt.Errorf("add team member: %w", err)
	}
	return &domain.EventTeamMember{
		EventID:  eventID,
		UserID:   user.ID,
		Name:     user.Name,
		LastName: user.LastName,
		Email:    user.Email,
	}, nil
}

func (s *eventService) ListTeamMembers(ctx context.Context, eventID, callerID string) ([]*domain.EventTeamMember, error) {
	if _, err := s.GetEvent(ctx, eventID, callerID); err != nil {
		return nil, err
	}
	members, err := s.teamRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	return members, nil
}

func (s *eventService) RemoveTeamMember(ctx context.Context, eventID, userID, callerID string) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != callerID {
		return domain.ErrForbidden
	}
	if err := s.teamRepo.Remove(ctx, eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("remove team member: %w", err)
	}
	return nil
}
