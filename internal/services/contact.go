package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"doorlist/internal/domain"
)

type contactService struct {
	eventRepo      domain.EventRepository
	contactRepo    domain.ContactRepository
	teamRepo       domain.EventTeamMemberRepository
	contextTimeout time.Duration
}

// NewContactService creates a ContactService with the given repositories.
func NewContactService(
	eventRepo domain.EventRepository,
	contactRepo domain.ContactRepository,
	teamRepo domain.EventTeamMemberRepository,
	timeout time.Duration,
) domain.ContactService {
	return &contactService{
		eventRepo:      eventRepo,
		contactRepo:    contactRepo,
		teamRepo:       teamRepo,
		contextTimeout: timeout,
	}
}

func (s *contactService) authorizedEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
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

// validateRow normalizes a contact row and returns the cleaned email/phone.
func validateRow(row domain.ContactImportRow) (email, phone string, channel domain.InvitationChannel, err error) {
	email = domain.NormalizeEmail(row.Email)
	phone = strings.TrimSpace(row.Phone)
	if email == "" && phone == "" {
		return "", "", "", fmt.Errorf("%w: contact needs an email or a phone", domain.ErrInvalidInput)
	}
	channel = row.Channel
	if channel == "" {
		// Default to whatever identifiers the contact has.
		switch {
		case email != "" && phone != "":
			channel = domain.ChannelBoth
		case phone != "":
			channel = domain.ChannelSMS
		default:
			channel = domain.ChannelEmail
		}
	}
	if !domain.ValidInvitationChannel(channel) {
		return "", "", "", fmt.Errorf("%w: unknown invitation channel %q", domain.ErrInvalidInput, row.Channel)
	}
	return email, phone, channel, nil
}

// findDuplicate resolves an existing contact by normalized email or exact phone.
func (s *contactService) findDuplicate(ctx context.Context, eventID, email, phone string) (*domain.Contact, error) {
	if email != "" {
		c, err := s.contactRepo.FindByEventAndEmail(ctx, eventID, email)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("find contact by email: %w", err)
		}
	}
	if phone != "" {
		c, err := s.contactRepo.FindByEventAndPhone(ctx, eventID, phone)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("find contact by phone: %w", err)
		}
	}
	return nil, domain.ErrNotFound
}

func (s *contactService) AddContact(ctx context.Context, eventID, callerID string, row domain.ContactImportRow) (*domain.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.authorizedEvent(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}
	email, phone, channel, err := validateRow(row)
	if err != nil {
		return nil, err
	}
	if _, err := s.findDuplicate(ctx, event.ID, email, phone); err == nil {
		return nil, fmt.Errorf("%w: contact already exists for this event", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	contact := domain.NewContact(event.ID, row.FirstName, row.LastName, email, phone, channel, time.Now())
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return contact, nil
}

// ImportContacts inserts already-parsed rows, deduplicating per event by
// case-insensitive email or exact phone. Duplicates and invalid rows are
// skipped and reported, never fatal to the batch.
func (s *contactService) ImportContacts(ctx context.Context, eventID, callerID string, rows []domain.ContactImportRow) (*domain.ContactImportResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.authorizedEvent(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}

	result := &domain.ContactImportResult{Skipped: []string{}}
	seen := make(map[string]struct{})
	for i, row := range rows {
		label := domain.NormalizeEmail(row.Email)
		if label == "" {
			label = strings.TrimSpace(row.Phone)
		}
		if label == "" {
			label = fmt.Sprintf("row %d", i+1)
		}

		email, phone, channel, err := validateRow(row)
		if err != nil {
			result.Skipped = append(result.Skipped, label)
			continue
		}
		// Dedup within the batch itself as well as against the store.
		key := email + "|" + phone
		if _, ok := seen[key]; ok {
			result.Skipped = append(result.Skipped, label)
			continue
		}
		seen[key] = struct{}{}

		if _, err := s.findDuplicate(ctx, event.ID, email, phone); err == nil {
			result.Skipped = append(result.Skipped, label)
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}

		contact := domain.NewContact(event.ID, row.FirstName, row.LastName, email, phone, channel, time.Now())
		if err := s.contactRepo.Create(ctx, contact); err != nil {
			result.Skipped = append(result.Skipped, label)
			continue
		}
		result.Imported++
	}
	return result, nil
}

func (s *contactService) ListContacts(ctx context.Context, eventID, callerID, search string, onlyUninvited bool, params domain.PaginationParams) ([]*domain.Contact, int, error) {
	if _, err := s.authorizedEvent(ctx, eventID, callerID); err != nil {
		return nil, 0, err
	}
	contacts, total, err := s.contactRepo.List(ctx, eventID, search, onlyUninvited, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, total, nil
}

func (s *contactService) DeleteContact(ctx context.Context, eventID, contactID, callerID string) error {
	event, err := s.authorizedEvent(ctx, eventID, callerID)
	if err != nil {
		return err
	}
	contact, err := s.contactRepo.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get contact: %w", err)
	}
	if contact.EventID != event.ID {
		return domain.ErrNotFound
	}
	if err := s.contactRepo.Delete(ctx, contactID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}
