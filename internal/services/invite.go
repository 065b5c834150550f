package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"doorlist/internal/domain"
)

type inviteService struct {
	eventRepo      domain.EventRepository
	contactRepo    domain.ContactRepository
	teamRepo       domain.EventTeamMemberRepository
	userRepo       domain.UserRepository
	logRepo        domain.InvitationLogRepository
	messages       domain.MessageService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewInviteService creates an InviteService with the given repositories and collaborators.
func NewInviteService(
	eventRepo domain.EventRepository,
	contactRepo domain.ContactRepository,
	teamRepo domain.EventTeamMemberRepository,
	userRepo domain.UserRepository,
	logRepo domain.InvitationLogRepository,
	messages domain.MessageService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.InviteService {
	return &inviteService{
		eventRepo:      eventRepo,
		contactRepo:    contactRepo,
		teamRepo:       teamRepo,
		userRepo:       userRepo,
		logRepo:        logRepo,
		messages:       messages,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *inviteService) authorizedEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
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

// organizerName returns a display name for the organizer, falling back to a
// generic label if the user lookup fails.
func (s *inviteService) organizerName(ctx context.Context, organizerID string) string {
	user, err := s.userRepo.GetByID(ctx, organizerID)
	if err != nil || user == nil {
		return "The organizer"
	}
	name := strings.TrimSpace(user.Name + " " + user.LastName)
	if name == "" {
		name = user.Email
	}
	if name == "" {
		name = "The organizer"
	}
	return name
}

func (s *inviteService) SendInvitations(ctx context.Context, eventID, callerID string, onlyUninvited bool) (*domain.SendReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.authorizedEvent(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}

	// Fan out over the full scope; pagination is a UI concern, not a send concern.
	contacts, _, err := s.contactRepo.List(ctx, event.ID, "", onlyUninvited, domain.PaginationParams{Page: 1, PageSize: 10000})
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}

	organizer := s.organizerName(ctx, event.OrganizerID)
	report := &domain.SendReport{Failed: []string{}}
	for _, c := range contacts {
		delivered := s.messageContact(ctx, event, c, domain.MessageTypeInvitation, organizer, report)
		if delivered {
			if err := s.contactRepo.SetInvitedAt(ctx, c.ID, time.Now()); err != nil {
				s.logger.ErrorContext(ctx, "stamp invited_at", "contact_id", c.ID, "err", err)
			}
		}
	}
	return report, nil
}

func (s *inviteService) SendThankYou(ctx context.Context, eventID, callerID string) (*domain.SendReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.authorizedEvent(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}
	contacts, err := s.contactRepo.ListWithConfirmedTickets(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list attended contacts: %w", err)
	}

	organizer := s.organizerName(ctx, event.OrganizerID)
	report := &domain.SendReport{Failed: []string{}}
	for _, c := range contacts {
		s.messageContact(ctx, event, c, domain.MessageTypeThankYou, organizer, report)
	}
	return report, nil
}

// messageContact sends one message to a contact over each channel its
// preference selects, appending an audit row per attempt. Returns true when
// at least one channel succeeded.
func (s *inviteService) messageContact(ctx context.Context, event *domain.Event, c *domain.Contact, msgType domain.MessageType, organizer string, report *domain.SendReport) bool {
	data := &domain.GuestMessageData{
		Email:         c.Email,
		Phone:         c.Phone,
		GuestName:     strings.TrimSpace(c.FirstName + " " + c.LastName),
		EventName:     event.Name,
		OrganizerName: organizer,
	}

	wantEmail := (c.Channel == domain.ChannelEmail || c.Channel == domain.ChannelBoth) && c.Email != ""
	wantSMS := (c.Channel == domain.ChannelSMS || c.Channel == domain.ChannelBoth) && c.Phone != ""
	if !wantEmail && !wantSMS {
		return false
	}

	anySent := false
	if wantEmail {
		var msgID string
		var err error
		if msgType == domain.MessageTypeInvitation {
			msgID, err = s.messages.SendInvitationEmail(ctx, data)
		} else {
			msgID, err = s.messages.SendThankYouEmail(ctx, data)
		}
		s.appendLog(ctx, event.ID, c.ID, msgType, domain.ChannelEmail, msgID, err)
		if err != nil {
			report.Failed = append(report.Failed, c.Email)
		} else {
			report.Sent++
			anySent = true
		}
	}
	if wantSMS {
		var msgID string
		var err error
		if msgType == domain.MessageTypeInvitation {
			msgID, err = s.messages.SendInvitationSMS(ctx, data)
		} else {
			msgID, err = s.messages.SendThankYouSMS(ctx, data)
		}
		s.appendLog(ctx, event.ID, c.ID, msgType, domain.ChannelSMS, msgID, err)
		if err != nil {
			report.Failed = append(report.Failed, c.Phone)
		} else {
			report.Sent++
			anySent = true
		}
	}
	return anySent
}

// appendLog records one message attempt. Audit failures are logged, never
// surfaced: the send already happened.
func (s *inviteService) appendLog(ctx context.Context, eventID, contactID string, msgType domain.MessageType, channel domain.InvitationChannel, providerMessageID string, sendErr error) {
	status := domain.MessageStatusSent
	if sendErr != nil {
		status = domain.MessageStatusFailed
	}
	now := time.Now()
	entry := &domain.InvitationLog{
		EventID:           eventID,
		ContactID:         contactID,
		MessageType:       msgType,
		Channel:           channel,
		Status:            status,
		ProviderMessageID: providerMessageID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "append invitation log", "event_id", eventID, "contact_id", contactID, "err", err)
	}
}

func (s *inviteService) ListMessageLog(ctx context.Context, eventID, callerID string, params domain.PaginationParams) ([]*domain.InvitationLog, int, error) {
	if _, err := s.authorizedEvent(ctx, eventID, callerID); err != nil {
		return nil, 0, err
	}
	logs, total, err := s.logRepo.ListByEventID(ctx, eventID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list invitation log: %w", err)
	}
	return logs, total, nil
}

// HandleDeliveryStatus applies a provider delivery-status update by
// provider_message_id. An unknown id is an acknowledged no-op so providers
// stop redelivering.
func (s *inviteService) HandleDeliveryStatus(ctx context.Context, providerMessageID string, status domain.MessageStatus) error {
	if providerMessageID == "" {
		return nil
	}
	err := s.logRepo.UpdateStatusByProviderMessageID(ctx, providerMessageID, status)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.InfoContext(ctx, "delivery status for unknown message", "provider_message_id", providerMessageID, "status", status)
			return nil
		}
		return fmt.Errorf("update delivery status: %w", err)
	}
	return nil
}
