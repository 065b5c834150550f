package services

import (
	"context"
	"fmt"

	"doorlist/internal/domain"
)

type messageService struct {
	mailer   domain.Mailer
	sms      domain.SMSSender
	renderer domain.EmailTemplateRenderer
}

// NewMessageService returns a MessageService over the given mail, SMS, and
// template collaborators.
func NewMessageService(mailer domain.Mailer, sms domain.SMSSender, renderer domain.EmailTemplateRenderer) domain.MessageService {
	return &messageService{mailer: mailer, sms: sms, renderer: renderer}
}

func (s *messageService) sendTemplated(template string, to string, data any) (string, error) {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return "", fmt.Errorf("render %s template: %w", template, err)
	}
	msgID, err := s.mailer.Send(to, subject, htmlBody, textBody)
	if err != nil {
		return "", fmt.Errorf("send %s email: %w", template, err)
	}
	return msgID, nil
}

func (s *messageService) SendWelcome(ctx context.Context, data *domain.WelcomeEmailData) error {
	if data == nil {
		return fmt.Errorf("welcome email data is nil")
	}
	_, err := s.sendTemplated("welcome", data.Email, data)
	return err
}

func (s *messageService) SendTicketConfirmation(ctx context.Context, data *domain.TicketConfirmationData) error {
	if data == nil {
		return fmt.Errorf("ticket confirmation data is nil")
	}
	_, err := s.sendTemplated("ticket_confirmation", data.Email, data)
	return err
}

func (s *messageService) SendInvitationEmail(ctx context.Context, data *domain.GuestMessageData) (string, error) {
	if data == nil {
		return "", fmt.Errorf("invitation data is nil")
	}
	return s.sendTemplated("invitation", data.Email, data)
}

func (s *messageService) SendThankYouEmail(ctx context.Context, data *domain.GuestMessageData) (string, error) {
	if data == nil {
		return "", fmt.Errorf("thank-you data is nil")
	}
	return s.sendTemplated("thank_you", data.Email, data)
}

func (s *messageService) SendInvitationSMS(ctx context.Context, data *domain.GuestMessageData) (string, error) {
	if data == nil {
		return "", fmt.Errorf("invitation data is nil")
	}
	body := fmt.Sprintf("%s invited you to %s. Reply or visit the event page to RSVP.", data.OrganizerName, data.EventName)
	return s.sms.Send(ctx, data.Phone, body)
}

func (s *messageService) SendThankYouSMS(ctx context.Context, data *domain.GuestMessageData) (string, error) {
	if data == nil {
		return "", fmt.Errorf("thank-you data is nil")
	}
	body := fmt.Sprintf("Thanks for coming to %s! From %s.", data.EventName, data.OrganizerName)
	return s.sms.Send(ctx, data.Phone, body)
}
