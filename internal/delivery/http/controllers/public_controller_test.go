package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"doorlist/internal/delivery/http/helpers"
	"doorlist/internal/domain"
)

type mockPublicService struct {
	view *domain.PublicEventView
	err  error
}

func (m *mockPublicService) GetPublicEvent(ctx context.Context, eventID string) (*domain.PublicEventView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.view, nil
}

type mockBookingService struct {
	ticket   *domain.Ticket
	checkout *domain.CheckoutResult
	err      error
}

func (m *mockBookingService) Checkout(ctx context.Context, in domain.CheckoutInput) (*domain.CheckoutResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.checkout, nil
}

func (m *mockBookingService) RSVP(ctx context.Context, in domain.RSVPInput) (*domain.Ticket, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.ticket, nil
}

func (m *mockBookingService) IssueWalkIn(ctx context.Context, callerID string, in domain.RSVPInput) (*domain.Ticket, error) {
	return m.ticket, m.err
}

func (m *mockBookingService) GetTicketByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.ticket, nil
}

func (m *mockBookingService) ListEventTickets(ctx context.Context, eventID, callerID string, params domain.PaginationParams) ([]*domain.Ticket, int, error) {
	return nil, 0, m.err
}

func (m *mockBookingService) ListStalePendingTickets(ctx context.Context, eventID, callerID string, olderThan time.Duration) ([]*domain.Ticket, error) {
	return nil, m.err
}

func (m *mockBookingService) CheckInTicket(ctx context.Context, eventID, code, callerID string) (*domain.Ticket, error) {
	return m.ticket, m.err
}

func (m *mockBookingService) UndoCheckIn(ctx context.Context, eventID, code, callerID string) (*domain.Ticket, error) {
	return m.ticket, m.err
}

func (m *mockBookingService) CancelTicket(ctx context.Context, eventID, code, callerID string) (*domain.Ticket, error) {
	return m.ticket, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestPublicController_GetEvent_Success(t *testing.T) {
	desc := "A night of launches"
	view := &domain.PublicEventView{
		Event: &domain.Event{ID: "e1", Name: "Launch Party", Description: &desc},
		Tiers: []*domain.TicketTier{
			{ID: "t1", Name: "General", PriceCents: 0, QuantityTotal: 10, QuantitySold: 4},
		},
	}
	ctrl := NewPublicController(discardLogger(), &mockPublicService{view: view}, &mockBookingService{})

	req := httptest.NewRequest(http.MethodGet, "/public/events/e1", nil)
	req.SetPathValue("eventID", "e1")
	w := httptest.NewRecorder()

	ctrl.GetEvent(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var resp struct {
		Data  PublicEventResponse `json:"data"`
		Error *helpers.APIError   `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("expected no error, got %v", resp.Error)
	}
	if len(resp.Data.Tiers) != 1 || resp.Data.Tiers[0].Remaining != 6 {
		t.Fatalf("expected one tier with 6 remaining, got %+v", resp.Data.Tiers)
	}
}

func TestPublicController_GetEvent_NotFound(t *testing.T) {
	ctrl := NewPublicController(discardLogger(), &mockPublicService{err: domain.ErrNotFound}, &mockBookingService{})

	req := httptest.NewRequest(http.MethodGet, "/public/events/missing", nil)
	req.SetPathValue("eventID", "missing")
	w := httptest.NewRecorder()

	ctrl.GetEvent(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestPublicController_RSVP_Success(t *testing.T) {
	ticket := &domain.Ticket{ID: "tk1", Status: domain.TicketStatusConfirmed, TicketCode: "code-1"}
	ctrl := NewPublicController(discardLogger(), &mockPublicService{}, &mockBookingService{ticket: ticket})

	body := `{"tier_id":"t1","quantity":1,"guest_name":"Ada","guest_email":"ada@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/public/events/e1/rsvp", strings.NewReader(body))
	req.SetPathValue("eventID", "e1")
	w := httptest.NewRecorder()

	ctrl.RSVP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
}

func TestPublicController_RSVP_RejectionReason(t *testing.T) {
	rej := domain.NewReservationRejection("Only 1 ticket remaining")
	ctrl := NewPublicController(discardLogger(), &mockPublicService{}, &mockBookingService{err: rej})

	body := `{"tier_id":"t1","quantity":2,"guest_name":"Ada","guest_email":"ada@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/public/events/e1/rsvp", strings.NewReader(body))
	req.SetPathValue("eventID", "e1")
	w := httptest.NewRecorder()

	ctrl.RSVP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
	}
	var resp helpers.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error == nil || resp.Error.Message != "Only 1 ticket remaining" {
		t.Fatalf("expected the rejection reason verbatim, got %+v", resp.Error)
	}
	if resp.Error.Code != helpers.ErrCodeConflict {
		t.Fatalf("expected error code %q, got %q", helpers.ErrCodeConflict, resp.Error.Code)
	}
}

func TestPublicController_RSVP_InvalidBody(t *testing.T) {
	ctrl := NewPublicController(discardLogger(), &mockPublicService{}, &mockBookingService{})

	body := `{"tier_id":"","quantity":0}`
	req := httptest.NewRequest(http.MethodPost, "/public/events/e1/rsvp", strings.NewReader(body))
	req.SetPathValue("eventID", "e1")
	w := httptest.NewRecorder()

	ctrl.RSVP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestPublicController_Checkout_Success(t *testing.T) {
	result := &domain.CheckoutResult{
		Ticket:      &domain.Ticket{ID: "tk1", Status: domain.TicketStatusPending},
		RedirectURL: "https://pay.example.com/sess-1",
	}
	ctrl := NewPublicController(discardLogger(), &mockPublicService{}, &mockBookingService{checkout: result})

	body := `{"tier_id":"t1","quantity":2,"guest_name":"Ada","guest_email":"ada@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/public/events/e1/checkout", strings.NewReader(body))
	req.SetPathValue("eventID", "e1")
	w := httptest.NewRecorder()

	ctrl.Checkout(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
	var resp struct {
		Data domain.CheckoutResult `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Data.RedirectURL != result.RedirectURL {
		t.Fatalf("expected redirect url %q, got %q", result.RedirectURL, resp.Data.RedirectURL)
	}
}
