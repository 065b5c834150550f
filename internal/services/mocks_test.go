package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"doorlist/internal/domain"
)

// In-memory fakes shared across the service tests. They enforce the same
// conditional-write semantics as the SQL repositories so orchestration logic
// can be exercised without a database.

type memEventRepo struct {
	events map[string]*domain.Event
	err    error
}

func (m *memEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if m.err != nil {
		return m.err
	}
	if e.ID == "" {
		e.ID = fmt.Sprintf("ev-%d", len(m.events)+1)
	}
	m.events[e.ID] = e
	return nil
}

func (m *memEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	e, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (m *memEventRepo) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range m.events {
		if e.OrganizerID == organizerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEventRepo) Update(ctx context.Context, eventID string, upd domain.EventUpdate) (*domain.Event, error) {
	e, ok := m.events[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Name != nil {
		e.Name = *upd.Name
	}
	if upd.Description != nil {
		e.Description = upd.Description
	}
	if upd.Venue != nil {
		e.Venue = upd.Venue
	}
	if upd.Capacity != nil {
		e.Capacity = *upd.Capacity
	}
	if upd.DateStart != nil {
		e.DateStart = *upd.DateStart
	}
	if upd.DateEnd != nil {
		e.DateEnd = *upd.DateEnd
	}
	return e, nil
}

func (m *memEventRepo) UpdateStatus(ctx context.Context, eventID string, status domain.EventStatus) error {
	e, ok := m.events[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = status
	return nil
}

func (m *memEventRepo) SetLinkActive(ctx context.Context, eventID string, active bool) error {
	e, ok := m.events[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	e.LinkActive = active
	return nil
}

func (m *memEventRepo) SetCancelledAt(ctx context.Context, eventID string, at time.Time) error {
	e, ok := m.events[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	e.CancelledAt = &at
	return nil
}

type memTierRepo struct {
	tiers map[string]*domain.TicketTier
	// adjustCalls records every AdjustSold delta in order.
	adjustCalls []int
	adjustErr   error
	// onAdjust runs before the first AdjustSold call; tests use it to land a
	// competing sale between the caller's snapshot read and its write.
	onAdjust func()
}

func (m *memTierRepo) Create(ctx context.Context, t *domain.TicketTier) error {
	if t.ID == "" {
		t.ID = fmt.Sprintf("tier-%d", len(m.tiers)+1)
	}
	m.tiers[t.ID] = t
	return nil
}

func (m *memTierRepo) GetByID(ctx context.Context, id string) (*domain.TicketTier, error) {
	t, ok := m.tiers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *memTierRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.TicketTier, error) {
	var out []*domain.TicketTier
	for _, t := range m.tiers {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTierRepo) Update(ctx context.Context, tierID string, upd domain.TierUpdate) (*domain.TicketTier, error) {
	t, ok := m.tiers[tierID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Name != nil {
		t.Name = *upd.Name
	}
	if upd.PriceCents != nil {
		t.PriceCents = *upd.PriceCents
	}
	if upd.QuantityTotal != nil {
		t.QuantityTotal = *upd.QuantityTotal
	}
	if upd.ClearMaxPerContact {
		t.MaxPerContact = nil
	} else if upd.MaxPerContact != nil {
		t.MaxPerContact = upd.MaxPerContact
	}
	return t, nil
}

func (m *memTierRepo) Delete(ctx context.Context, tierID string) error {
	t, ok := m.tiers[tierID]
	if !ok {
		return domain.ErrNotFound
	}
	if t.QuantitySold > 0 {
		return domain.ErrTierNotEmpty
	}
	delete(m.tiers, tierID)
	return nil
}

func (m *memTierRepo) AdjustSold(ctx context.Context, tierID string, delta int) error {
	if len(m.adjustCalls) == 0 && m.onAdjust != nil {
		m.onAdjust()
	}
	m.adjustCalls = append(m.adjustCalls, delta)
	if m.adjustErr != nil {
		return m.adjustErr
	}
	t, ok := m.tiers[tierID]
	if !ok {
		return domain.ErrNotFound
	}
	next := t.QuantitySold + delta
	if next < 0 || next > t.QuantityTotal {
		return domain.ErrInventoryConflict
	}
	t.QuantitySold = next
	return nil
}

type memTicketRepo struct {
	tickets   map[string]*domain.Ticket
	createErr error
}

func (m *memTicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	if m.createErr != nil {
		return m.createErr
	}
	if t.ID == "" {
		t.ID = fmt.Sprintf("tk-%d", len(m.tickets)+1)
	}
	m.tickets[t.ID] = t
	return nil
}

func (m *memTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	t, ok := m.tickets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (m *memTicketRepo) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	for _, t := range m.tickets {
		if t.TicketCode == code {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memTicketRepo) GetByPaymentRef(ctx context.Context, ref string) (*domain.Ticket, error) {
	for _, t := range m.tickets {
		if t.PaymentRef != nil && *t.PaymentRef == ref {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memTicketRepo) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Ticket, int, error) {
	var out []*domain.Ticket
	for _, t := range m.tickets {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, len(out), nil
}

func (m *memTicketRepo) SumLiveQuantityForGuest(ctx context.Context, tierID, email, phone string) (int, error) {
	total := 0
	for _, t := range m.tickets {
		if t.TierID != tierID || !t.Status.IsLive() {
			continue
		}
		if (email != "" && strings.EqualFold(t.GuestEmail, email)) || (phone != "" && t.GuestPhone == phone) {
			total += t.Quantity
		}
	}
	return total, nil
}

func (m *memTicketRepo) SetPaymentSession(ctx context.Context, ticketID, sessionID string) error {
	t, ok := m.tickets[ticketID]
	if !ok {
		return domain.ErrNotFound
	}
	t.PaymentSessionID = &sessionID
	return nil
}

func (m *memTicketRepo) ConfirmPayment(ctx context.Context, ticketID string, amountPaidCents int, paymentRef string) error {
	t, ok := m.tickets[ticketID]
	if !ok {
		return domain.ErrNotFound
	}
	if t.Status != domain.TicketStatusPending {
		return domain.ErrConflict
	}
	t.Status = domain.TicketStatusConfirmed
	t.AmountPaidCents = amountPaidCents
	t.PaymentRef = &paymentRef
	return nil
}

func (m *memTicketRepo) UpdateStatusIf(ctx context.Context, ticketID string, from, to domain.TicketStatus) error {
	t, ok := m.tickets[ticketID]
	if !ok {
		return domain.ErrNotFound
	}
	if t.Status != from {
		return domain.ErrConflict
	}
	t.Status = to
	return nil
}

func (m *memTicketRepo) ListStalePending(ctx context.Context, eventID string, olderThan time.Time) ([]*domain.Ticket, error) {
	var out []*domain.Ticket
	for _, t := range m.tickets {
		if t.EventID == eventID && t.Status == domain.TicketStatusPending && t.CreatedAt.Before(olderThan) {
			out = append(out, t)
		}
	}
	return out, nil
}

type memContactRepo struct {
	contacts map[string]*domain.Contact
}

func (m *memContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	if c.ID == "" {
		c.ID = fmt.Sprintf("ct-%d", len(m.contacts)+1)
	}
	m.contacts[c.ID] = c
	return nil
}

func (m *memContactRepo) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	c, ok := m.contacts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (m *memContactRepo) FindByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Contact, error) {
	for _, c := range m.contacts {
		if c.EventID == eventID && c.Email != "" && strings.EqualFold(c.Email, email) {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memContactRepo) FindByEventAndPhone(ctx context.Context, eventID, phone string) (*domain.Contact, error) {
	for _, c := range m.contacts {
		if c.EventID == eventID && c.Phone != "" && c.Phone == phone {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memContactRepo) List(ctx context.Context, eventID, search string, onlyUninvited bool, params domain.PaginationParams) ([]*domain.Contact, int, error) {
	var out []*domain.Contact
	for _, c := range m.contacts {
		if c.EventID != eventID {
			continue
		}
		if onlyUninvited && c.InvitedAt != nil {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *memContactRepo) ListWithConfirmedTickets(ctx context.Context, eventID string) ([]*domain.Contact, error) {
	return nil, nil
}

func (m *memContactRepo) SetInvitedAt(ctx context.Context, contactID string, at time.Time) error {
	c, ok := m.contacts[contactID]
	if !ok {
		return domain.ErrNotFound
	}
	c.InvitedAt = &at
	return nil
}

func (m *memContactRepo) Delete(ctx context.Context, contactID string) error {
	if _, ok := m.contacts[contactID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.contacts, contactID)
	return nil
}

type memTeamRepo struct {
	members map[string]bool // "eventID:userID"
}

func (m *memTeamRepo) Add(ctx context.Context, eventID, userID string) error {
	key := eventID + ":" + userID
	if m.members[key] {
		return domain.ErrAlreadyMember
	}
	m.members[key] = true
	return nil
}

func (m *memTeamRepo) IsMember(ctx context.Context, eventID, userID string) (bool, error) {
	return m.members[eventID+":"+userID], nil
}

func (m *memTeamRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventTeamMember, error) {
	return nil, nil
}

func (m *memTeamRepo) Remove(ctx context.Context, eventID, userID string) error {
	key := eventID + ":" + userID
	if !m.members[key] {
		return domain.ErrNotFound
	}
	delete(m.members, key)
	return nil
}

type fakePaymentProvider struct {
	session *domain.CheckoutSession
	err     error
	// lastParams captures the most recent session request.
	lastParams domain.CheckoutSessionParams
}

func (f *fakePaymentProvider) CreateCheckoutSession(ctx context.Context, params domain.CheckoutSessionParams) (*domain.CheckoutSession, error) {
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

type fakeMessageService struct {
	confirmations []*domain.TicketConfirmationData
	welcomes      []*domain.WelcomeEmailData
	sendErr       error
}

func (f *fakeMessageService) SendWelcome(ctx context.Context, data *domain.WelcomeEmailData) error {
	f.welcomes = append(f.welcomes, data)
	return f.sendErr
}

func (f *fakeMessageService) SendTicketConfirmation(ctx context.Context, data *domain.TicketConfirmationData) error {
	f.confirmations = append(f.confirmations, data)
	return f.sendErr
}

func (f *fakeMessageService) SendInvitationEmail(ctx context.Context, data *domain.GuestMessageData) (string, error) {
	return "msg-email-1", f.sendErr
}

func (f *fakeMessageService) SendInvitationSMS(ctx context.Context, data *domain.GuestMessageData) (string, error) {
	return "msg-sms-1", f.sendErr
}

func (f *fakeMessageService) SendThankYouEmail(ctx context.Context, data *domain.GuestMessageData) (string, error) {
	return "msg-email-2", f.sendErr
}

func (f *fakeMessageService) SendThankYouSMS(ctx context.Context, data *domain.GuestMessageData) (string, error) {
	return "msg-sms-2", f.sendErr
}
