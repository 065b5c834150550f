package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"doorlist/internal/domain"
)

type ticketRepository struct {
	DB *sql.DB
}

func NewTicketRepository(db *sql.DB) domain.TicketRepository {
	return &ticketRepository{DB: db}
}

const ticketColumns = `id, event_id, tier_id, contact_id, status, quantity, ticket_code, amount_paid_cents,
	payment_session_id, payment_ref, guest_name, guest_email, guest_phone, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	query := `
		INSERT INTO tickets (event_id, tier_id, contact_id, status, quantity, ticket_code, amount_paid_cents,
			payment_session_id, payment_ref, guest_name, guest_email, guest_phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		t.EventID, t.TierID, t.ContactID, t.Status, t.Quantity, t.TicketCode, t.AmountPaidCents,
		t.PaymentSessionID, t.PaymentRef, t.GuestName, t.GuestEmail, t.GuestPhone, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
}

func scanTicket(scan func(dest ...interface{}) error) (*domain.Ticket, error) {
	t := &domain.Ticket{}
	err := scan(&t.ID, &t.EventID, &t.TierID, &t.ContactID, &t.Status, &t.Quantity, &t.TicketCode, &t.AmountPaidCents,
		&t.PaymentSessionID, &t.PaymentRef, &t.GuestName, &t.GuestEmail, &t.GuestPhone, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	return scanTicket(r.DB.QueryRowContext(ctx, query, id).Scan)
}

func (r *ticketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_code = $1`
	return scanTicket(r.DB.QueryRowContext(ctx, query, code).Scan)
}

func (r *ticketRepository) GetByPaymentRef(ctx context.Context, paymentRef string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE payment_ref = $1`
	return scanTicket(r.DB.QueryRowContext(ctx, query, paymentRef).Scan)
}

func (r *ticketRepository) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Ticket, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		tickets = append(tickets, t)
	}
	return tickets, total, rows.Err()
}

// SumLiveQuantityForGuest totals the quantities a guest already holds on a
// tier across pending, confirmed and checked-in tickets, matching by email
// or phone. Used to enforce per-guest purchase limits.
func (r *ticketRepository) SumLiveQuantityForGuest(ctx context.Context, tierID, email, phone string) (int, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM tickets
		WHERE tier_id = $1
		  AND status IN ('pending', 'confirmed', 'checked_in')
		  AND (
			($2 <> '' AND LOWER(guest_email) = LOWER($2))
			OR ($3 <> '' AND guest_phone = $3)
		  )
	`
	var total int
	err := r.DB.QueryRowContext(ctx, query, tierID, email, phone).Scan(&total)
	return total, err
}

func (r *ticketRepository) SetPaymentSession(ctx context.Context, ticketID, sessionID string) error {
	query := `UPDATE tickets SET payment_session_id = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, ticketID, sessionID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ConfirmPayment flips a pending ticket to confirmed and records the amount
// and payment reference. The status guard in the WHERE clause makes this the
// idempotency gate for webhook deliveries: only the first delivery matches.
func (r *ticketRepository) ConfirmPayment(ctx context.Context, ticketID string, amountPaidCents int, paymentRef string) error {
	query := `
		UPDATE tickets
		SET status = 'confirmed', amount_paid_cents = $2, payment_ref = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`
	result, err := r.DB.ExecContext(ctx, query, ticketID, amountPaidCents, paymentRef)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var exists bool
		if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE id = $1)`, ticketID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	return nil
}

// UpdateStatusIf applies a status transition only when the ticket is
// currently in the expected state, reporting ErrConflict otherwise.
func (r *ticketRepository) UpdateStatusIf(ctx context.Context, ticketID string, from, to domain.TicketStatus) error {
	query := `UPDATE tickets SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`
	result, err := r.DB.ExecContext(ctx, query, ticketID, from, to)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var exists bool
		if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE id = $1)`, ticketID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	return nil
}

func (r *ticketRepository) ListStalePending(ctx context.Context, eventID string, olderThan time.Time) ([]*domain.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE event_id = $1 AND status = 'pending' AND created_at < $2
		ORDER BY created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows.Scan)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}
