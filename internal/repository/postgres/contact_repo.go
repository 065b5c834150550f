package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"doorlist/internal/domain"
)

type contactRepository struct {
	DB *sql.DB
}

func NewContactRepository(db *sql.DB) domain.ContactRepository {
	return &contactRepository{DB: db}
}

const contactColumns = `id, event_id, first_name, last_name, email, phone, invitation_channel, invited_at, created_at, updated_at`

func (r *contactRepository) Create(ctx context.Context, c *domain.Contact) error {
	query := `
		INSERT INTO contacts (event_id, first_name, last_name, email, phone, invitation_channel, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		c.EventID, c.FirstName, c.LastName, c.Email, c.Phone, c.Channel, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
}

func scanContact(scan func(dest ...interface{}) error) (*domain.Contact, error) {
	c := &domain.Contact{}
	err := scan(&c.ID, &c.EventID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Channel, &c.InvitedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *contactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`
	return scanContact(r.DB.QueryRowContext(ctx, query, id).Scan)
}

func (r *contactRepository) FindByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE event_id = $1 AND LOWER(email) = LOWER($2)`
	return scanContact(r.DB.QueryRowContext(ctx, query, eventID, email).Scan)
}

func (r *contactRepository) FindByEventAndPhone(ctx context.Context, eventID, phone string) (*domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE event_id = $1 AND phone = $2`
	return scanContact(r.DB.QueryRowContext(ctx, query, eventID, phone).Scan)
}

func (r *contactRepository) List(ctx context.Context, eventID, search string, onlyUninvited bool, params domain.PaginationParams) ([]*domain.Contact, int, error) {
	where := "event_id = $1"
	args := []interface{}{eventID}
	n := 2
	if search != "" {
		where += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)", n, n, n, n)
		args = append(args, "%"+search+"%")
		n++
	}
	if onlyUninvited {
		where += " AND invited_at IS NULL"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM contacts WHERE " + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM contacts
		WHERE %s
		ORDER BY last_name ASC, first_name ASC
		LIMIT $%d OFFSET $%d
	`, contactColumns, where, n, n+1)
	args = append(args, params.PageSize, params.Offset())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	contacts := make([]*domain.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		contacts = append(contacts, c)
	}
	return contacts, total, rows.Err()
}

// ListWithConfirmedTickets returns the contacts on an event that hold at
// least one confirmed or checked-in ticket. Used for thank-you sends.
func (r *contactRepository) ListWithConfirmedTickets(ctx context.Context, eventID string) ([]*domain.Contact, error) {
	query := `
		SELECT DISTINCT c.id, c.event_id, c.first_name, c.last_name, c.email, c.phone, c.invitation_channel, c.invited_at, c.created_at, c.updated_at
		FROM contacts c
		JOIN tickets t ON t.contact_id = c.id
		WHERE c.event_id = $1 AND t.status IN ('confirmed', 'checked_in')
		ORDER BY c.last_name ASC, c.first_name ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	contacts := make([]*domain.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows.Scan)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *contactRepository) SetInvitedAt(ctx context.Context, contactID string, at time.Time) error {
	query := `UPDATE contacts SET invited_at = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, contactID, at)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *contactRepository) Delete(ctx context.Context, contactID string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, contactID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
