package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"doorlist/internal/domain"
)

type tierRepository struct {
	DB *sql.DB
}

func NewTierRepository(db *sql.DB) domain.TicketTierRepository {
	return &tierRepository{DB: db}
}

func (r *tierRepository) Create(ctx context.Context, t *domain.TicketTier) error {
	query := `
		INSERT INTO ticket_tiers (event_id, name, price_cents, quantity_total, quantity_sold, max_per_contact, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		t.EventID, t.Name, t.PriceCents, t.QuantityTotal, t.QuantitySold, t.MaxPerContact, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
}

func (r *tierRepository) scanTier(row *sql.Row) (*domain.TicketTier, error) {
	t := &domain.TicketTier{}
	var maxNull sql.NullInt64
	err := row.Scan(&t.ID, &t.EventID, &t.Name, &t.PriceCents, &t.QuantityTotal, &t.QuantitySold, &maxNull, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if maxNull.Valid {
		v := int(maxNull.Int64)
		t.MaxPerContact = &v
	}
	return t, nil
}

func (r *tierRepository) GetByID(ctx context.Context, id string) (*domain.TicketTier, error) {
	query := `
		SELECT id, event_id, name, price_cents, quantity_total, quantity_sold, max_per_contact, created_at, updated_at
		FROM ticket_tiers
		WHERE id = $1
	`
	return r.scanTier(r.DB.QueryRowContext(ctx, query, id))
}

func (r *tierRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.TicketTier, error) {
	query := `
		SELECT id, event_id, name, price_cents, quantity_total, quantity_sold, max_per_contact, created_at, updated_at
		FROM ticket_tiers
		WHERE event_id = $1
		ORDER BY price_cents ASC, created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tiers := make([]*domain.TicketTier, 0)
	for rows.Next() {
		t := &domain.TicketTier{}
		var maxNull sql.NullInt64
		if err := rows.Scan(&t.ID, &t.EventID, &t.Name, &t.PriceCents, &t.QuantityTotal, &t.QuantitySold, &maxNull, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if maxNull.Valid {
			v := int(maxNull.Int64)
			t.MaxPerContact = &v
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

func (r *tierRepository) Update(ctx context.Context, tierID string, upd domain.TierUpdate) (*domain.TicketTier, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if upd.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", n))
		args = append(args, *upd.Name)
		n++
	}
	if upd.PriceCents != nil {
		setClauses = append(setClauses, fmt.Sprintf("price_cents = $%d", n))
		args = append(args, *upd.PriceCents)
		n++
	}
	if upd.QuantityTotal != nil {
		setClauses = append(setClauses, fmt.Sprintf("quantity_total = $%d", n))
		args = append(args, *upd.QuantityTotal)
		n++
	}
	if upd.ClearMaxPerContact {
		setClauses = append(setClauses, "max_per_contact = NULL")
	} else if upd.MaxPerContact != nil {
		setClauses = append(setClauses, fmt.Sprintf("max_per_contact = $%d", n))
		args = append(args, *upd.MaxPerContact)
		n++
	}
	args = append(args, tierID)
	query := fmt.Sprintf(`
		UPDATE ticket_tiers SET %s
		WHERE id = $%d
		RETURNING id, event_id, name, price_cents, quantity_total, quantity_sold, max_per_contact, created_at, updated_at
	`, strings.Join(setClauses, ", "), n)
	return r.scanTier(r.DB.QueryRowContext(ctx, query, args...))
}

// Delete removes a tier, guarding the no-sales rule in the statement itself
// so a concurrent sale cannot slip past the service-level check.
func (r *tierRepository) Delete(ctx context.Context, tierID string) error {
	query := `DELETE FROM ticket_tiers WHERE id = $1 AND quantity_sold = 0`
	result, err := r.DB.ExecContext(ctx, query, tierID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Either no such tier, or it has sales.
		var sold int
		err := r.DB.QueryRowContext(ctx, `SELECT quantity_sold FROM ticket_tiers WHERE id = $1`, tierID).Scan(&sold)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		return domain.ErrTierNotEmpty
	}
	return nil
}

// AdjustSold is the single atomic inventory primitive. The floor and ceiling
// checks are part of the UPDATE's WHERE clause, so the bounds check and the
// increment happen in one statement; an out-of-range result changes nothing
// and reports ErrInventoryConflict.
func (r *tierRepository) AdjustSold(ctx context.Context, tierID string, delta int) error {
	query := `
		UPDATE ticket_tiers
		SET quantity_sold = quantity_sold + $2, updated_at = NOW()
		WHERE id = $1
		  AND quantity_sold + $2 >= 0
		  AND quantity_sold + $2 <= quantity_total
	`
	result, err := r.DB.ExecContext(ctx, query, tierID, delta)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var exists bool
		if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM ticket_tiers WHERE id = $1)`, tierID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrInventoryConflict
	}
	return nil
}
