package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"doorlist/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

const eventColumns = `id, name, description, venue, organizer_id, status, link_active, capacity,
	date_start, date_end, cancelled_at, created_at, updated_at`

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, description, venue, organizer_id, status, link_active, capacity,
			date_start, date_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Name, e.Description, e.Venue, e.OrganizerID, e.Status, e.LinkActive, e.Capacity,
		e.DateStart, e.DateEnd, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func scanEvent(scan func(dest ...interface{}) error) (*domain.Event, error) {
	e := &domain.Event{}
	err := scan(&e.ID, &e.Name, &e.Description, &e.Venue, &e.OrganizerID, &e.Status, &e.LinkActive, &e.Capacity,
		&e.DateStart, &e.DateEnd, &e.CancelledAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.DB.QueryRowContext(ctx, query, id).Scan)
}

func (r *eventRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE organizer_id = $1
		   OR id IN (SELECT event_id FROM event_team_members WHERE user_id = $1)
		ORDER BY date_start DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, eventID string, upd domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	appendSet := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if upd.Name != nil {
		appendSet("name", *upd.Name)
	}
	if upd.Description != nil {
		appendSet("description", *upd.Description)
	}
	if upd.Venue != nil {
		appendSet("venue", *upd.Venue)
	}
	if upd.Capacity != nil {
		appendSet("capacity", *upd.Capacity)
	}
	if upd.DateStart != nil {
		appendSet("date_start", *upd.DateStart)
	}
	if upd.DateEnd != nil {
		appendSet("date_end", *upd.DateEnd)
	}
	args = append(args, eventID)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	return scanEvent(r.DB.QueryRowContext(ctx, query, args...).Scan)
}

func (r *eventRepository) UpdateStatus(ctx context.Context, eventID string, status domain.EventStatus) error {
	query := `UPDATE events SET status = $2, updated_at = NOW() WHERE id = $1`
	return r.execExpectingRow(ctx, query, eventID, status)
}

func (r *eventRepository) SetLinkActive(ctx context.Context, eventID string, active bool) error {
	query := `UPDATE events SET link_active = $2, updated_at = NOW() WHERE id = $1`
	return r.execExpectingRow(ctx, query, eventID, active)
}

func (r *eventRepository) SetCancelledAt(ctx context.Context, eventID string, at time.Time) error {
	query := `UPDATE events SET cancelled_at = $2, updated_at = NOW() WHERE id = $1`
	return r.execExpectingRow(ctx, query, eventID, at)
}

func (r *eventRepository) execExpectingRow(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.DB.ExecContext(ctx, query, args...)
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
