package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"doorlist/internal/domain"
)

type eventTeamMemberRepository struct {
	DB *sql.DB
}

func NewEventTeamMemberRepository(db *sql.DB) domain.EventTeamMemberRepository {
	return &eventTeamMemberRepository{DB: db}
}

func (r *eventTeamMemberRepository) Add(ctx context.Context, eventID, userID string) error {
	query := `INSERT INTO event_team_members (event_id, user_id) VALUES ($1, $2)`
	_, err := r.DB.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return domain.ErrAlreadyMember
		}
		return err
	}
	return nil
}

func (r *eventTeamMemberRepository) IsMember(ctx context.Context, eventID, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM event_team_members WHERE event_id = $1 AND user_id = $2)`
	var exists bool
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).Scan(&exists)
	return exists, err
}

func (r *eventTeamMemberRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventTeamMember, error) {
	query := `
		SELECT m.event_id, m.user_id, u.name, u.last_name, u.email
		FROM event_team_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.event_id = $1
		ORDER BY u.last_name ASC, u.name ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := make([]*domain.EventTeamMember, 0)
	for rows.Next() {
		m := &domain.EventTeamMember{}
		if err := rows.Scan(&m.EventID, &m.UserID, &m.Name, &m.LastName, &m.Email); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *eventTeamMemberRepository) Remove(ctx context.Context, eventID, userID string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM event_team_members WHERE event_id = $1 AND user_id = $2`, eventID, userID)
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
