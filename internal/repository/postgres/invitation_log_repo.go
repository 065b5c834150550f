package postgres

import (
	"context"
	"database/sql"

	"doorlist/internal/domain"
)

type invitationLogRepository struct {
	DB *sql.DB
}

func NewInvitationLogRepository(db *sql.DB) domain.InvitationLogRepository {
	return &invitationLogRepository{DB: db}
}

func (r *invitationLogRepository) Create(ctx context.Context, l *domain.InvitationLog) error {
	query := `
		INSERT INTO invitation_logs (event_id, contact_id, message_type, channel, status, provider_message_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		l.EventID, l.ContactID, l.MessageType, l.Channel, l.Status, l.ProviderMessageID, l.CreatedAt, l.UpdatedAt,
	).Scan(&l.ID)
}

func (r *invitationLogRepository) UpdateStatusByProviderMessageID(ctx context.Context, providerMessageID string, status domain.MessageStatus) error {
	query := `UPDATE invitation_logs SET status = $2, updated_at = NOW() WHERE provider_message_id = $1`
	result, err := r.DB.ExecContext(ctx, query, providerMessageID, status)
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

func (r *invitationLogRepository) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.InvitationLog, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM invitation_logs WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT id, event_id, contact_id, message_type, channel, status, provider_message_id, created_at, updated_at
		FROM invitation_logs
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	logs := make([]*domain.InvitationLog, 0)
	for rows.Next() {
		l := &domain.InvitationLog{}
		if err := rows.Scan(&l.ID, &l.EventID, &l.ContactID, &l.MessageType, &l.Channel, &l.Status, &l.ProviderMessageID, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, 0, err
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}
