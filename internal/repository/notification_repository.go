package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListForUser(ctx context.Context, userID string, departmentID *string, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (ticket_id, recipient_user_id, recipient_department_id, kind, title, message)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		n.TicketID,
		n.RecipientUserID,
		n.RecipientDepartmentID,
		n.Kind,
		n.Title,
		n.Message,
	).Scan(&n.ID, &n.CreatedAt)
}

// ListForUser returns notifications addressed to the user directly or to
// the user's department.
func (r *notificationRepository) ListForUser(ctx context.Context, userID string, departmentID *string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, ticket_id, recipient_user_id, recipient_department_id, kind, title, message, is_read, created_at
        FROM notifications
        WHERE recipient_user_id=$1 OR ($2::text IS NOT NULL AND recipient_department_id=$2)
        ORDER BY created_at DESC LIMIT $3`
	rows, err := r.pool.Query(ctx, query, userID, departmentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.TicketID,
			&n.RecipientUserID,
			&n.RecipientDepartmentID,
			&n.Kind,
			&n.Title,
			&n.Message,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	const query = `UPDATE notifications SET is_read=TRUE WHERE id=$1 AND recipient_user_id=$2`
	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
