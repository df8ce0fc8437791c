package adapters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"digo-dashboard/internal/features/notifications/domain"
)

// PostgresNotificationRepository implements ports.NotificationRepository.
type PostgresNotificationRepository struct {
	db *sqlx.DB
}

func NewPostgresNotificationRepository(db *sqlx.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

const notificationColumns = `id, title, message, type, from_user_id, to_user_id, company_id, area_id, priority, read, created_at, read_at`

func (r *PostgresNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
        INSERT INTO notifications (title, message, type, from_user_id, to_user_id, company_id, area_id, priority, read, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, NOW())
        RETURNING id, created_at
    `
	return r.db.QueryRowContext(ctx, query,
		n.Title,
		n.Message,
		n.Type,
		n.FromUserID,
		n.ToUserID,
		n.CompanyID,
		n.AreaID,
		n.Priority,
	).Scan(&n.ID, &n.CreatedAt)
}

func (r *PostgresNotificationRepository) ListForUser(ctx context.Context, userID int) ([]domain.Notification, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM notifications
        WHERE to_user_id = $1 OR to_user_id IS NULL
        ORDER BY created_at DESC
    `, notificationColumns)

	notifications := []domain.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, userID); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *PostgresNotificationRepository) GetByID(ctx context.Context, id int) (*domain.Notification, error) {
	var n domain.Notification
	query := fmt.Sprintf(`SELECT %s FROM notifications WHERE id = $1`, notificationColumns)

	err := r.db.GetContext(ctx, &n, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, id int) error {
	query := `UPDATE notifications SET read = true, read_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
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

func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, userID int) error {
	query := `
        UPDATE notifications SET read = true, read_at = NOW()
        WHERE read = false AND (to_user_id = $1 OR to_user_id IS NULL)
    `
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

func (r *PostgresNotificationRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
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
