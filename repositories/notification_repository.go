package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/clubratings/club-ratings/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string, onlyUnread bool, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id int, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id int, userID string) error
	DeleteAll(ctx context.Context, userID string) (int64, error)
}

type postgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	payload := notification.Payload
	if len(payload) == 0 {
		payload = []byte(`{}`)
	}

	query := `
		INSERT INTO notifications (user_id, type, message, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, read, created_at`

	return r.db.QueryRowContext(ctx, query,
		notification.UserID,
		notification.Type,
		notification.Message,
		[]byte(payload),
	).Scan(&notification.ID, &notification.Read, &notification.CreatedAt)
}

func (r *postgresNotificationRepository) ListByUser(ctx context.Context, userID string, onlyUnread bool, limit int) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, type, message, payload, read, created_at, read_at
		FROM notifications
		WHERE user_id = $1`
	if onlyUnread {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		var payload []byte
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Type,
			&n.Message,
			&payload,
			&n.Read,
			&n.CreatedAt,
			&n.ReadAt,
		); err != nil {
			return nil, err
		}
		n.Payload = payload
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *postgresNotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`,
		userID,
	).Scan(&count)
	return count, err
}

// MarkRead помечает уведомление прочитанным; userID защищает от чужих записей.
func (r *postgresNotificationRepository) MarkRead(ctx context.Context, id int, userID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET read = TRUE, read_at = now()
		WHERE id = $1 AND user_id = $2 AND read = FALSE`,
		id, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrNotificationNotFound)
}

func (r *postgresNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET read = TRUE, read_at = now()
		WHERE user_id = $1 AND read = FALSE`,
		userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresNotificationRepository) Delete(ctx context.Context, id int, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrNotificationNotFound)
}

func (r *postgresNotificationRepository) DeleteAll(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE user_id = $1`,
		userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
