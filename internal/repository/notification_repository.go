package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"lunch-order/internal/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, notif *domain.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	// ListForRecipient returns the caller's own rows plus broadcast rows that
	// pass vis, newest first, with limit applied after filtering.
	ListForRecipient(ctx context.Context, userID uuid.UUID, vis domain.Visibility, unreadOnly bool, limit int) ([]domain.Notification, error)
	// ListSince returns visible rows with created_at >= since, oldest first,
	// skipping the given ids.
	ListSince(ctx context.Context, userID uuid.UUID, vis domain.Visibility, since time.Time, exclude []uuid.UUID, limit int) ([]domain.Notification, error)
	SetRead(ctx context.Context, id uuid.UUID, read bool) (*domain.Notification, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID, vis domain.Visibility) (int64, error)
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

const visibleToRecipient = `
	((user_id = $1 AND category = ANY($2)) OR (user_id IS NULL AND category = ANY($3)))`

func (r *notificationRepository) Create(ctx context.Context, notif *domain.Notification) error {
	query := `
		INSERT INTO notifications (notification_id, user_id, category, message, is_read)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		notif.ID, notif.UserID, notif.Category, notif.Message, notif.IsRead,
	).Scan(&notif.CreatedAt)
}

func (r *notificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var notif domain.Notification
	query := `SELECT * FROM notifications WHERE notification_id = $1`

	err := r.db.GetContext(ctx, &notif, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notif, nil
}

func (r *notificationRepository) ListForRecipient(ctx context.Context, userID uuid.UUID, vis domain.Visibility, unreadOnly bool, limit int) ([]domain.Notification, error) {
	notifications := []domain.Notification{}
	query := `
		SELECT * FROM notifications
		WHERE` + visibleToRecipient + `
		AND ($4 = FALSE OR is_read = FALSE)
		ORDER BY created_at DESC, notification_id DESC
		LIMIT $5`

	err := r.db.SelectContext(ctx, &notifications, query,
		userID, pq.Array(vis.ScopedStrings()), pq.Array(vis.BroadcastStrings()), unreadOnly, limit,
	)
	return notifications, err
}

func (r *notificationRepository) ListSince(ctx context.Context, userID uuid.UUID, vis domain.Visibility, since time.Time, exclude []uuid.UUID, limit int) ([]domain.Notification, error) {
	excluded := make([]string, len(exclude))
	for i, id := range exclude {
		excluded[i] = id.String()
	}

	notifications := []domain.Notification{}
	query := `
		SELECT * FROM notifications
		WHERE` + visibleToRecipient + `
		AND created_at >= $4
		AND NOT (notification_id::text = ANY($5))
		ORDER BY created_at ASC, notification_id ASC
		LIMIT $6`

	err := r.db.SelectContext(ctx, &notifications, query,
		userID, pq.Array(vis.ScopedStrings()), pq.Array(vis.BroadcastStrings()), since, pq.Array(excluded), limit,
	)
	return notifications, err
}

func (r *notificationRepository) SetRead(ctx context.Context, id uuid.UUID, read bool) (*domain.Notification, error) {
	var notif domain.Notification
	query := `UPDATE notifications SET is_read = $2 WHERE notification_id = $1 RETURNING *`

	err := r.db.GetContext(ctx, &notif, query, id, read)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notif, nil
}

func (r *notificationRepository) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	query := `DELETE FROM notifications WHERE notification_id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID, vis domain.Visibility) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM notifications WHERE` + visibleToRecipient + ` AND is_read = FALSE`

	err := r.db.GetContext(ctx, &count, query,
		userID, pq.Array(vis.ScopedStrings()), pq.Array(vis.BroadcastStrings()),
	)
	return count, err
}
