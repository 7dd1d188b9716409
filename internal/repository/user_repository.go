package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"lunch-order/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListActive(ctx context.Context) ([]domain.User, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error)
	ListWithoutOrder(ctx context.Context, serviceDate string) ([]domain.User, error)
	GetPreferences(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreferences, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, prefs domain.NotificationPreferences) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (
			user_id, email, password_hash, full_name, role, is_active,
			order_reminders, order_confirmations, order_modifications, menu_updates,
			delivery_method, frequency
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	p := user.NotificationPreferences
	return r.db.QueryRowxContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FullName, user.Role, user.IsActive,
		p.OrderReminders, p.OrderConfirmations, p.OrderModifications, p.MenuUpdates,
		p.DeliveryMethod, p.Frequency,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `SELECT * FROM users WHERE user_id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	query := `SELECT * FROM users WHERE email = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND deleted_at IS NULL)`
	err := r.db.GetContext(ctx, &exists, query, email)
	return exists, err
}

func (r *userRepository) ListActive(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	query := `SELECT * FROM users WHERE is_active = TRUE AND deleted_at IS NULL ORDER BY created_at`

	err := r.db.SelectContext(ctx, &users, query)
	return users, err
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	users := []domain.User{}
	if len(ids) == 0 {
		return users, nil
	}

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	query := `SELECT * FROM users WHERE user_id::text = ANY($1) AND deleted_at IS NULL`
	err := r.db.SelectContext(ctx, &users, query, pq.Array(idStrings))
	return users, err
}

func (r *userRepository) ListWithoutOrder(ctx context.Context, serviceDate string) ([]domain.User, error) {
	users := []domain.User{}
	query := `
		SELECT u.* FROM users u
		WHERE u.is_active = TRUE AND u.deleted_at IS NULL
		AND NOT EXISTS (
			SELECT 1 FROM orders o
			WHERE o.user_id = u.user_id AND o.service_date = $1 AND o.status <> 'cancelled'
		)
		ORDER BY u.created_at`

	err := r.db.SelectContext(ctx, &users, query, serviceDate)
	return users, err
}

func (r *userRepository) GetPreferences(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreferences, error) {
	var prefs domain.NotificationPreferences
	query := `
		SELECT order_reminders, order_confirmations, order_modifications, menu_updates, delivery_method, frequency
		FROM users WHERE user_id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &prefs, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (r *userRepository) UpdatePreferences(ctx context.Context, userID uuid.UUID, prefs domain.NotificationPreferences) error {
	query := `
		UPDATE users
		SET order_reminders = $2, order_confirmations = $3, order_modifications = $4,
			menu_updates = $5, delivery_method = $6, frequency = $7, updated_at = NOW()
		WHERE user_id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, userID,
		prefs.OrderReminders, prefs.OrderConfirmations, prefs.OrderModifications,
		prefs.MenuUpdates, prefs.DeliveryMethod, prefs.Frequency,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
