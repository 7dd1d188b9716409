package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"lunch-order/internal/domain"
)

type MenuRepository interface {
	Upsert(ctx context.Context, menu *domain.Menu) error
	GetByDate(ctx context.Context, serviceDate string) (*domain.Menu, error)
	SetImage(ctx context.Context, serviceDate string, imageKey string) error
}

type menuRepository struct {
	db *sqlx.DB
}

func NewMenuRepository(db *sqlx.DB) MenuRepository {
	return &menuRepository{db: db}
}

// Upsert inserts the menu for its service date or replaces the items and
// cutoff of the existing one. menu.ID is replaced by the stored id.
func (r *menuRepository) Upsert(ctx context.Context, menu *domain.Menu) error {
	query := `
		INSERT INTO menus (menu_id, service_date, items, order_cutoff, created_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (service_date) DO UPDATE
		SET items = EXCLUDED.items, order_cutoff = EXCLUDED.order_cutoff, updated_at = NOW()
		RETURNING menu_id, image_key, created_by, published_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		menu.ID, menu.ServiceDate, menu.Items, menu.OrderCutoff, menu.CreatedBy,
	).Scan(&menu.ID, &menu.ImageKey, &menu.CreatedBy, &menu.PublishedAt, &menu.UpdatedAt)
}

func (r *menuRepository) GetByDate(ctx context.Context, serviceDate string) (*domain.Menu, error) {
	var menu domain.Menu
	query := `SELECT * FROM menus WHERE service_date = $1`

	err := r.db.GetContext(ctx, &menu, query, serviceDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

func (r *menuRepository) SetImage(ctx context.Context, serviceDate string, imageKey string) error {
	query := `UPDATE menus SET image_key = $2, updated_at = NOW() WHERE service_date = $1`
	res, err := r.db.ExecContext(ctx, query, serviceDate, imageKey)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
