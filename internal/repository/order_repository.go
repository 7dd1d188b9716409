package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"lunch-order/internal/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByUserAndDate(ctx context.Context, userID uuid.UUID, serviceDate string) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.Order, int64, error)
	ListByDate(ctx context.Context, serviceDate string) ([]domain.Order, error)
}

type orderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (order_id, user_id, menu_id, service_date, items, note, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		order.ID, order.UserID, order.MenuID, order.ServiceDate, order.Items, order.Note, order.Status,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	query := `SELECT * FROM orders WHERE order_id = $1`

	err := r.db.GetContext(ctx, &order, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByUserAndDate(ctx context.Context, userID uuid.UUID, serviceDate string) (*domain.Order, error) {
	var order domain.Order
	query := `SELECT * FROM orders WHERE user_id = $1 AND service_date = $2`

	err := r.db.GetContext(ctx, &order, query, userID, serviceDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders SET items = $2, note = $3, status = $4, updated_at = NOW()
		WHERE order_id = $1
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query, order.ID, order.Items, order.Note, order.Status).Scan(&order.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.Order, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM orders WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, err
	}

	orders := []domain.Order{}
	query := `
		SELECT * FROM orders
		WHERE user_id = $1
		ORDER BY service_date DESC
		LIMIT $2 OFFSET $3`
	err := r.db.SelectContext(ctx, &orders, query, userID, params.PageSize, params.Offset())
	return orders, total, err
}

func (r *orderRepository) ListByDate(ctx context.Context, serviceDate string) ([]domain.Order, error) {
	orders := []domain.Order{}
	query := `SELECT * FROM orders WHERE service_date = $1 ORDER BY created_at`
	err := r.db.SelectContext(ctx, &orders, query, serviceDate)
	return orders, err
}
