package order

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"lunch-order/internal/config"
	"lunch-order/internal/domain"
	"lunch-order/internal/pkg/i18n"
	"lunch-order/internal/repository"
	"lunch-order/internal/service/notification"
)

type Service interface {
	Place(ctx context.Context, userID uuid.UUID, input domain.PlaceOrderInput) (*domain.Order, error)
	Modify(ctx context.Context, userID, orderID uuid.UUID, input domain.ModifyOrderInput) (*domain.Order, error)
	ListMine(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Order], error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, input domain.UpdateOrderStatusInput) (*domain.Order, error)
	SendReminders(ctx context.Context, serviceDate string) (domain.BulkResult, error)
}

type service struct {
	orderRepo repository.OrderRepository
	menuRepo  repository.MenuRepository
	userRepo  repository.UserRepository
	notifSvc  notification.Service
	catalog   *i18n.Catalog
	cfg       *config.Config
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(
	orderRepo repository.OrderRepository,
	menuRepo repository.MenuRepository,
	userRepo repository.UserRepository,
	notifSvc notification.Service,
	catalog *i18n.Catalog,
	cfg *config.Config,
	logger *slog.Logger,
) Service {
	return &service{
		orderRepo: orderRepo,
		menuRepo:  menuRepo,
		userRepo:  userRepo,
		notifSvc:  notifSvc,
		catalog:   catalog,
		cfg:       cfg,
		logger:    logger.With("component", "order"),
		now:       time.Now,
	}
}

func (s *service) openMenu(ctx context.Context, serviceDate string) (*domain.Menu, error) {
	menu, err := s.menuRepo.GetByDate(ctx, serviceDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}
	if menu == nil {
		return nil, fmt.Errorf("%w: no menu for %s", domain.ErrNotFound, serviceDate)
	}
	if !menu.IsOpen(s.now()) {
		return nil, fmt.Errorf("%w: ordering for %s is closed", domain.ErrConflict, serviceDate)
	}
	return menu, nil
}

// Place creates the user's order for a date. A cancelled order for the same
// date is reopened instead of duplicated.
func (s *service) Place(ctx context.Context, userID uuid.UUID, input domain.PlaceOrderInput) (*domain.Order, error) {
	date, err := domain.ParseServiceDate(input.ServiceDate)
	if err != nil {
		return nil, err
	}

	menu, err := s.openMenu(ctx, date)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateOrderItems(menu, input.Items); err != nil {
		return nil, err
	}

	existing, err := s.orderRepo.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if existing != nil {
		if existing.Status != domain.OrderCancelled {
			return nil, fmt.Errorf("%w: an order for %s already exists", domain.ErrConflict, date)
		}
		existing.MenuID = menu.ID
		existing.Items = input.Items
		existing.Note = input.Note
		existing.Status = domain.OrderPending
		if err := s.orderRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to reopen order: %w", err)
		}
		return existing, nil
	}

	order := &domain.Order{
		ID:          uuid.New(),
		UserID:      userID,
		MenuID:      menu.ID,
		ServiceDate: date,
		Items:       input.Items,
		Note:        input.Note,
		Status:      domain.OrderPending,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("order placed", "order_id", order.ID, "user_id", userID, "service_date", date)
	return order, nil
}

func (s *service) Modify(ctx context.Context, userID, orderID uuid.UUID, input domain.ModifyOrderInput) (*domain.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order belongs to another user", domain.ErrForbidden)
	}
	if !order.Status.Editable() {
		return nil, fmt.Errorf("%w: %s orders cannot be changed", domain.ErrConflict, order.Status)
	}

	menu, err := s.openMenu(ctx, order.ServiceDate)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateOrderItems(menu, input.Items); err != nil {
		return nil, err
	}

	order.Items = input.Items
	order.Note = input.Note
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return order, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Order], error) {
	params.Validate()

	orders, total, err := s.orderRepo.ListByUser(ctx, userID, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Order]{}, err
	}
	return domain.NewPaginatedResponse(orders, params, total), nil
}

// UpdateStatus is the kitchen's side of an order. Every change is reported to
// the order's owner; notification failures are logged and never undo the
// status change.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, input domain.UpdateOrderStatusInput) (*domain.Order, error) {
	status := domain.OrderStatus(strings.ToLower(strings.TrimSpace(input.Status)))
	if !status.IsValid() || status == domain.OrderPending {
		return nil, fmt.Errorf("%w: invalid order status %q", domain.ErrValidation, input.Status)
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == status {
		return order, nil
	}

	order.Status = status
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	category, message := s.statusMessage(order, strings.TrimSpace(input.Reason))
	if _, err := s.notifSvc.Notify(ctx, category, message, order.UserID); err != nil {
		s.logger.Error("failed to notify order status change", "order_id", order.ID, "status", status, "error", err)
	}

	return order, nil
}

func (s *service) statusMessage(order *domain.Order, reason string) (domain.Category, string) {
	locale := s.cfg.Locale
	switch order.Status {
	case domain.OrderConfirmed:
		return domain.CategoryConfirmed, s.catalog.Format(locale, "ORDER_CONFIRMED", order.ServiceDate)
	case domain.OrderDelivered:
		return domain.CategoryConfirmed, s.catalog.Format(locale, "ORDER_DELIVERED", order.ServiceDate)
	case domain.OrderCancelled:
		return domain.CategoryModified, s.catalog.Format(locale, "ORDER_CANCELLED", order.ServiceDate)
	default:
		if reason != "" {
			return domain.CategoryModified, s.catalog.Format(locale, "ORDER_MODIFIED_REASON", order.ServiceDate, reason)
		}
		return domain.CategoryModified, s.catalog.Format(locale, "ORDER_MODIFIED", order.ServiceDate)
	}
}

// SendReminders notifies every active user who has not ordered for the date.
func (s *service) SendReminders(ctx context.Context, serviceDate string) (domain.BulkResult, error) {
	date, err := domain.ParseServiceDate(serviceDate)
	if err != nil {
		return domain.BulkResult{}, err
	}

	if _, err := s.openMenu(ctx, date); err != nil {
		return domain.BulkResult{}, err
	}

	users, err := s.userRepo.ListWithoutOrder(ctx, date)
	if err != nil {
		return domain.BulkResult{}, fmt.Errorf("failed to list users without an order: %w", err)
	}

	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	message := s.catalog.Format(s.cfg.Locale, "ORDER_REMINDER", date)
	result, err := s.notifSvc.NotifyUsers(ctx, domain.CategoryReminder, message, ids)
	if err != nil {
		return domain.BulkResult{}, err
	}

	s.logger.Info("order reminders sent", "service_date", date, "delivered", result.Delivered, "skipped", result.Skipped, "failed", len(result.Failed))
	return result, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
	}
	return order, nil
}
