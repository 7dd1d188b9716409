package order_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lunch-order/internal/config"
	"lunch-order/internal/domain"
	"lunch-order/internal/mocks"
	"lunch-order/internal/pkg/i18n"
	"lunch-order/internal/service/order"
)

const serviceDate = "2026-03-02"

type orderFixture struct {
	orders *mocks.OrderRepository
	menus  *mocks.MenuRepository
	users  *mocks.UserRepository
	notif  *mocks.NotificationService
	svc    order.Service
}

func newOrderFixture(t *testing.T) *orderFixture {
	catalog, err := i18n.Default()
	require.NoError(t, err)

	f := &orderFixture{
		orders: new(mocks.OrderRepository),
		menus:  new(mocks.MenuRepository),
		users:  new(mocks.UserRepository),
		notif:  new(mocks.NotificationService),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = order.NewService(f.orders, f.menus, f.users, f.notif, catalog, &config.Config{Locale: "en"}, logger)
	return f
}

func openMenu() *domain.Menu {
	return &domain.Menu{
		ID:          uuid.New(),
		ServiceDate: serviceDate,
		Items:       domain.MenuItems{{ID: "soup", Name: "Soup", Available: true}},
	}
}

func TestOrderService_Place(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	input := domain.PlaceOrderInput{ServiceDate: serviceDate, Items: []domain.OrderItem{{MenuItemID: "soup", Quantity: 1}}}

	t.Run("Success", func(t *testing.T) {
		f := newOrderFixture(t)
		f.menus.On("GetByDate", ctx, serviceDate).Return(openMenu(), nil).Once()
		f.orders.On("GetByUserAndDate", ctx, userID, serviceDate).Return(nil, nil).Once()
		f.orders.On("Create", ctx, mock.MatchedBy(func(o *domain.Order) bool {
			return o.UserID == userID && o.Status == domain.OrderPending
		})).Return(nil).Once()

		o, err := f.svc.Place(ctx, userID, input)

		require.NoError(t, err)
		assert.Equal(t, domain.OrderPending, o.Status)
	})

	t.Run("Item not on the menu", func(t *testing.T) {
		f := newOrderFixture(t)
		f.menus.On("GetByDate", ctx, serviceDate).Return(openMenu(), nil).Once()
		bad := input
		bad.Items = []domain.OrderItem{{MenuItemID: "steak", Quantity: 1}}

		_, err := f.svc.Place(ctx, userID, bad)

		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Ordering closed", func(t *testing.T) {
		f := newOrderFixture(t)
		closed := openMenu()
		cutoff := time.Now().Add(-time.Hour)
		closed.OrderCutoff = &cutoff
		f.menus.On("GetByDate", ctx, serviceDate).Return(closed, nil).Once()

		_, err := f.svc.Place(ctx, userID, input)

		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("Duplicate order", func(t *testing.T) {
		f := newOrderFixture(t)
		f.menus.On("GetByDate", ctx, serviceDate).Return(openMenu(), nil).Once()
		f.orders.On("GetByUserAndDate", ctx, userID, serviceDate).
			Return(&domain.Order{ID: uuid.New(), Status: domain.OrderConfirmed}, nil).Once()

		_, err := f.svc.Place(ctx, userID, input)

		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("Cancelled order is reopened", func(t *testing.T) {
		f := newOrderFixture(t)
		cancelled := &domain.Order{ID: uuid.New(), UserID: userID, ServiceDate: serviceDate, Status: domain.OrderCancelled}
		f.menus.On("GetByDate", ctx, serviceDate).Return(openMenu(), nil).Once()
		f.orders.On("GetByUserAndDate", ctx, userID, serviceDate).Return(cancelled, nil).Once()
		f.orders.On("Update", ctx, cancelled).Return(nil).Once()

		o, err := f.svc.Place(ctx, userID, input)

		require.NoError(t, err)
		assert.Equal(t, cancelled.ID, o.ID)
		assert.Equal(t, domain.OrderPending, o.Status)
	})
}

func TestOrderService_Modify(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	orderID := uuid.New()
	input := domain.ModifyOrderInput{Items: []domain.OrderItem{{MenuItemID: "soup", Quantity: 2}}}

	t.Run("Owner changes a pending order", func(t *testing.T) {
		f := newOrderFixture(t)
		existing := &domain.Order{ID: orderID, UserID: userID, ServiceDate: serviceDate, Status: domain.OrderPending}
		f.orders.On("GetByID", ctx, orderID).Return(existing, nil).Once()
		f.menus.On("GetByDate", ctx, serviceDate).Return(openMenu(), nil).Once()
		f.orders.On("Update", ctx, existing).Return(nil).Once()

		o, err := f.svc.Modify(ctx, userID, orderID, input)

		require.NoError(t, err)
		assert.Equal(t, 2, o.Items[0].Quantity)
	})

	t.Run("Someone else's order", func(t *testing.T) {
		f := newOrderFixture(t)
		f.orders.On("GetByID", ctx, orderID).Return(&domain.Order{ID: orderID, UserID: uuid.New(), Status: domain.OrderPending}, nil).Once()

		_, err := f.svc.Modify(ctx, userID, orderID, input)

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Confirmed order is locked", func(t *testing.T) {
		f := newOrderFixture(t)
		f.orders.On("GetByID", ctx, orderID).Return(&domain.Order{ID: orderID, UserID: userID, Status: domain.OrderConfirmed}, nil).Once()

		_, err := f.svc.Modify(ctx, userID, orderID, input)

		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	orderID := uuid.New()

	pending := func() *domain.Order {
		return &domain.Order{ID: orderID, UserID: userID, ServiceDate: serviceDate, Status: domain.OrderPending}
	}

	t.Run("Confirmation notifies the owner", func(t *testing.T) {
		f := newOrderFixture(t)
		f.orders.On("GetByID", ctx, orderID).Return(pending(), nil).Once()
		f.orders.On("Update", ctx, mock.Anything).Return(nil).Once()
		f.notif.On("Notify", ctx, domain.CategoryConfirmed, "Your lunch order for 2026-03-02 has been confirmed.", userID).
			Return(domain.DeliveryResult{InApp: true}, nil).Once()

		o, err := f.svc.UpdateStatus(ctx, orderID, domain.UpdateOrderStatusInput{Status: "confirmed"})

		require.NoError(t, err)
		assert.Equal(t, domain.OrderConfirmed, o.Status)
		f.notif.AssertExpectations(t)
	})

	t.Run("Modification with a reason", func(t *testing.T) {
		f := newOrderFixture(t)
		f.orders.On("GetByID", ctx, orderID).Return(pending(), nil).Once()
		f.orders.On("Update", ctx, mock.Anything).Return(nil).Once()
		f.notif.On("Notify", ctx, domain.CategoryModified, "Your lunch order for 2026-03-02 was changed by the kitchen: soup sold out", userID).
			Return(domain.DeliveryResult{}, nil).Once()

		_, err := f.svc.UpdateStatus(ctx, orderID, domain.UpdateOrderStatusInput{Status: "modified", Reason: "soup sold out"})

		require.NoError(t, err)
		f.notif.AssertExpectations(t)
	})

	t.Run("Notification failure is swallowed", func(t *testing.T) {
		f := newOrderFixture(t)
		f.orders.On("GetByID", ctx, orderID).Return(pending(), nil).Once()
		f.orders.On("Update", ctx, mock.Anything).Return(nil).Once()
		f.notif.On("Notify", ctx, domain.CategoryModified, mock.Anything, userID).
			Return(domain.DeliveryResult{}, errors.New("db down")).Once()

		o, err := f.svc.UpdateStatus(ctx, orderID, domain.UpdateOrderStatusInput{Status: "cancelled"})

		require.NoError(t, err)
		assert.Equal(t, domain.OrderCancelled, o.Status)
	})

	t.Run("Unchanged status sends nothing", func(t *testing.T) {
		f := newOrderFixture(t)
		confirmed := pending()
		confirmed.Status = domain.OrderConfirmed
		f.orders.On("GetByID", ctx, orderID).Return(confirmed, nil).Once()

		_, err := f.svc.UpdateStatus(ctx, orderID, domain.UpdateOrderStatusInput{Status: "confirmed"})

		require.NoError(t, err)
		f.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.notif.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown status", func(t *testing.T) {
		f := newOrderFixture(t)

		_, err := f.svc.UpdateStatus(ctx, orderID, domain.UpdateOrderStatusInput{Status: "eaten"})

		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestOrderService_SendReminders(t *testing.T) {
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	f := newOrderFixture(t)
	f.menus.On("GetByDate", ctx, serviceDate).Return(openMenu(), nil).Once()
	f.users.On("ListWithoutOrder", ctx, serviceDate).Return([]domain.User{{ID: a}, {ID: b}}, nil).Once()
	f.notif.On("NotifyUsers", ctx, domain.CategoryReminder, "Don't forget to order lunch for 2026-03-02.", []uuid.UUID{a, b}).
		Return(domain.BulkResult{Delivered: 1, Skipped: 1, Failed: []uuid.UUID{}}, nil).Once()

	res, err := f.svc.SendReminders(ctx, serviceDate)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Delivered)
	assert.Equal(t, 1, res.Skipped)
	f.notif.AssertExpectations(t)
}
