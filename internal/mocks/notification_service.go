package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"lunch-order/internal/domain"
)

type NotificationService struct {
	mock.Mock
}

func (m *NotificationService) Notify(ctx context.Context, category domain.Category, message string, userID uuid.UUID) (domain.DeliveryResult, error) {
	args := m.Called(ctx, category, message, userID)
	return args.Get(0).(domain.DeliveryResult), args.Error(1)
}

func (m *NotificationService) Broadcast(ctx context.Context, category domain.Category, message string) (*domain.Notification, error) {
	args := m.Called(ctx, category, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *NotificationService) NotifyUsers(ctx context.Context, category domain.Category, message string, userIDs []uuid.UUID) (domain.BulkResult, error) {
	args := m.Called(ctx, category, message, userIDs)
	return args.Get(0).(domain.BulkResult), args.Error(1)
}

func (m *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *NotificationService) ListSince(ctx context.Context, userID uuid.UUID, since time.Time, exclude []uuid.UUID, limit int) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, since, exclude, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationService) SetRead(ctx context.Context, id uuid.UUID, userID uuid.UUID, read bool) (*domain.Notification, error) {
	args := m.Called(ctx, id, userID, read)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (domain.MarkAllResult, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.MarkAllResult), args.Error(1)
}

func (m *NotificationService) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
