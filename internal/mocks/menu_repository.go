package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lunch-order/internal/domain"
)

type MenuRepository struct {
	mock.Mock
}

func (m *MenuRepository) Upsert(ctx context.Context, menu *domain.Menu) error {
	args := m.Called(ctx, menu)
	return args.Error(0)
}

func (m *MenuRepository) GetByDate(ctx context.Context, serviceDate string) (*domain.Menu, error) {
	args := m.Called(ctx, serviceDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Menu), args.Error(1)
}

func (m *MenuRepository) SetImage(ctx context.Context, serviceDate string, imageKey string) error {
	args := m.Called(ctx, serviceDate, imageKey)
	return args.Error(0)
}
