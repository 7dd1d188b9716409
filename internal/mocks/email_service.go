package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lunch-order/internal/domain"
)

type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendNotificationEmail(ctx context.Context, toEmail, recipientName string, category domain.Category, message string) error {
	args := m.Called(ctx, toEmail, recipientName, category, message)
	return args.Error(0)
}

func (m *EmailService) SendInviteEmail(ctx context.Context, toEmail, inviterName, inviteToken string) error {
	args := m.Called(ctx, toEmail, inviterName, inviteToken)
	return args.Error(0)
}
