package preference_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunch-order/internal/domain"
	"lunch-order/internal/mocks"
	"lunch-order/internal/service/preference"
)

func TestPreferenceService_Get(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Success", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		svc := preference.NewService(repo, nil, logger)
		prefs := domain.DefaultPreferences()
		repo.On("GetPreferences", ctx, userID).Return(&prefs, nil).Once()

		got, err := svc.Get(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, prefs, *got)
	})

	t.Run("Unknown user", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		svc := preference.NewService(repo, nil, logger)
		repo.On("GetPreferences", ctx, userID).Return(nil, nil).Once()

		_, err := svc.Get(ctx, userID)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPreferenceService_Update(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	on, off := true, false
	method, freq := "email", "all"

	input := domain.UpdatePreferencesInput{
		OrderReminders:     &on,
		OrderConfirmations: &on,
		OrderModifications: &on,
		MenuUpdates:        &off,
		DeliveryMethod:     &method,
		Frequency:          &freq,
	}
	want := domain.NotificationPreferences{
		OrderReminders:     true,
		OrderConfirmations: true,
		OrderModifications: true,
		MenuUpdates:        false,
		DeliveryMethod:     domain.DeliveryEmail,
		Frequency:          domain.FrequencyAll,
	}

	t.Run("Success", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		svc := preference.NewService(repo, nil, logger)
		repo.On("UpdatePreferences", ctx, userID, want).Return(nil).Once()

		got, err := svc.Update(ctx, userID, input)

		require.NoError(t, err)
		assert.Equal(t, want, *got)
		repo.AssertExpectations(t)
	})

	t.Run("Invalid input is not persisted", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		svc := preference.NewService(repo, nil, logger)
		bad := "sometimes"
		invalid := input
		invalid.Frequency = &bad

		_, err := svc.Update(ctx, userID, invalid)

		assert.ErrorIs(t, err, domain.ErrValidation)
		repo.AssertNumberOfCalls(t, "UpdatePreferences", 0)
	})

	t.Run("Unknown user", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		svc := preference.NewService(repo, nil, logger)
		repo.On("UpdatePreferences", ctx, userID, want).Return(domain.ErrNotFound).Once()

		_, err := svc.Update(ctx, userID, input)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
