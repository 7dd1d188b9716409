package preference

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"lunch-order/internal/domain"
	"lunch-order/internal/repository"
)

const cacheTTL = 5 * time.Minute

type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreferences, error)
	Update(ctx context.Context, userID uuid.UUID, input domain.UpdatePreferencesInput) (*domain.NotificationPreferences, error)
}

type service struct {
	userRepo repository.UserRepository
	redis    *redis.Client
	logger   *slog.Logger
}

func NewService(userRepo repository.UserRepository, redis *redis.Client, logger *slog.Logger) Service {
	return &service{
		userRepo: userRepo,
		redis:    redis,
		logger:   logger.With("component", "preference"),
	}
}

func cacheKey(userID uuid.UUID) string {
	return "user:prefs:" + userID.String()
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreferences, error) {
	key := cacheKey(userID)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, key).Result(); err == nil {
			var prefs domain.NotificationPreferences
			if json.Unmarshal([]byte(cached), &prefs) == nil {
				return &prefs, nil
			}
		}
	}

	prefs, err := s.userRepo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	if prefs == nil {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
	}

	if s.redis != nil {
		if data, err := json.Marshal(prefs); err == nil {
			_ = s.redis.Set(ctx, key, data, cacheTTL).Err()
		}
	}

	return prefs, nil
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, input domain.UpdatePreferencesInput) (*domain.NotificationPreferences, error) {
	prefs, err := input.ToPreferences()
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdatePreferences(ctx, userID, prefs); err != nil {
		return nil, err
	}

	if s.redis != nil {
		if err := s.redis.Del(ctx, cacheKey(userID)).Err(); err != nil {
			s.logger.Warn("failed to invalidate preference cache", "user_id", userID, "error", err)
		}
	}

	return &prefs, nil
}
