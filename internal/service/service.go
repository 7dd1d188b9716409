package service

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"lunch-order/internal/config"
	"lunch-order/internal/pkg/i18n"
	"lunch-order/internal/repository"
	"lunch-order/internal/service/auth"
	"lunch-order/internal/service/email"
	"lunch-order/internal/service/menu"
	"lunch-order/internal/service/notification"
	"lunch-order/internal/service/order"
	"lunch-order/internal/service/preference"
)

type Services struct {
	Auth         auth.Service
	Email        email.Service
	Preference   preference.Service
	Notification notification.Service
	Stream       *notification.StreamHub
	Menu         menu.Service
	Order        order.Service
}

// NewServices wires every service. redis and images may be nil; caching and
// menu images are then disabled.
func NewServices(
	repos *repository.Repositories,
	redis *redis.Client,
	images menu.ImageStore,
	catalog *i18n.Catalog,
	cfg *config.Config,
	logger *slog.Logger,
) *Services {
	emailService := email.NewService(cfg, logger)
	authService := auth.NewService(repos.User, repos.Session, repos.Invite, emailService, cfg, logger)
	preferenceService := preference.NewService(repos.User, redis, logger)
	notificationService := notification.NewService(repos.Notification, repos.User, preferenceService, emailService, cfg, logger)
	streamHub := notification.NewStreamHub(notificationService, notification.StreamConfig{
		TickInterval:      cfg.StreamTickInterval,
		HeartbeatInterval: cfg.StreamHeartbeatInterval,
		SnapshotSize:      cfg.StreamSnapshotSize,
	}, logger)
	menuService := menu.NewService(repos.Menu, notificationService, images, redis, catalog, cfg, logger)
	orderService := order.NewService(repos.Order, repos.Menu, repos.User, notificationService, catalog, cfg, logger)

	return &Services{
		Auth:         authService,
		Email:        emailService,
		Preference:   preferenceService,
		Notification: notificationService,
		Stream:       streamHub,
		Menu:         menuService,
		Order:        orderService,
	}
}
