package handler

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"lunch-order/internal/domain"
	"lunch-order/internal/service"
)

type Handlers struct {
	Auth         *AuthHandler
	Notification *NotificationHandler
	Preference   *PreferenceHandler
	Stream       *StreamHandler
	Menu         *MenuHandler
	Order        *OrderHandler
}

func NewHandlers(services *service.Services, logger *slog.Logger) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(services.Auth),
		Notification: NewNotificationHandler(services.Notification),
		Preference:   NewPreferenceHandler(services.Preference),
		Stream:       NewStreamHandler(services.Stream, logger),
		Menu:         NewMenuHandler(services.Menu),
		Order:        NewOrderHandler(services.Order),
	}
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.PaginationParams{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", domain.DefaultPageSize),
	}
	params.Validate()
	return params
}

func parseIDParam(c *fiber.Ctx, name, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s id", domain.ErrValidation, label)
	}
	return id, nil
}

// parseBody decodes the request body; malformed JSON or a field of the wrong
// type is a validation error.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrValidation)
	}
	return nil
}
