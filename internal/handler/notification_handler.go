package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"lunch-order/internal/domain"
	"lunch-order/internal/middleware"
	"lunch-order/internal/service/notification"
)

type NotificationHandler struct {
	notifService notification.Service
}

func NewNotificationHandler(notifService notification.Service) *NotificationHandler {
	return &NotificationHandler{notifService: notifService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)
	unreadOnly := c.QueryBool("unread_only", false)
	limit := c.QueryInt("limit", 0)

	items, err := h.notifService.List(c.Context(), userID, unreadOnly, limit)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": items,
	})
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	count, err := h.notifService.GetUnreadCount(c.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count": count,
	})
}

// SetRead accepts {"read": bool}; an empty body marks the notification read.
func (h *NotificationHandler) SetRead(c *fiber.Ctx) error {
	notifID, err := parseIDParam(c, "id", "notification")
	if err != nil {
		return err
	}

	var input struct {
		Read *bool `json:"read"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &input); err != nil {
			return err
		}
	}
	read := true
	if input.Read != nil {
		read = *input.Read
	}

	notif, err := h.notifService.SetRead(c.Context(), notifID, middleware.GetCurrentUserID(c), read)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(notif)
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	result, err := h.notifService.MarkAllRead(c.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	notifID, err := parseIDParam(c, "id", "notification")
	if err != nil {
		return err
	}

	if err := h.notifService.Delete(c.Context(), notifID, middleware.GetCurrentUserID(c)); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}

func (h *NotificationHandler) Broadcast(c *fiber.Ctx) error {
	var input domain.BroadcastInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	category, err := domain.ParseCategory(input.Category)
	if err != nil {
		return err
	}

	notif, err := h.notifService.Broadcast(c.Context(), category, input.Message)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(notif)
}

func (h *NotificationHandler) NotifyUsers(c *fiber.Ctx) error {
	var input domain.BulkNotifyInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	category, err := domain.ParseCategory(input.Category)
	if err != nil {
		return err
	}
	if len(input.UserIDs) == 0 {
		return fmt.Errorf("%w: user_ids is required", domain.ErrValidation)
	}

	result, err := h.notifService.NotifyUsers(c.Context(), category, input.Message, input.UserIDs)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
