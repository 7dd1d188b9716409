package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"lunch-order/internal/domain"
	"lunch-order/internal/middleware"
	"lunch-order/internal/service/order"
)

type OrderHandler struct {
	orderService order.Service
}

func NewOrderHandler(orderService order.Service) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var input domain.PlaceOrderInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	o, err := h.orderService.Place(c.Context(), middleware.GetCurrentUserID(c), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *OrderHandler) Modify(c *fiber.Ctx) error {
	orderID, err := parseIDParam(c, "id", "order")
	if err != nil {
		return err
	}

	var input domain.ModifyOrderInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	o, err := h.orderService.Modify(c.Context(), middleware.GetCurrentUserID(c), orderID, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(o)
}

func (h *OrderHandler) ListMine(c *fiber.Ctx) error {
	result, err := h.orderService.ListMine(c.Context(), middleware.GetCurrentUserID(c), getPaginationParams(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	orderID, err := parseIDParam(c, "id", "order")
	if err != nil {
		return err
	}

	var input domain.UpdateOrderStatusInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	o, err := h.orderService.UpdateStatus(c.Context(), orderID, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(o)
}

// SendReminders defaults to today's date when none is given.
func (h *OrderHandler) SendReminders(c *fiber.Ctx) error {
	var input struct {
		ServiceDate string `json:"service_date"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &input); err != nil {
			return err
		}
	}
	if input.ServiceDate == "" {
		input.ServiceDate = time.Now().Format(domain.MenuDateLayout)
	}

	result, err := h.orderService.SendReminders(c.Context(), input.ServiceDate)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}
