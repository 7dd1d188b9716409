package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"lunch-order/internal/domain"
	"lunch-order/internal/middleware"
	"lunch-order/internal/service/menu"
)

type MenuHandler struct {
	menuService menu.Service
}

func NewMenuHandler(menuService menu.Service) *MenuHandler {
	return &MenuHandler{menuService: menuService}
}

func (h *MenuHandler) Today(c *fiber.Ctx) error {
	m, err := h.menuService.Today(c.Context())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(m)
}

func (h *MenuHandler) Get(c *fiber.Ctx) error {
	m, err := h.menuService.Get(c.Context(), c.Params("date"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(m)
}

func (h *MenuHandler) Upsert(c *fiber.Ctx) error {
	var input domain.UpsertMenuInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	m, err := h.menuService.Upsert(c.Context(), middleware.GetCurrentUserID(c), c.Params("date"), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(m)
}

func (h *MenuHandler) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return fmt.Errorf("%w: image file is required", domain.ErrValidation)
	}

	f, err := file.Open()
	if err != nil {
		return fmt.Errorf("%w: unreadable image file", domain.ErrValidation)
	}
	defer f.Close()

	m, err := h.menuService.UploadImage(c.Context(), c.Params("date"), file.Header.Get(fiber.HeaderContentType), file.Size, f)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(m)
}
