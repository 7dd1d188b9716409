package handler

import (
	"github.com/gofiber/fiber/v2"

	"lunch-order/internal/domain"
	"lunch-order/internal/middleware"
	"lunch-order/internal/service/preference"
)

type PreferenceHandler struct {
	prefService preference.Service
}

func NewPreferenceHandler(prefService preference.Service) *PreferenceHandler {
	return &PreferenceHandler{prefService: prefService}
}

func (h *PreferenceHandler) Get(c *fiber.Ctx) error {
	prefs, err := h.prefService.Get(c.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(prefs)
}

func (h *PreferenceHandler) Update(c *fiber.Ctx) error {
	var input domain.UpdatePreferencesInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	prefs, err := h.prefService.Update(c.Context(), middleware.GetCurrentUserID(c), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(prefs)
}
