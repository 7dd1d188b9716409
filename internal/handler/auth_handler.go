package handler

import (
	"github.com/gofiber/fiber/v2"

	"lunch-order/internal/domain"
	"lunch-order/internal/middleware"
	"lunch-order/internal/service/auth"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func tokenResponse(user *domain.User, tokens *domain.TokenPair) fiber.Map {
	return fiber.Map{
		"user":          user,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_in":    tokens.ExpiresIn,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input domain.CreateUserInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	user, tokens, err := h.authService.Register(c.Context(), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(tokenResponse(user, tokens))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input domain.LoginInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	user, tokens, err := h.authService.Login(c.Context(), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(tokenResponse(user, tokens))
}

func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := parseBody(c, &input); err != nil {
		return err
	}

	tokens, err := h.authService.RefreshToken(c.Context(), input.RefreshToken)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_in":    tokens.ExpiresIn,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.Context(), middleware.GetCurrentUserID(c)); err != nil {
		return err
	}
	return c.Status(fiber.StatusNoContent).SendString("")
}

func (h *AuthHandler) CreateInvite(c *fiber.Ctx) error {
	var input domain.CreateInviteInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	invite, err := h.authService.CreateInvite(c.Context(), middleware.GetCurrentUser(c), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(invite)
}

func (h *AuthHandler) AcceptInvite(c *fiber.Ctx) error {
	var input domain.AcceptInviteInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	user, tokens, err := h.authService.AcceptInvite(c.Context(), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(tokenResponse(user, tokens))
}
