package handler

import (
	"github.com/gofiber/fiber/v2"

	"lunch-order/internal/domain"
	"lunch-order/internal/middleware"
)

// RegisterRoutes mounts the versioned API. authRequired guards everything
// except the public auth endpoints.
func RegisterRoutes(app *fiber.App, h *Handlers, authRequired fiber.Handler) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.RefreshToken)
	auth.Post("/invites/accept", h.Auth.AcceptInvite)
	auth.Post("/logout", authRequired, h.Auth.Logout)

	protected := v1.Group("", authRequired)
	admin := protected.Group("/admin", middleware.RequireRole(string(domain.RoleAdmin)))

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.GetUnreadCount)
	notifications.Get("/stream", h.Stream.Stream)
	notifications.Get("/preferences", h.Preference.Get)
	notifications.Put("/preferences", h.Preference.Update)
	notifications.Post("/mark-all-read", h.Notification.MarkAllRead)
	notifications.Patch("/:id/read", h.Notification.SetRead)
	notifications.Delete("/:id", h.Notification.Delete)

	menus := protected.Group("/menus")
	menus.Get("/today", h.Menu.Today)
	menus.Get("/:date", h.Menu.Get)

	orders := protected.Group("/orders")
	orders.Post("/", h.Order.Place)
	orders.Get("/me", h.Order.ListMine)
	orders.Put("/:id", h.Order.Modify)

	admin.Post("/invites", h.Auth.CreateInvite)
	admin.Post("/notifications/broadcast", h.Notification.Broadcast)
	admin.Post("/notifications/bulk", h.Notification.NotifyUsers)
	admin.Put("/menus/:date", h.Menu.Upsert)
	admin.Post("/menus/:date/image", h.Menu.UploadImage)
	admin.Patch("/orders/:id/status", h.Order.UpdateStatus)
	admin.Post("/orders/reminders", h.Order.SendReminders)
}
