package handler

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *AuthHandler) {
	api := app.Group("/api/v1")

	api.Post("/register", h.Register)
	api.Post("/login", h.Login)
	api.Post("/refresh", h.Refresh)

	api.Post("/logout", h.RequireAuth, h.Logout)
	api.Get("/user", h.RequireAuth, h.Me)
	api.Patch("/user/:id", h.RequireAuth, h.UpdateUser)
	api.Delete("/user/:id", h.RequireAuth, h.DeleteUser)
}
