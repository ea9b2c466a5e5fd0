package routes

import (
	"github.com/dondesang/appdon/controllers"
	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes configures all authentication related routes
func SetupAuthRoutes(app *fiber.App, h *controllers.Handler, g Guards) {
	auth := app.Group("/auth")

	// Public routes
	auth.Post("/login", g.AuthLimit, h.Login)
	auth.Post("/signup", g.AuthLimit, h.Signup)

	// Protected routes
	auth.Get("/me", g.Protected, h.Me)
	auth.Post("/logout", g.Protected, h.Logout)
}
