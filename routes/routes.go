package routes

import "github.com/gofiber/fiber/v2"

// Guards are the middleware chains shared by every route group.
type Guards struct {
	// Protected verifies the bearer token and its session.
	Protected fiber.Handler
	// Admin runs after Protected and checks the admin role.
	Admin fiber.Handler
	// AuthLimit throttles login and signup per client IP.
	AuthLimit fiber.Handler
}
