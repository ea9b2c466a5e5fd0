package middleware

import (
	"github.com/dondesang/appdon/models"
	"github.com/gofiber/fiber/v2"
)

// RequireRole checks the role Protected put in locals. It must run after Protected.
func RequireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got, ok := c.Locals(LocalRole).(models.Role)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "User role not found in context",
			})
		}
		if got != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You don't have the required role to perform this action",
			})
		}
		return c.Next()
	}
}
