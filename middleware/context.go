package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestContext gives each request a context derived from base and bounded by timeout,
// reachable through c.UserContext(). Cancelling base, as the server does on shutdown,
// cancels every request still waiting on it.
func RequestContext(base context.Context, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(base, timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}
