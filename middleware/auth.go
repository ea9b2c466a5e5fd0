package middleware

import (
	"github.com/dondesang/appdon/auth"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Locals keys set by Protected.
const (
	LocalUserID    = "userID"
	LocalRole      = "role"
	LocalSessionID = "sid"
	LocalEmail     = "email"
)

// Sessions reports whether a token's session is still open.
type Sessions interface {
	SessionActive(sid string, userID uuid.UUID) bool
}

// Protected verifies the bearer token and that its session was not ended by logout.
func Protected(secret []byte, sessions Sessions, log *zap.Logger) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   secret,
		ErrorHandler: jwtError(log),
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid token",
				})
			}
			mc, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid token claims",
				})
			}
			claims, err := auth.ClaimsFromMap(mc)
			if err != nil {
				log.Debug("rejected token claims", zap.Error(err))
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid token claims",
				})
			}
			if !sessions.SessionActive(claims.SessionID, claims.UserID) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Session ended",
				})
			}

			c.Locals(LocalUserID, claims.UserID)
			c.Locals(LocalRole, claims.Role)
			c.Locals(LocalSessionID, claims.SessionID)
			c.Locals(LocalEmail, claims.Email)
			return c.Next()
		},
	})
}

func jwtError(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		log.Debug("jwt rejected", zap.Error(err), zap.String("path", c.Path()))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "Unauthorized",
			"message": "Invalid or expired token",
		})
	}
}

// UserID returns the authenticated donor id set by Protected.
func UserID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(LocalUserID).(uuid.UUID)
	return id, ok
}

func SessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(LocalSessionID).(string)
	return sid
}
