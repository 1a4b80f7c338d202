package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"littlenails/internal/models"
	"littlenails/internal/sessions"
)

const sessionKey = "session"

// Sessions resolves the session cookie once per request and attaches the
// identity to the context. A failed lookup is logged and treated as an
// anonymous request; the guards decide whether that is acceptable.
func Sessions(manager *sessions.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(sessions.CookieName)
		if token != "" {
			info, err := manager.Resolve(c.UserContext(), token)
			if err != nil {
				log.Printf("session resolve failed: %v", err)
			}
			if info != nil {
				c.Locals(sessionKey, info)
			}
		}
		return c.Next()
	}
}

// SessionFrom returns the resolved session for the request, or nil when the
// request is anonymous.
func SessionFrom(c *fiber.Ctx) *sessions.Info {
	info, _ := c.Locals(sessionKey).(*sessions.Info)
	return info
}

// RequireAuth rejects requests without a valid session.
func RequireAuth(c *fiber.Ctx) error {
	if SessionFrom(c) == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "No autenticado",
		})
	}
	return c.Next()
}

// RequireAdmin rejects requests whose session is absent or not admin. Both
// cases answer 403, matching the behavior the admin frontend was built
// against.
func RequireAdmin(c *fiber.Ctx) error {
	sess := SessionFrom(c)
	if sess == nil || sess.Role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Acceso restringido",
		})
	}
	return c.Next()
}
