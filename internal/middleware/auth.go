package middleware

import (
	"postmarket-backend/internal/pkg/links"
	"postmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userLocal = "user"

// RequireAuth ensures a user is in the session. Returns 401 with the standard error
// format and a redirect to the login route if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := ActorID(c); !ok {
			return response.Error(c, "Unauthorized", fiber.StatusUnauthorized, fiber.Map{
				"redirect": links.Login(),
			})
		}
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// ActorID returns the logged-in user's id.
func ActorID(c *fiber.Ctx) (uuid.UUID, bool) {
	m, ok := GetUser(c).(map[string]interface{})
	if !ok {
		return uuid.Nil, false
	}
	s, _ := m["user_id"].(string)
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// ActorUsername returns the session username, "" when absent.
func ActorUsername(c *fiber.Ctx) string {
	m, _ := GetUser(c).(map[string]interface{})
	s, _ := m["username"].(string)
	return s
}
