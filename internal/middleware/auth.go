package middleware

import (
	"hindtrade-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userLocal = "user"

// RequireAuth ensures a user is in the session. Returns 401 with standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUser(c); !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// GetUser returns the raw session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// CurrentUser decodes the session user. ok is false when there is no usable session.
func CurrentUser(c *fiber.Ctx) (*SessionUser, bool) {
	m, ok := GetUser(c).(map[string]interface{})
	if !ok {
		return nil, false
	}
	u := &SessionUser{
		AccountID: str(m["account_id"]),
		FullName:  str(m["full_name"]),
		Email:     str(m["email"]),
		Role:      str(m["role"]),
	}
	if u.AccountID == "" {
		return nil, false
	}
	return u, true
}

// CurrentAccountID returns the session account id parsed as a UUID.
func CurrentAccountID(c *fiber.Ctx) (uuid.UUID, bool) {
	u, ok := CurrentUser(c)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(u.AccountID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
