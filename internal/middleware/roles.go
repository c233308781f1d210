package middleware

import (
	"github.com/peritasorg/eventis-sub000/internal/services"
	"github.com/peritasorg/eventis-sub000/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// RequireRole lets the request through when the token's role is one of roles.
func RequireRole(message string, roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("user_role").(string)
		if !ok || !allowed[role] {
			return utils.ErrorWithCode(c, message, "PERMISSION_DENIED", fiber.StatusForbidden)
		}
		return c.Next()
	}
}

func AdminOnly(c *fiber.Ctx) error {
	return RequireRole("Admin access required", services.RoleAdmin)(c)
}

func ManagerOrAdmin(c *fiber.Ctx) error {
	return RequireRole("Manager or admin access required", services.RoleAdmin, services.RoleManager)(c)
}
