package middleware

import (
	"errors"
	"strings"

	"smart-inventory/internal/model"
	"smart-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequireAuth validates the bearer token and stores the account in the context
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		user, err := auth.ValidateToken(c.UserContext(), parts[1])
		if err != nil {
			var svcErr *service.Error
			if errors.As(err, &svcErr) && svcErr.Kind == service.KindOperational {
				zap.L().Error("validate token", zap.Error(err))
				return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
			}
			if errors.As(err, &svcErr) {
				return c.Status(401).JSON(fiber.Map{"error": svcErr.Message})
			}
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		roles := make([]string, 0, len(user.Roles))
		for _, r := range user.RoleNames() {
			roles = append(roles, string(r))
		}

		// Set user info in context for downstream handlers
		c.Locals("user_id", user.ID.String())
		c.Locals("user_email", user.Email)
		c.Locals("user_name", user.FullName)
		c.Locals("user_roles", roles)

		return c.Next()
	}
}

// RequireRole lets the request through when the account holds any of roles
func RequireRole(roles ...model.RoleName) fiber.Handler {
	return func(c *fiber.Ctx) error {
		held, ok := c.Locals("user_roles").([]string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No roles found"})
		}

		for _, h := range held {
			for _, r := range roles {
				if h == string(r) {
					return c.Next()
				}
			}
		}

		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = string(r)
		}
		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(names, ", ") + " roles",
		})
	}
}
