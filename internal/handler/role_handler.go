package handler

import (
	"smart-inventory/internal/model"
	"smart-inventory/internal/repository"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type RoleHandler struct {
	roleRepo repository.RoleRepository
}

func NewRoleHandler(roleRepo repository.RoleRepository) *RoleHandler {
	return &RoleHandler{roleRepo: roleRepo}
}

// GetRoles returns the assignable roles
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles, err := h.roleRepo.FindAll(c.UserContext())
	if err != nil {
		zap.L().Error("list roles", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch roles"})
	}
	return c.JSON(roles)
}

// GetRole returns one role by name
// GET /api/v1/roles/:name
func (h *RoleHandler) GetRole(c *fiber.Ctx) error {
	role, err := h.roleRepo.FindByName(c.UserContext(), model.RoleName(c.Params("name")))
	if err != nil {
		if repository.IsNotFound(err) {
			return c.Status(404).JSON(fiber.Map{"error": "Role not found"})
		}
		zap.L().Error("find role", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch role"})
	}
	return c.JSON(role)
}
