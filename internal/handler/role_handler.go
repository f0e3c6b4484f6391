package handler

import (
	"mqk-dashboard/internal/middleware"
	"mqk-dashboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

type RoleHandler struct {
	roleService service.RoleService
}

func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// GetRoles returns all roles with their permissions
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles, err := h.roleService.ListRoles(c.UserContext(), middleware.Session(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", roles)
}

// GetRole returns one role with its flat permission id list
// GET /api/v1/roles/:id
func (h *RoleHandler) GetRole(c *fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return badRequest(c, "Invalid role ID")
	}
	role, err := h.roleService.GetRoleByID(c.UserContext(), middleware.Session(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", role)
}

// CreateRole
// POST /api/v1/roles
func (h *RoleHandler) CreateRole(c *fiber.Ctx) error {
	var req service.CreateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	role, err := h.roleService.CreateRole(c.UserContext(), middleware.Session(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, "Role created successfully", role)
}

// UpdateRole replaces name and permission set
// PUT /api/v1/roles/:id
func (h *RoleHandler) UpdateRole(c *fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return badRequest(c, "Invalid role ID")
	}
	var req service.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	role, err := h.roleService.UpdateRole(c.UserContext(), middleware.Session(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "Role updated successfully", role)
}

// DeleteRole
// DELETE /api/v1/roles/:id
func (h *RoleHandler) DeleteRole(c *fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return badRequest(c, "Invalid role ID")
	}
	if err := h.roleService.DeleteRole(c.UserContext(), middleware.Session(c), id); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "Role deleted successfully", nil)
}

// GetPermissions lists the permission catalog
// GET /api/v1/permissions
func (h *RoleHandler) GetPermissions(c *fiber.Ctx) error {
	perms, err := h.roleService.ListPermissions(c.UserContext(), middleware.Session(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", perms)
}
