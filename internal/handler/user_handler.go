package handler

import (
	"mqk-dashboard/internal/middleware"
	"mqk-dashboard/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetUsers returns a filtered, paginated user list
// GET /api/v1/users?role_id=..&role_id=..&search=..&page=1&limit=10
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	q := service.ListUsersQuery{
		Search: c.Query("search"),
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 10),
	}
	for _, raw := range c.Context().QueryArgs().PeekMulti("role_id") {
		id, err := uuid.ParseBytes(raw)
		if err != nil {
			return badRequest(c, "Invalid role_id filter")
		}
		q.RoleIDs = append(q.RoleIDs, id)
	}

	page, err := h.userService.ListUsers(c.UserContext(), middleware.Session(c), q)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", page)
}

// GetUser
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return badRequest(c, "Invalid user ID")
	}
	user, err := h.userService.GetUserByID(c.UserContext(), middleware.Session(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", user)
}

// CreateUser
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	user, err := h.userService.CreateUser(c.UserContext(), middleware.Session(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, "User created successfully", user)
}

// UpdateUser applies a partial update
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return badRequest(c, "Invalid user ID")
	}
	var req service.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	req.ID = id

	user, err := h.userService.UpdateUser(c.UserContext(), middleware.Session(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "User updated successfully", user)
}

// ChangePassword
// PUT /api/v1/users/:id/password
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return badRequest(c, "Invalid user ID")
	}
	var req service.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if err := h.userService.ChangePassword(c.UserContext(), middleware.Session(c), id, &req); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "Password changed successfully", nil)
}

// DeleteUser
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return badRequest(c, "Invalid user ID")
	}
	if err := h.userService.DeleteUser(c.UserContext(), middleware.Session(c), id); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "User deleted successfully", nil)
}
