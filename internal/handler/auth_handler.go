package handler

import (
	"errors"

	"mqk-dashboard/internal/middleware"
	"mqk-dashboard/internal/service"
	"mqk-dashboard/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if errs := validator.ValidateStruct(&req); len(errs) > 0 {
		return badRequest(c, validator.Message(errs))
	}

	response, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		// Return 401 for authentication errors
		return c.Status(fiber.StatusUnauthorized).JSON(service.Result{
			Error: &service.ResultError{Kind: service.KindUnauthorized, Message: err.Error()},
		})
	}
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, "Login successful", response)
}

// Me returns the current session's identity and permissions
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	view, err := h.authService.Me(c.UserContext(), middleware.Session(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(service.Result{
			Error: &service.ResultError{Kind: service.KindUnauthorized, Message: err.Error()},
		})
	}
	return ok(c, fiber.StatusOK, "", view)
}
