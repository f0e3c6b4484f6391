package middleware

import (
	"context"
	"errors"
	"strings"

	"mqk-dashboard/internal/authz"
	"mqk-dashboard/internal/metrics"
	"mqk-dashboard/internal/service"
	"mqk-dashboard/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

const sessionKey = "session"

// TokenValidator resolves a bearer token into a session.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (*authz.Session, error)
}

// RequireAuth is middleware that validates JWT token and sets the session in context
func RequireAuth(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, jwt.ErrMissingToken.Error())
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return unauthorized(c, "Invalid authorization format. Use: Bearer <token>")
		}

		// Validate token and token version
		session, err := tokens.ValidateToken(c.UserContext(), parts[1])
		switch {
		case err == nil:
		case errors.Is(err, jwt.ErrInvalidToken), errors.Is(err, jwt.ErrMissingToken), errors.Is(err, service.ErrSessionRevoked):
			return unauthorized(c, err.Error())
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(service.Fail(err))
		}

		// Set session in context for downstream handlers
		c.Locals(sessionKey, session)
		return c.Next()
	}
}

// Session returns the session set by RequireAuth, or nil.
func Session(c *fiber.Ctx) *authz.Session {
	s, _ := c.Locals(sessionKey).(*authz.Session)
	return s
}

// RequirePermission checks if the authenticated session holds the permission
func RequirePermission(m *metrics.Metrics, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if authz.HasPermission(Session(c), permission) {
			return c.Next()
		}
		m.RecordDenied(permission)
		return c.Status(fiber.StatusForbidden).JSON(service.Fail(service.ForbiddenError()))
	}
}

// RequireAnyPermission checks if the session holds at least one of the permissions
func RequireAnyPermission(m *metrics.Metrics, permissions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if authz.HasAny(Session(c), permissions...) {
			return c.Next()
		}
		m.RecordDenied(strings.Join(permissions, "|"))
		return c.Status(fiber.StatusForbidden).JSON(service.Fail(service.ForbiddenError()))
	}
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(service.Result{
		Success: false,
		Error:   &service.ResultError{Kind: service.KindUnauthorized, Message: msg},
	})
}
