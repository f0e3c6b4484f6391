package handler

import (
	"mqk-dashboard/internal/metrics"
	"mqk-dashboard/internal/middleware"
	"mqk-dashboard/internal/model"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups every HTTP handler mounted under /api/v1.
type Handlers struct {
	Auth         *AuthHandler
	Role         *RoleHandler
	User         *UserHandler
	Address      *AddressHandler
	Region       *RegionHandler
	Registration *RegistrationHandler
	Dashboard    *DashboardHandler
}

// RegisterRoutes mounts the REST API. Route-level permission checks mirror
// the ones enforced by the services.
func RegisterRoutes(app *fiber.App, h Handlers, tokens middleware.TokenValidator, m *metrics.Metrics) {
	api := app.Group("/api/v1")
	perm := func(name string) fiber.Handler {
		return middleware.RequirePermission(m, name)
	}

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Get("/me", middleware.RequireAuth(tokens), h.Auth.Me)

	address := api.Group("/address")
	address.Get("/provinces", h.Address.GetProvinces)
	address.Get("/provinces/:id/regencies", h.Address.GetRegencies)
	address.Get("/regencies/:id/districts", h.Address.GetDistricts)
	address.Get("/districts/:id/villages", h.Address.GetVillages)

	api.Get("/regions", h.Region.GetRegions)
	api.Post("/registrations", h.Registration.Register)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(tokens))

	protected.Post("/regions", perm(model.PermRegionCreate), h.Region.CreateRegion)

	protected.Get("/registrations", perm(model.PermRegistrationView), h.Registration.GetRegistrations)
	protected.Get("/registrations/export", perm(model.PermRegistrationExport), h.Registration.Export)

	protected.Get("/permissions", middleware.RequireAnyPermission(m, model.PermRoleView, model.PermRoleCreate, model.PermRoleEdit), h.Role.GetPermissions)
	protected.Get("/roles", perm(model.PermRoleView), h.Role.GetRoles)
	protected.Get("/roles/:id", perm(model.PermRoleView), h.Role.GetRole)
	protected.Post("/roles", perm(model.PermRoleCreate), h.Role.CreateRole)
	protected.Put("/roles/:id", perm(model.PermRoleEdit), h.Role.UpdateRole)
	protected.Delete("/roles/:id", perm(model.PermRoleDelete), h.Role.DeleteRole)

	protected.Get("/users", perm(model.PermUserView), h.User.GetUsers)
	protected.Get("/users/:id", perm(model.PermUserView), h.User.GetUser)
	protected.Post("/users", perm(model.PermUserCreate), h.User.CreateUser)
	protected.Put("/users/:id", perm(model.PermUserEdit), h.User.UpdateUser)
	protected.Put("/users/:id/password", perm(model.PermUserChangePassword), h.User.ChangePassword)
	protected.Delete("/users/:id", perm(model.PermUserDelete), h.User.DeleteUser)

	protected.Get("/dashboard/stats", perm(model.PermDashboardView), h.Dashboard.GetStats)
}
