package handler

import (
	"mqk-dashboard/internal/middleware"
	"mqk-dashboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats returns overview totals and registrations per region
// GET /api/v1/dashboard/stats
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.dashboardService.Stats(c.UserContext(), middleware.Session(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", stats)
}
