package handler

import (
	"mqk-dashboard/internal/middleware"
	"mqk-dashboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

type RegionHandler struct {
	regionService service.RegionService
}

func NewRegionHandler(regionService service.RegionService) *RegionHandler {
	return &RegionHandler{regionService: regionService}
}

// GetRegions is public; the registration form needs it.
// GET /api/v1/regions
func (h *RegionHandler) GetRegions(c *fiber.Ctx) error {
	regions, err := h.regionService.ListRegions(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", regions)
}

// POST /api/v1/regions
func (h *RegionHandler) CreateRegion(c *fiber.Ctx) error {
	var req service.CreateRegionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	region, err := h.regionService.CreateRegion(c.UserContext(), middleware.Session(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, "Region created successfully", region)
}
