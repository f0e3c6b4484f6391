package handler

import (
	"bytes"
	"fmt"
	"time"

	"mqk-dashboard/internal/middleware"
	"mqk-dashboard/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type RegistrationHandler struct {
	registrationService service.RegistrationService
}

func NewRegistrationHandler(registrationService service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

// Register is the public participant sign-up
// POST /api/v1/registrations
func (h *RegistrationHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	reg, err := h.registrationService.Register(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusCreated, "Registration submitted successfully", reg)
}

// GetRegistrations lists registrations inside the caller's region scope
// GET /api/v1/registrations?search=..&region_id=..&page=1&limit=10
func (h *RegistrationHandler) GetRegistrations(c *fiber.Ctx) error {
	q := service.RegistrationQuery{
		Search: c.Query("search"),
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 10),
	}
	if raw := c.Query("region_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "Invalid region_id filter")
		}
		q.RegionID = id
	}

	page, err := h.registrationService.List(c.UserContext(), middleware.Session(c), q)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", page)
}

// Export streams an xlsx workbook of every registration in scope
// GET /api/v1/registrations/export
func (h *RegistrationHandler) Export(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.registrationService.Export(c.UserContext(), middleware.Session(c), &buf); err != nil {
		return fail(c, err)
	}

	filename := fmt.Sprintf("registrations-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}
