package handler

import (
	"mqk-dashboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddressHandler serves the public cascading address lookups.
type AddressHandler struct {
	addressService service.AddressService
}

func NewAddressHandler(addressService service.AddressService) *AddressHandler {
	return &AddressHandler{addressService: addressService}
}

// GET /api/v1/address/provinces
func (h *AddressHandler) GetProvinces(c *fiber.Ctx) error {
	units, err := h.addressService.ListProvinces(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", units)
}

// GET /api/v1/address/provinces/:id/regencies
func (h *AddressHandler) GetRegencies(c *fiber.Ctx) error {
	units, err := h.addressService.ListRegencies(c.UserContext(), paramUint(c, "id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", units)
}

// GET /api/v1/address/regencies/:id/districts
func (h *AddressHandler) GetDistricts(c *fiber.Ctx) error {
	units, err := h.addressService.ListDistricts(c.UserContext(), paramUint(c, "id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", units)
}

// GET /api/v1/address/districts/:id/villages
func (h *AddressHandler) GetVillages(c *fiber.Ctx) error {
	units, err := h.addressService.ListVillages(c.UserContext(), paramUint(c, "id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", units)
}
