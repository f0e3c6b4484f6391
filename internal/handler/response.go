package handler

import (
	"strconv"

	"mqk-dashboard/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func statusOf(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return fiber.StatusBadRequest
	case service.KindDuplicate, service.KindConflict:
		return fiber.StatusConflict
	case service.KindNotFound:
		return fiber.StatusNotFound
	case service.KindForbidden:
		return fiber.StatusForbidden
	case service.KindUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func ok(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(service.OK(message, data))
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusOf(service.KindOf(err))).JSON(service.Fail(err))
}

func badRequest(c *fiber.Ctx, message string) error {
	return fail(c, service.ValidationError(message))
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func paramUint(c *fiber.Ctx, name string) uint {
	v, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}
