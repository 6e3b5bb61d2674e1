package server

import (
	"poetryclub/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// pageWindow holds parsed page/limit query parameters and the derived offset.
type pageWindow struct {
	Page   int
	Limit  int
	Offset int
}

// parsePageWindow extracts page and limit query parameters, clamping them to
// sane bounds.
func parsePageWindow(c *fiber.Ctx) pageWindow {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	limit := c.QueryInt("limit", defaultPageLimit)
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	return pageWindow{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// listPayload wraps items and the pagination block for a listing response.
func listPayload(items interface{}, w pageWindow, total int64) models.ListResponse {
	return models.ListResponse{
		Items:      items,
		Pagination: models.NewPagination(w.Page, w.Limit, total),
	}
}

// paramID extracts a route parameter as a positive uint. The label names the
// resource in the 400 message ("poem", "comment", "user").
func paramID(c *fiber.Ctx, param, label string) (uint, *models.AppError) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("Invalid " + label + " ID")
	}
	return uint(id), nil
}

// caller returns the authenticated user's ID and role from locals. Only valid
// on routes behind RequireRoles.
func caller(c *fiber.Ctx) (uint, models.Role) {
	userID, _ := c.Locals("userID").(uint)
	role, _ := c.Locals("userRole").(models.Role)
	return userID, role
}
