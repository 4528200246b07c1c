package server

import (
	"toolshed/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetInventory handles GET /api/inventory?limit=&offset=
// @Summary List inventory
// @Tags inventory
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.InventoryItem
// @Router /inventory [get]
func (s *Server) GetInventory(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	items, err := s.inventoryRepo.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	if items == nil {
		items = []models.InventoryItem{}
	}
	return c.JSON(items)
}

// GetInventoryItemByCode handles GET /api/inventory/code/:code
// @Summary Look up an inventory item
// @Tags inventory
// @Produce json
// @Param code path string true "Inventory code"
// @Success 200 {object} models.InventoryItem
// @Failure 404 {object} models.ErrorResponse
// @Router /inventory/code/{code} [get]
func (s *Server) GetInventoryItemByCode(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return badRequest(c, "Inventory code is required")
	}

	item, err := s.inventoryRepo.GetByCode(c.UserContext(), code)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

// GetFeatureFlags returns configured feature flags evaluated for the caller.
// @Summary Feature flags
// @Tags meta
// @Produce json
// @Success 200 {object} object{evaluated=map[string]bool}
// @Router /feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"evaluated": s.featureFlags.Snapshot(currentUserID(c)),
	})
}
