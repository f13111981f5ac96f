package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"pricebook/internal/log"
	"pricebook/internal/services"
	"pricebook/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	productID := strings.TrimSpace(c.Query("productId"))
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing productId",
		})
	}
	if _, ok := validate.ID(productID); !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid productId",
		})
	}

	// Validate region/ZIP (allows simple ZIP/postal formats)
	region, ok := validate.Region(c.Query("region"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "enter a valid region/ZIP",
		})
	}

	avail, err := h.Inv.CheckAvailability(productID, region)
	if err != nil {
		log.Error(c, "availability.error", err, map[string]any{"product": productID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "could not check availability",
		})
	}
	return c.JSON(avail)
}
