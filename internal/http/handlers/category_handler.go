package handlers

import (
	"github.com/gofiber/fiber/v2"

	"pricebook/internal/log"
	"pricebook/internal/services"
	"pricebook/internal/validate"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
	Listing *Listing
}

func (h *CategoryHandler) Home(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"categories": cats})
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	catID, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "category"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category"})
	}
	currency, ok := h.Listing.requestCurrency(c)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "currency"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid currency"})
	}
	products, err := h.Catalog.ListProductsByCategory(catID, validate.Page(c.Query("page")), 12)
	if err != nil {
		return err
	}
	entities := h.Listing.Entities(c, "Category/"+catID, currency, products)
	return c.JSON(fiber.Map{"categoryId": catID, "currency": currency, "products": entities, "count": len(entities)})
}
