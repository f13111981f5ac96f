package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"pricebook/internal/domain"
	"pricebook/internal/log"
	"pricebook/internal/services"
	"pricebook/internal/validate"
)

type SearchHandler struct {
	Catalog *services.CatalogService
	Listing *Listing
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	rawQ := c.Query("q")
	if strings.TrimSpace(rawQ) == "" {
		// Initial page load: show empty search without errors
		return c.JSON(fiber.Map{"q": "", "products": []*domain.ProductEntity{}, "count": 0})
	}
	q, ok := validate.Q(rawQ)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Enter a valid keyword (letters/numbers only)"})
	}
	q = strings.ToLower(q)
	category := strings.TrimSpace(c.Query("category"))
	if category != "" {
		if _, ok := validate.ID(category); !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "category"})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid category"})
		}
	}
	currency, ok := h.Listing.requestCurrency(c)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "currency"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid currency"})
	}

	products, err := h.Catalog.Search(q, category, validate.Page(c.Query("page")), 20)
	if err != nil {
		log.Error(c, "search.error", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not load results. Please retry."})
	}
	entities := h.Listing.Entities(c, "Search/"+category+"/"+q, currency, products)
	return c.JSON(fiber.Map{"q": q, "categoryId": category, "currency": currency, "products": entities, "count": len(entities)})
}
