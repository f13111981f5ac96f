package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"pricebook/internal/domain"
	"pricebook/internal/log"
	"pricebook/internal/pricing"
	"pricebook/internal/services"
	"pricebook/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Pricing *services.PricingService
	Listing *Listing
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "This item is no longer available"})
	}
	p, err := h.Catalog.GetProduct(id)
	if err != nil {
		return err
	}
	if p == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "This item is no longer available"})
	}
	currency, ok := h.Listing.requestCurrency(c)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "currency"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid currency"})
	}
	variants, err := h.Catalog.Variants(p.ID)
	if err != nil {
		return err
	}
	entities := h.Listing.Entities(c, "Product/"+p.ID, currency, []domain.Product{*p})
	return c.JSON(fiber.Map{
		"product":     entities[0],
		"description": p.Description,
		"variants":    variants,
	})
}

// Price quotes the sell price for the current shopper.
// Query: currency, at (RFC3339 or YYYY-MM-DD), book (explicit price book).
func (h *ProductHandler) Price(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "This item is no longer available"})
	}
	currency, ok := h.Listing.requestCurrency(c)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "currency"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid currency"})
	}

	pc := pricing.NewContext(CurrentShopper(c).ID, currency)
	pc.ShopName = h.Listing.Storefront.ShopName
	pc.CatalogName = h.Listing.Storefront.CatalogName
	if rid, ok := c.Locals("requestid").(string); ok {
		pc.RequestID = rid
	}
	if raw := strings.TrimSpace(c.Query("at")); raw != "" {
		at, ok := validate.Date(raw)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "at"})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid date"})
		}
		pc.EffectiveDate = at
	}
	book := ""
	if raw := strings.TrimSpace(c.Query("book")); raw != "" {
		if book, ok = validate.Book(raw); !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "book"})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid price book"})
		}
	}

	q, err := h.Pricing.Quote(c.UserContext(), pc, id, book)
	if errors.Is(err, services.ErrProductNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "This item is no longer available"})
	}
	if err != nil {
		return err
	}
	return c.JSON(q)
}
