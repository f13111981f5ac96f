package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"pricebook/internal/bulk"
	"pricebook/internal/log"
	"pricebook/internal/validate"
)

type SummaryHandler struct {
	Summary  bulk.SummaryClient
	ShopName string
}

// Summarize is the serving side of the batched sellable items summary call.
func (h *SummaryHandler) Summarize(c *fiber.Ctx) error {
	var q bulk.SummaryQuery
	if err := c.BodyParser(&q); err != nil {
		log.Security(c, "validation.fail", map[string]any{"field": "body"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if !strings.EqualFold(strings.TrimSpace(q.ShopName), h.ShopName) {
		log.Security(c, "summary.shop_mismatch", map[string]any{"shop": q.ShopName})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown shop"})
	}
	cur, ok := validate.Currency(q.Currency)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "currency"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid currency"})
	}
	q.Currency = cur
	if len(q.ItemIDs) > 200 {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "too many items"})
	}

	resp, err := h.Summary.GetSellableItemsSummary(c.UserContext(), q)
	if err != nil {
		return err
	}
	log.Info(c, "summary.served", map[string]any{"items": len(q.ItemIDs), "success": resp.Success})
	return c.JSON(resp)
}
