package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"pricebook/internal/bulk"
	"pricebook/internal/domain"
	applog "pricebook/internal/log"
	"pricebook/internal/validate"
)

// Listing turns product rows into priced, stocked entities for one request.
type Listing struct {
	Bulk           *bulk.Manager
	Storefront     bulk.Storefront
	IncludeBundled bool
}

// requestCurrency reads ?currency=, then X-Currency, then the storefront default.
func (l *Listing) requestCurrency(c *fiber.Ctx) (string, bool) {
	raw := strings.TrimSpace(c.Query("currency"))
	if raw == "" {
		raw = strings.TrimSpace(c.Get("X-Currency"))
	}
	if raw == "" {
		return l.Storefront.Currency, true
	}
	return validate.Currency(raw)
}

// Entities prices and stocks products once per request; key names the memo slot
// (e.g. "Category/retro-consoles").
func (l *Listing) Entities(c *fiber.Ctx, key, currency string, products []domain.Product) []*domain.ProductEntity {
	if cached, ok := c.Locals(key).([]*domain.ProductEntity); ok {
		return cached
	}
	entities := make([]*domain.ProductEntity, 0, len(products))
	for _, p := range products {
		entities = append(entities, domain.NewProductEntity(p))
	}

	sf := l.Storefront
	sf.Currency = currency
	v := bulk.Visitor{CustomerID: CurrentShopper(c).ID}
	res := l.Bulk.Aggregate(c.UserContext(), sf, v, entities, time.Now().UTC(), l.IncludeBundled)
	if !res.Success {
		applog.Warn(c, "listing.aggregate.failed", map[string]any{
			"key": key, "status": string(res.Status), "err": errString(res.Err),
		})
	}
	c.Locals(key, entities)
	return entities
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
