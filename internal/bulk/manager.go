package bulk

import (
	"context"
	"time"

	"pricebook/internal/domain"
	applog "pricebook/internal/log"
)

// Storefront is the shop a product page is rendered for.
type Storefront struct {
	ShopName    string
	CatalogName string
	Currency    string
}

// Visitor is the shopper behind the request; CustomerID is empty for guests.
type Visitor struct {
	CustomerID string
}

var DefaultStatusNames = map[string]string{
	"IN_STOCK":     "In Stock",
	"LOW_STOCK":    "Low Stock",
	"OUT_OF_STOCK": "Out of Stock",
	"PRE_ORDER":    "Pre-Order",
	"BACK_ORDER":   "Back-Order",
}

// Manager prices and stocks a product list in one round trip and writes the
// results back onto the entities.
type Manager struct {
	Processor   *Processor
	StatusNames map[string]string
}

func NewManager(client SummaryClient) *Manager {
	return &Manager{Processor: NewProcessor(client), StatusNames: DefaultStatusNames}
}

// Aggregate mutates products in place and reports the outcome. An empty list
// succeeds without a remote call; a failed call mutates nothing.
func (m *Manager) Aggregate(ctx context.Context, sf Storefront, v Visitor, products []*domain.ProductEntity, asOf time.Time, includeBundled bool, priceTypeIDs ...string) *Result {
	if len(products) == 0 {
		return &Result{Success: true, Status: StatusSuccess, Prices: map[string]CommercePrice{}}
	}
	if len(priceTypeIDs) == 0 {
		priceTypeIDs = DefaultPriceTypeIDs
	}

	catalog := sf.CatalogName
	for _, p := range products {
		if p.CatalogName != "" {
			catalog = p.CatalogName
			break
		}
	}

	pricing := &PricingRequest{
		ShopName:     sf.ShopName,
		CatalogName:  catalog,
		CurrencyCode: sf.Currency,
		UserID:       v.CustomerID,
		PriceTypeIDs: priceTypeIDs,
		DateTime:     asOf,
		ProductIDs:   make([]string, 0, len(products)),
	}
	stock := &StockRequest{
		ShopName:                     sf.ShopName,
		DetailsLevel:                 StockDetailsAll,
		IncludeBundledItemsInventory: includeBundled,
		Products:                     make([]InventoryProduct, 0, len(products)),
	}
	for _, p := range products {
		pcat := p.CatalogName
		if pcat == "" {
			pcat = catalog
		}
		pricing.ProductIDs = append(pricing.ProductIDs, p.ProductID)
		stock.Products = append(stock.Products, InventoryProduct{CatalogName: pcat, ProductID: p.ProductID, VariantID: p.VariantID})
	}

	res := m.Processor.Process(ctx, Request{Pricing: pricing, Stock: stock})
	if !res.Success {
		// a failed call leaves every product as it was
		return res
	}

	updated := 0
	for _, p := range products {
		if m.applyStock(p, res.StockInformation) {
			updated++
		}
		if cp, ok := res.Prices[p.ProductID]; ok {
			p.ListPrice = cp.ListPrice
			p.AdjustedPrice = cp.AdjustedPrice
			p.LowestPricedVariantAdjustedPrice = cp.LowestPricedVariant
			p.LowestPricedVariantListPrice = cp.LowestPricedVariantListPrice
			p.HighestPricedVariantAdjustedPrice = cp.HighestPricedVariant
		}
	}
	applog.Info(nil, "bulk.aggregate", map[string]any{
		"products": len(products), "priced": len(res.Prices), "stocked": updated,
		"status": string(res.Status),
	})
	return res
}

func (m *Manager) applyStock(p *domain.ProductEntity, infos []StockInformation) bool {
	for _, si := range infos {
		if si.ProductID != p.ProductID || si.Status == nil {
			continue
		}
		st := *si.Status
		p.StockStatus = &st
		p.StockStatusName = m.displayName(st.Name)
		p.StockAvailabilityDate = si.AvailabilityDate
		return true
	}
	return false
}

func (m *Manager) displayName(status string) string {
	if n, ok := m.StatusNames[status]; ok {
		return n
	}
	return status
}
