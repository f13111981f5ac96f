package bulk_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pricebook/internal/bulk"
	"pricebook/internal/domain"
)

type fakeClient struct {
	calls   int
	queries []bulk.SummaryQuery
	resp    *bulk.SummaryResponse
	err     error
}

func (f *fakeClient) GetSellableItemsSummary(_ context.Context, q bulk.SummaryQuery) (*bulk.SummaryResponse, error) {
	f.calls++
	f.queries = append(f.queries, q)
	return f.resp, f.err
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func pricingSummary(id, list, adjusted string) bulk.SellableItemSummary {
	return bulk.SellableItemSummary{
		ItemID: bulk.ItemKey("Storefront", id, ""),
		Summaries: []bulk.Summary{{
			Kind: bulk.KindPricing,
			Pricing: &bulk.ItemPricing{
				ProductID:                    id,
				Currency:                     "USD",
				ListPrice:                    dec(list),
				AdjustedPrice:                dec(adjusted),
				LowestPricedVariant:          dec(adjusted),
				LowestPricedVariantListPrice: dec(list),
				HighestPricedVariant:         dec(list),
			},
		}},
	}
}

func stockSummary(id, status string, qty int, at *time.Time) bulk.SellableItemSummary {
	return bulk.SellableItemSummary{
		ItemID: bulk.ItemKey("Storefront", id, ""),
		Summaries: []bulk.Summary{{
			Kind: bulk.KindAvailability,
			Availability: &bulk.ItemAvailability{
				CatalogName:      "Storefront",
				ProductID:        id,
				Status:           &domain.StockStatus{Name: status, Value: qty},
				Count:            qty,
				AvailabilityDate: at,
			},
		}},
	}
}

func entities(ids ...string) []*domain.ProductEntity {
	out := make([]*domain.ProductEntity, 0, len(ids))
	for _, id := range ids {
		out = append(out, &domain.ProductEntity{ProductID: id, CatalogName: "Storefront", Title: id})
	}
	return out
}

var storefront = bulk.Storefront{ShopName: "RetroShop", CatalogName: "Storefront", Currency: "USD"}
