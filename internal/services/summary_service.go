package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"pricebook/internal/bulk"
	"pricebook/internal/domain"
	"pricebook/internal/pricing"
	"pricebook/internal/repos"
)

// SummaryService answers sellable items summary calls against the local
// catalog. It satisfies bulk.SummaryClient, so the bulk manager can run
// in-process or behind the HTTP endpoint.
type SummaryService struct {
	Prods *repos.ProductRepo
	Inv   *InventoryService
	Calc  *pricing.Calculator
}

func NewSummaryService(prods *repos.ProductRepo, inv *InventoryService, calc *pricing.Calculator) *SummaryService {
	return &SummaryService{Prods: prods, Inv: inv, Calc: calc}
}

var _ bulk.SummaryClient = (*SummaryService)(nil)

func (s *SummaryService) GetSellableItemsSummary(ctx context.Context, q bulk.SummaryQuery) (*bulk.SummaryResponse, error) {
	resp := &bulk.SummaryResponse{Success: true}
	for _, key := range q.ItemIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		catalog, productID, variantID, err := bulk.ParseItemKey(key)
		if err != nil {
			resp.Messages = append(resp.Messages, err.Error())
			continue
		}
		p, err := s.Prods.Get(productID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			resp.Messages = append(resp.Messages, fmt.Sprintf("%s: %s", key, pricing.CodeEntityNotFound))
			continue
		}

		item := bulk.SellableItemSummary{ItemID: key}
		// pricing is per product; variant keys only carry stock
		if variantID == "" {
			pc := pricing.NewContext(q.UserID, q.Currency)
			pc.ShopName, pc.CatalogName = q.ShopName, catalog
			if q.Date != nil {
				pc.EffectiveDate = *q.Date
			}
			ip, err := s.itemPricing(ctx, pc, p)
			if err != nil {
				return nil, err
			}
			item.Summaries = append(item.Summaries, bulk.Summary{Kind: bulk.KindPricing, Pricing: ip})
			for _, m := range pc.Messages() {
				resp.Messages = append(resp.Messages, fmt.Sprintf("%s: %s", key, m.Code))
			}
		}

		stockID := productID
		if variantID != "" {
			stockID = variantID
		}
		a, err := s.Inv.ProductAvailability(stockID, q.IncludeBundledItemsInventory)
		if err != nil {
			return nil, err
		}
		item.Summaries = append(item.Summaries, bulk.Summary{
			Kind: bulk.KindAvailability,
			Availability: &bulk.ItemAvailability{
				CatalogName:      catalog,
				ProductID:        productID,
				VariantID:        variantID,
				Status:           &domain.StockStatus{Name: a.Status, Value: a.Qty},
				Count:            a.Qty,
				AvailabilityDate: a.ETA,
			},
		})
		resp.Items = append(resp.Items, item)
	}
	return resp, nil
}

// itemPricing fills every price type. Adjusted prices fall back to the list
// price when no price card applies.
func (s *SummaryService) itemPricing(ctx context.Context, pc *pricing.Context, p *domain.Product) (*bulk.ItemPricing, error) {
	variants, err := s.Prods.Variants(p.ID)
	if err != nil {
		return nil, err
	}
	item := p.SellableItem(variants)

	out := &bulk.ItemPricing{ProductID: p.ID, Currency: pc.Currency}
	out.ListPrice = listPrice(p.Price, p.Currency, pc.Currency)

	sell, err := s.Calc.SellPrice(ctx, pc, item, "")
	if err != nil {
		return nil, err
	}
	out.AdjustedPrice = out.ListPrice
	if sell != nil {
		out.AdjustedPrice = amount(sell.Amount)
	}

	if len(variants) == 0 {
		out.LowestPricedVariant = out.AdjustedPrice
		out.LowestPricedVariantListPrice = out.ListPrice
		out.HighestPricedVariant = out.AdjustedPrice
		return out, nil
	}

	sells, err := s.Calc.VariationSellPrices(ctx, pc, item, "")
	if err != nil {
		return nil, err
	}
	for _, v := range variants {
		vList := listPrice(v.Price, p.Currency, pc.Currency)
		vAdj := vList
		if sp, ok := sells[v.ID]; ok {
			vAdj = amount(sp.Amount)
		}
		if vAdj == nil {
			continue
		}
		if out.LowestPricedVariant == nil || vAdj.LessThan(*out.LowestPricedVariant) {
			out.LowestPricedVariant = vAdj
			out.LowestPricedVariantListPrice = vList
		}
		if out.HighestPricedVariant == nil || vAdj.GreaterThan(*out.HighestPricedVariant) {
			out.HighestPricedVariant = vAdj
		}
	}
	return out, nil
}

// listPrice is only known in the catalog's own currency.
func listPrice(price decimal.Decimal, catalogCurrency, currency string) *decimal.Decimal {
	if !strings.EqualFold(catalogCurrency, currency) {
		return nil
	}
	return amount(price)
}

func amount(d decimal.Decimal) *decimal.Decimal { return &d }
