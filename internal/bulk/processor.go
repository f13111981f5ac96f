package bulk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	applog "pricebook/internal/log"
)

var (
	ErrInvalidRequest   = errors.New("invalid bulk request")
	ErrShopNameMismatch = errors.New("pricing and stock shop names differ")
	ErrRemoteCall       = errors.New("sellable items summary call failed")
)

// Processor turns one Request into exactly one SummaryClient call.
type Processor struct {
	Client SummaryClient
	now    func() time.Time
}

func NewProcessor(client SummaryClient) *Processor {
	return &Processor{Client: client, now: time.Now}
}

func (p *Processor) Process(ctx context.Context, req Request) *Result {
	res := &Result{Prices: map[string]CommercePrice{}}
	if err := checkShape(req); err != nil {
		return p.fail(res, StatusPreconditionFailed, err)
	}

	res.ItemIDs = ItemIDs(req.Pricing, req.Stock)
	if len(res.ItemIDs) == 0 {
		res.Success, res.Status = true, StatusSuccess
		return res
	}

	if !strings.EqualFold(req.Pricing.ShopName, req.Stock.ShopName) {
		applog.Security(nil, "bulk.shop_mismatch", map[string]any{
			"pricing_shop": req.Pricing.ShopName, "stock_shop": req.Stock.ShopName,
		})
		return p.fail(res, StatusPreconditionFailed, ErrShopNameMismatch)
	}

	q := SummaryQuery{
		ShopName:                     req.Pricing.ShopName,
		UserID:                       req.Pricing.UserID,
		Currency:                     req.Pricing.CurrencyCode,
		ItemIDs:                      res.ItemIDs,
		PriceTypeIDs:                 req.Pricing.PriceTypeIDs,
		IncludeBundledItemsInventory: req.Stock.IncludeBundledItemsInventory,
		StockDetailsLevel:            req.Stock.DetailsLevel,
	}
	at := req.Pricing.DateTime
	if at.IsZero() {
		at = p.clock()
	}
	q.Date = &at

	resp, err := p.Client.GetSellableItemsSummary(ctx, q)
	if err != nil {
		applog.Error(nil, "bulk.remote_failed", err, map[string]any{"items": len(q.ItemIDs)})
		return p.fail(res, StatusRemoteFailed, fmt.Errorf("%w: %v", ErrRemoteCall, err))
	}
	if resp == nil {
		applog.Error(nil, "bulk.remote_failed", ErrRemoteCall, map[string]any{"items": len(q.ItemIDs)})
		return p.fail(res, StatusRemoteFailed, fmt.Errorf("%w: empty response", ErrRemoteCall))
	}

	var pricing []*ItemPricing
	var stock []*ItemAvailability
	for _, item := range resp.Items {
		for _, s := range item.Summaries {
			switch s.Kind {
			case KindPricing:
				if s.Pricing != nil {
					pricing = append(pricing, s.Pricing)
				}
			case KindAvailability:
				if s.Availability != nil {
					stock = append(stock, s.Availability)
				}
			}
		}
	}
	res.Prices = processPricing(req.Pricing, pricing)
	res.StockInformation = processStock(req.Stock, stock)

	res.Success = resp.Success
	if resp.Success {
		res.Status = StatusSuccess
	} else {
		res.Status = StatusRemoteFailed
		res.Err = fmt.Errorf("%w: %s", ErrRemoteCall, strings.Join(resp.Messages, "; "))
	}
	return res
}

func (p *Processor) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}

func (p *Processor) fail(res *Result, st Status, err error) *Result {
	res.Success, res.Status, res.Err = false, st, err
	return res
}

func checkShape(req Request) error {
	switch {
	case req.Pricing == nil:
		return fmt.Errorf("%w: missing pricing request", ErrInvalidRequest)
	case req.Stock == nil:
		return fmt.Errorf("%w: missing stock request", ErrInvalidRequest)
	case req.Pricing.ShopName == "":
		return fmt.Errorf("%w: pricing shop name is empty", ErrInvalidRequest)
	case req.Stock.ShopName == "":
		return fmt.Errorf("%w: stock shop name is empty", ErrInvalidRequest)
	case req.Pricing.CatalogName == "":
		return fmt.Errorf("%w: catalog name is empty", ErrInvalidRequest)
	}
	return nil
}

// processPricing keeps the first pricing summary per requested product and
// drops price types the caller did not ask for.
func processPricing(req *PricingRequest, summaries []*ItemPricing) map[string]CommercePrice {
	want := map[string]bool{}
	types := req.PriceTypeIDs
	if len(types) == 0 {
		types = DefaultPriceTypeIDs
	}
	for _, t := range types {
		want[t] = true
	}
	requested := map[string]bool{}
	for _, id := range req.ProductIDs {
		requested[id] = true
	}

	out := map[string]CommercePrice{}
	for _, s := range summaries {
		if !requested[s.ProductID] {
			continue
		}
		if _, dup := out[s.ProductID]; dup {
			continue
		}
		cp := CommercePrice{ProductID: s.ProductID, CurrencyCode: s.Currency}
		if want[PriceTypeList] {
			cp.ListPrice = s.ListPrice
		}
		if want[PriceTypeAdjusted] {
			cp.AdjustedPrice = s.AdjustedPrice
		}
		if want[PriceTypeLowestPricedVariant] {
			cp.LowestPricedVariant = s.LowestPricedVariant
		}
		if want[PriceTypeLowestPricedVariantListPrice] {
			cp.LowestPricedVariantListPrice = s.LowestPricedVariantListPrice
		}
		if want[PriceTypeHighestPricedVariant] {
			cp.HighestPricedVariant = s.HighestPricedVariant
		}
		out[s.ProductID] = cp
	}
	return out
}

// processStock emits one entry per requested inventory product that has an
// availability summary, in request order.
func processStock(req *StockRequest, summaries []*ItemAvailability) []StockInformation {
	var out []StockInformation
	for _, p := range req.Products {
		for _, s := range summaries {
			if s.ProductID != p.ProductID || s.VariantID != p.VariantID {
				continue
			}
			out = append(out, StockInformation{
				CatalogName:      p.CatalogName,
				ProductID:        s.ProductID,
				VariantID:        s.VariantID,
				Status:           s.Status,
				Count:            s.Count,
				AvailabilityDate: s.AvailabilityDate,
			})
			break
		}
	}
	return out
}
