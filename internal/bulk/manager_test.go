package bulk_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"pricebook/internal/bulk"
)

var asOf = time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)

func TestAggregateEmptyListMakesNoCall(t *testing.T) {
	fc := &fakeClient{}
	res := bulk.NewManager(fc).Aggregate(context.Background(), storefront, bulk.Visitor{}, nil, asOf, false)
	if !res.Success {
		t.Fatalf("want success, got %+v", res)
	}
	if fc.calls != 0 {
		t.Fatalf("want 0 calls, got %d", fc.calls)
	}
}

func TestAggregateMissingShopLeavesProducts(t *testing.T) {
	fc := &fakeClient{}
	products := entities("A")
	sf := storefront
	sf.ShopName = ""
	res := bulk.NewManager(fc).Aggregate(context.Background(), sf, bulk.Visitor{}, products, asOf, false)
	if res.Success || res.Status != bulk.StatusPreconditionFailed {
		t.Fatalf("want precondition failure, got %+v", res)
	}
	if fc.calls != 0 {
		t.Fatalf("want 0 calls, got %d", fc.calls)
	}
	if products[0].ListPrice != nil || products[0].StockStatus != nil {
		t.Fatalf("product mutated: %+v", products[0])
	}
}

func TestAggregateDuplicateProductsDeduplicateKeys(t *testing.T) {
	fc := &fakeClient{resp: &bulk.SummaryResponse{Success: true}}
	products := entities("A", "A", "B")
	bulk.NewManager(fc).Aggregate(context.Background(), storefront, bulk.Visitor{CustomerID: "u-alice"}, products, asOf, true)
	if fc.calls != 1 {
		t.Fatalf("want 1 call, got %d", fc.calls)
	}
	q := fc.queries[0]
	if len(q.ItemIDs) != 2 {
		t.Fatalf("want 2 keys, got %v", q.ItemIDs)
	}
	if q.UserID != "u-alice" || !q.IncludeBundledItemsInventory || q.StockDetailsLevel != bulk.StockDetailsAll {
		t.Fatalf("unexpected query %+v", q)
	}
	if len(q.PriceTypeIDs) != len(bulk.DefaultPriceTypeIDs) {
		t.Fatalf("want default price types, got %v", q.PriceTypeIDs)
	}
}

func TestAggregateCopiesPricesOnlyForReturnedProducts(t *testing.T) {
	fc := &fakeClient{resp: &bulk.SummaryResponse{Success: true, Items: []bulk.SellableItemSummary{
		pricingSummary("A", "10.00", "8.00"),
		pricingSummary("C", "30.00", "25.00"),
	}}}
	products := entities("A", "B", "C")
	res := bulk.NewManager(fc).Aggregate(context.Background(), storefront, bulk.Visitor{}, products, asOf, false)
	if !res.Success {
		t.Fatalf("want success, got %+v", res)
	}
	a, b, c := products[0], products[1], products[2]
	if a.ListPrice == nil || a.ListPrice.String() != "10" || a.AdjustedPrice.String() != "8" {
		t.Fatalf("A not priced: %+v", a)
	}
	if a.LowestPricedVariantAdjustedPrice == nil || a.HighestPricedVariantAdjustedPrice == nil || a.LowestPricedVariantListPrice == nil {
		t.Fatalf("A variant prices missing: %+v", a)
	}
	if b.ListPrice != nil || b.AdjustedPrice != nil {
		t.Fatalf("B should be untouched: %+v", b)
	}
	if c.AdjustedPrice == nil || c.AdjustedPrice.String() != "25" {
		t.Fatalf("C not priced: %+v", c)
	}
}

func TestAggregateCopiesStock(t *testing.T) {
	restock := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	fc := &fakeClient{resp: &bulk.SummaryResponse{Success: true, Items: []bulk.SellableItemSummary{
		stockSummary("A", "OUT_OF_STOCK", 0, &restock),
	}}}
	products := entities("A", "B")
	bulk.NewManager(fc).Aggregate(context.Background(), storefront, bulk.Visitor{}, products, asOf, false)

	a := products[0]
	if a.StockStatus == nil || a.StockStatus.Name != "OUT_OF_STOCK" {
		t.Fatalf("A status not copied: %+v", a)
	}
	if a.StockStatusName != "Out of Stock" {
		t.Fatalf("want display name, got %q", a.StockStatusName)
	}
	if a.StockAvailabilityDate == nil || !a.StockAvailabilityDate.Equal(restock) {
		t.Fatalf("want availability date %v, got %v", restock, a.StockAvailabilityDate)
	}
	if products[1].StockStatus != nil {
		t.Fatalf("B should be untouched: %+v", products[1])
	}
}

func TestAggregateNilResultLeavesProducts(t *testing.T) {
	fc := &fakeClient{}
	products := entities("A")
	res := bulk.NewManager(fc).Aggregate(context.Background(), storefront, bulk.Visitor{}, products, asOf, false)
	if res.Success || res.Status != bulk.StatusRemoteFailed || !errors.Is(res.Err, bulk.ErrRemoteCall) {
		t.Fatalf("want remote failure, got %+v", res)
	}
	if products[0].ListPrice != nil || products[0].StockStatus != nil {
		t.Fatalf("product mutated: %+v", products[0])
	}
}

func TestAggregateReportsRemoteSuccessFlag(t *testing.T) {
	fc := &fakeClient{resp: &bulk.SummaryResponse{Success: false, Messages: []string{"partial"}, Items: []bulk.SellableItemSummary{
		pricingSummary("A", "10.00", "8.00"),
	}}}
	products := entities("A")
	res := bulk.NewManager(fc).Aggregate(context.Background(), storefront, bulk.Visitor{}, products, asOf, false)
	if res.Success || res.Status != bulk.StatusRemoteFailed {
		t.Fatalf("want reported failure, got %+v", res)
	}
	if products[0].ListPrice != nil || products[0].AdjustedPrice != nil {
		t.Fatalf("failed call mutated product: %+v", products[0])
	}
}

func TestAggregateFallsBackToStorefrontCatalog(t *testing.T) {
	fc := &fakeClient{resp: &bulk.SummaryResponse{Success: true}}
	products := entities("A")
	products[0].CatalogName = ""
	bulk.NewManager(fc).Aggregate(context.Background(), storefront, bulk.Visitor{}, products, asOf, false)
	if fc.calls != 1 || fc.queries[0].ItemIDs[0] != "Storefront|A|" {
		t.Fatalf("unexpected keys %+v", fc.queries)
	}
}
