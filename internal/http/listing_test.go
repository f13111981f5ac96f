package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"pricebook/internal/bulk"
	"pricebook/internal/domain"
	"pricebook/internal/http/handlers"
)

type categoryPage struct {
	CategoryID string                 `json:"categoryId"`
	Currency   string                 `json:"currency"`
	Products   []domain.ProductEntity `json:"products"`
	Count      int                    `json:"count"`
}

func find(products []domain.ProductEntity, id string) *domain.ProductEntity {
	for i := range products {
		if products[i].ProductID == id {
			return &products[i]
		}
	}
	return nil
}

func TestCategoryPricesForAnonymousShopper(t *testing.T) {
	app := newApp(t)
	var page categoryPage
	if got := doJSON(t, app, httptest.NewRequest("GET", "/category/retro-consoles", nil), &page); got != http.StatusOK {
		t.Fatalf("want 200, got %d", got)
	}
	if page.Count != 4 || page.Currency != "USD" {
		t.Fatalf("unexpected page %+v", page)
	}
	gbc := find(page.Products, "gbc-001")
	if gbc == nil || gbc.AdjustedPrice == nil || gbc.AdjustedPrice.String() != "129.99" {
		t.Fatalf("want storefront price, got %+v", gbc)
	}
	if gbc.StockStatus == nil || gbc.StockStatusName != "In Stock" {
		t.Fatalf("want stock copied, got %+v", gbc)
	}
}

func TestCategoryPricesForCustomerGroup(t *testing.T) {
	app := newApp(t)
	req := httptest.NewRequest("GET", "/category/retro-consoles", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "sid-alice"})
	var page categoryPage
	if got := doJSON(t, app, req, &page); got != http.StatusOK {
		t.Fatalf("want 200, got %d", got)
	}
	gbc := find(page.Products, "gbc-001")
	if gbc == nil || gbc.AdjustedPrice == nil || gbc.AdjustedPrice.String() != "119.99" {
		t.Fatalf("want acme price, got %+v", gbc)
	}
	// acme has no bundle card; the list price stands in
	bundle := find(page.Products, "bundle-001")
	if bundle == nil || bundle.AdjustedPrice == nil || bundle.AdjustedPrice.String() != "299" {
		t.Fatalf("want list price fallback, got %+v", bundle)
	}
}

func TestCategoryCurrencyHeader(t *testing.T) {
	app := newApp(t)
	req := httptest.NewRequest("GET", "/category/retro-consoles", nil)
	req.Header.Set("X-Currency", "eur")
	var page categoryPage
	doJSON(t, app, req, &page)
	if page.Currency != "EUR" {
		t.Fatalf("want EUR, got %q", page.Currency)
	}
	gbc := find(page.Products, "gbc-001")
	if gbc == nil || gbc.AdjustedPrice == nil || gbc.AdjustedPrice.String() != "119.99" {
		t.Fatalf("want EUR storefront price, got %+v", gbc)
	}
	if gbc.ListPrice != nil {
		t.Fatalf("list price is USD only, got %v", gbc.ListPrice)
	}
}

type countingClient struct{ calls int }

func (c *countingClient) GetSellableItemsSummary(context.Context, bulk.SummaryQuery) (*bulk.SummaryResponse, error) {
	c.calls++
	return &bulk.SummaryResponse{Success: true}, nil
}

func TestListingMemoizesPerRequest(t *testing.T) {
	client := &countingClient{}
	l := &handlers.Listing{
		Bulk:       bulk.NewManager(client),
		Storefront: bulk.Storefront{ShopName: "Storefront", CatalogName: "Retro_Catalog", Currency: "USD"},
	}
	products := []domain.Product{{ID: "gbc-001", CatalogName: "Retro_Catalog"}}

	app := fiber.New()
	app.Get("/twice", func(c *fiber.Ctx) error {
		a := l.Entities(c, "Category/retro-consoles", "USD", products)
		b := l.Entities(c, "Category/retro-consoles", "USD", products)
		if a[0] != b[0] {
			return c.SendStatus(fiber.StatusConflict)
		}
		return c.SendStatus(fiber.StatusOK)
	})
	if got := doJSON(t, app, httptest.NewRequest("GET", "/twice", nil), nil); got != http.StatusOK {
		t.Fatalf("want memoized entities, got %d", got)
	}
	if client.calls != 1 {
		t.Fatalf("want 1 summary call, got %d", client.calls)
	}

	// a new request aggregates again
	doJSON(t, app, httptest.NewRequest("GET", "/twice", nil), nil)
	if client.calls != 2 {
		t.Fatalf("want 2 summary calls, got %d", client.calls)
	}
}

func TestShopperIssuesAnonymousSession(t *testing.T) {
	app := newApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	sid := ""
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			sid = c.Value
		}
	}
	if len(sid) != 36 {
		t.Fatalf("want uuid sid cookie, got %q", sid)
	}

	// known sessions are not reissued
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "sid-alice"})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			t.Fatalf("sid reissued: %q", c.Value)
		}
	}
}
