package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"

	"pricebook/internal/cache"
	"pricebook/internal/config"
	"pricebook/internal/http/handlers"
	applog "pricebook/internal/log"
	"pricebook/internal/repos"
)

func testConfig() config.Config {
	return config.Config{
		DBDSN:                ":memory:",
		ShopName:             "Storefront",
		CatalogName:          "Retro_Catalog",
		DefaultCurrency:      "USD",
		DefaultPriceBook:     "Storefront_PriceBook",
		PriceCacheEnabled:    true,
		PriceCacheName:       "Pricing",
		PriceRequireApproval: true,
		PriceBookBlocks:      []string{"explicit", "customer-group", "catalog-default"},
		SummaryMode:          "local",
	}
}

func newDeps(t *testing.T) (*handlers.Deps, *sqlx.DB) {
	t.Helper()
	cfg := testConfig()
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	deps, err := handlers.NewDeps(db, cfg, cache.NewStore(cache.NewMemory()))
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	return deps, db
}

// newApp mirrors the production routes without rate limits.
func newApp(t *testing.T) *fiber.App {
	t.Helper()
	deps, _ := newDeps(t)
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Server().MaxRequestBodySize = 1 << 20
	app.Use(requestid.New())
	app.Use(handlers.Shopper(deps.Customers))

	app.Get("/", deps.CategoryHandler.Home)
	app.Get("/search", deps.SearchHandler.Search)
	app.Get("/category/:id", deps.CategoryHandler.List)
	app.Get("/product/:id", deps.ProductHandler.Detail)
	app.Get("/product/:id/price", deps.ProductHandler.Price)
	api := app.Group("/api/v1")
	api.Get("/availability", deps.InventoryHandler.Check)
	api.Post("/sellable-items/summary", deps.SummaryHandler.Summarize)
	return app
}

func doJSON(t *testing.T, app *fiber.App, req *http.Request, out any) int {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			t.Fatalf("decode %s: %v body=%s", req.URL, err, body)
		}
	}
	return resp.StatusCode
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf lockedBuf
	applog.SetOutput(&buf)
	defer applog.SetOutput(os.Stdout)

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func hasAction(entries []logEntry, action string) bool {
	for _, e := range entries {
		if e.Action == action {
			return true
		}
	}
	return false
}
