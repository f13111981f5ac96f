package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"pricebook/internal/cache"
	"pricebook/internal/config"
	"pricebook/internal/http/handlers"
	applog "pricebook/internal/log"
	"pricebook/internal/repos"
)

func main() {
	cfg := config.Load()
	applog.SetLevel(cfg.LogLevel)

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
			applog.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// One in-memory storage backs both the rate limiters and the price card cache.
	storage := cache.NewMemory()
	deps, err := handlers.NewDeps(db, cfg, cache.NewStore(storage))
	if err != nil {
		log.Fatal(err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(handlers.RateLimit{
		Storage:    storage,
		Scope:      "global",
		Max:        60,
		Expiration: time.Minute,
		Skip: func(c *fiber.Ctx) bool {
			// the storefront calls its own summary endpoint in http mode
			return c.Path() == "/api/v1/sellable-items/summary"
		},
	}.Handler())
	app.Use(handlers.Shopper(deps.Customers))

	// ---------- Storefront ----------
	app.Get("/", deps.CategoryHandler.Home)
	searchLimiter := handlers.RateLimit{Storage: storage, Scope: "search", Max: 20, Expiration: time.Minute}.Handler()
	app.Get("/search", searchLimiter, deps.SearchHandler.Search)
	app.Get("/category/:id", deps.CategoryHandler.List)
	app.Get("/product/:id", deps.ProductHandler.Detail)
	app.Get("/product/:id/price", deps.ProductHandler.Price)

	// ---------- API ----------
	api := app.Group("/api/v1")
	availLimiter := handlers.RateLimit{Storage: storage, Scope: "availability", Max: 15, Expiration: 30 * time.Second}.Handler()
	api.Get("/availability", availLimiter, deps.InventoryHandler.Check)
	api.Post("/sellable-items/summary", deps.SummaryHandler.Summarize)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Page not found"})
	})

	applog.Info(nil, "server.start", map[string]any{"port": cfg.Port, "shop": cfg.ShopName, "summary": cfg.SummaryMode})
	log.Fatal(app.Listen(":" + cfg.Port))
}
