package handlers

import (
	"time"

	"github.com/jmoiron/sqlx"

	"pricebook/internal/bulk"
	"pricebook/internal/cache"
	"pricebook/internal/config"
	"pricebook/internal/pricing"
	"pricebook/internal/repos"
	"pricebook/internal/services"
)

type Deps struct {
	Customers *repos.CustomerRepo
	Summary   *services.SummaryService

	CategoryHandler  *CategoryHandler
	ProductHandler   *ProductHandler
	InventoryHandler *InventoryHandler
	SearchHandler    *SearchHandler
	SummaryHandler   *SummaryHandler
}

// NewDeps wires repos, services and handlers. Price cards are cached in store.
func NewDeps(db *sqlx.DB, cfg config.Config, store *cache.Store) (*Deps, error) {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	invRepo := repos.NewInventoryRepo(db)
	custRepo := repos.NewCustomerRepo(db)
	cardRepo := repos.NewPriceCardRepo(db)

	calc, err := pricing.NewCalculator(custRepo, cardRepo, store, pricing.Options{
		Blocks:      cfg.PriceBookBlocks,
		CatalogBook: cfg.DefaultPriceBook,
		Policy: cache.Policy{
			AllowCaching: cfg.PriceCacheEnabled,
			CacheName:    cfg.PriceCacheName,
			Expiration:   cfg.PriceCacheTTL,
		},
		RequireApproval: cfg.PriceRequireApproval,
	})
	if err != nil {
		return nil, err
	}

	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	invSvc := services.NewInventoryService(invRepo, prodRepo)
	pricingSvc := services.NewPricingService(calc, prodRepo)
	summarySvc := services.NewSummaryService(prodRepo, invSvc, calc)

	var client bulk.SummaryClient = summarySvc
	if cfg.SummaryMode == "http" {
		timeout := cfg.SummaryTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = bulk.NewHTTPClient(cfg.SummaryURL, timeout)
	}

	listing := &Listing{
		Bulk: bulk.NewManager(client),
		Storefront: bulk.Storefront{
			ShopName:    cfg.ShopName,
			CatalogName: cfg.CatalogName,
			Currency:    cfg.DefaultCurrency,
		},
	}

	return &Deps{
		Customers:        custRepo,
		Summary:          summarySvc,
		CategoryHandler:  &CategoryHandler{Catalog: catalogSvc, Listing: listing},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc, Pricing: pricingSvc, Listing: listing},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		SearchHandler:    &SearchHandler{Catalog: catalogSvc, Listing: listing},
		SummaryHandler:   &SummaryHandler{Summary: summarySvc, ShopName: cfg.ShopName},
	}, nil
}
