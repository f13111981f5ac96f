// pricectl resolves price books, quotes prices and runs bulk summaries against
// the local catalog database.
//
// Usage:
//
//	pricectl book --shopper u-alice
//	pricectl price --shopper u-alice --currency EUR --at 2022-01-01 gbc-001
//	pricectl summary --shopper u-bob --bundled gbc-001 bundle-001
//	pricectl card import --file cards.json
//	pricectl stock gbc-001 20742 3
//	pricectl customer login u-alice
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"

	"pricebook/internal/bulk"
	"pricebook/internal/cache"
	"pricebook/internal/config"
	"pricebook/internal/domain"
	applog "pricebook/internal/log"
	"pricebook/internal/pricing"
	"pricebook/internal/repos"
	"pricebook/internal/services"
	"pricebook/internal/validate"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "pricectl",
		Usage: "Customer price book and bulk price/stock tooling",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Usage:   "Database DSN (sqlite path or postgres:// URL)",
				EnvVars: []string{"DB_DSN"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			applog.SetOutput(os.Stderr)
			applog.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			bookCommand(),
			priceCommand(),
			summaryCommand(),
			cardCommand(),
			stockCommand(),
			customerCommand(),
		},
	}
}

type env struct {
	cfg  config.Config
	db   *sqlx.DB
	calc *pricing.Calculator
}

func open(c *cli.Context) (*env, error) {
	cfg := config.Load()
	if dsn := c.String("db"); dsn != "" {
		cfg.DBDSN = dsn
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDSN, err)
	}
	calc, err := pricing.NewCalculator(repos.NewCustomerRepo(db), repos.NewPriceCardRepo(db), cache.NewStore(cache.NewMemory()), pricing.Options{
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
		_ = db.Close()
		return nil, err
	}
	return &env{cfg: cfg, db: db, calc: calc}, nil
}

func shopperFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "shopper", Aliases: []string{"s"}, Usage: "Customer id; empty prices anonymously"},
		&cli.StringFlag{Name: "currency", Aliases: []string{"c"}, Usage: "ISO currency code (default DEFAULT_CURRENCY)"},
		&cli.StringFlag{Name: "at", Usage: "Effective date, RFC3339 or YYYY-MM-DD (default now)"},
	}
}

func pricingContext(c *cli.Context, e *env) (*pricing.Context, error) {
	currency := e.cfg.DefaultCurrency
	if raw := c.String("currency"); raw != "" {
		cur, ok := validate.Currency(raw)
		if !ok {
			return nil, fmt.Errorf("invalid currency %q", raw)
		}
		currency = cur
	}
	pc := pricing.NewContext(c.String("shopper"), currency)
	pc.ShopName, pc.CatalogName = e.cfg.ShopName, e.cfg.CatalogName
	if raw := c.String("at"); raw != "" {
		at, ok := validate.Date(raw)
		if !ok {
			return nil, fmt.Errorf("invalid date %q", raw)
		}
		pc.EffectiveDate = at
	}
	return pc, nil
}

func bookFlag(c *cli.Context) (string, error) {
	raw := c.String("book")
	if raw == "" {
		return "", nil
	}
	book, ok := validate.Book(raw)
	if !ok {
		return "", fmt.Errorf("invalid book %q", raw)
	}
	return book, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func bookCommand() *cli.Command {
	return &cli.Command{
		Name:  "book",
		Usage: "Print the price book a shopper resolves to",
		Flags: append(shopperFlags(), &cli.StringFlag{Name: "book", Usage: "Explicit book name"}),
		Action: func(c *cli.Context) error {
			e, err := open(c)
			if err != nil {
				return err
			}
			defer e.db.Close()
			pc, err := pricingContext(c, e)
			if err != nil {
				return err
			}
			explicit, err := bookFlag(c)
			if err != nil {
				return err
			}
			book, err := e.calc.ResolveBook(c.Context, pc, explicit)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"shopper":  pc.ShopperID,
				"pipeline": e.calc.Books.Names(),
				"book":     book,
				"messages": pc.Messages(),
			})
		},
	}
}

func priceCommand() *cli.Command {
	return &cli.Command{
		Name:      "price",
		Usage:     "Quote the sell price of a product",
		ArgsUsage: "<productID>",
		Flags:     append(shopperFlags(), &cli.StringFlag{Name: "book", Usage: "Explicit book name"}),
		Action: func(c *cli.Context) error {
			id, ok := validate.ID(c.Args().First())
			if !ok {
				return cli.Exit("a product id is required", 2)
			}
			e, err := open(c)
			if err != nil {
				return err
			}
			defer e.db.Close()
			pc, err := pricingContext(c, e)
			if err != nil {
				return err
			}
			explicit, err := bookFlag(c)
			if err != nil {
				return err
			}
			svc := services.NewPricingService(e.calc, repos.NewProductRepo(e.db))
			q, err := svc.Quote(c.Context, pc, id, explicit)
			if err != nil {
				return err
			}
			return printJSON(q)
		},
	}
}

func summaryCommand() *cli.Command {
	return &cli.Command{
		Name:      "summary",
		Usage:     "Price and stock several products with one bulk call",
		ArgsUsage: "<productID>...",
		Flags: append(shopperFlags(),
			&cli.BoolFlag{Name: "bundled", Usage: "Derive bundle stock from components"},
			&cli.StringSliceFlag{Name: "price-type", Usage: "Price types to populate (default all)"},
		),
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("at least one product id is required", 2)
			}
			e, err := open(c)
			if err != nil {
				return err
			}
			defer e.db.Close()
			pc, err := pricingContext(c, e)
			if err != nil {
				return err
			}

			prodRepo := repos.NewProductRepo(e.db)
			inv := services.NewInventoryService(repos.NewInventoryRepo(e.db), prodRepo)
			m := bulk.NewManager(services.NewSummaryService(prodRepo, inv, e.calc))

			var products []*domain.ProductEntity
			for _, raw := range c.Args().Slice() {
				id, ok := validate.ID(raw)
				if !ok {
					return fmt.Errorf("invalid product id %q", raw)
				}
				p, err := prodRepo.Get(id)
				if err != nil {
					return err
				}
				if p == nil {
					fmt.Fprintf(os.Stderr, "skipping unknown product %s\n", id)
					continue
				}
				products = append(products, domain.NewProductEntity(*p))
			}

			sf := bulk.Storefront{ShopName: e.cfg.ShopName, CatalogName: e.cfg.CatalogName, Currency: pc.Currency}
			res := m.Aggregate(c.Context, sf, bulk.Visitor{CustomerID: pc.ShopperID}, products, pc.AsOf(),
				c.Bool("bundled"), c.StringSlice("price-type")...)
			out := map[string]any{"status": res.Status, "success": res.Success, "products": products}
			if res.Err != nil {
				out["error"] = res.Err.Error()
			}
			return printJSON(out)
		},
	}
}

func cardCommand() *cli.Command {
	return &cli.Command{
		Name:  "card",
		Usage: "Inspect and import price cards",
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Print a price card",
				ArgsUsage: "<book> <cardName>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("book and card name are required", 2)
					}
					e, err := open(c)
					if err != nil {
						return err
					}
					defer e.db.Close()
					card, err := repos.NewPriceCardRepo(e.db).FindEntity(domain.CardID(c.Args().Get(0), c.Args().Get(1)))
					if err != nil {
						return err
					}
					if card == nil {
						return fmt.Errorf("card %s not found", domain.CardID(c.Args().Get(0), c.Args().Get(1)))
					}
					return printJSON(card)
				},
			},
			{
				Name:  "import",
				Usage: "Create or replace price cards from a JSON array file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true},
				},
				Action: func(c *cli.Context) error {
					raw, err := os.ReadFile(c.String("file"))
					if err != nil {
						return err
					}
					var cards []domain.PriceCard
					if err := json.Unmarshal(raw, &cards); err != nil {
						return fmt.Errorf("parse %s: %w", c.String("file"), err)
					}
					e, err := open(c)
					if err != nil {
						return err
					}
					defer e.db.Close()
					n, err := importCards(repos.NewPriceCardRepo(e.db), cards)
					if err != nil {
						return err
					}
					// running servers pick the change up once PRICE_CACHE_TTL expires
					fmt.Printf("imported %d cards\n", n)
					return nil
				},
			},
		},
	}
}

// importCards replaces each card with the given one. Card ids are always
// derived from book and name; the whole file is checked before anything is written.
func importCards(r *repos.PriceCardRepo, cards []domain.PriceCard) (int, error) {
	for i, card := range cards {
		if _, ok := validate.Book(card.Book); !ok || card.Book != strings.TrimSpace(card.Book) || card.Name == "" {
			return 0, fmt.Errorf("card %d (%q): book and name are required", i, card.ID)
		}
	}
	for _, card := range cards {
		card.ID = domain.CardID(card.Book, card.Name)
		if err := r.Upsert(card); err != nil {
			return 0, fmt.Errorf("import %s: %w", card.ID, err)
		}
		applog.Audit(nil, "card.import", map[string]any{"card": card.ID, "snapshots": len(card.Snapshots)})
	}
	return len(cards), nil
}

func stockCommand() *cli.Command {
	return &cli.Command{
		Name:      "stock",
		Usage:     "Set the on-hand quantity of a product or variant in a region",
		ArgsUsage: "<productID> <region> <qty>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 3 {
				return cli.Exit("product id, region and qty are required", 2)
			}
			id, ok := validate.ID(c.Args().Get(0))
			if !ok {
				return fmt.Errorf("invalid product id %q", c.Args().Get(0))
			}
			region, ok := validate.Region(c.Args().Get(1))
			if !ok {
				return fmt.Errorf("invalid region %q", c.Args().Get(1))
			}
			qty, err := strconv.Atoi(c.Args().Get(2))
			if err != nil || qty < 0 {
				return fmt.Errorf("invalid qty %q", c.Args().Get(2))
			}
			e, err := open(c)
			if err != nil {
				return err
			}
			defer e.db.Close()
			invRepo := repos.NewInventoryRepo(e.db)
			if err := invRepo.UpsertQty(id, region, qty); err != nil {
				return err
			}
			applog.Audit(nil, "inventory.update", map[string]any{"product": id, "region": region, "qty": qty})
			a, err := services.NewInventoryService(invRepo, repos.NewProductRepo(e.db)).CheckAvailability(id, region)
			if err != nil {
				return err
			}
			return printJSON(a)
		},
	}
}

func customerCommand() *cli.Command {
	return &cli.Command{
		Name:  "customer",
		Usage: "Manage demo customers and their sessions",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create a customer",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "name"},
				},
				Action: func(c *cli.Context) error {
					id, ok := validate.ID(c.String("id"))
					if !ok {
						return fmt.Errorf("invalid customer id %q", c.String("id"))
					}
					e, err := open(c)
					if err != nil {
						return err
					}
					defer e.db.Close()
					cust := domain.Customer{ID: id, Email: strings.TrimSpace(c.String("email")), Name: c.String("name")}
					if err := repos.NewCustomerRepo(e.db).Create(cust); err != nil {
						return err
					}
					group, err := pricing.EmailDomainGroup{}.CustomerGroup(cust)
					if err != nil {
						fmt.Fprintf(os.Stderr, "warning: %v; the catalog book will apply\n", err)
					}
					return printJSON(map[string]any{"customer": cust, "group": group})
				},
			},
			{
				Name:      "login",
				Usage:     "Open a session for a customer and print its sid cookie value",
				ArgsUsage: "<customerID>",
				Action: func(c *cli.Context) error {
					id, ok := validate.ID(c.Args().First())
					if !ok {
						return cli.Exit("a customer id is required", 2)
					}
					e, err := open(c)
					if err != nil {
						return err
					}
					defer e.db.Close()
					sid, err := login(repos.NewCustomerRepo(e.db), id)
					if err != nil {
						return err
					}
					return printJSON(map[string]any{"sid": sid, "customer": id, "issuedAt": time.Now().UTC()})
				},
			},
		},
	}
}

// login binds a fresh session id to an existing customer.
func login(customers *repos.CustomerRepo, id string) (string, error) {
	cust, err := customers.ByID(id)
	if err != nil {
		return "", err
	}
	if cust == nil {
		return "", fmt.Errorf("customer %s not found", id)
	}
	sid := uuid.NewString()
	if err := customers.BindSession(sid, cust.ID); err != nil {
		return "", err
	}
	applog.Audit(nil, "customer.login", map[string]any{"customer": cust.ID})
	return sid, nil
}
