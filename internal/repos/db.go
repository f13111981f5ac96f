package repos

import (
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"pricebook/internal/domain"
)

// OpenDB opens sqlite by default and postgres for postgres:// DSNs, then applies
// the schema and the idempotent demo seed.
func OpenDB(dsn string) (*sqlx.DB, error) {
	driver := "sqlite"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "postgres"
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// every sqlite connection to :memory: is its own database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	if err := seedCatalog(db); err != nil {
		return nil, err
	}
	if err := seedCustomers(db); err != nil {
		return nil, err
	}
	if err := seedPriceCards(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	if db.DriverName() == "sqlite" {
		if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
			return err
		}
	}
	schema := `
-- Catalog
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  catalog_name TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL CHECK (price >= 0),
  currency TEXT NOT NULL DEFAULT 'USD',
  price_card_name TEXT NOT NULL DEFAULT '',
  tags TEXT NOT NULL DEFAULT '',
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_title    ON products(LOWER(title));

CREATE TABLE IF NOT EXISTS product_variants(
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL CHECK (price >= 0),
  price_card_name TEXT NOT NULL DEFAULT '',
  tags TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_variants_product ON product_variants(product_id);

CREATE TABLE IF NOT EXISTS bundle_components(
  bundle_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  component_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  qty INTEGER NOT NULL DEFAULT 1 CHECK (qty >= 1),
  PRIMARY KEY(bundle_id, component_id)
);

-- Inventory (product or variant id per region)
CREATE TABLE IF NOT EXISTS inventory(
  product_id TEXT NOT NULL,
  region_code TEXT NOT NULL,
  qty INTEGER NOT NULL DEFAULT 0 CHECK (qty >= 0),
  available_at TEXT,
  updated_at TEXT,
  PRIMARY KEY(product_id, region_code)
);
CREATE INDEX IF NOT EXISTS idx_inventory_product ON inventory(product_id);

-- Customers & sessions
CREATE TABLE IF NOT EXISTS customers(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  customer_id TEXT NULL REFERENCES customers(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_customer ON sessions(customer_id);

-- Pricing
CREATE TABLE IF NOT EXISTS price_cards(
  id TEXT PRIMARY KEY,            -- {book}-{name}
  book_name TEXT NOT NULL,
  name TEXT NOT NULL,
  list_name TEXT NOT NULL,        -- PriceBookCards-{book}
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_price_cards_list ON price_cards(list_name);

CREATE TABLE IF NOT EXISTS price_snapshots(
  id TEXT PRIMARY KEY,
  card_id TEXT NOT NULL REFERENCES price_cards(id) ON DELETE CASCADE,
  seq INTEGER NOT NULL DEFAULT 0,
  begin_date TEXT NOT NULL,       -- RFC3339, UTC
  approval_status TEXT NOT NULL DEFAULT 'Draft',
  components TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_price_snapshots_card ON price_snapshots(card_id);

CREATE TABLE IF NOT EXISTS price_tiers(
  snapshot_id TEXT NOT NULL REFERENCES price_snapshots(id) ON DELETE CASCADE,
  seq INTEGER NOT NULL DEFAULT 0,
  currency TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  amount TEXT NOT NULL,
  PRIMARY KEY(snapshot_id, currency, quantity)
);

CREATE TABLE IF NOT EXISTS snapshot_tags(
  snapshot_id TEXT NOT NULL REFERENCES price_snapshots(id) ON DELETE CASCADE,
  seq INTEGER NOT NULL DEFAULT 0,
  tag TEXT NOT NULL,
  PRIMARY KEY(snapshot_id, tag)
);
`
	_, err := db.Exec(schema)
	return err
}

func seedCatalog(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/products/inventory")

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO categories(id,name) VALUES
	  ('retro-consoles','Retro Gaming Consoles'),
	  ('vintage-radios','Vintage Radios')`)

	tx.MustExec(`INSERT INTO products(id,category_id,catalog_name,title,description,price,currency,price_card_name,tags) VALUES
	  ('gbc-001','retro-consoles','Retro_Catalog','Game Boy Color','Handheld console',129.99,'USD','gbc-001','handheld'),
	  ('nes-001','retro-consoles','Retro_Catalog','NES Console','Classic 8-bit console',199.00,'USD','','console,8bit'),
	  ('snes-001','retro-consoles','Retro_Catalog','Super Nintendo (SNES) Console','Classic 16-bit console',199.00,'USD','snes-001',''),
	  ('bundle-001','retro-consoles','Retro_Catalog','Console Starter Bundle','Game Boy Color and NES together',299.00,'USD','bundle-001',''),
	  ('radio-001','vintage-radios','Retro_Catalog','Philco 1939','Vintage vacuum tube radio',349.50,'USD','','')`)

	tx.MustExec(`INSERT INTO product_variants(id,product_id,name,price,price_card_name) VALUES
	  ('snes-001-pal','snes-001','PAL',189.00,'snes-001-pal'),
	  ('snes-001-ntsc','snes-001','NTSC',209.00,'snes-001-ntsc')`)

	tx.MustExec(`INSERT INTO bundle_components(bundle_id,component_id,qty) VALUES
	  ('bundle-001','gbc-001',1),
	  ('bundle-001','nes-001',1)`)

	tx.MustExec(`INSERT INTO inventory(product_id,region_code,qty,available_at) VALUES
	  ('gbc-001','20742',8,NULL),
	  ('gbc-001','10001',1,NULL),
	  ('nes-001','20742',0,NULL),
	  ('nes-001','10001',5,NULL),
	  ('snes-001','20742',7,NULL),
	  ('snes-001','10001',3,NULL),
	  ('snes-001-pal','20742',2,NULL),
	  ('radio-001','20742',0,'2026-12-01T00:00:00Z')`)

	return tx.Commit()
}

// seedCustomers ensures the demo customers and their sessions exist (idempotent).
func seedCustomers(db *sqlx.DB) error {
	customers := []domain.Customer{
		{ID: "u-alice", Email: "alice@acme.com", Name: "Alice"},
		{ID: "u-bob", Email: "bob@globex.com", Name: "Bob"},
		{ID: "u-carol", Email: "carol@localhost", Name: "Carol"},
		{ID: "u-dave", Email: "dave@initech.com", Name: "Dave"},
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, c := range customers {
		if _, err := tx.Exec(tx.Rebind(`
			INSERT INTO customers(id,email,name)
			VALUES(?,?,?)
			ON CONFLICT DO NOTHING
		`), c.ID, c.Email, c.Name); err != nil {
			return err
		}
		if _, err := tx.Exec(tx.Rebind(`
			INSERT INTO sessions(id,customer_id,last_seen)
			VALUES(?,?,CURRENT_TIMESTAMP)
			ON CONFLICT DO NOTHING
		`), "sid-"+strings.TrimPrefix(c.ID, "u-"), c.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func seedPriceCards(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM price_cards`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo price books")

	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	mid := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
	usd := func(amount string) domain.PriceTier {
		return domain.PriceTier{Currency: "USD", Quantity: 1, Amount: decimal.RequireFromString(amount)}
	}
	eur := func(amount string) domain.PriceTier {
		return domain.PriceTier{Currency: "EUR", Quantity: 1, Amount: decimal.RequireFromString(amount)}
	}
	snap := func(id string, begin time.Time, status string, tags []string, tiers ...domain.PriceTier) domain.PriceSnapshot {
		return domain.PriceSnapshot{ID: id, BeginDate: begin, ApprovalStatus: status, Tags: tags, Tiers: tiers}
	}
	card := func(book, name string, snaps ...domain.PriceSnapshot) domain.PriceCard {
		return domain.PriceCard{ID: domain.CardID(book, name), Book: book, Name: name, Snapshots: snaps}
	}
	approved := domain.SnapshotApproved

	cards := []domain.PriceCard{
		card("acme_PriceBook", "gbc-001",
			snap("acme-gbc-2020", past, approved, []string{"acme"}, usd("119.99"), eur("109.99")),
			snap("acme-gbc-2021-draft", mid, "Draft", []string{"acme"}, usd("1.00")),
			snap("acme-gbc-2099", future, approved, []string{"acme"}, usd("99.99"))),
		card("acme_PriceBook", "snes-001",
			snap("acme-snes-2020", past, approved, []string{"acme"}, usd("179.00"))),
		card("acme_PriceBook", "snes-001-pal",
			snap("acme-snes-pal-2020", past, approved, []string{"acme"}, usd("169.00"))),
		card("acme_PriceBook", "snes-001-ntsc",
			snap("acme-snes-ntsc-2020", past, approved, []string{"acme"}, usd("189.00"))),
		card("acme_PriceBook", "consoles",
			snap("acme-consoles-2020", past, approved, []string{"console"}, usd("179.00"), eur("165.00"))),
		card("acme_PriceBook", "untagged",
			snap("acme-untagged-2020", past, approved, nil, usd("5.00"))),
		card("globex_PriceBook", "gbc-001",
			snap("globex-gbc-2020", past, approved, []string{"globex"}, usd("124.99"))),
		card("Storefront_PriceBook", "gbc-001",
			snap("default-gbc-2020", past, approved, []string{"default"}, usd("129.99"), eur("119.99"))),
		card("Storefront_PriceBook", "snes-001",
			snap("default-snes-2020", past, approved, []string{"default"}, usd("199.00"))),
		card("Storefront_PriceBook", "bundle-001",
			snap("default-bundle-2020", past, approved, []string{"default"}, usd("279.00"))),
		card("Storefront_PriceBook", "consoles",
			snap("default-consoles-2020", past, approved, []string{"console"}, usd("189.00"))),
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, c := range cards {
		if err := insertCard(tx, c); err != nil {
			return err
		}
	}
	return tx.Commit()
}
