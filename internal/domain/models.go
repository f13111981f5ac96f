package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	CreatedAt string `db:"created_at" json:"createdAt"`
	UpdatedAt string `db:"updated_at" json:"updatedAt"`
}

type Product struct {
	ID          string          `db:"id"`
	CategoryID  string          `db:"category_id"`
	CatalogName string          `db:"catalog_name"`
	Title       string          `db:"title"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"` // catalog list price
	Currency    string          `db:"currency"`
	CardName    string          `db:"price_card_name"` // explicit price card, empty means tag matching
	TagsCSV     string          `db:"tags"`
	Active      bool            `db:"active"`
	CreatedAt   string          `db:"created_at"`
	UpdatedAt   string          `db:"updated_at"`
}

type Variant struct {
	ID        string          `db:"id" json:"id"`
	ProductID string          `db:"product_id" json:"productId"`
	Name      string          `db:"name" json:"name"`
	Price     decimal.Decimal `db:"price" json:"price"`
	CardName  string          `db:"price_card_name" json:"priceCardName"`
	TagsCSV   string          `db:"tags" json:"tags"`
}

type BundleComponent struct {
	BundleID    string `db:"bundle_id"`
	ComponentID string `db:"component_id"`
	Qty         int    `db:"qty"`
}

type Availability struct {
	Status string     `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int        `json:"qty,omitempty"`
	ETA    *time.Time `json:"eta,omitempty"`
}

type Customer struct {
	ID    string `db:"id" json:"id"`
	Email string `db:"email" json:"email"`
	Name  string `db:"name" json:"name"`
}

// Shopper is the identity of the current visitor; ID is empty for anonymous sessions.
type Shopper struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

type StockStatus struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ProductEntity is a product row in a storefront result set. The bulk manager
// writes prices and stock directly onto it.
type ProductEntity struct {
	ProductID   string `json:"productId"`
	CatalogName string `json:"catalogName"`
	VariantID   string `json:"variantId,omitempty"`
	Title       string `json:"title"`

	ListPrice                         *decimal.Decimal `json:"listPrice,omitempty"`
	AdjustedPrice                     *decimal.Decimal `json:"adjustedPrice,omitempty"`
	LowestPricedVariantAdjustedPrice  *decimal.Decimal `json:"lowestPricedVariantAdjustedPrice,omitempty"`
	LowestPricedVariantListPrice      *decimal.Decimal `json:"lowestPricedVariantListPrice,omitempty"`
	HighestPricedVariantAdjustedPrice *decimal.Decimal `json:"highestPricedVariantAdjustedPrice,omitempty"`

	StockStatus           *StockStatus `json:"stockStatus,omitempty"`
	StockStatusName       string       `json:"stockStatusName,omitempty"`
	StockAvailabilityDate *time.Time   `json:"stockAvailabilityDate,omitempty"`
}

func NewProductEntity(p Product) *ProductEntity {
	return &ProductEntity{ProductID: p.ID, CatalogName: p.CatalogName, Title: p.Title}
}
