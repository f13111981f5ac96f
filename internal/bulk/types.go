// Package bulk prices and stocks a whole page of products with one correlated
// remote call instead of one call per product.
package bulk

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pricebook/internal/domain"
)

const (
	PriceTypeList                         = "List"
	PriceTypeAdjusted                     = "Adjusted"
	PriceTypeLowestPricedVariant          = "LowestPricedVariant"
	PriceTypeLowestPricedVariantListPrice = "LowestPricedVariantListPrice"
	PriceTypeHighestPricedVariant         = "HighestPricedVariant"
)

var DefaultPriceTypeIDs = []string{
	PriceTypeList,
	PriceTypeAdjusted,
	PriceTypeLowestPricedVariant,
	PriceTypeLowestPricedVariantListPrice,
	PriceTypeHighestPricedVariant,
}

const StockDetailsAll = "All"

type PricingRequest struct {
	ShopName     string
	CatalogName  string
	CurrencyCode string
	UserID       string
	ProductIDs   []string
	PriceTypeIDs []string
	DateTime     time.Time // zero means now
}

type InventoryProduct struct {
	CatalogName string
	ProductID   string
	VariantID   string
}

type StockRequest struct {
	ShopName                     string
	Products                     []InventoryProduct
	Location                     string
	DetailsLevel                 string
	IncludeBundledItemsInventory bool
}

// Request pairs the pricing and stock halves of one sellable items summary.
type Request struct {
	Pricing *PricingRequest
	Stock   *StockRequest
}

type Status string

const (
	StatusSuccess            Status = "success"
	StatusPreconditionFailed Status = "precondition-failed"
	StatusRemoteFailed       Status = "remote-failed"
)

type CommercePrice struct {
	ProductID                    string           `json:"productId"`
	CurrencyCode                 string           `json:"currencyCode"`
	ListPrice                    *decimal.Decimal `json:"listPrice,omitempty"`
	AdjustedPrice                *decimal.Decimal `json:"adjustedPrice,omitempty"`
	LowestPricedVariant          *decimal.Decimal `json:"lowestPricedVariant,omitempty"`
	LowestPricedVariantListPrice *decimal.Decimal `json:"lowestPricedVariantListPrice,omitempty"`
	HighestPricedVariant         *decimal.Decimal `json:"highestPricedVariant,omitempty"`
}

type StockInformation struct {
	CatalogName      string              `json:"catalogName"`
	ProductID        string              `json:"productId"`
	VariantID        string              `json:"variantId,omitempty"`
	Status           *domain.StockStatus `json:"status,omitempty"`
	Count            int                 `json:"count"`
	AvailabilityDate *time.Time          `json:"availabilityDate,omitempty"`
}

// Result is the outcome of one aggregation call. Nothing is retried.
type Result struct {
	Success          bool
	Status           Status
	Err              error
	Prices           map[string]CommercePrice
	StockInformation []StockInformation
	ItemIDs          []string
}

// Wire types of the remote sellable items summary call.

const (
	KindPricing      = "SellableItemPricing"
	KindAvailability = "ItemAvailability"
)

type SummaryQuery struct {
	ShopName                     string     `json:"shopName"`
	UserID                       string     `json:"userId,omitempty"`
	Currency                     string     `json:"currency"`
	Date                         *time.Time `json:"date,omitempty"`
	ItemIDs                      []string   `json:"itemIds"`
	PriceTypeIDs                 []string   `json:"priceTypeIds,omitempty"`
	IncludeBundledItemsInventory bool       `json:"includeBundledItemsInventory"`
	StockDetailsLevel            string     `json:"stockDetailsLevel"`
}

type ItemPricing struct {
	ProductID                    string           `json:"productId"`
	Currency                     string           `json:"currency"`
	ListPrice                    *decimal.Decimal `json:"listPrice,omitempty"`
	AdjustedPrice                *decimal.Decimal `json:"adjustedPrice,omitempty"`
	LowestPricedVariant          *decimal.Decimal `json:"lowestPricedVariant,omitempty"`
	LowestPricedVariantListPrice *decimal.Decimal `json:"lowestPricedVariantListPrice,omitempty"`
	HighestPricedVariant         *decimal.Decimal `json:"highestPricedVariant,omitempty"`
}

type ItemAvailability struct {
	CatalogName      string              `json:"catalogName"`
	ProductID        string              `json:"productId"`
	VariantID        string              `json:"variantId,omitempty"`
	Status           *domain.StockStatus `json:"status,omitempty"`
	Count            int                 `json:"count"`
	AvailabilityDate *time.Time          `json:"availabilityDate,omitempty"`
}

// Summary is one typed result; Kind says which field is set.
type Summary struct {
	Kind         string            `json:"kind"`
	Pricing      *ItemPricing      `json:"pricing,omitempty"`
	Availability *ItemAvailability `json:"availability,omitempty"`
}

type SellableItemSummary struct {
	ItemID    string    `json:"itemId"`
	Summaries []Summary `json:"summaries"`
}

type SummaryResponse struct {
	Success  bool                  `json:"success"`
	Items    []SellableItemSummary `json:"items"`
	Messages []string              `json:"messages,omitempty"`
}

// SummaryClient executes the batched call. Timeouts and cancellation belong to
// the implementation and ctx.
type SummaryClient interface {
	GetSellableItemsSummary(ctx context.Context, q SummaryQuery) (*SummaryResponse, error)
}
