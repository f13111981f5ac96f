package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"pricebook/internal/domain"
	"pricebook/internal/pricing"
	"pricebook/internal/repos"
)

var ErrProductNotFound = errors.New("product not found")

type PriceQuote struct {
	ProductID  string                  `json:"productId"`
	Book       string                  `json:"book,omitempty"`
	Currency   string                  `json:"currency"`
	AsOf       time.Time               `json:"asOf"`
	ListPrice  *domain.Price           `json:"listPrice,omitempty"`
	SellPrice  *domain.Price           `json:"sellPrice,omitempty"`
	Variations map[string]domain.Price `json:"variations,omitempty"`
	Messages   []pricing.Message       `json:"messages,omitempty"`
}

type PricingService struct {
	Calc  *pricing.Calculator
	Prods *repos.ProductRepo
}

func NewPricingService(calc *pricing.Calculator, prods *repos.ProductRepo) *PricingService {
	return &PricingService{Calc: calc, Prods: prods}
}

// Quote prices one product and its variations for the shopper on pc.
func (s *PricingService) Quote(ctx context.Context, pc *pricing.Context, productID, bookOverride string) (*PriceQuote, error) {
	p, err := s.Prods.Get(productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	variants, err := s.Prods.Variants(p.ID)
	if err != nil {
		return nil, err
	}
	item := p.SellableItem(variants)

	q := &PriceQuote{ProductID: p.ID, Currency: pc.Currency, AsOf: pc.AsOf()}
	if q.Book, err = s.Calc.ResolveBook(ctx, pc, bookOverride); err != nil {
		return nil, err
	}
	if strings.EqualFold(p.Currency, pc.Currency) {
		q.ListPrice = &domain.Price{Currency: pc.Currency, Amount: p.Price}
	}
	if q.Book != "" {
		if q.SellPrice, err = s.Calc.SellPrice(ctx, pc, item, q.Book); err != nil {
			return nil, err
		}
		if q.Variations, err = s.Calc.VariationSellPrices(ctx, pc, item, q.Book); err != nil {
			return nil, err
		}
	}
	q.Messages = pc.Messages()
	return q, nil
}
