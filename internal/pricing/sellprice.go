package pricing

import (
	"context"
	"fmt"
	"sort"

	"pricebook/internal/cache"
	"pricebook/internal/domain"
)

// Calculator produces sell prices: book, then card(s), then snapshot, then tier.
// A missing step yields a nil price and a message on the Context, not an error.
type Calculator struct {
	Books     *BookPipeline
	Cards     *CardCache
	Snapshots Selector
}

// ResolveBook runs the book pipeline and records BookNameNotFound when nothing resolves.
func (c *Calculator) ResolveBook(ctx context.Context, pc *Context, override string) (string, error) {
	book, err := c.Books.Run(ctx, override, pc)
	if err != nil {
		return "", err
	}
	if book == "" {
		pc.AddMessage(SeverityInformation, CodeBookNameNotFound, nil, "Book name was not found.")
	}
	return book, nil
}

func (c *Calculator) SellPrice(ctx context.Context, pc *Context, item domain.SellableItem, bookOverride string) (*domain.Price, error) {
	book, err := c.ResolveBook(ctx, pc, bookOverride)
	if err != nil || book == "" {
		return nil, err
	}
	return c.priceInBook(ctx, pc, book, item)
}

// VariationSellPrices prices every variation of item; unpriced variations are absent.
func (c *Calculator) VariationSellPrices(ctx context.Context, pc *Context, item domain.SellableItem, bookOverride string) (map[string]domain.Price, error) {
	out := map[string]domain.Price{}
	if len(item.Variations) == 0 {
		return out, nil
	}
	book, err := c.ResolveBook(ctx, pc, bookOverride)
	if err != nil || book == "" {
		return out, err
	}
	for _, v := range item.Variations {
		p, err := c.priceInBook(ctx, pc, book, v)
		if err != nil {
			return out, err
		}
		if p != nil {
			out[v.ID] = *p
		}
	}
	return out, nil
}

func (c *Calculator) priceInBook(ctx context.Context, pc *Context, book string, item domain.SellableItem) (*domain.Price, error) {
	if item.CardName == "" && len(item.Tags) > 0 {
		return c.priceByTags(ctx, pc, book, item)
	}

	name := item.CardName
	if name == "" {
		name = item.Name
	}
	card, err := c.Cards.CardByName(ctx, pc, book, name)
	if err != nil || card == nil {
		return nil, err
	}
	snap := c.Snapshots.Select(card, pc.AsOf(), pc.Currency)
	if snap == nil {
		pc.AddMessage(SeverityInformation, CodePriceSnapshotNotFound, []any{card.ID},
			fmt.Sprintf("No effective price snapshot for '%s'.", card.ID))
		return nil, nil
	}
	return c.tierPrice(pc, card.ID, snap), nil
}

type tagMatch struct {
	cardID  string
	matches int
	price   domain.Price
}

// priceByTags prices an item from the book's cards whose effective snapshot shares
// a tag with it: most shared tags wins, then the lowest amount, then the card id.
func (c *Calculator) priceByTags(ctx context.Context, pc *Context, book string, item domain.SellableItem) (*domain.Price, error) {
	cards, err := c.Cards.CardsForBook(ctx, pc, book)
	if err != nil || len(cards) == 0 {
		return nil, err
	}

	want := map[string]bool{}
	for _, t := range item.Tags {
		want[t] = true
	}
	var found []tagMatch
	for i := range cards {
		snap := c.Snapshots.Select(&cards[i], pc.AsOf(), pc.Currency)
		if snap == nil {
			continue
		}
		n := 0
		for _, t := range snap.Tags {
			if want[t] {
				n++
			}
		}
		if n == 0 {
			continue
		}
		tier := lowestQuantityTier(snap.Tiers)
		if tier == nil {
			continue
		}
		found = append(found, tagMatch{cardID: cards[i].ID, matches: n, price: domain.Price{Currency: pc.Currency, Amount: tier.Amount}})
	}
	if len(found) == 0 {
		pc.AddMessage(SeverityInformation, CodePriceSnapshotNotFound, []any{item.ID},
			fmt.Sprintf("No price card in '%s' matches the tags of '%s'.", book, item.ID))
		return nil, nil
	}
	sort.Slice(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if a.matches != b.matches {
			return a.matches > b.matches
		}
		if !a.price.Amount.Equal(b.price.Amount) {
			return a.price.Amount.LessThan(b.price.Amount)
		}
		return a.cardID < b.cardID
	})
	p := found[0].price
	return &p, nil
}

func (c *Calculator) tierPrice(pc *Context, cardID string, snap *domain.PriceSnapshot) *domain.Price {
	tier := lowestQuantityTier(snap.Tiers)
	if tier == nil {
		pc.AddMessage(SeverityInformation, CodePriceTierNotFound, []any{cardID, pc.Currency},
			fmt.Sprintf("Snapshot '%s' of '%s' has no tier in %s.", snap.ID, cardID, pc.Currency))
		return nil
	}
	return &domain.Price{Currency: pc.Currency, Amount: tier.Amount}
}

// lowestQuantityTier is the unit price tier: the one with the smallest minimum quantity.
func lowestQuantityTier(tiers []domain.PriceTier) *domain.PriceTier {
	var best *domain.PriceTier
	for i := range tiers {
		if best == nil || tiers[i].Quantity < best.Quantity {
			best = &tiers[i]
		}
	}
	return best
}

// Options configure NewCalculator.
type Options struct {
	Blocks          []string // book pipeline order, e.g. explicit,customer-group,catalog-default
	CatalogBook     string
	Policy          cache.Policy
	RequireApproval bool
}

func NewCalculator(customers CustomerLookup, source CardSource, store *cache.Store, opts Options) (*Calculator, error) {
	books, err := BuildBookPipeline(opts.Blocks, DefaultBlocks(customers, opts.CatalogBook))
	if err != nil {
		return nil, err
	}
	return &Calculator{
		Books:     books,
		Cards:     &CardCache{Source: source, Cache: store, Policy: opts.Policy},
		Snapshots: Selector{RequireApproval: opts.RequireApproval},
	}, nil
}
