package pricing

import (
	"context"
	"encoding/json"
	"fmt"

	"pricebook/internal/cache"
	"pricebook/internal/domain"
	applog "pricebook/internal/log"
)

// CardSource is the backend store of price cards.
type CardSource interface {
	FindEntity(id string) (*domain.PriceCard, error)
	FindEntitiesInList(listName string) ([]domain.PriceCard, error)
}

// CardCache resolves price cards, keeping per-book card lists in a shared cache.
// Concurrent misses on one key may each fetch and write; the last write wins.
type CardCache struct {
	Source CardSource
	Cache  *cache.Store
	Policy cache.Policy
}

func CardsCacheKey(book string) string {
	return "PriceCards|" + domain.BookCardsList(book)
}

// CardsForBook returns the book's cards that have at least one tagged snapshot,
// or nil when the book is empty or has no such cards.
func (c *CardCache) CardsForBook(ctx context.Context, pc *Context, book string) ([]domain.PriceCard, error) {
	if book == "" {
		pc.AddMessage(SeverityInformation, CodeBookNameNotFound, nil, "Book name was not found.")
		return nil, nil
	}

	key := CardsCacheKey(book)
	caching := c.Policy.AllowCaching && c.Cache != nil

	var cards []domain.PriceCard
	hit := false
	if caching {
		b, ok, err := c.Cache.Get(c.Policy.CacheName, key)
		if err != nil {
			applog.Warn(nil, "pricing.cache.get", map[string]any{"key": key, "err": err.Error()})
		} else if ok {
			if err := json.Unmarshal(b, &cards); err != nil {
				applog.Warn(nil, "pricing.cache.decode", map[string]any{"key": key, "err": err.Error()})
				cards = nil
			} else {
				hit = true
			}
		}
	}

	if !hit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		all, err := c.Source.FindEntitiesInList(domain.BookCardsList(book))
		if err != nil {
			return nil, fmt.Errorf("find cards for %s: %w", book, err)
		}
		cards = make([]domain.PriceCard, 0, len(all))
		for _, card := range all {
			if card.HasTaggedSnapshot() {
				cards = append(cards, card)
			}
		}

		if caching {
			b, err := json.Marshal(cards)
			if err == nil {
				err = c.Cache.Set(c.Policy.CacheName, key, b, c.Policy.EntryOptions())
			}
			if err != nil {
				applog.Warn(nil, "pricing.cache.set", map[string]any{"key": key, "err": err.Error()})
			}
		}
	}

	if len(cards) > 0 {
		return cards, nil
	}
	pc.AddMessage(SeverityInformation, CodePriceCardsForBookNotFound, []any{book},
		fmt.Sprintf("No price cards were found for book '%s'.", book))
	return nil, nil
}

// CardByName looks up "{book}-{cardName}" in the request first, then the backend.
func (c *CardCache) CardByName(ctx context.Context, pc *Context, book, cardName string) (*domain.PriceCard, error) {
	if cardName == "" {
		return nil, nil
	}
	if book == "" {
		pc.AddMessage(SeverityInformation, CodeBookNameNotFound, nil, "Book name was not found.")
		return nil, nil
	}

	id := domain.CardID(book, cardName)
	if card, ok := pc.Entity(id); ok {
		return &card, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	card, err := c.Source.FindEntity(id)
	if err != nil {
		return nil, fmt.Errorf("find card %s: %w", id, err)
	}
	if card != nil {
		pc.AddEntity(*card)
		return card, nil
	}

	pc.AddMessage(SeverityWarning, CodeEntityNotFound, []any{id}, fmt.Sprintf("Entity %s was not found.", id))
	return nil, nil
}
