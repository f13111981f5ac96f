package pricing_test

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pricebook/internal/domain"
)

type fakeCustomers map[string]domain.Customer

func (f fakeCustomers) ByID(id string) (*domain.Customer, error) {
	if id == "boom" {
		return nil, errors.New("db down")
	}
	c, ok := f[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

type fakeSource struct {
	mu        sync.Mutex
	cards     map[string]domain.PriceCard // by id
	listCalls int
	findCalls int
}

func newFakeSource(cards ...domain.PriceCard) *fakeSource {
	s := &fakeSource{cards: map[string]domain.PriceCard{}}
	for _, c := range cards {
		s.cards[c.ID] = c
	}
	return s
}

func (s *fakeSource) FindEntity(id string) (*domain.PriceCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	for k, c := range s.cards {
		if strings.EqualFold(k, id) {
			return &c, nil
		}
	}
	return nil, nil
}

func (s *fakeSource) FindEntitiesInList(listName string) ([]domain.PriceCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	var out []domain.PriceCard
	for _, c := range s.cards {
		if domain.BookCardsList(c.Book) == listName {
			out = append(out, c)
		}
	}
	return out, nil
}

var (
	t2020 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	t2021 = time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	t2022 = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	t2099 = time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
)

func tier(cur, amount string) domain.PriceTier {
	return domain.PriceTier{Currency: cur, Quantity: 1, Amount: decimal.RequireFromString(amount)}
}

func snap(id string, begin time.Time, approved bool, tags []string, tiers ...domain.PriceTier) domain.PriceSnapshot {
	status := "Draft"
	if approved {
		status = domain.SnapshotApproved
	}
	return domain.PriceSnapshot{ID: id, BeginDate: begin, ApprovalStatus: status, Tags: tags, Tiers: tiers}
}

func card(book, name string, snaps ...domain.PriceSnapshot) domain.PriceCard {
	return domain.PriceCard{ID: domain.CardID(book, name), Book: book, Name: name, Snapshots: snaps}
}
