package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const SnapshotApproved = "Approved"

type PriceTier struct {
	Currency string          `json:"currency"`
	Quantity int             `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

type PriceSnapshot struct {
	ID             string      `json:"id"`
	BeginDate      time.Time   `json:"beginDate"`
	ApprovalStatus string      `json:"approvalStatus"`
	Tiers          []PriceTier `json:"tiers"`
	Tags           []string    `json:"tags"`
	Components     []string    `json:"components,omitempty"`
}

func (s PriceSnapshot) IsApproved() bool {
	return strings.EqualFold(s.ApprovalStatus, SnapshotApproved)
}

// PriceCard holds every snapshot of one sellable item within a book; ID is "{book}-{name}".
type PriceCard struct {
	ID        string          `json:"id"`
	Book      string          `json:"book"`
	Name      string          `json:"name"`
	Snapshots []PriceSnapshot `json:"snapshots"`
}

// HasTaggedSnapshot reports whether any snapshot carries real pricing tags.
func (c PriceCard) HasTaggedSnapshot() bool {
	for _, s := range c.Snapshots {
		if len(s.Tags) > 0 {
			return true
		}
	}
	return false
}

type Price struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// SellableItem is what the sell price calculator prices: a product or one of its variations.
type SellableItem struct {
	ID         string
	Name       string
	CardName   string
	Tags       []string
	Variations []SellableItem
}

func SplitTags(csv string) []string {
	var out []string
	for _, t := range strings.Split(csv, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (p Product) SellableItem(variants []Variant) SellableItem {
	item := SellableItem{ID: p.ID, Name: p.ID, CardName: p.CardName, Tags: SplitTags(p.TagsCSV)}
	for _, v := range variants {
		item.Variations = append(item.Variations, SellableItem{
			ID: v.ID, Name: v.Name, CardName: v.CardName, Tags: SplitTags(v.TagsCSV),
		})
	}
	return item
}

// CardID builds the entity id of a price card inside a book.
func CardID(book, name string) string { return book + "-" + name }

// BookCardsList names the list every card of a book belongs to.
func BookCardsList(book string) string { return "PriceBookCards-" + book }
