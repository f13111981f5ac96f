// Package pricing resolves the sell price of catalog items for a shopper:
// price book, price cards, the effective snapshot, and the tier for a currency.
package pricing

import (
	"strings"
	"time"

	"pricebook/internal/domain"
	applog "pricebook/internal/log"
)

const (
	SeverityInformation = "Information"
	SeverityWarning     = "Warning"
	SeverityError       = "Error"
)

const (
	CodeBookNameNotFound          = "BookNameNotFound"
	CodeEntityNotFound            = "EntityNotFound"
	CodePriceCardsForBookNotFound = "PriceCardsForBookNotFound"
	CodeGroupDerivationFailed     = "GroupDerivationFailed"
	CodePriceSnapshotNotFound     = "PriceSnapshotNotFound"
	CodePriceTierNotFound         = "PriceTierNotFound"
)

// Message is an advisory annotation; it never stops the operation that raised it.
type Message struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Args     []any  `json:"args,omitempty"`
	Text     string `json:"text"`
}

// Context is owned by one request and passed by reference through the pricing calls.
// It is not safe for concurrent use.
type Context struct {
	RequestID     string
	ShopperID     string
	Currency      string
	EffectiveDate time.Time // zero means now
	ShopName      string
	CatalogName   string

	entities map[string]domain.PriceCard
	messages []Message
	now      func() time.Time
}

func NewContext(shopperID, currency string) *Context {
	return &Context{
		ShopperID: shopperID,
		Currency:  strings.ToUpper(currency),
		entities:  map[string]domain.PriceCard{},
		now:       time.Now,
	}
}

// AsOf is the instant snapshots are evaluated at.
func (c *Context) AsOf() time.Time {
	if !c.EffectiveDate.IsZero() {
		return c.EffectiveDate
	}
	return c.now().UTC()
}

func (c *Context) AddMessage(severity, code string, args []any, text string) {
	c.messages = append(c.messages, Message{Severity: severity, Code: code, Args: args, Text: text})

	fields := map[string]any{"code": code, "text": text}
	if c.RequestID != "" {
		fields["req_id"] = c.RequestID
	}
	if c.ShopperID != "" {
		fields["shopper"] = c.ShopperID
	}
	switch severity {
	case SeverityWarning, SeverityError:
		applog.Warn(nil, "pricing.message", fields)
	default:
		applog.Info(nil, "pricing.message", fields)
	}
}

func (c *Context) Messages() []Message {
	return append([]Message(nil), c.messages...)
}

func (c *Context) HasMessage(code string) bool {
	for _, m := range c.messages {
		if m.Code == code {
			return true
		}
	}
	return false
}

// AddEntity remembers a card for the rest of the request.
func (c *Context) AddEntity(card domain.PriceCard) {
	if c.entities == nil {
		c.entities = map[string]domain.PriceCard{}
	}
	c.entities[strings.ToLower(card.ID)] = card
}

func (c *Context) Entity(id string) (domain.PriceCard, bool) {
	card, ok := c.entities[strings.ToLower(id)]
	return card, ok
}
