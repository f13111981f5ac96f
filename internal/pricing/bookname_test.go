package pricing_test

import (
	"context"
	"testing"

	"pricebook/internal/domain"
	"pricebook/internal/pricing"
)

func TestEmailDomainGroup(t *testing.T) {
	cases := []struct {
		email string
		want  string
		ok    bool
	}{
		{"alice@acme.com", "acme", true},
		{"bob@globex.co.uk", "globex", true},
		{"  carol@initech.io ", "initech", true},
		{"no-at-sign.com", "", false},
		{"dave@localhost", "", false},
		{"erin@.com", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := pricing.EmailDomainGroup{}.CustomerGroup(domain.Customer{Email: tc.email})
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q: want %q, got %q (%v)", tc.email, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q: expected error, got %q", tc.email, got)
		}
	}
}

func TestBookResolver(t *testing.T) {
	r := pricing.NewBookResolver(fakeCustomers{
		"u-alice": {ID: "u-alice", Email: "alice@acme.com"},
		"u-carol": {ID: "u-carol", Email: "carol@localhost"},
	})

	pc := pricing.NewContext("u-alice", "USD")
	if got, err := r.Resolve("Override_Book", "u-alice", pc); err != nil || got != "Override_Book" {
		t.Fatalf("explicit override: %q %v", got, err)
	}
	if got, _ := r.Resolve("", "u-alice", pc); got != "acme_PriceBook" {
		t.Fatalf("want acme_PriceBook, got %q", got)
	}
	if got, _ := r.Resolve("", "u-unknown", pc); got != "" {
		t.Fatalf("unknown customer should resolve empty, got %q", got)
	}
	if got, _ := r.Resolve("", "", pc); got != "" {
		t.Fatalf("anonymous should resolve empty, got %q", got)
	}

	pc = pricing.NewContext("u-carol", "USD")
	got, err := r.Resolve("", "u-carol", pc)
	if err != nil || got != "" {
		t.Fatalf("malformed email must fall back silently: %q %v", got, err)
	}
	if !pc.HasMessage(pricing.CodeGroupDerivationFailed) {
		t.Fatalf("expected %s message, got %+v", pricing.CodeGroupDerivationFailed, pc.Messages())
	}

	if _, err := r.Resolve("", "boom", pc); err == nil {
		t.Fatalf("lookup failure should surface")
	}
}

type fixedGroup string

func (g fixedGroup) CustomerGroup(domain.Customer) (string, error) { return string(g), nil }

func TestBookResolverCustomPolicy(t *testing.T) {
	r := &pricing.BookResolver{
		Customers: fakeCustomers{"u-1": {ID: "u-1", Email: "x@y.z"}},
		Groups:    fixedGroup("wholesale"),
	}
	if got, _ := r.Resolve("", "u-1", nil); got != "wholesale_PriceBook" {
		t.Fatalf("want wholesale_PriceBook, got %q", got)
	}
}

func TestBookPipelineOrder(t *testing.T) {
	registry := pricing.DefaultBlocks(fakeCustomers{
		"u-alice": {ID: "u-alice", Email: "alice@acme.com"},
	}, "Storefront_PriceBook")

	p, err := pricing.BuildBookPipeline([]string{"explicit", "customer-group", "catalog-default"}, registry)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if got, _ := p.Run(ctx, "Manual_Book", pricing.NewContext("u-alice", "USD")); got != "Manual_Book" {
		t.Fatalf("override: %q", got)
	}
	// explicit names are returned exactly as given
	if got, _ := p.Run(ctx, " Manual_Book ", pricing.NewContext("u-alice", "USD")); got != " Manual_Book " {
		t.Fatalf("override changed: %q", got)
	}
	if got, _ := p.Run(ctx, "", pricing.NewContext("u-alice", "USD")); got != "acme_PriceBook" {
		t.Fatalf("customer group: %q", got)
	}
	if got, _ := p.Run(ctx, "", pricing.NewContext("", "USD")); got != "Storefront_PriceBook" {
		t.Fatalf("catalog default: %q", got)
	}

	noDefault, _ := pricing.BuildBookPipeline([]string{"customer-group"}, registry)
	if got, _ := noDefault.Run(ctx, "", pricing.NewContext("", "USD")); got != "" {
		t.Fatalf("without default block: %q", got)
	}

	if _, err := pricing.BuildBookPipeline([]string{"nope"}, registry); err == nil {
		t.Fatalf("unknown block should fail")
	}
}

func TestBookPipelineCancelled(t *testing.T) {
	p := pricing.NewBookPipeline(pricing.CatalogDefaultBlock{Book: "B"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Run(ctx, "", pricing.NewContext("", "USD")); err == nil {
		t.Fatalf("expected context error")
	}
}
