package validate_test

import (
	"testing"
	"time"

	"pricebook/internal/validate"
)

func TestCurrency(t *testing.T) {
	if c, ok := validate.Currency(" usd "); !ok || c != "USD" {
		t.Fatalf("want USD, got %q %v", c, ok)
	}
	for _, bad := range []string{"", "US", "USDX", "U$D", "123"} {
		if _, ok := validate.Currency(bad); ok {
			t.Fatalf("%q should be rejected", bad)
		}
	}
}

func TestDate(t *testing.T) {
	d, ok := validate.Date("2022-01-15")
	if !ok || !d.Equal(time.Date(2022, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("plain date: %v %v", d, ok)
	}
	if _, ok := validate.Date("2022-01-15T10:00:00+02:00"); !ok {
		t.Fatal("RFC3339 rejected")
	}
	if _, ok := validate.Date("15/01/2022"); ok {
		t.Fatal("want rejection")
	}
}

func TestIDAndBook(t *testing.T) {
	if _, ok := validate.ID("gbc-001"); !ok {
		t.Fatal("gbc-001 rejected")
	}
	if _, ok := validate.ID("../etc"); ok {
		t.Fatal("traversal accepted")
	}
	if _, ok := validate.Book("acme_PriceBook"); !ok {
		t.Fatal("book rejected")
	}
	if _, ok := validate.Book("a b"); ok {
		t.Fatal("space accepted")
	}
}

func TestRegionQAndPage(t *testing.T) {
	if _, ok := validate.Region("20742"); !ok {
		t.Fatal("zip rejected")
	}
	if _, ok := validate.Region("abc"); ok {
		t.Fatal("abc accepted")
	}
	if _, ok := validate.Q("<script>"); ok {
		t.Fatal("markup accepted")
	}
	if validate.Page("0") != 1 || validate.Page("x") != 1 || validate.Page("500") != 100 || validate.Page("3") != 3 {
		t.Fatal("page clamping")
	}
}
