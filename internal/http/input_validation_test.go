package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// reject malformed inputs early
func TestValidationBadInputs(t *testing.T) {
	app := newApp(t)

	cases := []struct {
		url  string
		want int
	}{
		{"/api/v1/availability?productId=gbc-001&region=abc", http.StatusBadRequest},
		{"/api/v1/availability?region=20742", http.StatusBadRequest},
		{"/api/v1/availability?productId=%3Cx%3E&region=20742", http.StatusBadRequest},
		{"/search?q=%3Cscript%3E", http.StatusBadRequest},
		{"/search?q=nes&category=..%2F", http.StatusBadRequest},
		{"/category/retro-consoles?currency=dollars", http.StatusBadRequest},
		{"/product/gbc-001/price?at=yesterday", http.StatusBadRequest},
		{"/product/gbc-001/price?book=bad%20book", http.StatusBadRequest},
		{"/product/..%2Fetc/price", http.StatusNotFound},
		{"/product/nope", http.StatusNotFound},
		{"/product/nope/price", http.StatusNotFound},
	}
	for _, tc := range cases {
		if got := doJSON(t, app, httptest.NewRequest("GET", tc.url, nil), nil); got != tc.want {
			t.Errorf("%s: want %d, got %d", tc.url, tc.want, got)
		}
	}
}

func TestValidationFailuresAreLogged(t *testing.T) {
	app := newApp(t)
	entries := captureLogs(t, func() {
		doJSON(t, app, httptest.NewRequest("GET", "/search?q=%3Cscript%3E", nil), nil)
	})
	if !hasAction(entries, "validation.fail") {
		t.Fatalf("expected validation.fail log, got %+v", entries)
	}
}

func TestEmptySearchIsNotAnError(t *testing.T) {
	app := newApp(t)
	var out struct {
		Count int `json:"count"`
	}
	if got := doJSON(t, app, httptest.NewRequest("GET", "/search", nil), &out); got != http.StatusOK || out.Count != 0 {
		t.Fatalf("want empty 200, got %d %+v", got, out)
	}
}
