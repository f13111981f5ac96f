package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// US ZIP: 5 digits
	reZIP  = regexp.MustCompile(`^[0-9]{5}$`)
	reQ    = regexp.MustCompile(`^[A-Za-z0-9 _'\\-]{1,50}$`)
	reID   = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reCur  = regexp.MustCompile(`^[A-Za-z]{3}$`)
	reBook = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)
)

func Region(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 5 {
		return "", false
	}
	return s, reZIP.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// Page parses a 1-based page number, clamped to 1..100.
func Page(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > 100 {
		return 100
	}
	return n
}

// ID validates a simple resource identifier (product/category ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Currency accepts a three letter code and returns it upper-cased.
func Currency(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !reCur.MatchString(s) {
		return "", false
	}
	return strings.ToUpper(s), true
}

// Book validates a price book name such as acme_PriceBook.
func Book(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reBook.MatchString(s)
}

// Date accepts RFC3339 or a plain YYYY-MM-DD (midnight UTC).
func Date(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
