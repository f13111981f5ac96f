package cache

import (
	"sync"
	"testing"
	"time"
)

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	if err := m.Set("k", []byte("v"), time.Second); err != nil {
		t.Fatal(err)
	}
	if got, _ := m.Get("k"); string(got) != "v" {
		t.Fatalf("want v, got %q", got)
	}
	time.Sleep(2500 * time.Millisecond)
	if got, _ := m.Get("k"); got != nil {
		t.Fatalf("expected expiry, got %q", got)
	}
}

func TestMemoryNoExpiration(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	_ = m.Set("k", []byte("v"), 0)
	if got, _ := m.Get("k"); string(got) != "v" {
		t.Fatalf("want v, got %q", got)
	}
	_ = m.Reset()
	if got, _ := m.Get("k"); got != nil {
		t.Fatalf("reset kept %q", got)
	}
}

func TestStoreNamespaces(t *testing.T) {
	s := NewStore(NewMemory())
	opts := Policy{AllowCaching: true, Expiration: time.Minute}.EntryOptions()
	_ = s.Set("Pricing", "k", []byte("a"), opts)
	_ = s.Set("Catalog", "k", []byte("b"), opts)

	a, ok, err := s.Get("Pricing", "k")
	if err != nil || !ok || string(a) != "a" {
		t.Fatalf("pricing: %q %v %v", a, ok, err)
	}
	b, ok, _ := s.Get("Catalog", "k")
	if !ok || string(b) != "b" {
		t.Fatalf("catalog: %q %v", b, ok)
	}
	_ = s.Remove("Pricing", "k")
	if _, ok, _ := s.Get("Pricing", "k"); ok {
		t.Fatalf("remove did not drop entry")
	}
	if _, ok, _ := s.Get("Catalog", "k"); !ok {
		t.Fatalf("remove dropped the other namespace")
	}
}

func TestStoreMissIsNotAnError(t *testing.T) {
	s := NewStore(NewMemory())
	b, ok, err := s.Get("Pricing", "absent")
	if err != nil || ok || b != nil {
		t.Fatalf("want clean miss, got %q %v %v", b, ok, err)
	}
}

func TestMemoryConcurrentSets(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Set("same", []byte("x"), time.Minute)
			_, _ = m.Get("same")
		}()
	}
	wg.Wait()
	if got, _ := m.Get("same"); string(got) != "x" {
		t.Fatalf("want x, got %q", got)
	}
}
