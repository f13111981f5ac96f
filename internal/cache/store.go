package cache

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Policy decides whether an entity type is cached and for how long.
type Policy struct {
	AllowCaching bool
	CacheName    string
	Expiration   time.Duration
}

type EntryOptions struct {
	Expiration time.Duration
}

func (p Policy) EntryOptions() EntryOptions {
	return EntryOptions{Expiration: p.Expiration}
}

// Store partitions a single fiber.Storage into named caches.
type Store struct {
	storage fiber.Storage
}

func NewStore(storage fiber.Storage) *Store {
	return &Store{storage: storage}
}

func key(cacheName, k string) string { return cacheName + "::" + k }

// Get reports ok=false on a miss.
func (s *Store) Get(cacheName, k string) ([]byte, bool, error) {
	b, err := s.storage.Get(key(cacheName, k))
	if err != nil {
		return nil, false, err
	}
	return b, len(b) > 0, nil
}

func (s *Store) Set(cacheName, k string, val []byte, opts EntryOptions) error {
	return s.storage.Set(key(cacheName, k), val, opts.Expiration)
}

func (s *Store) Remove(cacheName, k string) error {
	return s.storage.Delete(key(cacheName, k))
}
