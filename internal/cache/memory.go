// Package cache holds the shared cache used for price cards and rate limiting.
package cache

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
)

// Memory is the in-process fiber.Storage shared by the rate limiters and the
// price card cache. Expiration has one second granularity.
type Memory = memory.Storage

var _ fiber.Storage = (*Memory)(nil)

func NewMemory() *Memory {
	return memory.New(memory.Config{GCInterval: 10 * time.Second})
}
