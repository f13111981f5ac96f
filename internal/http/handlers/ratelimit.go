package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "pricebook/internal/log"
)

// RateLimit is one limiter over a storage that other limiters may share.
// Scope keeps its counters apart from theirs.
type RateLimit struct {
	Storage    fiber.Storage
	Scope      string
	Max        int
	Expiration time.Duration
	Skip       func(c *fiber.Ctx) bool
}

func (r RateLimit) Key(c *fiber.Ctx) string {
	return c.IP() + "|" + r.Scope
}

func (r RateLimit) Handler() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:          r.Max,
		Expiration:   r.Expiration,
		Storage:      r.Storage,
		Next:         r.Skip,
		KeyGenerator: r.Key,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate."+r.Scope+".hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
}
