package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"pricebook/internal/domain"
	applog "pricebook/internal/log"
	"pricebook/internal/repos"
)

const shopperKey = "shopper"

// Shopper resolves the sid cookie to a customer. Visitors without a session get
// a fresh anonymous sid; unknown sessions browse anonymously.
func Shopper(customers *repos.CustomerRepo) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := domain.Shopper{}
		sid := c.Cookies("sid")
		if sid == "" {
			sid = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     "sid",
				Value:    sid,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
				Secure:   false, // enable true behind TLS
			})
		} else {
			cust, err := customers.BySession(sid)
			if err != nil {
				applog.Error(c, "shopper.lookup", err, nil)
			} else if cust != nil {
				s = domain.Shopper{ID: cust.ID, Email: cust.Email}
			}
		}
		c.Locals(shopperKey, s)
		return c.Next()
	}
}

func CurrentShopper(c *fiber.Ctx) domain.Shopper {
	s, _ := c.Locals(shopperKey).(domain.Shopper)
	return s
}
