package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "pricebook/internal/log"
)

// ErrorHandler logs the failure and answers with a friendly message that never
// carries the underlying error text.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	applog.Error(c, "server.error", err, map[string]any{"code": code})
	msg := "Something went wrong. Please try again."
	switch code {
	case fiber.StatusNotFound:
		msg = "Page not found"
	case fiber.StatusRequestEntityTooLarge:
		msg = "Request too large"
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
