package middleware

import (
	"errors"

	"github.com/arturoeanton/go-page-rag-ollama/internal/guard"
	"github.com/arturoeanton/go-page-rag-ollama/internal/port"
	"github.com/gofiber/fiber/v3"
)

// RateLimitMiddleware rejects requests once the client's hourly budget is
// exhausted. Clients are keyed by network origin.
func RateLimitMiddleware(limiter *guard.RateLimiter) fiber.Handler {
	return func(c fiber.Ctx) error {
		if err := limiter.Check(c.IP()); errors.Is(err, port.ErrRateLimited) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Next()
	}
}
