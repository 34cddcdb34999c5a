package middleware

import (
	"time"

	"github.com/emandor/learn2play_service/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimiter limits requests per client IP. A nil storage keeps counters in
// process memory.
func RateLimiter(cfg *config.Config, storage fiber.Storage) fiber.Handler {
	window := cfg.RateLimitWindow
	if window <= 0 {
		window = 30 * time.Second
	}
	return limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: window,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz"
		},
	})
}
