package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/helmet/v2"
)

// SecureHeaders -> security headers for a JSON API read cross-origin by the frontend
func SecureHeaders() fiber.Handler {
	return helmet.New(helmet.Config{
		ContentSecurityPolicy:     "default-src 'none'; frame-ancestors 'none';",
		CrossOriginResourcePolicy: "cross-origin",
		ReferrerPolicy:            "no-referrer",
	})
}
