package middleware

import (
	"runtime/debug"
	"strings"
	"time"

	"github.com/emandor/learn2play_service/internal/config"
	"github.com/emandor/learn2play_service/internal/model"
	"github.com/emandor/learn2play_service/internal/telemetry"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func RequestLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log := telemetry.L().With().Str("req_id", RequestIDFrom(c)).Logger()

		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Msg("request")
		return err
	}
}

func Recover() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log := telemetry.L().With().Str("req_id", RequestIDFrom(c)).Logger()
				log.Error().Interface("panic", r).Msg("panic: recovered")
				log.Error().Msg(string(debug.Stack()))
				err = c.Status(fiber.StatusInternalServerError).JSON(model.NewUploadResponse("", "", model.MsgUploadFailed))
			}
		}()
		return c.Next()
	}
}

func CORS(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORSOrigins, ","),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		MaxAge:       86400,
	})
}
