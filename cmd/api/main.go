package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/emandor/learn2play_service/internal/cache"
	"github.com/emandor/learn2play_service/internal/config"
	"github.com/emandor/learn2play_service/internal/middleware"
	"github.com/emandor/learn2play_service/internal/quiz"
	"github.com/emandor/learn2play_service/internal/quizgen"
	"github.com/emandor/learn2play_service/internal/telemetry"
)

func main() {
	cfg := config.Load()

	tlog := telemetry.Init(telemetry.FromEnv(config.GetEnv))
	tlog.Info().Str("port", cfg.AppPort).Str("root", cfg.ProjectRoot).Msg("booting learn2play_service")

	var limiterStore fiber.Storage
	if cfg.RedisAddr != "" {
		rdb := cache.MustConnect(cfg.RedisAddr, cfg.RedisDB)
		limiterStore = cache.NewLimiterStorage(rdb, "learn2play:limiter:")
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.MaxBodyLimit * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Recover())
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.RequestLog())
	app.Use(middleware.RateLimiter(cfg, limiterStore))
	if cfg.SecureHeaders {
		app.Use(middleware.SecureHeaders())
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	store := quizgen.NewStore()
	gen := quizgen.New(quizgen.OptionsFromConfig(cfg), store)
	qh := quiz.NewHandler(cfg, gen, store)
	qh.Routes(app)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		tlog.Info().Msg("shutting down")
		// kill running children first so in-flight uploads can answer
		gen.Close()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			tlog.Error().Err(err).Msg("shutdown")
		}
	}()

	if err := app.Listen(":" + cfg.AppPort); err != nil {
		tlog.Fatal().Err(err).Msg("listen")
	}
	if limiterStore != nil {
		_ = limiterStore.Close()
	}
}
