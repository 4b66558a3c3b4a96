package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/proxy"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"zakaz/internal/config"
	"zakaz/pkg/logger"
)

// The gateway owns request correlation: when no X-Request-ID arrives it
// generates one, and the header is echoed on every response. The services
// behind it never touch the header.
func main() {
	cfg := config.Load(":8080", "")
	logger.New(logger.Config{Env: cfg.AppEnv, Level: cfg.LogLevel})

	app := fiber.New()

	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return uuid.New().String()
		},
	}))
	app.Use(cors.New())
	app.Use(fiberlogger.New())

	forward := func(upstream string) fiber.Handler {
		return func(c *fiber.Ctx) error {
			return proxy.Do(c, upstream+c.OriginalURL())
		}
	}

	app.All("/api/v1/account*", forward(cfg.UsersServiceURL))
	app.All("/api/v1/users*", forward(cfg.UsersServiceURL))
	app.All("/api/v1/orders*", forward(cfg.OrdersServiceURL))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "service": "gateway"})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("gateway listening")
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down gateway")
	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
