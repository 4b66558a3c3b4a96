package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"zakaz/internal/config"
	"zakaz/internal/events"
	"zakaz/internal/handlers"
	"zakaz/internal/middleware"
	"zakaz/internal/models"
	"zakaz/internal/repositories"
	"zakaz/internal/services"
	"zakaz/pkg/logger"
	"zakaz/pkg/rabbitmq"
)

func main() {
	cfg := config.Load(":8082", "orders.db")
	logger.New(logger.Config{Env: cfg.AppEnv, Level: cfg.LogLevel})

	if err := cfg.ValidateSigningKey(); err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// The broker is optional: without RABBITMQ_URL the service runs and
	// simply skips event publication.
	var publisher services.OrderEvents
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()

		if err := mqClient.Consume(func(msg amqp.Delivery) error {
			log.Info().Str("type", msg.Type).Bytes("body", msg.Body).Msg("order event received")
			return nil
		}); err != nil {
			log.Error().Err(err).Msg("failed to start order events consumer")
		}

		publisher = events.NewPublisher(mqClient)
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, order events disabled")
	}

	orderRepo := repositories.NewGORMOrderRepository(db)
	orderService := services.NewOrderService(orderRepo, publisher)
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)

	orderHandler := handlers.NewOrderHandler(orderService)

	app := fiber.New()
	app.Use(fiberlogger.New())

	apiV1 := app.Group("/api/v1")
	orderHandler.RegisterRoutes(apiV1, middleware.AuthRequired(tokenService))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "service": "orders"})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("orders service listening")
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down orders service")
	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DatabaseDriver == "postgres" {
		return gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(cfg.DatabaseDSN), &gorm.Config{})
}
