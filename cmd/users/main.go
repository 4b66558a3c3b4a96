package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"zakaz/internal/config"
	"zakaz/internal/handlers"
	"zakaz/internal/middleware"
	"zakaz/internal/models"
	"zakaz/internal/repositories"
	"zakaz/internal/services"
	"zakaz/pkg/logger"
)

func main() {
	cfg := config.Load(":8081", "users.db")
	logger.New(logger.Config{Env: cfg.AppEnv, Level: cfg.LogLevel})

	if err := cfg.ValidateSigningKey(); err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	userRepo := repositories.NewGORMUserRepository(db)
	userService := services.NewUserService(userRepo)
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)

	accountHandler := handlers.NewAccountHandler(userService, tokenService)

	app := fiber.New()
	app.Use(fiberlogger.New())

	apiV1 := app.Group("/api/v1")
	accountHandler.RegisterRoutes(apiV1, middleware.AuthRequired(tokenService))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "service": "users"})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("users service listening")
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down users service")
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
