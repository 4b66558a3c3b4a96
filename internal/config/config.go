package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds process-wide configuration for the services. Values are read
// once at startup from environment variables (with optional .env file) and
// are immutable afterwards.
type Config struct {
	AppEnv   string // development, staging, production
	AppPort  string // listen address, e.g. ":8081"
	LogLevel string

	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	RabbitMQURL string

	// Gateway upstream addresses.
	UsersServiceURL  string
	OrdersServiceURL string
}

// Load reads configuration via Viper. defaultPort and defaultDSN differ per
// binary (each service has its own port and database file).
func Load(defaultPort, defaultDSN string) *Config {
	v := viper.New()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", defaultPort)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", defaultDSN)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "zakaz")
	v.SetDefault("JWT_AUDIENCE", "zakaz-api")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("USERS_SERVICE_URL", "http://localhost:8081")
	v.SetDefault("ORDERS_SERVICE_URL", "http://localhost:8082")

	// Optional .env file; environment variables take priority.
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	v.AutomaticEnv()

	return &Config{
		AppEnv:           v.GetString("APP_ENV"),
		AppPort:          v.GetString("APP_PORT"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		DatabaseDriver:   v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTIssuer:        v.GetString("JWT_ISSUER"),
		JWTAudience:      v.GetString("JWT_AUDIENCE"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		UsersServiceURL:  v.GetString("USERS_SERVICE_URL"),
		OrdersServiceURL: v.GetString("ORDERS_SERVICE_URL"),
	}
}

// ValidateSigningKey returns an error when the JWT secret is missing. Both
// token-handling services treat this as a fatal startup condition.
func (c *Config) ValidateSigningKey() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is missing in configuration")
	}
	return nil
}
