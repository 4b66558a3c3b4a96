package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"zakaz/internal/authz"
	"zakaz/internal/services"
)

const claimsKey = "claims"

// AuthRequired is a Fiber middleware that validates the bearer token and
// stores the resulting claims in the request locals. A missing or malformed
// Authorization header is treated the same as an invalid token.
func AuthRequired(tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthenticated(c, "Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return unauthenticated(c, "Authorization header format must be 'Bearer <token>'")
		}

		claims, err := tokens.Validate(parts[1], time.Now())
		if err != nil {
			log.Debug().Err(err).Msg("token validation failed")
			return unauthenticated(c, "Invalid or expired token")
		}

		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// ClaimsFromCtx returns the validated claims stored by AuthRequired, or nil
// when the request never passed the middleware.
func ClaimsFromCtx(c *fiber.Ctx) *authz.Claims {
	claims, _ := c.Locals(claimsKey).(*authz.Claims)
	return claims
}

func unauthenticated(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   fiber.Map{"code": "UNAUTHENTICATED", "message": message},
	})
}
