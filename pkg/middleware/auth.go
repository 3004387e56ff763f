package middleware

import (
	"errors"

	"github.com/amirasaad/iebank/pkg/config"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// ContextKey is the fiber.Ctx locals key holding the verified *jwt.Token.
const ContextKey = "user"

// JwtProtected rejects requests without a valid HS256 bearer token signed
// with cfg.Secret.
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.Secret)},
		ContextKey:   ContextKey,
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	detail := "Invalid or expired JWT"
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
		detail = "Missing or malformed JWT"
	}
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"type":     "about:blank",
		"title":    "Unauthorized",
		"status":   fiber.StatusUnauthorized,
		"detail":   detail,
		"instance": c.OriginalURL(),
		"success":  false,
		"message":  detail,
	})
}
