// Package webapi provides HTTP handlers and API endpoints for the bank.
// It is organized into sub-packages for different domains:
// - account: Account management endpoints
// - transfer: Money movement and transaction log endpoints
// - auth: Authentication endpoints
// - user: User management endpoints
package webapi

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/amirasaad/iebank/pkg/app"
	accountweb "github.com/amirasaad/iebank/webapi/account"
	authweb "github.com/amirasaad/iebank/webapi/auth"
	"github.com/amirasaad/iebank/webapi/common"
	transferweb "github.com/amirasaad/iebank/webapi/transfer"
	userweb "github.com/amirasaad/iebank/webapi/user"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	cfg := a.Config

	fiberApp := fiber.New(fiber.Config{
		AppName: "IE Bank API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})
	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled:      true,
		WithCredentials:      true,
		PersistAuthorization: true,
	}))

	// Uses X-Forwarded-For header when behind a proxy
	// Falls back to X-Real-IP or direct IP if needed
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.MaxRequests,
		Expiration: cfg.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				// Take the first IP in the chain
				if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
					return strings.TrimSpace(forwardedFor[:commaIndex])
				}
				return strings.TrimSpace(forwardedFor)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())
	fiberApp.Use(requestTimeout(cfg.Server.RequestTimeout))

	// Health check endpoint
	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("IE Bank API is running!")
	})

	authweb.Routes(fiberApp, a.AuthService, cfg.Auth)
	accountweb.Routes(fiberApp, a.AccountService, a.AuthService, cfg.Auth)
	transferweb.Routes(fiberApp, a.TransferService, a.AuthService, cfg.Auth)
	userweb.Routes(fiberApp, a.UserService, a.AuthService, cfg.Auth)
	return fiberApp
}

// requestTimeout bounds the context handed to services. A zero timeout
// leaves the context unbounded.
func requestTimeout(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if timeout <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}
