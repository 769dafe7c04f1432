// Package webapi assembles the HTTP boundary over the transaction core.
package webapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/triopay/triopay/pkg/app"
	"github.com/triopay/triopay/webapi/common"
	"github.com/triopay/triopay/webapi/monitor"
	"github.com/triopay/triopay/webapi/security"
	"github.com/triopay/triopay/webapi/transaction"
)

// NewApp builds the fiber application with all routes registered.
func NewApp(a *app.App) *fiber.App {
	fapp := fiber.New(fiber.Config{
		AppName: "triopay",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return common.ErrorResponseJSON(c, status, "Internal Server Error", err.Error())
		},
	})

	fapp.Use(recover.New())
	fapp.Use(limiter.New(limiter.Config{
		Max:        50,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ErrorResponseJSON(c, fiber.StatusTooManyRequests,
				"Too Many Requests", "Rate limit exceeded")
		},
	}))

	fapp.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	transaction.Routes(fapp, a)
	monitor.Routes(fapp, a)
	security.Routes(fapp, a)

	return fapp
}
