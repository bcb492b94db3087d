package httpapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/i474232898/weather-history/internal/weather"
)

const serviceName = "weather-history"

// Ingest requests call external APIs for every day in the lookback window.
const writeTimeout = 2 * time.Minute

// ingestTimeout bounds a manual ingest, including the wait for a running
// batch, so the handler answers before the connection's write deadline.
var ingestTimeout = writeTimeout - 10*time.Second

// NewApp builds the Fiber app with middleware, health check and API routes.
func NewApp(reader weather.Reader, ingester Ingester) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          writeTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})

	RegisterRoutes(app, reader, ingester)
	return app
}
