package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gramsetu/sandesh/internal/config"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, cfg *config.Config) {
	handlers := NewHandlers(cfg)

	app.Get("/", handlers.Root)
	app.Get("/health", handlers.HealthCheck)
}
