package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gramsetu/sandesh/internal/config"
)

// Version is the service version reported by the root descriptor.
const Version = "1.0.0"

type Handlers struct {
	config *config.Config
}

func NewHandlers(cfg *config.Config) *Handlers {
	return &Handlers{config: cfg}
}

// Root handles GET / with a static service descriptor.
func (h *Handlers) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":    "sandesh",
		"status":  "running",
		"version": Version,
		"website": h.config.WebsiteURL,
	})
}

// HealthCheck handles the /health endpoint.
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
