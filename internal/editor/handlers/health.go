package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"
)

// ============================================================
// Health Check Handlers
// ============================================================

// Pinger is a dependency the service cannot work without.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Health struct {
	deps []Pinger
}

func NewHealth(deps ...Pinger) *Health {
	return &Health{deps: deps}
}

// LivenessProbe проверяет, что приложение работает
func (h *Health) LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// ReadinessProbe проверяет готовность приложения обрабатывать запросы
func (h *Health) ReadinessProbe(c fiber.Ctx) error {
	for _, d := range h.deps {
		if err := d.Ping(c.Context()); err != nil {
			log.Warnf("[EDITOR] readiness check failed: %v", err)
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"error":  err.Error(),
			})
		}
	}
	return c.JSON(fiber.Map{
		"status": "ready",
	})
}

// StartupProbe проверяет, что приложение успешно запустилось
func (h *Health) StartupProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "started",
	})
}

func (h *Health) Register(app fiber.Router) {
	app.Get("/health/live", h.LivenessProbe)
	app.Get("/health/ready", h.ReadinessProbe)
	app.Get("/health/startup", h.StartupProbe)
}
