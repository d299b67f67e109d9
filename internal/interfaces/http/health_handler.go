package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger dependencia con chequeo de conectividad.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler informa el estado de la BD y del caché. nil = componente no configurado.
type HealthHandler struct {
	service string
	db      Pinger
	cache   Pinger
}

func NewHealthHandler(service string, db, cache Pinger) *HealthHandler {
	return &HealthHandler{service: service, db: db, cache: cache}
}

// Check GET /health: 200 si la BD responde, 503 si no. Un caché caído solo degrada.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status, code := "ok", fiber.StatusOK
	db := probe(ctx, h.db)
	if db == "down" {
		status, code = "degraded", fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":  status,
		"service": h.service,
		"db":      db,
		"cache":   probe(ctx, h.cache),
	})
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "up"
}
