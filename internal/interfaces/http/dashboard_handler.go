package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ladespensa/despensa-api/internal/application/analytics"
	"github.com/ladespensa/despensa-api/pkg/logger"
)

// StatsHandler maneja el resumen de estadísticas del tablero.
type StatsHandler struct {
	uc  *analytics.StatsUseCase
	log *logger.Logger
}

func NewStatsHandler(uc *analytics.StatsUseCase, log *logger.Logger) *StatsHandler {
	return &StatsHandler{uc: uc, log: log}
}

// Summary devuelve los KPIs de ventas, inventario, cuentas y vencimientos.
// GET /api/estadisticas/resumen?dias=
//
// dias reemplaza el umbral de "por vencer" configurado.
func (h *StatsHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext(), optionalInt(c, "dias"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}
